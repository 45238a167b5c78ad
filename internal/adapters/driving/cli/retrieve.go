package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	retrieveK    int
	retrieveJSON bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve <session-id> <query>",
	Short: "Show the passages the mentor would ground on",
	Long: `Embeds the query and prints the nearest chunks of the paper, closest first,
together with the context block handed to the model.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().IntVarP(&retrieveK, "top-k", "k", 0, "number of passages (0 = configured default)")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errNotConfigured("retrieval")
	}

	query := strings.Join(args[1:], " ")
	grounding, err := retrievalService.Retrieve(cmd.Context(), args[0], query, retrieveK)
	if err != nil {
		return withHint(fmt.Errorf("retrieve: %w", err))
	}

	if retrieveJSON {
		return printJSON(cmd, grounding.Results)
	}

	if len(grounding.Results) == 0 {
		cmd.Println("No passages found.")
		return nil
	}

	cmd.Println("Passages:")
	cmd.Println()
	for i, r := range grounding.Results {
		cmd.Printf("  [%d] p.%d chunk %d (distance %.4f)\n", i+1, r.Metadata.Page, r.Metadata.ChunkIndex, r.Distance)
		cmd.Printf("      %s\n", preview(r.Text, 200))
		cmd.Println()
	}
	return nil
}

// preview collapses whitespace and truncates to n runes.
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
