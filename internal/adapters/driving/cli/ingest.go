package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/papermentor/internal/core/domain"
)

var ingestJSON bool

var ingestCmd = &cobra.Command{
	Use:   "ingest <file.pdf>...",
	Short: "Ingest research papers",
	Long: `Extracts, chunks, embeds and indexes each PDF and writes a short summary.

Every file becomes its own session. The session ID is printed so you can
chat about the paper later with 'papermentor chat <session-id>'.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errNotConfigured("ingest")
	}
	printWarnings(cmd)

	var results []*domain.IngestResult
	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		if !ingestJSON {
			cmd.Printf("Ingesting %s...\n", filepath.Base(path))
		}
		res, err := ingestService.Ingest(cmd.Context(), domain.IngestRequest{
			Filename: filepath.Base(path),
			Content:  content,
		})
		if err != nil {
			return withHint(fmt.Errorf("ingest %s: %w", filepath.Base(path), err))
		}
		results = append(results, res)

		if !ingestJSON {
			printIngestResult(cmd, res)
		}
	}

	if ingestJSON {
		return printJSON(cmd, results)
	}
	return nil
}

func printIngestResult(cmd *cobra.Command, res *domain.IngestResult) {
	cmd.Printf("  Session: %s\n", res.SessionID)
	cmd.Printf("  Pages:   %d\n", res.PageCount)
	cmd.Printf("  Chunks:  %d\n", res.ChunkCount)
	if res.SummaryErr != nil {
		cmd.Printf("  Warning: %v\n", res.SummaryErr)
	}
	cmd.Println()
	cmd.Println(res.Summary)
	cmd.Println()
}
