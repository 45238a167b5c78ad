package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/papermentor/internal/core/domain"
)

var (
	askHistoryFile string
	askJSON        bool
)

var askCmd = &cobra.Command{
	Use:   "ask <session-id> [message]",
	Short: "Ask the mentor a single question",
	Long: `Runs one turn of the mentor conversation and prints the reply.

Without a message the mentor leads: it opens the discussion or proposes the
next step. Earlier turns can be supplied with --history as a JSON array of
{"role": "user"|"assistant", "content": "..."} objects.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askHistoryFile, "history", "", "JSON file holding earlier turns")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the reply as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errNotConfigured("chat")
	}

	message := strings.TrimSpace(strings.Join(args[1:], " "))

	history, err := loadHistory(askHistoryFile)
	if err != nil {
		return err
	}

	reply, err := chatService.Respond(cmd.Context(), domain.ChatRequest{
		SessionID:   args[0],
		UserMessage: message,
		History:     history,
		Lead:        message == "",
	})
	if err != nil {
		return withHint(fmt.Errorf("ask: %w", err))
	}

	if askJSON {
		return printJSON(cmd, reply)
	}

	cmd.Println(reply.Reply)
	if len(reply.Sources) > 0 {
		cmd.Println()
		printSources(cmd, reply.Sources)
	}
	return nil
}

func loadHistory(path string) ([]domain.Turn, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	var history []domain.Turn
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("%w: history is not a JSON list of turns: %w", domain.ErrInvalidInput, err)
	}
	for i, t := range history {
		if !t.Role.IsValid() {
			return nil, fmt.Errorf("%w: turn %d has role %q", domain.ErrInvalidInput, i, t.Role)
		}
	}
	return history, nil
}
