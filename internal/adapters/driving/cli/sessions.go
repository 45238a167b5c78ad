package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	sessionsJSON bool
	deleteYes    bool
)

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"session"},
	Short:   "Manage ingested papers",
	Long:    `List, inspect and delete the sessions created by ingesting papers.`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, newest first",
	Args:  cobra.NoArgs,
	RunE:  runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session and its summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session, its vectors and its stored PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

func init() {
	sessionsCmd.PersistentFlags().BoolVar(&sessionsJSON, "json", false, "output as JSON")
	sessionsDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "delete without asking")
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func runSessionsList(cmd *cobra.Command, _ []string) error {
	if sessionService == nil {
		return errNotConfigured("session")
	}

	sessions, err := sessionService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if sessionsJSON {
		return printJSON(cmd, sessions)
	}

	if len(sessions) == 0 {
		cmd.Println("No sessions yet. Run 'papermentor ingest <file.pdf>' to add one.")
		return nil
	}

	cmd.Println("Sessions:")
	cmd.Println()
	for i := range sessions {
		s := &sessions[i]
		cmd.Printf("  %s  %s\n", s.ID, s.Filename)
		cmd.Printf("      %d pages, %d chunks, created %s\n",
			s.PageCount, s.ChunkCount, s.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errNotConfigured("session")
	}

	session, err := sessionService.Get(cmd.Context(), args[0])
	if err != nil {
		return withHint(fmt.Errorf("failed to get session: %w", err))
	}

	if sessionsJSON {
		return printJSON(cmd, session)
	}

	cmd.Printf("ID:       %s\n", session.ID)
	cmd.Printf("File:     %s\n", session.Filename)
	cmd.Printf("Stored:   %s\n", session.DocumentPath)
	cmd.Printf("Pages:    %d\n", session.PageCount)
	cmd.Printf("Chunks:   %d\n", session.ChunkCount)
	cmd.Printf("Created:  %s\n", session.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	cmd.Println()
	cmd.Println("Summary:")
	cmd.Println(session.Summary)
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errNotConfigured("session")
	}

	id := args[0]
	if !deleteYes {
		cmd.Printf("Delete session %s? [y/N]: ", id)
		answer := readLine(bufio.NewReader(cmd.InOrStdin()))
		if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := sessionService.Delete(cmd.Context(), id); err != nil {
		return withHint(fmt.Errorf("failed to delete session: %w", err))
	}
	cmd.Printf("Deleted session %s\n", id)
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
