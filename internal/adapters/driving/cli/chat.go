package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/papermentor/internal/adapters/driving/tui"
	"github.com/custodia-labs/papermentor/internal/core/domain"
)

var (
	chatPlain   bool
	chatSources bool
)

// isTerminal reports whether both stdin and stdout are terminals.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

var chatCmd = &cobra.Command{
	Use:   "chat [session-id]",
	Short: "Discuss a paper with the mentor",
	Long: `Opens a conversation with the Socratic mentor about an ingested paper.

On a terminal this launches the interactive UI. Without a session ID the UI
starts at the paper picker. When input is piped, or with --plain, a simple
line-based conversation runs instead; it uses the newest session when no ID
is given.

In the line mode:
  (empty line) - let the mentor lead the next step
  /sources     - show the sources of the last answer
  /quit        - leave the conversation`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "use the line-based conversation even on a terminal")
	chatCmd.Flags().BoolVar(&chatSources, "sources", false, "print sources after every answer in line mode")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errNotConfigured("chat")
	}
	if sessionService == nil {
		return errNotConfigured("session")
	}
	printWarnings(cmd)

	if !chatPlain && isTerminal() {
		return runChatTUI(cmd, args)
	}

	session, err := resolveChatSession(cmd, args)
	if err != nil {
		return err
	}
	return runChatREPL(cmd, session, cmd.InOrStdin())
}

func runChatTUI(cmd *cobra.Command, args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	app, err := tui.NewApp(tui.NewPorts(chatService, sessionService))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if len(args) == 1 {
		session, err := sessionService.Get(cmd.Context(), args[0])
		if err != nil {
			return withHint(fmt.Errorf("loading session: %w", err))
		}
		app.WithSession(*session)
	}

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// resolveChatSession loads the named session, or the newest one.
func resolveChatSession(cmd *cobra.Command, args []string) (*domain.Session, error) {
	if len(args) == 1 {
		session, err := sessionService.Get(cmd.Context(), args[0])
		if err != nil {
			return nil, withHint(fmt.Errorf("loading session: %w", err))
		}
		return session, nil
	}

	sessions, err := sessionService.List(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("no sessions yet; run 'papermentor ingest <file.pdf>' first")
	}
	return &sessions[0], nil
}

// runChatREPL holds a conversation over plain lines of text.
// The history is kept here and sent in full with every turn.
func runChatREPL(cmd *cobra.Command, session *domain.Session, in io.Reader) error {
	cmd.Printf("Paper: %s (%s)\n", session.Filename, session.ID)
	if session.Summary != "" {
		cmd.Println()
		cmd.Println(session.Summary)
	}
	cmd.Println()

	var (
		history []domain.Turn
		sources []domain.SourcePreview
	)

	turn := func(message string) error {
		reply, err := chatService.Respond(cmd.Context(), domain.ChatRequest{
			SessionID:   session.ID,
			UserMessage: message,
			History:     history,
			Lead:        message == "",
		})
		if err != nil {
			return err
		}
		if message != "" {
			history = append(history, domain.Turn{Role: domain.RoleUser, Content: message})
		}
		history = append(history, domain.Turn{Role: domain.RoleAssistant, Content: reply.Reply})
		sources = reply.Sources

		cmd.Printf("Mentor: %s\n", reply.Reply)
		if chatSources {
			printSources(cmd, sources)
		}
		cmd.Println()
		return nil
	}

	if err := turn(""); err != nil {
		return withHint(fmt.Errorf("chat: %w", err))
	}

	scanner := bufio.NewScanner(in)
	for {
		cmd.Print("You: ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "/quit", "/exit":
			return nil
		case "/sources":
			printSources(cmd, sources)
			cmd.Println()
			continue
		}

		if err := turn(line); err != nil {
			// A failed turn leaves the history untouched so it can be retried.
			cmd.PrintErrf("Error: %v\n\n", err)
		}
	}
}

func printSources(cmd *cobra.Command, sources []domain.SourcePreview) {
	if len(sources) == 0 {
		cmd.Println("  (no sources)")
		return
	}
	for i, src := range sources {
		cmd.Printf("  Source %d (p.%d): %s\n", i+1, src.Page, src.Excerpt)
	}
}
