// Package cli provides the papermentor command line interface.
// It is a driving adapter: every command calls the core through driving ports.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/papermentor/internal/core/ports/driving"
	"github.com/custodia-labs/papermentor/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Services holds the driving ports the commands call.
type Services struct {
	Ingest    driving.IngestService
	Chat      driving.ChatService
	Retrieval driving.RetrievalService
	Sessions  driving.SessionService
	Settings  driving.SettingsService

	// Warnings reports provider problems found while building the AI clients.
	// It may be nil.
	Warnings func() []string
}

// Options are the global flags handed to the bootstrap function.
type Options struct {
	ConfigDir string
	Ephemeral bool
	Verbose   bool
}

// BootstrapFunc wires the services for a run and returns a cleanup function.
type BootstrapFunc func(ctx context.Context, opts Options) (*Services, func(), error)

var (
	bootstrap BootstrapFunc
	cleanup   func()
	wired     bool

	flagVerbose   bool
	flagConfigDir string
	flagEphemeral bool

	ingestService    driving.IngestService
	chatService      driving.ChatService
	retrievalService driving.RetrievalService
	sessionService   driving.SessionService
	settingsService  driving.SettingsService
	providerWarnings func() []string
)

// skipBootstrap marks commands that never touch the services.
const skipBootstrap = "papermentor/skip-bootstrap"

var rootCmd = &cobra.Command{
	Use:   "papermentor",
	Short: "A Socratic mentor for research papers",
	Long: `PaperMentor ingests a research paper and guides you through it.

Each PDF becomes a session: its text is chunked, embedded and indexed, and a
short accessible summary is written. The mentor then answers from the paper,
citing pages, and usually ends with a question to keep you thinking.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: preRun,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "",
		"configuration directory (default ~/.papermentor)")
	rootCmd.PersistentFlags().BoolVar(&flagEphemeral, "ephemeral", false,
		"keep sessions and vectors in memory only")
}

func preRun(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(flagVerbose)

	if wired || bootstrap == nil || cmd.Annotations[skipBootstrap] == "true" {
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	services, done, err := bootstrap(ctx, Options{
		ConfigDir: flagConfigDir,
		Ephemeral: flagEphemeral,
		Verbose:   flagVerbose,
	})
	if err != nil {
		return err
	}
	SetServices(services)
	cleanup = done
	return nil
}

// SetBootstrap registers the function that wires services before a command runs.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetServices installs services directly, bypassing the bootstrap function.
// A nil argument clears them.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
		wired = false
	} else {
		wired = true
	}
	ingestService = s.Ingest
	chatService = s.Chat
	retrievalService = s.Retrieval
	sessionService = s.Sessions
	settingsService = s.Settings
	providerWarnings = s.Warnings
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and releases whatever the bootstrap opened.
func Execute(ctx context.Context) error {
	defer release()
	return rootCmd.ExecuteContext(ctx)
}

func release() {
	if cleanup != nil {
		cleanup()
		cleanup = nil
	}
}

// printWarnings shows provider warnings collected at startup.
func printWarnings(cmd *cobra.Command) {
	if providerWarnings == nil {
		return
	}
	for _, w := range providerWarnings() {
		cmd.PrintErrf("Warning: %s\n", w)
	}
}
