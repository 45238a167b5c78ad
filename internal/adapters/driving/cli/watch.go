package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/papermentor/internal/adapters/driving/watcher"
)

var watchExisting bool

var watchCmd = &cobra.Command{
	Use:   "watch <inbox-dir>",
	Short: "Ingest PDFs as they appear in a directory",
	Long: `Watches a directory and ingests every new PDF dropped into it, once.

A file is ingested after it has stopped changing for a moment, so large
copies are not read half-written. Files already present are skipped unless
--existing is given. Documents that cannot be read are not retried; provider
failures are retried the next time the file is written.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "also ingest PDFs already in the directory")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errNotConfigured("ingest")
	}
	printWarnings(cmd)

	w, err := watcher.New(args[0], ingestService,
		watcher.WithExisting(watchExisting),
		watcher.WithResultHandler(func(r watcher.Result) {
			name := filepath.Base(r.Path)
			if r.Err != nil {
				cmd.PrintErrf("Failed %s: %v\n", name, r.Err)
				return
			}
			cmd.Printf("Ingested %s -> session %s (%d pages, %d chunks)\n",
				name, r.Result.SessionID, r.Result.PageCount, r.Result.ChunkCount)
		}),
	)
	if err != nil {
		return err
	}
	defer w.Close()

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", w.Dir())
	return w.Run(cmd.Context())
}
