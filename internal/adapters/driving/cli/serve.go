package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/papermentor/internal/adapters/driving/httpapi"
)

var (
	serveAddr        string
	serveMaxUploadMB int64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the mentor over HTTP for browser front ends.

Endpoints:
  GET    /health
  POST   /api/upload_pdf      multipart field "file"
  POST   /api/chat            {session_id, user_message, chat_history, lead}
  POST   /api/retrieve        {session_id, query, k}
  GET    /api/sessions
  GET    /api/sessions/:id
  DELETE /api/sessions/:id

CORS is open to every origin so local front ends can call the API.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8000", "listen address")
	serveCmd.Flags().Int64Var(&serveMaxUploadMB, "max-upload-mb", httpapi.DefaultMaxUploadBytes>>20,
		"largest accepted PDF in megabytes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	printWarnings(cmd)

	server, err := httpapi.NewServer(&httpapi.Ports{
		Ingest:    ingestService,
		Chat:      chatService,
		Retrieval: retrievalService,
		Sessions:  sessionService,
	}, httpapi.WithMaxUploadBytes(serveMaxUploadMB<<20))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "HTTP API listening on %s\n", serveAddr)
	return server.Run(cmd.Context(), serveAddr)
}
