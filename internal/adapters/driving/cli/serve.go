package cli

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/filings-cli/internal/adapters/driving/api"
	"github.com/custodia-labs/filings-cli/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the query pipeline over HTTP:

  POST   /v1/ask                 classify, retrieve and remember a question
  POST   /v1/classify            classify without retrieving
  POST   /v1/retrieve            retrieve with the plan of a category
  GET    /v1/conversations/:id   conversation history
  DELETE /v1/conversations/:id   forget a conversation
  GET    /v1/filings             ingested filings
  GET    /healthz                liveness
  GET    /metrics                Prometheus metrics

The address defaults to server.addr from the settings.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	addr := serveAddr
	if addr == "" && current != nil {
		addr = current.Settings.Server.Addr
	}
	if addr == "" {
		return errors.New("no listen address: pass --addr or set server.addr")
	}

	if !logger.IsVerbose() {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := api.NewRouter(api.Services{
		Query:      queryService,
		Classifier: classifierService,
		Retrieval:  retrievalService,
		History:    historyService,
		Ingest:     ingestService,
	})
	if err != nil {
		return err
	}

	cmd.Printf("HTTP API listening on %s\n", addr)
	return api.Run(cmd.Context(), addr, router)
}
