// Package cli provides the filings command line interface.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/filings-cli/internal/core/ports/driving"
	"github.com/custodia-labs/filings-cli/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

// annotationStandalone marks commands that run without the service graph.
const annotationStandalone = "standalone"

var (
	configPath string
	configDir  string
	verbose    bool
	jsonLogs   bool
)

// Services wired by bootstrap, or injected by tests.
var (
	queryService      driving.QueryService
	classifierService driving.ClassifierService
	retrievalService  driving.RetrievalService
	historyService    driving.ContextManager
	ingestService     driving.IngestService
	segmenterService  driving.SegmenterService
)

// current holds what bootstrap opened. Nil when services were injected.
var current *Runtime

// injected skips bootstrap and uses the service variables as they are.
var injected bool

var rootCmd = &cobra.Command{
	Use:   "filings",
	Short: "Ask questions about company filings",
	Long: `filings classifies questions about SEC filings, retrieves evidence
from an index of segmented 10-K and 10-Q documents and keeps
per-conversation history for follow-up questions.

Ingest filings with 'filings ingest', then ask with 'filings ask'.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $FILINGS_HOME/config.toml)")
	rootCmd.PersistentFlags().StringVar(&configDir, "home", "", "config and data directory (default ~/.filings)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline details to stderr")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "log-json", false, "write logs as JSON lines")
}

// Execute runs the root command until it returns or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	// PersistentPostRunE is skipped when a command fails.
	if closeErr := teardown(rootCmd, nil); err == nil {
		err = closeErr
	}
	return err
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	logger.SetJSON(jsonLogs)

	if isStandalone(cmd) || injected {
		return nil
	}

	store, err := openSettingsStore()
	if err != nil {
		return err
	}
	rt, err := Bootstrap(cmd.Context(), store)
	if err != nil {
		return err
	}
	for _, w := range rt.Warnings {
		cmd.PrintErrf("Warning: %s\n", w)
	}
	current = rt
	rt.apply()
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if current == nil {
		return nil
	}
	rt := current
	current = nil
	rt.clear()
	return rt.Close()
}

func isStandalone(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[annotationStandalone]; ok {
			return true
		}
	}
	return false
}
