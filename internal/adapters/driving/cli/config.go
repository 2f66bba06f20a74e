package cli

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/filings-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/filings-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

var (
	configPing  bool
	configForce bool
)

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Inspect and validate configuration",
	Long:        `View, create and validate the settings file and environment overrides.`,
	Annotations: map[string]string{annotationStandalone: ""},
	RunE:        runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings",
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the settings",
	Long: `Checks every setting and reports all violations at once.

With --ping, configured completion and embedding providers are also
contacted to confirm they are reachable.`,
	RunE: runConfigValidate,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a settings file with the defaults",
	RunE:  runConfigInit,
}

func init() {
	configValidateCmd.Flags().BoolVar(&configPing, "ping", false, "contact the configured providers")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing settings file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	store, err := openSettingsStore()
	if err != nil {
		return err
	}
	settings, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Printf("File: %s\n", store.Path())
	cmd.Println()

	cmd.Println("[Segmenter]")
	cmd.Printf("  Chunk size: %d tokens (overlap %d, minimum %d)\n",
		settings.Segmenter.ChunkSize, settings.Segmenter.Overlap, settings.Segmenter.MinChunkSize)
	cmd.Printf("  Tokenizer: %s\n", settings.Segmenter.Tokenizer)
	cmd.Printf("  Section patterns: %d\n", len(settings.Segmenter.Sections))
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Sub-query timeout: %s\n", settings.Retrieval.SubQueryTimeout.Std())
	for _, c := range domain.Categories() {
		p := settings.Retrieval.Plan(c)
		cmd.Printf("  %s: top_k %d, max %d, entity %t, temporal %t\n",
			c, p.TopK, p.MaxResults, p.EntityFanOut, p.TemporalFanOut)
	}
	cmd.Printf("  Known entities: %d\n", len(settings.Retrieval.Entities))
	cmd.Println()

	cmd.Println("[Conversation]")
	cmd.Printf("  Capacity: %d turns (summary %d turns, %d chars)\n",
		settings.Conversation.Capacity, settings.Conversation.SummaryTurns, settings.Conversation.SummaryChars)
	cmd.Println()

	cmd.Println("[Completion]")
	showProvider(cmd, settings.Completion.Provider, settings.Completion.Model,
		settings.Completion.BaseURL, settings.Completion.APIKey, settings.Completion.IsConfigured())
	cmd.Println()

	cmd.Println("[Embedding]")
	showProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Backend: %s\n", settings.Index.Backend)
	switch settings.Index.Backend {
	case domain.IndexBackendSQLite:
		cmd.Printf("  Data dir: %s\n", settings.Index.DataDir)
	case domain.IndexBackendPGVector:
		cmd.Printf("  DSN: %s\n", maskDSN(settings.Index.DSN))
		cmd.Printf("  Table: %s\n", settings.Index.Table)
	}
	cmd.Printf("  Retry attempts: %d\n", settings.Index.RetryAttempts)
	if settings.Index.RateLimit > 0 {
		cmd.Printf("  Rate limit: %.1f/s (burst %d)\n", settings.Index.RateLimit, settings.Index.Burst)
	}
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	cmd.Println()

	if err := file.Validate(settings); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'filings config validate' for details.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func showProvider(cmd *cobra.Command, p domain.AIProvider, model, baseURL, key string, configured bool) {
	if p == "" {
		cmd.Println("  Provider: (none)")
		return
	}
	cmd.Printf("  Provider: %s\n", p.Description())
	cmd.Printf("  Model: %s\n", model)
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if p.RequiresAPIKey() {
		if key != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(key))
		} else {
			cmd.Println("  API Key: (not set)")
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	store, err := openSettingsStore()
	if err != nil {
		return err
	}
	settings, err := store.LoadValidated()
	if err != nil {
		return err
	}

	if configPing {
		v := ai.NewConfigValidator()
		if err := v.ValidateCompletion(cmd.Context(), settings.Completion); err != nil {
			return err
		}
		if err := v.ValidateEmbedding(cmd.Context(), settings.Embedding); err != nil {
			return err
		}
	}

	cmd.Printf("Configuration %s is valid.\n", store.Path())
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	store, err := openSettingsStore()
	if err != nil {
		return err
	}
	if _, err := os.Stat(store.Path()); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", store.Path())
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := store.Save(domain.DefaultSettings()); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	cmd.Printf("Wrote default settings to %s\n", store.Path())
	return nil
}

// maskDSN hides the password of a connection string.
func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "****")
	}
	return u.String()
}
