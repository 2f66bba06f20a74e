package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

// Environment variables read on top of the config file.
const (
	EnvHome               = "FILINGS_HOME"
	EnvCompletionProvider = "FILINGS_COMPLETION_PROVIDER"
	EnvCompletionModel    = "FILINGS_COMPLETION_MODEL"
	EnvCompletionBaseURL  = "FILINGS_COMPLETION_BASE_URL"
	EnvEmbeddingProvider  = "FILINGS_EMBEDDING_PROVIDER"
	EnvEmbeddingModel     = "FILINGS_EMBEDDING_MODEL"
	EnvIndexBackend       = "FILINGS_INDEX_BACKEND"
	EnvDataDir            = "FILINGS_DATA_DIR"
	EnvServerAddr         = "FILINGS_SERVER_ADDR"
	EnvSubQueryTimeout    = "FILINGS_SUB_QUERY_TIMEOUT"
	EnvChunkSize          = "FILINGS_CHUNK_SIZE"
	EnvChunkOverlap       = "FILINGS_CHUNK_OVERLAP"
	EnvOpenAIKey          = "OPENAI_API_KEY"
	EnvAnthropicKey       = "ANTHROPIC_API_KEY"
	EnvGeminiKey          = "GEMINI_API_KEY"
	EnvDatabaseURL        = "DATABASE_URL"
)

// SettingsStore loads runtime settings from a TOML file.
// Values are layered: built-in defaults, then the file, then a .env file
// next to it, then the process environment.
type SettingsStore struct {
	dir      string
	filePath string
	lookup   func(string) (string, bool)
}

// NewSettingsStore creates a settings store rooted at configDir.
// If configDir is empty, FILINGS_HOME is used, then ~/.filings.
func NewSettingsStore(configDir string) (*SettingsStore, error) {
	dir, err := resolveDir(configDir)
	if err != nil {
		return nil, err
	}
	return &SettingsStore{
		dir:      dir,
		filePath: filepath.Join(dir, "config.toml"),
		lookup:   os.LookupEnv,
	}, nil
}

// NewSettingsStoreFromFile creates a settings store for an explicit file path.
func NewSettingsStoreFromFile(path string) *SettingsStore {
	return &SettingsStore{
		dir:      filepath.Dir(path),
		filePath: path,
		lookup:   os.LookupEnv,
	}
}

func resolveDir(configDir string) (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	if home, ok := os.LookupEnv(EnvHome); ok && home != "" {
		return home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".filings"), nil
}

// Path returns the configuration file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}

// Dir returns the configuration directory.
func (s *SettingsStore) Dir() string {
	return s.dir
}

// PromptDir returns the directory holding user-editable prompt templates.
func (s *SettingsStore) PromptDir() string {
	return filepath.Join(s.dir, "prompts")
}

// Load returns the layered settings without validating them.
// A missing config file is not an error.
func (s *SettingsStore) Load() (domain.Settings, error) {
	settings := domain.DefaultSettings()

	data, err := os.ReadFile(s.filePath)
	switch {
	case err == nil:
		if err := decode(data, &settings); err != nil {
			return settings, fmt.Errorf("parse %s: %w", s.filePath, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// No config file yet - defaults apply
	default:
		return settings, fmt.Errorf("read %s: %w", s.filePath, err)
	}

	dotenv, err := godotenv.Read(filepath.Join(s.dir, ".env"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return settings, fmt.Errorf("read .env: %w", err)
	}
	lookup := func(key string) (string, bool) {
		if v, ok := s.lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := ApplyEnv(&settings, lookup); err != nil {
		return settings, err
	}

	if settings.Index.DataDir == "" {
		settings.Index.DataDir = filepath.Join(s.dir, "data")
	}
	return settings, nil
}

// LoadValidated loads the settings and fails with ErrInvalidConfig on any violation.
func (s *SettingsStore) LoadValidated() (domain.Settings, error) {
	settings, err := s.Load()
	if err != nil {
		return settings, fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}
	return settings, Validate(settings)
}

// Save writes settings to the config file, creating the directory if needed.
// API keys are never written.
func (s *SettingsStore) Save(settings domain.Settings) error {
	settings.Completion.APIKey = ""
	settings.Embedding.APIKey = ""

	data, err := Encode(settings)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	// Write with restricted permissions
	return os.WriteFile(s.filePath, data, 0600)
}

// Encode renders settings as TOML.
func Encode(settings domain.Settings) ([]byte, error) {
	data, err := toml.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return data, nil
}

// decode parses TOML over the defaults already in settings. Plans named in
// the file keep the default values of any field the file leaves out.
func decode(data []byte, settings *domain.Settings) error {
	defaults := domain.DefaultPlans()
	if err := toml.Unmarshal(data, settings); err != nil {
		return err
	}
	for name, plan := range settings.Retrieval.Plans {
		def, ok := defaults[name]
		if !ok {
			continue
		}
		if plan.TopK == 0 {
			plan.TopK = def.TopK
		}
		if plan.MaxResults == 0 {
			plan.MaxResults = def.MaxResults
		}
		if plan.PromptTemplate == "" {
			plan.PromptTemplate = def.PromptTemplate
		}
		settings.Retrieval.Plans[name] = plan
	}
	for name, def := range defaults {
		if _, ok := settings.Retrieval.Plans[name]; !ok {
			settings.Retrieval.Plans[name] = def
		}
	}
	return nil
}

// ApplyEnv overlays environment values on settings.
// Provider API keys only fill keys the file left empty.
func ApplyEnv(settings *domain.Settings, lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvCompletionProvider); ok {
		settings.Completion.Provider = domain.AIProvider(strings.ToLower(v))
	}
	if v, ok := get(EnvCompletionModel); ok {
		settings.Completion.Model = v
	}
	if v, ok := get(EnvCompletionBaseURL); ok {
		settings.Completion.BaseURL = v
	}
	if v, ok := get(EnvEmbeddingProvider); ok {
		settings.Embedding.Provider = domain.AIProvider(strings.ToLower(v))
	}
	if v, ok := get(EnvEmbeddingModel); ok {
		settings.Embedding.Model = v
	}
	if v, ok := get(EnvIndexBackend); ok {
		settings.Index.Backend = domain.IndexBackend(strings.ToLower(v))
	}
	if v, ok := get(EnvDataDir); ok {
		settings.Index.DataDir = v
	}
	if v, ok := get(EnvServerAddr); ok {
		settings.Server.Addr = v
	}
	if v, ok := get(EnvDatabaseURL); ok {
		settings.Index.DSN = v
	}

	var result *multierror.Error
	if v, ok := get(EnvSubQueryTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", EnvSubQueryTimeout, err))
		} else {
			settings.Retrieval.SubQueryTimeout = domain.Duration(d)
		}
	}
	if v, ok := get(EnvChunkSize); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", EnvChunkSize, err))
		} else {
			settings.Segmenter.ChunkSize = n
		}
	}
	if v, ok := get(EnvChunkOverlap); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", EnvChunkOverlap, err))
		} else {
			settings.Segmenter.Overlap = n
		}
	}

	keys := map[domain.AIProvider]string{
		domain.AIProviderOpenAI:    EnvOpenAIKey,
		domain.AIProviderAnthropic: EnvAnthropicKey,
		domain.AIProviderGemini:    EnvGeminiKey,
	}
	if env, ok := keys[settings.Completion.Provider]; ok && settings.Completion.APIKey == "" {
		settings.Completion.APIKey, _ = get(env)
	}
	if env, ok := keys[settings.Embedding.Provider]; ok && settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey, _ = get(env)
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("environment overrides: %w", err)
	}
	return nil
}

// Validate aggregates every violation and wraps the result in ErrInvalidConfig.
func Validate(settings domain.Settings) error {
	var result *multierror.Error
	for _, err := range settings.Violations() {
		result = multierror.Append(result, err)
	}

	if settings.Completion.Provider != "" && settings.Completion.Provider.IsValid() &&
		!settings.Completion.IsConfigured() {
		result = multierror.Append(result,
			fmt.Errorf("completion.api_key is required for the %s provider", settings.Completion.Provider))
	}
	if settings.Embedding.Provider != "" && !settings.Embedding.IsConfigured() {
		result = multierror.Append(result,
			fmt.Errorf("embedding.provider %q is not configured (openai needs an api key, ollama needs nothing)",
				settings.Embedding.Provider))
	}
	if settings.Index.Backend.RequiresEmbedding() && settings.Embedding.Provider == "" {
		result = multierror.Append(result,
			fmt.Errorf("index.backend %s needs an embedding provider: %w",
				settings.Index.Backend, domain.ErrEmbeddingUnavailable))
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}
	return nil
}
