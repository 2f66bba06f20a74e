package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const unknownDescription = "Unknown"

// Duration is a time.Duration that reads and writes as "8s" style text.
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText renders the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the standard library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// AIProvider identifies a completion or embedding provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google Gemini cloud API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// IndexBackend identifies the index service implementation.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendMemory keeps chunks in process. Used for tests and dry runs.
	IndexBackendMemory IndexBackend = "memory"

	// IndexBackendSQLite is a local full-text index.
	IndexBackendSQLite IndexBackend = "sqlite"

	// IndexBackendPGVector is a Postgres nearest-neighbour index.
	IndexBackendPGVector IndexBackend = "pgvector"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendMemory, IndexBackendSQLite, IndexBackendPGVector:
		return true
	default:
		return false
	}
}

// RequiresEmbedding returns true if the backend needs an embedding provider.
func (b IndexBackend) RequiresEmbedding() bool {
	return b == IndexBackendPGVector
}

// Settings is the full runtime configuration.
type Settings struct {
	Segmenter    SegmenterSettings    `toml:"segmenter"`
	Classifier   ClassifierSettings   `toml:"classifier"`
	Retrieval    RetrievalSettings    `toml:"retrieval"`
	Conversation ConversationSettings `toml:"conversation"`
	Completion   CompletionSettings   `toml:"completion"`
	Embedding    EmbeddingSettings    `toml:"embedding"`
	Index        IndexSettings        `toml:"index"`
	Server       ServerSettings       `toml:"server"`
}

// SegmenterSettings configures chunking.
type SegmenterSettings struct {
	// ChunkSize is the target number of tokens per chunk.
	ChunkSize int `toml:"chunk_size"`

	// Overlap is the number of tokens shared by consecutive chunks of a section.
	Overlap int `toml:"overlap"`

	// MinChunkSize is the smallest chunk kept, except a section's tail.
	MinChunkSize int `toml:"min_chunk_size"`

	// Tokenizer is "tiktoken" or "whitespace".
	Tokenizer string `toml:"tokenizer"`

	// Encoding is the tiktoken encoding name.
	Encoding string `toml:"encoding"`

	// Sections is the ordered boundary pattern table.
	Sections []SectionPattern `toml:"sections"`

	// Noise lists patterns stripped before chunking.
	Noise []string `toml:"noise"`
}

// ClassifierSettings configures query classification.
type ClassifierSettings struct {
	// HedgePenalty multiplies the confidence of hedged answers.
	HedgePenalty float64 `toml:"hedge_penalty"`

	// Timeout bounds the completion call.
	Timeout Duration `toml:"timeout"`
}

// PlanSettings configures the retrieval plan of one category.
type PlanSettings struct {
	TopK           int    `toml:"top_k"`
	EntityFanOut   bool   `toml:"entity_fan_out"`
	TemporalFanOut bool   `toml:"temporal_fan_out"`
	MaxResults     int    `toml:"max_results"`
	PromptTemplate string `toml:"prompt_template"`
}

// EntitySettings maps a company identifier to the names it goes by in questions.
type EntitySettings struct {
	ID      string   `toml:"id"`
	Aliases []string `toml:"aliases"`
}

// RetrievalSettings configures the orchestrator.
type RetrievalSettings struct {
	// Plans is keyed by QueryCategory.
	Plans map[string]PlanSettings `toml:"plans"`

	// SubQueryTimeout bounds every individual index call.
	SubQueryTimeout Duration `toml:"sub_query_timeout"`

	// Entities is the vocabulary used for entity fan-out.
	Entities []EntitySettings `toml:"entities"`
}

// ConversationSettings configures the context manager.
type ConversationSettings struct {
	// Capacity is the number of turns kept per conversation.
	Capacity int `toml:"capacity"`

	// SummaryTurns is how many recent turns the classifier sees.
	SummaryTurns int `toml:"summary_turns"`

	// SummaryChars truncates each turn's text in the summary.
	SummaryChars int `toml:"summary_chars"`
}

// CompletionSettings holds completion provider configuration.
type CompletionSettings struct {
	Provider AIProvider `toml:"provider"`
	Model    string     `toml:"model"`
	BaseURL  string     `toml:"base_url"`
	APIKey   string     `toml:"api_key"`
	Timeout  Duration   `toml:"timeout"`
}

// IsConfigured returns true if the completion provider is set up.
func (c CompletionSettings) IsConfigured() bool {
	if !c.Provider.IsValid() {
		return false
	}
	if c.Provider.RequiresAPIKey() && c.APIKey == "" {
		return false
	}
	return true
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	Provider   AIProvider `toml:"provider"`
	Model      string     `toml:"model"`
	BaseURL    string     `toml:"base_url"`
	APIKey     string     `toml:"api_key"`
	Dimensions int        `toml:"dimensions"`
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if e.Provider != AIProviderOpenAI && e.Provider != AIProviderOllama {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// IndexSettings configures the index backend.
type IndexSettings struct {
	Backend IndexBackend `toml:"backend"`

	// DataDir holds the sqlite database.
	DataDir string `toml:"data_dir"`

	// DSN is the Postgres connection string for pgvector.
	DSN string `toml:"dsn"`

	// Table is the pgvector table name.
	Table string `toml:"table"`

	// RetryAttempts bounds upsert retries.
	RetryAttempts uint `toml:"retry_attempts"`

	// RateLimit is the sustained outbound calls per second; 0 disables limiting.
	RateLimit float64 `toml:"rate_limit"`

	// Burst is the limiter burst size.
	Burst int `toml:"burst"`
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Addr string `toml:"addr"`
}

// Plan returns the retrieval plan for a category, falling back to the
// conversational plan for unknown categories.
func (r RetrievalSettings) Plan(c QueryCategory) RetrievalPlan {
	ps, ok := r.Plans[string(c)]
	if !ok {
		c = CategoryConversational
		ps = r.Plans[string(c)]
	}
	return RetrievalPlan{
		Category:        c,
		TopK:            ps.TopK,
		EntityFanOut:    ps.EntityFanOut,
		TemporalFanOut:  ps.TemporalFanOut,
		MaxResults:      ps.MaxResults,
		PromptTemplate:  ps.PromptTemplate,
		SubQueryTimeout: r.SubQueryTimeout.Std(),
	}
}

// Violations lists every configuration error. An empty result means the
// settings are safe to start with.
func (s Settings) Violations() []error {
	var errs []error
	errs = append(errs, s.Segmenter.Violations()...)

	if s.Classifier.HedgePenalty < 0 || s.Classifier.HedgePenalty > 1 {
		errs = append(errs, fmt.Errorf("classifier.hedge_penalty must be within [0,1], got %v", s.Classifier.HedgePenalty))
	}
	if s.Classifier.Timeout < 0 {
		errs = append(errs, fmt.Errorf("classifier.timeout must not be negative"))
	}

	if s.Retrieval.SubQueryTimeout <= 0 {
		errs = append(errs, fmt.Errorf("retrieval.sub_query_timeout must be positive"))
	}
	for _, c := range Categories() {
		ps, ok := s.Retrieval.Plans[string(c)]
		if !ok {
			errs = append(errs, fmt.Errorf("retrieval.plans.%s is missing", c))
			continue
		}
		if ps.TopK <= 0 {
			errs = append(errs, fmt.Errorf("retrieval.plans.%s.top_k must be positive", c))
		}
		if ps.MaxResults <= 0 {
			errs = append(errs, fmt.Errorf("retrieval.plans.%s.max_results must be positive", c))
		}
	}
	for key := range s.Retrieval.Plans {
		if _, ok := ParseQueryCategory(key); !ok {
			errs = append(errs, fmt.Errorf("retrieval.plans.%s is not a known category", key))
		}
	}
	for i, e := range s.Retrieval.Entities {
		if strings.TrimSpace(e.ID) == "" {
			errs = append(errs, fmt.Errorf("retrieval.entities[%d].id is empty", i))
		}
	}

	if s.Conversation.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("conversation.capacity must be positive"))
	}
	if s.Conversation.SummaryTurns < 0 || s.Conversation.SummaryChars < 0 {
		errs = append(errs, fmt.Errorf("conversation summary limits must not be negative"))
	}

	if s.Completion.Provider != "" && !s.Completion.Provider.IsValid() {
		errs = append(errs, fmt.Errorf("completion.provider %q: %w", s.Completion.Provider, ErrUnsupportedType))
	}
	if !s.Index.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("index.backend %q: %w", s.Index.Backend, ErrUnsupportedType))
	}
	if s.Index.Backend == IndexBackendPGVector && s.Index.DSN == "" {
		errs = append(errs, fmt.Errorf("index.dsn is required for the pgvector backend"))
	}
	if s.Index.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("index.rate_limit must not be negative"))
	}
	return errs
}

// Violations lists chunking configuration errors.
func (s SegmenterSettings) Violations() []error {
	var errs []error
	if s.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("segmenter.chunk_size must be positive, got %d", s.ChunkSize))
	}
	if s.Overlap < 0 {
		errs = append(errs, fmt.Errorf("segmenter.overlap must not be negative, got %d", s.Overlap))
	}
	if s.Overlap >= s.ChunkSize {
		errs = append(errs, fmt.Errorf("segmenter.overlap (%d) must be smaller than chunk_size (%d)", s.Overlap, s.ChunkSize))
	}
	if s.MinChunkSize < 0 {
		errs = append(errs, fmt.Errorf("segmenter.min_chunk_size must not be negative, got %d", s.MinChunkSize))
	}
	if s.MinChunkSize > s.ChunkSize {
		errs = append(errs, fmt.Errorf("segmenter.min_chunk_size (%d) must not exceed chunk_size (%d)", s.MinChunkSize, s.ChunkSize))
	}
	for i, p := range s.Sections {
		if strings.TrimSpace(p.Tag) == "" {
			errs = append(errs, fmt.Errorf("segmenter.sections[%d].tag is empty", i))
		}
		if _, err := regexp.Compile(p.Pattern); err != nil {
			errs = append(errs, fmt.Errorf("segmenter.sections[%d] (%s): %w", i, p.Tag, err))
		}
	}
	for i, n := range s.Noise {
		if _, err := regexp.Compile(n); err != nil {
			errs = append(errs, fmt.Errorf("segmenter.noise[%d]: %w", i, err))
		}
	}
	return errs
}
