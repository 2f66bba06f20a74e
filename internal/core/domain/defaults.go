package domain

import "time"

// Default chunking values, in tokens.
const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 100
	DefaultMinChunkSize = 200
)

// Default conversation values.
const (
	DefaultConversationCapacity = 10
	DefaultSummaryTurns         = 6
	DefaultSummaryChars         = 300
)

// Default timeouts and penalties.
const (
	DefaultSubQueryTimeout   = 8 * time.Second
	DefaultClassifierTimeout = 30 * time.Second
	DefaultHedgePenalty      = 0.5
)

// Prompt template names for response composition.
const (
	TemplateAnswerDirect         = "answer_direct"
	TemplateAnswerComparison     = "answer_comparison"
	TemplateAnswerTrend          = "answer_trend"
	TemplateAnswerConversational = "answer_conversational"
)

// DefaultSettings returns a complete, valid configuration.
func DefaultSettings() Settings {
	return Settings{
		Segmenter: SegmenterSettings{
			ChunkSize:    DefaultChunkSize,
			Overlap:      DefaultChunkOverlap,
			MinChunkSize: DefaultMinChunkSize,
			Tokenizer:    "tiktoken",
			Encoding:     "cl100k_base",
			Sections:     DefaultSectionPatterns(),
			Noise:        DefaultNoisePatterns(),
		},
		Classifier: ClassifierSettings{
			HedgePenalty: DefaultHedgePenalty,
			Timeout:      Duration(DefaultClassifierTimeout),
		},
		Retrieval: RetrievalSettings{
			Plans:           DefaultPlans(),
			SubQueryTimeout: Duration(DefaultSubQueryTimeout),
			Entities:        DefaultEntities(),
		},
		Conversation: ConversationSettings{
			Capacity:     DefaultConversationCapacity,
			SummaryTurns: DefaultSummaryTurns,
			SummaryChars: DefaultSummaryChars,
		},
		Completion: CompletionSettings{
			Timeout: Duration(120 * time.Second),
		},
		Index: IndexSettings{
			Backend:       IndexBackendSQLite,
			Table:         "filing_chunks",
			RetryAttempts: 3,
			Burst:         1,
		},
		Server: ServerSettings{
			Addr: ":8080",
		},
	}
}

// DefaultPlans returns the retrieval plan for every category. Comparative and
// trend questions need broader coverage than direct lookups.
func DefaultPlans() map[string]PlanSettings {
	return map[string]PlanSettings{
		string(CategoryDirectLookup): {
			TopK: 6, MaxResults: 6, PromptTemplate: TemplateAnswerDirect,
		},
		string(CategoryCrossEntityComparison): {
			TopK: 10, EntityFanOut: true, MaxResults: 15, PromptTemplate: TemplateAnswerComparison,
		},
		string(CategoryTemporalTrend): {
			TopK: 12, TemporalFanOut: true, MaxResults: 18, PromptTemplate: TemplateAnswerTrend,
		},
		string(CategoryConversational): {
			TopK: 4, MaxResults: 4, PromptTemplate: TemplateAnswerConversational,
		},
	}
}

// item builds a heading pattern anchored at the start of a line.
func item(number, heading string) string {
	return `(?im)^[ \t]*item[ \t]+` + number + `[ \t]*[.:\-]?[ \t]*(?:` + heading + `)`
}

// DefaultSectionPatterns returns the 10-K and 10-Q item headings.
func DefaultSectionPatterns() []SectionPattern {
	tenK := []string{"10-K", "10-K/A"}
	tenQ := []string{"10-Q", "10-Q/A"}
	return []SectionPattern{
		{Tag: "ITEM 1", Pattern: item("1", `business`), FilingTypes: tenK},
		{Tag: "ITEM 1A", Pattern: item("1a", `risk\s+factors`)},
		{Tag: "ITEM 1B", Pattern: item("1b", `unresolved\s+staff\s+comments`), FilingTypes: tenK},
		{Tag: "ITEM 1C", Pattern: item("1c", `cybersecurity`), FilingTypes: tenK},
		{Tag: "ITEM 2", Pattern: item("2", `properties`), FilingTypes: tenK},
		{Tag: "ITEM 3", Pattern: item("3", `legal\s+proceedings`), FilingTypes: tenK},
		{Tag: "ITEM 4", Pattern: item("4", `mine\s+safety`), FilingTypes: tenK},
		{Tag: "ITEM 5", Pattern: item("5", `market\s+for`), FilingTypes: tenK},
		{Tag: "ITEM 6", Pattern: item("6", `selected\s+financial\s+data|\[?reserved\]?`), FilingTypes: tenK},
		{Tag: "ITEM 7", Pattern: item("7", `management(?:.?s)?\s+discussion|md&a`), FilingTypes: tenK},
		{Tag: "ITEM 7A", Pattern: item("7a", `quantitative\s+and\s+qualitative`), FilingTypes: tenK},
		{Tag: "ITEM 8", Pattern: item("8", `financial\s+statements`), FilingTypes: tenK},
		{Tag: "ITEM 9", Pattern: item("9", `changes\s+in\s+and\s+disagreements`), FilingTypes: tenK},
		{Tag: "ITEM 9A", Pattern: item("9a", `controls\s+and\s+procedures`), FilingTypes: tenK},
		{Tag: "ITEM 9B", Pattern: item("9b", `other\s+information`), FilingTypes: tenK},
		{Tag: "ITEM 10", Pattern: item("10", `directors`), FilingTypes: tenK},
		{Tag: "ITEM 11", Pattern: item("11", `executive\s+compensation`), FilingTypes: tenK},
		{Tag: "ITEM 12", Pattern: item("12", `security\s+ownership`), FilingTypes: tenK},
		{Tag: "ITEM 13", Pattern: item("13", `certain\s+relationships`), FilingTypes: tenK},
		{Tag: "ITEM 14", Pattern: item("14", `principal\s+account`), FilingTypes: tenK},
		{Tag: "ITEM 15", Pattern: item("15", `exhibits`), FilingTypes: tenK},
		{Tag: "ITEM 16", Pattern: item("16", `form\s+10-k\s+summary`), FilingTypes: tenK},

		{Tag: "ITEM 1", Pattern: item("1", `financial\s+statements`), FilingTypes: tenQ},
		{Tag: "ITEM 2", Pattern: item("2", `management(?:.?s)?\s+discussion|md&a`), FilingTypes: tenQ},
		{Tag: "ITEM 3", Pattern: item("3", `quantitative\s+and\s+qualitative`), FilingTypes: tenQ},
		{Tag: "ITEM 4", Pattern: item("4", `controls\s+and\s+procedures`), FilingTypes: tenQ},
		{Tag: "ITEM 5", Pattern: item("5", `other\s+information`), FilingTypes: tenQ},
		{Tag: "ITEM 6", Pattern: item("6", `exhibits`), FilingTypes: tenQ},
	}
}

// DefaultNoisePatterns returns boilerplate stripped before chunking.
func DefaultNoisePatterns() []string {
	return []string{
		`(?im)^[ \t]*table\s+of\s+contents[ \t]*$`,
		`(?i)page\s+\d+\s+of\s+\d+`,
		`(?m)^[ \t]*\d{1,4}[ \t]*$`,
		`(?m)^[ \t]*[-_=]{3,}[ \t]*$`,
		`(?im)^[ \t]*exhibit\s+\d+(?:\.\d+)?[ \t]*$`,
	}
}

// DefaultEntities covers the large-cap issuers of the reference corpus.
func DefaultEntities() []EntitySettings {
	return []EntitySettings{
		{ID: "AAPL", Aliases: []string{"apple"}},
		{ID: "MSFT", Aliases: []string{"microsoft"}},
		{ID: "AMZN", Aliases: []string{"amazon"}},
		{ID: "GOOGL", Aliases: []string{"google", "alphabet"}},
		{ID: "META", Aliases: []string{"meta platforms", "meta", "facebook"}},
		{ID: "NVDA", Aliases: []string{"nvidia"}},
		{ID: "TSLA", Aliases: []string{"tesla"}},
	}
}
