package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Query          string `json:"query" jsonschema:"the financial question to answer"`
	ConversationID string `json:"conversation_id,omitempty" jsonschema:"conversation to continue; a new one is started when empty"`
	Answer         bool   `json:"answer,omitempty" jsonschema:"compose a written answer from the evidence"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	ConversationID string           `json:"conversation_id"`
	Category       string           `json:"category"`
	Rationale      string           `json:"rationale,omitempty"`
	Confidence     float64          `json:"confidence"`
	Status         string           `json:"status"`
	Evidence       []EvidenceOutput `json:"evidence"`
	Answer         string           `json:"answer,omitempty"`
	Sources        []string         `json:"sources,omitempty"`
}

// ClassifyInput is the input schema for the classify tool.
type ClassifyInput struct {
	Query          string `json:"query" jsonschema:"the question to classify"`
	ConversationID string `json:"conversation_id,omitempty" jsonschema:"conversation whose history informs the classification"`
}

// ClassifyOutput is the output schema for the classify tool.
type ClassifyOutput struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale,omitempty"`
	Fallback   bool    `json:"fallback"`
	Hedged     bool    `json:"hedged"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query    string `json:"query" jsonschema:"the question to retrieve evidence for"`
	Category string `json:"category,omitempty" jsonschema:"DIRECT_LOOKUP, CROSS_ENTITY_COMPARISON, TEMPORAL_TREND or CONVERSATIONAL (default DIRECT_LOOKUP)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Status     string           `json:"status"`
	Confidence float64          `json:"confidence"`
	Evidence   []EvidenceOutput `json:"evidence"`
	Count      int              `json:"count"`
}

// EvidenceOutput represents a single evidence passage.
type EvidenceOutput struct {
	ChunkID      string  `json:"chunk_id"`
	Score        float64 `json:"score"`
	Company      string  `json:"company"`
	FilingType   string  `json:"filing_type"`
	FiscalPeriod string  `json:"fiscal_period"`
	SectionTag   string  `json:"section_tag"`
	Text         string  `json:"text"`
}

// HistoryInput is the input schema for the history and clear_history tools.
type HistoryInput struct {
	ConversationID string `json:"conversation_id" jsonschema:"the conversation identifier"`
}

// HistoryOutput is the output schema for the history tool.
type HistoryOutput struct {
	Turns []TurnOutput `json:"turns"`
	Count int          `json:"count"`
}

// TurnOutput represents one remembered turn.
type TurnOutput struct {
	Query           string `json:"query"`
	Category        string `json:"category"`
	EvidenceSummary string `json:"evidence_summary"`
	Timestamp       string `json:"timestamp"`
}

// ClearOutput is the output schema for the clear_history tool.
type ClearOutput struct {
	Cleared int `json:"cleared"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question about company filings: classify it, retrieve evidence and remember the turn",
	}, s.handleAsk)

	if s.ports.Classifier != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "classify",
			Description: "Classify a financial question into a retrieval category",
		}, s.handleClassify)
	}

	if s.ports.Retrieval != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "retrieve",
			Description: "Retrieve filing passages for a question using the plan of a category",
		}, s.handleRetrieve)
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "history",
		Description: "Show the remembered turns of a conversation",
	}, s.handleHistory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "clear_history",
		Description: "Forget every turn of a conversation",
	}, s.handleClearHistory)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, AskOutput{}, fmt.Errorf("query: %w", domain.ErrInvalidInput)
	}
	id := input.ConversationID
	if id == "" {
		id = uuid.NewString()
	}

	ask := s.ports.Query.Ask
	if input.Answer {
		ask = s.ports.Query.Answer
	}
	result, err := ask(ctx, id, input.Query)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		ConversationID: result.ConversationID,
		Category:       string(result.Classification.Category),
		Rationale:      result.Classification.Rationale,
		Confidence:     result.Confidence,
		Status:         string(result.Evidence.Status),
		Evidence:       evidenceOutput(result.Evidence),
	}
	if result.Answer != nil {
		output.Answer = result.Answer.Text
		output.Sources = result.Answer.Sources
	}
	return nil, output, nil
}

// handleClassify handles the classify tool invocation.
func (s *Server) handleClassify(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ClassifyInput,
) (*mcp.CallToolResult, ClassifyOutput, error) {
	summary := ""
	if input.ConversationID != "" {
		summary = s.ports.History.Summary(input.ConversationID)
	}
	c := s.ports.Classifier.Classify(ctx, input.Query, summary)
	return nil, ClassifyOutput{
		Category:   string(c.Category),
		Confidence: c.Confidence,
		Rationale:  c.Rationale,
		Fallback:   c.Fallback,
		Hedged:     c.Hedged,
	}, nil
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	category := domain.CategoryDirectLookup
	if input.Category != "" {
		c, ok := domain.ParseQueryCategory(input.Category)
		if !ok {
			return nil, RetrieveOutput{}, fmt.Errorf("category %q: %w", input.Category, domain.ErrInvalidInput)
		}
		category = c
	}

	ev := s.ports.Retrieval.Retrieve(ctx, input.Query, s.ports.Retrieval.Plan(category))
	return nil, RetrieveOutput{
		Status:     string(ev.Status),
		Confidence: ev.Confidence,
		Evidence:   evidenceOutput(ev),
		Count:      len(ev.Items),
	}, nil
}

// handleHistory handles the history tool invocation.
func (s *Server) handleHistory(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input HistoryInput,
) (*mcp.CallToolResult, HistoryOutput, error) {
	turns := s.ports.History.History(input.ConversationID)
	output := HistoryOutput{
		Turns: make([]TurnOutput, len(turns)),
		Count: len(turns),
	}
	for i, t := range turns {
		output.Turns[i] = TurnOutput{
			Query:           t.Query,
			Category:        string(t.Category),
			EvidenceSummary: t.EvidenceSummary,
			Timestamp:       t.Timestamp.UTC().Format(time.RFC3339),
		}
	}
	return nil, output, nil
}

// handleClearHistory handles the clear_history tool invocation.
func (s *Server) handleClearHistory(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input HistoryInput,
) (*mcp.CallToolResult, ClearOutput, error) {
	n := len(s.ports.History.History(input.ConversationID))
	s.ports.History.Clear(input.ConversationID)
	return nil, ClearOutput{Cleared: n}, nil
}

func evidenceOutput(ev domain.EvidenceSet) []EvidenceOutput {
	out := make([]EvidenceOutput, len(ev.Items))
	for i, item := range ev.Items {
		out[i] = EvidenceOutput{
			ChunkID:      item.ChunkID,
			Score:        item.Score,
			Company:      item.Metadata.Company,
			FilingType:   item.Metadata.FilingType,
			FiscalPeriod: item.Metadata.FiscalPeriod,
			SectionTag:   item.Metadata.SectionTag,
			Text:         item.Text,
		}
	}
	return out
}
