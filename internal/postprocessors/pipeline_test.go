package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

// mockProcessor is a test processor that returns predefined chunks.
type mockProcessor struct {
	name   string
	chunks []domain.Chunk
	err    error
}

func (m *mockProcessor) Name() string {
	return m.name
}

func (m *mockProcessor) Process(_ context.Context, _ domain.Filing, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.chunks != nil {
		return m.chunks, nil
	}
	return chunks, nil
}

func testFiling() domain.Filing {
	return domain.Filing{Company: "ACME", FilingType: "10-K", FiscalPeriod: "FY2023"}
}

func TestNewPipeline(t *testing.T) {
	p := NewPipeline()
	if p == nil {
		t.Fatal("expected non-nil pipeline")
	}
	if p.Len() != 0 {
		t.Errorf("expected 0 processors, got %d", p.Len())
	}
}

func TestPipeline_Add(t *testing.T) {
	p := NewPipeline()
	p.Add(&mockProcessor{name: "test"})

	if p.Len() != 1 {
		t.Errorf("expected 1 processor, got %d", p.Len())
	}
}

func TestPipeline_Process_EmptyPipeline(t *testing.T) {
	p := NewPipeline()
	in := []domain.Chunk{{SectionTag: "ITEM 1", Text: "business"}}

	chunks, err := p.Process(context.Background(), testFiling(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Text != "business" {
		t.Errorf("expected input chunks unchanged, got %v", chunks)
	}
}

func TestPipeline_Process_MultipleProcessors(t *testing.T) {
	first := []domain.Chunk{{ID: "a", Text: "one"}, {ID: "b", Text: "two"}}
	second := []domain.Chunk{{ID: "c", Text: "three"}}

	p := NewPipeline(
		&mockProcessor{name: "first", chunks: first},
		&mockProcessor{name: "second", chunks: second},
	)

	chunks, err := p.Process(context.Background(), testFiling(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 || chunks[0].ID != "c" {
		t.Errorf("expected chunks from last processor, got %v", chunks)
	}
}

func TestPipeline_Process_ProcessorError(t *testing.T) {
	p := NewPipeline(
		&mockProcessor{name: "ok"},
		&mockProcessor{name: "broken", err: errors.New("boom")},
	)

	_, err := p.Process(context.Background(), testFiling(), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "processor broken: boom" {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestPipeline_Process_PassthroughProcessor(t *testing.T) {
	in := []domain.Chunk{{ID: "x", Text: "kept"}}
	p := NewPipeline(&mockProcessor{name: "passthrough"})

	chunks, err := p.Process(context.Background(), testFiling(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 || chunks[0].ID != "x" {
		t.Errorf("expected passthrough, got %v", chunks)
	}
}
