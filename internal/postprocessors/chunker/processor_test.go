package chunker

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

// words builds n distinct space-separated words.
func words(prefix string, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return strings.Join(parts, " ")
}

func testFiling() domain.Filing {
	return domain.Filing{Company: "ACME", FilingType: "10-K", FiscalPeriod: "FY2023", SourceID: "acme-2023"}
}

func section(tag, text string) domain.Chunk {
	return domain.Chunk{Company: "ACME", FilingType: "10-K", FiscalPeriod: "FY2023", SectionTag: tag, Text: text}
}

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.chunkSize != domain.DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", domain.DefaultChunkSize, p.chunkSize)
		}
		if p.overlap != domain.DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", domain.DefaultChunkOverlap, p.overlap)
		}
		if p.minChunkSize != domain.DefaultMinChunkSize {
			t.Errorf("expected minChunkSize %d, got %d", domain.DefaultMinChunkSize, p.minChunkSize)
		}
		if p.Tokenizer().Name() != "whitespace" {
			t.Errorf("expected whitespace tokenizer, got %s", p.Tokenizer().Name())
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		p := New(WithChunkSize(100), WithOverlap(150))
		if p.overlap >= p.chunkSize {
			t.Error("overlap should be reduced when it exceeds chunk size")
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		p := New(WithChunkSize(0), WithOverlap(-1), WithMinChunkSize(-1), WithTokenizer(nil))
		if p.chunkSize != domain.DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", p.chunkSize)
		}
		if p.overlap != domain.DefaultChunkOverlap {
			t.Errorf("expected default overlap, got %d", p.overlap)
		}
		if p.tokenizer == nil {
			t.Error("expected default tokenizer")
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	if New().Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", New().Name())
	}
}

func TestProcessor_Windows(t *testing.T) {
	p := New(WithChunkSize(10), WithOverlap(2), WithMinChunkSize(5))

	tests := []struct {
		name string
		n    int
		want []Window
	}{
		{name: "empty", n: 0, want: nil},
		{name: "shorter than chunk", n: 4, want: []Window{{0, 4}}},
		{name: "exact chunk", n: 10, want: []Window{{0, 10}}},
		{name: "two windows", n: 15, want: []Window{{0, 10}, {8, 15}}},
		{name: "short tail kept as last window", n: 20, want: []Window{{0, 10}, {8, 18}, {16, 20}}},
		{name: "single short section kept", n: 2, want: []Window{{0, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Windows(tt.n)
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("Windows(%d) = %v, want %v", tt.n, got, tt.want)
			}
		})
	}
}

func TestProcessor_Windows_NeverExceedChunkSize(t *testing.T) {
	p := New(WithChunkSize(800), WithOverlap(100), WithMinChunkSize(200))

	for _, n := range []int{1, 199, 800, 801, 850, 1499, 1510, 2300, 5000} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			windows := p.Windows(n)
			if len(windows) == 0 {
				t.Fatal("expected at least one window")
			}
			for i, w := range windows {
				if size := w.End - w.Start; size > 800 {
					t.Errorf("window %d has %d tokens, more than 800", i, size)
				}
				if i > 0 && w.Start != windows[i-1].End-100 {
					t.Errorf("window %d starts at %d, want %d", i, w.Start, windows[i-1].End-100)
				}
			}
			if last := windows[len(windows)-1]; last.End != n {
				t.Errorf("last window ends at %d, want %d", last.End, n)
			}
		})
	}

	t.Run("850 tokens keep a short tail", func(t *testing.T) {
		got := p.Windows(850)
		want := []Window{{0, 800}, {700, 850}}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			t.Errorf("Windows(850) = %v, want %v", got, want)
		}
	})
}

func TestProcessor_Process_Empty(t *testing.T) {
	p := New()

	chunks, err := p.Process(context.Background(), testFiling(), []domain.Chunk{section("ITEM 1", "   ")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks for blank section, got %d", len(chunks))
	}
}

func TestProcessor_Process_Overlap(t *testing.T) {
	p := New(WithChunkSize(800), WithOverlap(100), WithMinChunkSize(200))
	text := words("w", 903)

	chunks, err := p.Process(context.Background(), testFiling(), []domain.Chunk{section("ITEM 7", text)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}

	first := strings.Fields(chunks[0].Text)
	second := strings.Fields(chunks[1].Text)
	if chunks[0].TokenCount != 800 || chunks[1].TokenCount != 203 {
		t.Errorf("unexpected token counts %d, %d", chunks[0].TokenCount, chunks[1].TokenCount)
	}
	if strings.Join(first[700:], " ") != strings.Join(second[:100], " ") {
		t.Error("expected the last 100 tokens of the first chunk to lead the second")
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
		if c.SectionTag != "ITEM 7" || c.Company != "ACME" {
			t.Errorf("chunk %d lost its section fields: %+v", i, c)
		}
	}
}

func TestProcessor_Process_IndexAcrossSections(t *testing.T) {
	p := New(WithChunkSize(10), WithOverlap(2), WithMinChunkSize(3))
	sections := []domain.Chunk{
		section(domain.Unsectioned, words("a", 5)),
		section("ITEM 1", words("b", 15)),
	}

	chunks, err := p.Process(context.Background(), testFiling(), sections)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	wantTags := []string{domain.Unsectioned, "ITEM 1", "ITEM 1"}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
		if c.SectionTag != wantTags[i] {
			t.Errorf("chunk %d tag %s, want %s", i, c.SectionTag, wantTags[i])
		}
	}
}

func TestProcessor_Process_ReproducibleIDs(t *testing.T) {
	p := New(WithChunkSize(10), WithOverlap(2), WithMinChunkSize(3))
	sections := []domain.Chunk{section("ITEM 1", words("x", 40))}

	a, err := p.Process(context.Background(), testFiling(), sections)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := p.Process(context.Background(), testFiling(), sections)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[string]bool)
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Errorf("chunk %d ID changed between runs", i)
		}
		if seen[a[i].ID] {
			t.Errorf("duplicate ID %s", a[i].ID)
		}
		seen[a[i].ID] = true
	}

	other := testFiling()
	other.FiscalPeriod = "FY2024"
	if ChunkID(other, 0) == ChunkID(testFiling(), 0) {
		t.Error("different filings should not share chunk IDs")
	}
}

func TestProcessor_Process_Cancelled(t *testing.T) {
	p := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Process(ctx, testFiling(), []domain.Chunk{section("ITEM 1", "text")})
	if err == nil {
		t.Error("expected error for cancelled context")
	}
}
