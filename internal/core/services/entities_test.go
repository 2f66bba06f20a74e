package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

func TestEntityDetector_Detect(t *testing.T) {
	d := NewEntityDetector(domain.DefaultEntities())

	tests := []struct {
		query string
		want  []string
	}{
		{"Compare Microsoft and Apple cloud revenue", []string{"MSFT", "AAPL"}},
		{"How do GOOGL and alphabet differ?", []string{"GOOGL"}},
		{"Meta Platforms vs Facebook", []string{"META"}},
		{"pineapple revenue", []string{}},
		{"nvda, tsla and amzn capex", []string{"NVDA", "TSLA", "AMZN"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Detect(tt.query))
		})
	}
}

func TestNewEntityDetector_SkipsBlankIDs(t *testing.T) {
	d := NewEntityDetector([]domain.EntitySettings{{ID: " "}, {ID: "c.o", Aliases: []string{"", "co"}}})
	assert.Equal(t, []string{"C.O"}, d.Detect("c.o and co"))
	assert.Empty(t, d.Detect("cxo"))
}

func TestDetectYears(t *testing.T) {
	assert.Equal(t, []string{"2021", "2023"}, DetectYears("from 2021 to 2023, and 2021 again"))
	assert.Nil(t, DetectYears("Q3 revenue of 12345"))
	assert.Equal(t, []string{"1999"}, DetectYears("since 1999"))
	assert.Nil(t, DetectYears("in 1899 and 2100"))
}

func TestCleanQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"What was the revenue of Apple in 2023?", "revenue apple 2023"},
		{"  Net   sales: $383.3B, up 2%!  ", "net sales $383.3b up 2%"},
		{"Tell me about 10-K risk factors", "10-k risk factors"},
		{"is it?", "is it?"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanQuery(tt.in))
		})
	}
}
