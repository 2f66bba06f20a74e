package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

// snippetRunes bounds passage text in table output.
const snippetRunes = 160

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputClassification(cmd *cobra.Command, c domain.ClassifiedQuery) {
	cmd.Printf("Category: %s (confidence %.2f)\n", c.Category, c.Confidence)
	if c.Rationale != "" {
		cmd.Printf("  Rationale: %s\n", c.Rationale)
	}
	if c.Fallback {
		cmd.Println("  Note: classifier unavailable, category defaulted")
	}
	if c.Hedged {
		cmd.Println("  Note: classifier hedged between categories")
	}
}

func outputEvidence(cmd *cobra.Command, ev domain.EvidenceSet) {
	cmd.Printf("Evidence: %d passages, status %s, confidence %.2f\n", len(ev.Items), ev.Status, ev.Confidence)
	if len(ev.Items) == 0 {
		cmd.Println("  No evidence found.")
		return
	}
	cmd.Println()
	for i, item := range ev.Items {
		m := item.Metadata
		cmd.Printf("  [%d] %s %s %s %s (%.2f)\n", i+1, m.Company, m.FilingType, m.FiscalPeriod, m.SectionTag, item.Score)
		cmd.Printf("      %s\n", snippet(item.Text, snippetRunes))
	}
	for _, o := range ev.Outcomes {
		if !o.OK() {
			cmd.Printf("  Sub-query %s failed: %s\n", o.SubQuery.Label(), o.Err)
		}
	}
}

func outputResult(cmd *cobra.Command, r domain.QueryResult) {
	cmd.Printf("Conversation: %s\n", r.ConversationID)
	outputClassification(cmd, r.Classification)
	cmd.Println()
	outputEvidence(cmd, r.Evidence)
	cmd.Println()
	if r.Answer != nil {
		cmd.Println("Answer:")
		cmd.Printf("  %s\n", r.Answer.Text)
		if len(r.Answer.Sources) > 0 {
			cmd.Printf("  Sources: %s\n", strings.Join(r.Answer.Sources, ", "))
		}
		cmd.Println()
	}
	cmd.Printf("Confidence: %.2f\n", r.Confidence)
}

func outputTurns(cmd *cobra.Command, id string, turns []domain.ConversationTurn) {
	if len(turns) == 0 {
		cmd.Printf("No history for conversation %s.\n", id)
		return
	}
	cmd.Printf("Conversation %s (%d turns)\n\n", id, len(turns))
	for i, t := range turns {
		cmd.Printf("  [%d] %s  %s\n", i+1, t.Timestamp.Local().Format(time.DateTime), t.Category)
		cmd.Printf("      Q: %s\n", t.Query)
		if t.EvidenceSummary != "" {
			cmd.Printf("      E: %s\n", t.EvidenceSummary)
		}
	}
}

// snippet collapses whitespace and cuts s to n runes.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
