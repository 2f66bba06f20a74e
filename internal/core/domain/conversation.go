package domain

import "time"

// ConversationTurn is one remembered exchange.
type ConversationTurn struct {
	Query           string        `json:"query"`
	Category        QueryCategory `json:"category"`
	EvidenceSummary string        `json:"evidence_summary"`
	Timestamp       time.Time     `json:"timestamp"`
}
