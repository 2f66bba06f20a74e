package services

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driven"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driving"
	"github.com/custodia-labs/filings-cli/internal/logger"
)

// Ensure ContextManager implements the interface.
var _ driving.ContextManager = (*ContextManager)(nil)

// conversation is a fixed-capacity ring of turns with its own lock.
// Loading from and writing to the store happen under that lock, so every
// change to one conversation reaches the store in order.
type conversation struct {
	mu     sync.Mutex
	turns  []domain.ConversationTurn
	head   int
	size   int
	loaded bool
}

func newConversation(capacity int) *conversation {
	return &conversation{turns: make([]domain.ConversationTurn, capacity)}
}

// The *Locked methods require c.mu.

func (c *conversation) appendLocked(turn domain.ConversationTurn) {
	c.turns[(c.head+c.size)%len(c.turns)] = turn
	if c.size < len(c.turns) {
		c.size++
		return
	}
	c.head = (c.head + 1) % len(c.turns)
}

func (c *conversation) snapshotLocked() []domain.ConversationTurn {
	out := make([]domain.ConversationTurn, c.size)
	for i := range out {
		out[i] = c.turns[(c.head+i)%len(c.turns)]
	}
	return out
}

func (c *conversation) resetLocked() {
	clear(c.turns)
	c.head, c.size = 0, 0
}

// loadLocked fills the ring from the store the first time it is used.
func (c *conversation) loadLocked(id string, store driven.ConversationStore) {
	if c.loaded {
		return
	}
	c.loaded = true
	if store == nil {
		return
	}
	turns, err := store.Load(id)
	if err != nil {
		logger.Warn("Loading conversation %s failed: %v", id, err)
		return
	}
	for _, t := range turns {
		c.appendLocked(t)
	}
}

// ContextManager keeps bounded history per conversation. The map lock only
// guards lookup and creation; each conversation serialises its own updates
// and store I/O, so different conversations never contend.
type ContextManager struct {
	mu            sync.Mutex
	conversations map[string]*conversation
	capacity      int
	summaryTurns  int
	summaryChars  int
	store         driven.ConversationStore
}

// NewContextManager creates a new context manager.
func NewContextManager(cfg domain.ConversationSettings) *ContextManager {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = domain.DefaultConversationCapacity
	}
	return &ContextManager{
		conversations: make(map[string]*conversation),
		capacity:      capacity,
		summaryTurns:  cfg.SummaryTurns,
		summaryChars:  cfg.SummaryChars,
	}
}

// SetStore persists conversations so they outlive the process.
// Stored turns are loaded the first time a conversation is touched.
func (m *ContextManager) SetStore(store driven.ConversationStore) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = store
}

// get returns the conversation for id and the current store. Without a store,
// an unknown conversation is only created when create is set; with one, an
// entry is created so the stored turns can be loaded under its own lock.
func (m *ContextManager) get(id string, create bool) (*conversation, driven.ConversationStore) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.conversations[id]
	if !ok && (create || m.store != nil) {
		c = newConversation(m.capacity)
		m.conversations[id] = c
	}
	return c, m.store
}

// Append records a turn, evicting the oldest when the conversation is full.
func (m *ContextManager) Append(conversationID string, turn domain.ConversationTurn) {
	c, store := m.get(conversationID, true)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.loadLocked(conversationID, store)
	c.appendLocked(turn)
	if store == nil {
		return
	}
	if err := store.Save(conversationID, c.snapshotLocked()); err != nil {
		logger.Warn("Saving conversation %s failed: %v", conversationID, err)
	}
}

// History returns a copy of the conversation, oldest first.
// An unknown conversation has an empty history.
func (m *ContextManager) History(conversationID string) []domain.ConversationTurn {
	c, store := m.get(conversationID, false)
	if c == nil {
		return []domain.ConversationTurn{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.loadLocked(conversationID, store)
	return c.snapshotLocked()
}

// Summary renders the most recent turns for the classifier, one
// "user:" and one "assistant [CATEGORY]:" line per turn.
func (m *ContextManager) Summary(conversationID string) string {
	turns := m.History(conversationID)
	if m.summaryTurns > 0 && len(turns) > m.summaryTurns {
		turns = turns[len(turns)-m.summaryTurns:]
	}

	var b strings.Builder
	for _, t := range turns {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("user: ")
		b.WriteString(truncate(t.Query, m.summaryChars))
		b.WriteString("\nassistant [")
		b.WriteString(string(t.Category))
		b.WriteString("]: ")
		b.WriteString(truncate(t.EvidenceSummary, m.summaryChars))
	}
	return b.String()
}

// Clear forgets a conversation. Later appends start from empty.
func (m *ContextManager) Clear(conversationID string) {
	c, store := m.get(conversationID, false)
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetLocked()
	c.loaded = true
	if store == nil {
		return
	}
	if err := store.Delete(conversationID); err != nil {
		logger.Warn("Deleting conversation %s failed: %v", conversationID, err)
	}
}

// Confidence multiplies routing and evidence confidence. A conversational
// turn without evidence is scored on routing alone, since it needs none.
func (m *ContextManager) Confidence(classification domain.ClassifiedQuery, evidence domain.EvidenceSet) float64 {
	cls := domain.ClampConfidence(classification.Confidence)
	if classification.Category == domain.CategoryConversational && evidence.IsEmpty() {
		return cls
	}
	return domain.ClampConfidence(cls * domain.ClampConfidence(evidence.Confidence))
}

// truncate shortens s to at most n runes, marking the cut with "...".
// n <= 0 disables truncation.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:max(n-3, 0)]) + "..."
}
