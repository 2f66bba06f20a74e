package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

func TestConversationStore_LoadUnknown(t *testing.T) {
	s := NewConversationStore(t.TempDir())

	turns, err := s.Load("missing")

	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestConversationStore_SaveLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "conversations")
	s := NewConversationStore(dir)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	turns := []domain.ConversationTurn{
		{Query: "Apple revenue 2023", Category: domain.CategoryDirectLookup, EvidenceSummary: "3 passages", Timestamp: at},
		{Query: "and 2022?", Category: domain.CategoryConversational, Timestamp: at.Add(time.Minute)},
	}

	require.NoError(t, s.Save("c-1", turns))
	got, err := s.Load("c-1")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Apple revenue 2023", got[0].Query)
	assert.Equal(t, domain.CategoryConversational, got[1].Category)
	assert.True(t, at.Equal(got[0].Timestamp))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestConversationStore_SaveReplaces(t *testing.T) {
	s := NewConversationStore(t.TempDir())
	require.NoError(t, s.Save("c-1", []domain.ConversationTurn{{Query: "a"}, {Query: "b"}}))
	require.NoError(t, s.Save("c-1", []domain.ConversationTurn{{Query: "c"}}))

	got, err := s.Load("c-1")

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].Query)
}

func TestConversationStore_Delete(t *testing.T) {
	s := NewConversationStore(t.TempDir())
	require.NoError(t, s.Save("c-1", []domain.ConversationTurn{{Query: "a"}}))

	require.NoError(t, s.Delete("c-1"))
	require.NoError(t, s.Delete("c-1"))

	got, err := s.Load("c-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestConversationStore_InvalidID(t *testing.T) {
	s := NewConversationStore(t.TempDir())

	for _, id := range []string{"", "../etc/passwd", "a/b", ".hidden"} {
		t.Run(id, func(t *testing.T) {
			_, err := s.Load(id)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.ErrorIs(t, s.Save(id, nil), domain.ErrInvalidInput)
			assert.ErrorIs(t, s.Delete(id), domain.ErrInvalidInput)
		})
	}
}

func TestConversationStore_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c-1.json"), []byte("{not json"), 0600))

	_, err := NewConversationStore(dir).Load("c-1")

	assert.Error(t, err)
}
