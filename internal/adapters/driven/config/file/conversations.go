package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driven"
)

// Ensure ConversationStore implements the interface.
var _ driven.ConversationStore = (*ConversationStore)(nil)

// validConversationID limits identifiers to names that are safe as file names.
var validConversationID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ConversationStore keeps conversation turns as JSON files, one per conversation.
type ConversationStore struct {
	mu  sync.Mutex
	dir string
}

// NewConversationStore creates a store writing under dir.
// The directory is created on first save.
func NewConversationStore(dir string) *ConversationStore {
	return &ConversationStore{dir: dir}
}

// Dir returns the directory holding conversation files.
func (s *ConversationStore) Dir() string {
	return s.dir
}

// Load returns the stored turns of a conversation.
// An unknown conversation has no turns.
func (s *ConversationStore) Load(id string) ([]domain.ConversationTurn, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read conversation %s: %w", id, err)
	}

	var turns []domain.ConversationTurn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("parse conversation %s: %w", id, err)
	}
	return turns, nil
}

// Save replaces the stored turns of a conversation.
// The file is written to a temporary name and renamed into place.
func (s *ConversationStore) Save(id string, turns []domain.ConversationTurn) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	if turns == nil {
		turns = []domain.ConversationTurn{}
	}
	data, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fmt.Errorf("encode conversation %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create conversation directory: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, "."+id+"-*.tmp")
	if err != nil {
		return fmt.Errorf("write conversation %s: %w", id, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write conversation %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write conversation %s: %w", id, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write conversation %s: %w", id, err)
	}
	return nil
}

// Delete removes a conversation. Deleting an unknown conversation is not an error.
func (s *ConversationStore) Delete(id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete conversation %s: %w", id, err)
	}
	return nil
}

func (s *ConversationStore) path(id string) (string, error) {
	if !validConversationID.MatchString(id) {
		return "", fmt.Errorf("conversation id %q: %w", id, domain.ErrInvalidInput)
	}
	return filepath.Join(s.dir, id+".json"), nil
}
