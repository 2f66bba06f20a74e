package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads prompt templates from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to
// domain.DefaultPrompts.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	defaults  map[string]string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.filings/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := resolveDir("")
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		defaults:  domain.DefaultPrompts(),
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to the built-in default if the file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := s.defaults[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		if def, ok := s.defaults[name]; ok {
			return def, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, domain.ErrNotFound)
	}

	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range s.defaults {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk. Empty files count as missing.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", os.ErrNotExist
	}
	return prompt, nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# Filings Prompts

This directory contains the prompt templates used to classify questions and
compose answers from filing excerpts.

## Files

- ` + "`classify.txt`" + ` - Routes a question to one of the four categories
- ` + "`answer_direct.txt`" + ` - Answers a single-company lookup
- ` + "`answer_comparison.txt`" + ` - Compares companies side by side
- ` + "`answer_trend.txt`" + ` - Describes change across periods
- ` + "`answer_conversational.txt`" + ` - Replies to general conversation

## Customisation

Edit any file to change the wording. Changes take effect on the next command,
or on the next request after the server reloads prompts.

## Format Placeholders

- ` + "`classify.txt`" + ` takes one ` + "`%s`" + `: the question.
- ` + "`answer_*.txt`" + ` take two ` + "`%s`" + `: the question, then the excerpts.

Keep the placeholders in place. The classifier expects a JSON reply with a
"category" field, and answers are read as JSON with "answer", "sources" and
"confidence".
`
	return os.WriteFile(path, []byte(content), 0600)
}
