// Package filesystem discovers filing documents in a local directory and
// watches it for new or rewritten files.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/filings-cli/internal/logger"
)

// DefaultDebounce is how long a file must stay quiet before it is reported.
const DefaultDebounce = 500 * time.Millisecond

// ChangeType describes what happened to a file.
type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
)

// Change is one settled file event.
type Change struct {
	Type ChangeType
	Path string
}

// ErrClosed is returned when a closed watcher is used.
var ErrClosed = errors.New("watcher closed")

// Watcher finds filing documents under a root directory.
type Watcher struct {
	root     string
	exts     map[string]bool
	debounce time.Duration

	mu     sync.Mutex
	closed bool
	fsw    *fsnotify.Watcher
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a change is reported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a watcher for root. Only files with one of extensions are
// reported; no extensions means every file.
func New(root string, extensions []string, opts ...Option) *Watcher {
	w := &Watcher{
		root:     root,
		exts:     make(map[string]bool, len(extensions)),
		debounce: DefaultDebounce,
	}
	for _, ext := range extensions {
		w.exts[strings.ToLower(ext)] = true
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Root returns the watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// Existing lists the supported files under root, recursively and sorted.
// Hidden files and directories are skipped.
func (w *Watcher) Existing() ([]string, error) {
	if err := w.checkRoot(); err != nil {
		return nil, err
	}

	var paths []string
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == w.root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && w.supported(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", w.root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Watch reports files created or rewritten directly in root once they have
// been quiet for the debounce period. The channel closes when ctx is done.
func (w *Watcher) Watch(ctx context.Context) (<-chan Change, error) {
	if err := w.checkRoot(); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, ErrClosed
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(w.root); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", w.root, err)
	}
	w.fsw = fsw

	changes := make(chan Change)
	go w.loop(ctx, fsw, changes)
	return changes, nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, changes chan<- Change) {
	defer close(changes)
	defer fsw.Close()

	pending := make(map[string]*pendingChange)
	ticker := time.NewTicker(max(w.debounce/4, time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			change := w.handleFsEvent(event)
			if change == nil {
				continue
			}
			if p, ok := pending[change.Path]; ok {
				// A create followed by writes is still a create.
				p.last = time.Now()
				continue
			}
			pending[change.Path] = &pendingChange{change: *change, last: time.Now()}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("Watch %s: %v", w.root, err)

		case now := <-ticker.C:
			for path, p := range pending {
				if now.Sub(p.last) < w.debounce {
					continue
				}
				delete(pending, path)
				select {
				case changes <- p.change:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

type pendingChange struct {
	change Change
	last   time.Time
}

// handleFsEvent maps a raw event to a change, or nil when it is not reported.
func (w *Watcher) handleFsEvent(event fsnotify.Event) *Change {
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil || isHidden(rel) || !w.supported(event.Name) {
		return nil
	}

	var typ ChangeType
	switch {
	case event.Has(fsnotify.Create):
		typ = ChangeCreated
	case event.Has(fsnotify.Write):
		typ = ChangeUpdated
	default:
		return nil
	}

	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return nil
	}
	return &Change{Type: typ, Path: event.Name}
}

// Close stops any running watch. Later calls to Watch fail.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}

func (w *Watcher) checkRoot() error {
	info, err := os.Stat(w.root)
	if err != nil {
		return fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path error: %s is not a directory", w.root)
	}
	return nil
}

func (w *Watcher) supported(path string) bool {
	if len(w.exts) == 0 {
		return true
	}
	return w.exts[strings.ToLower(filepath.Ext(path))]
}

// isHidden reports whether any element of path starts with a dot.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && strings.HasPrefix(part, ".") && part != ".." {
			return true
		}
	}
	return false
}
