package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var filingExts = []string{".txt", ".htm", ".html"}

func TestNew(t *testing.T) {
	w := New("/tmp/filings", []string{".TXT"})

	require.NotNil(t, w)
	assert.Equal(t, "/tmp/filings", w.Root())
	assert.Equal(t, DefaultDebounce, w.debounce)
	assert.True(t, w.supported("AAPL_10-K_FY2023.txt"))
	assert.False(t, w.supported("notes.pdf"))

	assert.True(t, New("/tmp", nil).supported("anything.bin"))
	assert.Equal(t, 5*time.Millisecond, New("/tmp", nil, WithDebounce(5*time.Millisecond)).debounce)
}

func TestWatcher_Existing(t *testing.T) {
	t.Run("lists supported files sorted", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "2023"), 0755))
		require.NoError(t, os.MkdirAll(filepath.Join(dir, ".cache"), 0755))
		for _, name := range []string{
			"MSFT_10-K_FY2023.htm",
			"2023/AAPL_10-Q_2023-Q2.txt",
			".cache/AAPL_10-K_FY2022.txt",
			".draft.txt",
			"cover.pdf",
		} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
		}

		paths, err := New(dir, filingExts).Existing()

		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "2023", "AAPL_10-Q_2023-Q2.txt"),
			filepath.Join(dir, "MSFT_10-K_FY2023.htm"),
		}, paths)
	})

	t.Run("missing root", func(t *testing.T) {
		_, err := New("/non/existent/path", filingExts).Existing()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "root path error")
	})

	t.Run("root is a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "f.txt")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

		_, err := New(path, filingExts).Existing()
		assert.ErrorContains(t, err, "not a directory")
	})
}

func TestWatcher_Watch(t *testing.T) {
	t.Run("reports a new file once", func(t *testing.T) {
		dir := t.TempDir()
		w := New(dir, filingExts, WithDebounce(20*time.Millisecond))
		defer w.Close()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := w.Watch(ctx)
		require.NoError(t, err)

		path := filepath.Join(dir, "NVDA_10-K_FY2024.txt")
		go func() {
			time.Sleep(50 * time.Millisecond)
			f, err := os.Create(path)
			if err != nil {
				return
			}
			f.WriteString("ITEM 7. MANAGEMENT'S DISCUSSION")
			f.WriteString(" revenue grew")
			f.Close()
		}()

		select {
		case change := <-changes:
			assert.Equal(t, ChangeCreated, change.Type)
			assert.Equal(t, path, change.Path)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for file change event")
		}

		select {
		case change := <-changes:
			t.Fatalf("unexpected second change: %+v", change)
		case <-time.After(150 * time.Millisecond):
		}
	})

	t.Run("reports a rewritten file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "AAPL_10-K_FY2023.txt")
		require.NoError(t, os.WriteFile(path, []byte("initial"), 0644))

		w := New(dir, filingExts, WithDebounce(20*time.Millisecond))
		defer w.Close()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := w.Watch(ctx)
		require.NoError(t, err)

		go func() {
			time.Sleep(50 * time.Millisecond)
			os.WriteFile(path, []byte("modified"), 0644)
		}()

		select {
		case change := <-changes:
			assert.Equal(t, ChangeUpdated, change.Type)
			assert.Equal(t, path, change.Path)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for file modification event")
		}
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		changes, err := New("/non/existent/path", filingExts).Watch(context.Background())

		assert.Error(t, err)
		assert.Nil(t, changes)
	})

	t.Run("closes channel when context is cancelled", func(t *testing.T) {
		w := New(t.TempDir(), filingExts)
		defer w.Close()
		ctx, cancel := context.WithCancel(context.Background())

		changes, err := w.Watch(ctx)
		require.NoError(t, err)
		cancel()

		select {
		case _, ok := <-changes:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("channel did not close after context cancellation")
		}
	})

	t.Run("returns error when closed", func(t *testing.T) {
		w := New(t.TempDir(), filingExts)
		require.NoError(t, w.Close())
		require.NoError(t, w.Close())

		changes, err := w.Watch(context.Background())

		assert.ErrorIs(t, err, ErrClosed)
		assert.Nil(t, changes)
	})
}

func TestHandleFsEvent(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "AAPL_10-K_FY2023.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	sub := filepath.Join(dir, "sub.txt")
	require.NoError(t, os.Mkdir(sub, 0755))
	hidden := filepath.Join(dir, ".partial.txt")
	require.NoError(t, os.WriteFile(hidden, []byte("x"), 0644))
	pdf := filepath.Join(dir, "exhibit.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("x"), 0644))

	tests := []struct {
		name string
		path string
		op   fsnotify.Op
		want ChangeType
	}{
		{name: "create", path: file, op: fsnotify.Create, want: ChangeCreated},
		{name: "write", path: file, op: fsnotify.Write, want: ChangeUpdated},
		{name: "remove ignored", path: filepath.Join(dir, "gone.txt"), op: fsnotify.Remove},
		{name: "rename ignored", path: filepath.Join(dir, "gone.txt"), op: fsnotify.Rename},
		{name: "chmod ignored", path: file, op: fsnotify.Chmod},
		{name: "directory ignored", path: sub, op: fsnotify.Create},
		{name: "hidden ignored", path: hidden, op: fsnotify.Create},
		{name: "unsupported extension ignored", path: pdf, op: fsnotify.Create},
	}

	w := New(dir, filingExts)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change := w.handleFsEvent(fsnotify.Event{Name: tt.path, Op: tt.op})

			if tt.want == "" {
				assert.Nil(t, change)
				return
			}
			require.NotNil(t, change)
			assert.Equal(t, tt.want, change.Type)
			assert.Equal(t, tt.path, change.Path)
		})
	}
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{".hidden", true},
		{"path/to/.hidden", true},
		{"dir/.git/config", true},
		{"AAPL_10-K_FY2023.txt", false},
		{"2023/AAPL_10-K_FY2023.txt", false},
		{"../outside.txt", false},
		{".", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, isHidden(tt.path))
		})
	}
}
