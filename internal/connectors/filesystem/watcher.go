// Package filesystem watches a drop folder for documents to ingest.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/logger"
)

// DefaultSettle is how long a file must stay unchanged before it is reported.
const DefaultSettle = 750 * time.Millisecond

// ChangeType describes what happened to a watched file.
type ChangeType string

// Change types.
const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
)

// Change is a supported document that appeared or changed in the folder.
type Change struct {
	Type     ChangeType
	Path     string
	FileType domain.FileType
}

// Watcher reports supported documents written to a directory.
// Subdirectories and hidden files are ignored.
type Watcher struct {
	root   string
	settle time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettle sets the quiet period before a change is reported.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.settle = d
		}
	}
}

// New creates a watcher for root.
func New(root string, opts ...Option) *Watcher {
	w := &Watcher{root: root, settle: DefaultSettle}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Root returns the watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// Scan returns the supported documents already present in the directory,
// sorted by name.
func (w *Watcher) Scan() ([]string, error) {
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || isHidden(e.Name()) {
			continue
		}
		if domain.DetectFileType(e.Name()) == domain.FileTypeOther {
			continue
		}
		paths = append(paths, filepath.Join(w.root, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Watch starts watching and returns a channel of changes. The channel is
// closed when ctx is cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan Change, error) {
	info, err := os.Stat(w.root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: %s is not a directory", w.root)
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil, errors.New("watcher is closed")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(w.root); err != nil {
		_ = fw.Close()
		w.mu.Unlock()
		return nil, fmt.Errorf("watch %s: %w", w.root, err)
	}
	w.watcher = fw
	w.mu.Unlock()

	changes := make(chan Change)
	go w.loop(ctx, fw, changes)
	return changes, nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, changes chan<- Change) {
	defer close(changes)
	defer func() { _ = fw.Close() }()

	// Pending changes wait for the settle period; a newer event for the
	// same path restarts the wait but keeps the first change type.
	pending := make(map[string]Change)
	deadlines := make(map[string]time.Time)
	ticker := time.NewTicker(w.tick())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			change := w.handleFsEvent(event)
			if change == nil {
				continue
			}
			if prev, seen := pending[change.Path]; seen {
				change.Type = prev.Type
			}
			pending[change.Path] = *change
			deadlines[change.Path] = time.Now().Add(w.settle)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error on %s: %v", w.root, err)

		case now := <-ticker.C:
			for _, path := range dueChanges(deadlines, now) {
				change := pending[path]
				delete(pending, path)
				delete(deadlines, path)
				select {
				case changes <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// handleFsEvent converts a filesystem event into a change, or nil when the
// event is not relevant.
func (w *Watcher) handleFsEvent(event fsnotify.Event) *Change {
	name := filepath.Base(event.Name)
	if isHidden(name) {
		return nil
	}

	var changeType ChangeType
	switch {
	case event.Has(fsnotify.Create):
		changeType = ChangeCreated
	case event.Has(fsnotify.Write):
		changeType = ChangeUpdated
	default:
		return nil
	}

	fileType := domain.DetectFileType(name)
	if fileType == domain.FileTypeOther {
		return nil
	}
	if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
		return nil
	}

	return &Change{Type: changeType, Path: event.Name, FileType: fileType}
}

// Close stops any active watch. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

func (w *Watcher) tick() time.Duration {
	t := w.settle / 3
	if t < 10*time.Millisecond {
		t = 10 * time.Millisecond
	}
	return t
}

// dueChanges returns the paths whose deadline has passed, sorted.
func dueChanges(deadlines map[string]time.Time, now time.Time) []string {
	var due []string
	for path, deadline := range deadlines {
		if !now.Before(deadline) {
			due = append(due, path)
		}
	}
	sort.Strings(due)
	return due
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$")
}
