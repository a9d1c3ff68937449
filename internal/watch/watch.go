// Package watch reports edits to a route package after they settle.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Config.Debounce is zero.
const DefaultDebounce = 200 * time.Millisecond

// Config configures a Watcher.
type Config struct {
	// Dir is the directory to watch. Subdirectories are not watched.
	Dir string

	// Ignore lists file names that never trigger a change, typically the
	// generated output.
	Ignore []string

	// Debounce is the quiet period after the last event.
	Debounce time.Duration

	Logger *slog.Logger
}

// Watcher batches writes to Go source files in one directory.
type Watcher struct {
	config   Config
	fs       *fsnotify.Watcher
	mu       sync.Mutex
	onChange func([]string)
	stopOnce sync.Once
	stopCh   chan struct{}
}

// New creates a watcher for cfg.Dir. It does not start watching.
func New(cfg Config) (*Watcher, error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	return &Watcher{config: cfg, fs: fsw, stopCh: make(chan struct{})}, nil
}

// OnChange sets the callback. It receives the sorted paths that changed
// during one burst of edits and runs on the watcher goroutine.
func (w *Watcher) OnChange(fn func(paths []string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start watches until ctx is done or Stop is called. It returns ctx.Err()
// when cancelled and nil after Stop.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.fs.Add(w.config.Dir); err != nil {
		w.fs.Close()
		return fmt.Errorf("watching directory %s: %w", w.config.Dir, err)
	}
	defer w.fs.Close()

	timer := time.NewTimer(w.config.Debounce)
	timer.Stop()
	defer timer.Stop()

	pending := make(map[string]struct{})
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-w.stopCh:
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			pending[event.Name] = struct{}{}
			timer.Reset(w.config.Debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)
			w.fire(paths)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.config.Logger.Warn("watch error", "dir", w.config.Dir, "error", err)
		}
	}
}

// Stop ends a running Start. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func (w *Watcher) fire(paths []string) {
	w.mu.Lock()
	fn := w.onChange
	w.mu.Unlock()
	if fn == nil {
		return
	}
	w.config.Logger.Debug("route sources changed", "count", len(paths))
	fn(paths)
}

// relevant reports whether event touches a non-test Go source that is not
// ignored.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Base(event.Name)
	if filepath.Ext(name) != ".go" || strings.HasSuffix(name, "_test.go") {
		return false
	}
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "#") {
		return false
	}
	for _, ignored := range w.config.Ignore {
		if name == ignored {
			return false
		}
	}
	return true
}
