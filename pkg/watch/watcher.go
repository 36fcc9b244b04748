// Package watch re-runs an analysis whenever component sources change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 200 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Debounce groups bursts of events into one change notification.
	Debounce time.Duration
	// Extensions lists the file suffixes that trigger a change.
	Extensions []string
	// IgnoreDirs are directory base names that are never watched.
	IgnoreDirs []string
}

// DefaultOptions watches .js and .jsx files and skips VCS and dependency
// directories.
func DefaultOptions() Options {
	return Options{
		Debounce:   defaultDebounce,
		Extensions: []string{".js", ".jsx"},
		IgnoreDirs: []string{".git", "node_modules"},
	}
}

// ChangeFunc receives the absolute paths that changed since the last call.
type ChangeFunc func(ctx context.Context, changed []string)

// Watcher watches a directory tree and reports debounced batches of
// changed component files.
//
// **Usage:**
//
//	w, err := watch.New(watch.DefaultOptions(), logger)
//	if err != nil {
//	    return err
//	}
//	err = w.Run(ctx, root, func(ctx context.Context, changed []string) {
//	    // re-run the analysis
//	})
type Watcher struct {
	watcher *fsnotify.Watcher
	opts    Options
	log     *slog.Logger

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	fire    chan struct{}
}

// New creates a watcher. Call Run to start it.
func New(opts Options, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultOptions().Extensions
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		watcher: fw,
		opts:    opts,
		log:     logger,
		pending: make(map[string]struct{}),
		fire:    make(chan struct{}, 1),
	}, nil
}

// Run watches root until ctx is done, calling onChange with each debounced
// batch of changed files. onChange runs on the Run goroutine, so batches
// never overlap.
func (w *Watcher) Run(ctx context.Context, root string, onChange ChangeFunc) error {
	defer w.close()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	if err := w.addTree(absRoot); err != nil {
		return err
	}
	w.log.Info("file watcher started", "root", absRoot)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("file watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error("file watcher error", "error", err)

		case <-w.fire:
			if changed := w.drain(); len(changed) > 0 {
				onChange(ctx, changed)
			}
		}
	}
}

// addTree watches root and every directory below it.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("failed to watch %s: %w", root, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.ignoredDir(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			if path == root {
				return fmt.Errorf("failed to watch %s: %w", root, err)
			}
			w.log.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	w.log.Debug("file event", "op", event.Op.String(), "path", path)

	// New directories must be watched too; files created inside them
	// before the watch is added are picked up by the walk.
	if event.Has(fsnotify.Create) && !w.ignoredDir(path) {
		if isDir(path) {
			if err := w.addTree(path); err != nil {
				w.log.Warn("failed to watch new directory", "path", path, "error", err)
			}
			w.schedule(path)
			return
		}
	}

	if !w.relevant(path) {
		return
	}
	if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.schedule(path)
	}
}

// schedule records a change and restarts the debounce timer.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, func() {
		select {
		case w.fire <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) drain() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	changed := make([]string, 0, len(w.pending))
	for p := range w.pending {
		changed = append(changed, p)
	}
	w.pending = make(map[string]struct{})
	return changed
}

func (w *Watcher) relevant(path string) bool {
	for _, ext := range w.opts.Extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func (w *Watcher) ignoredDir(path string) bool {
	base := filepath.Base(path)
	for _, dir := range w.opts.IgnoreDirs {
		if base == dir {
			return true
		}
	}
	return false
}

func (w *Watcher) close() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	if err := w.watcher.Close(); err != nil {
		w.log.Debug("closing watcher", "error", err)
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
