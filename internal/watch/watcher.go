// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Watcher watches a plugins root. Run must be called exactly once.
type Watcher struct {
	cfg     Config
	root    string
	fsw     *fsnotify.Watcher
	match   *matcher
	logger  *log.Logger
	started atomic.Bool
}

// New validates cfg and registers the plugins root and its immediate
// subdirectories with fsnotify.
func New(cfg Config) (*Watcher, error) {
	if cfg.Root == "" {
		return nil, errors.New("watch: root is required")
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve root: %w", err)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	m, err := newMatcher(cfg.Patterns, cfg.Ignore)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{cfg: cfg, root: root, fsw: fsw, match: m, logger: logger}
	if err := w.addTree(); err != nil {
		fsw.Close() //nolint:errcheck // best-effort cleanup
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is cancelled. It returns nil on
// cancellation and an error when fsnotify fails in a way it cannot recover
// from.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: Run called more than once")
	}

	deb := newDebouncer(w.cfg.Debounce,
		func(batch []string) {
			if ctx.Err() != nil || w.cfg.OnChange == nil {
				return
			}
			w.logger.Debug("plugins changed", "paths", batch)
			if err := w.cfg.OnChange(ctx, batch); err != nil {
				w.logger.Error("watch callback failed", "err", err)
			}
		},
		func() { w.logger.Warn("previous run still in progress; retrying after debounce") },
	)

	defer func() {
		deb.stop()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("failed to close fsnotify watcher", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if rel, report := w.classify(evt); report {
				deb.add(rel)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "err", err)
		}
	}
}

// classify returns the root-relative path of evt and whether it is reported.
// A plugin directory that appears is added to the watch list.
func (w *Watcher) classify(evt fsnotify.Event) (string, bool) {
	rel, err := filepath.Rel(w.root, evt.Name)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	if w.match.ignored(rel) {
		return "", false
	}

	if depth(rel) == 1 {
		if evt.Has(fsnotify.Create) && w.addDir(evt.Name) {
			return rel, true
		}
		// Remove and Rename arrive after the entry is gone, so it cannot be
		// told apart from a file; report it either way.
		if evt.Has(fsnotify.Remove) || evt.Has(fsnotify.Rename) {
			return rel, true
		}
	}

	if evt.Op == fsnotify.Chmod {
		return "", false
	}
	return rel, w.match.selected(rel)
}

// addTree registers the root and each non-ignored subdirectory.
func (w *Watcher) addTree() error {
	if err := w.fsw.Add(w.root); err != nil {
		return fmt.Errorf("watch: add %s: %w", w.root, err)
	}
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return fmt.Errorf("watch: list %s: %w", w.root, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			w.addDir(filepath.Join(w.root, e.Name()))
		}
	}
	return nil
}

// addDir watches path if it is a non-ignored directory and reports whether
// it was added.
func (w *Watcher) addDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil || w.match.ignored(rel) {
		return false
	}
	if err := w.fsw.Add(path); err != nil {
		w.logger.Warn("failed to watch plugin directory", "path", path, "err", err)
		return false
	}
	return true
}

func depth(rel string) int {
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}
