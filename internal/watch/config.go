// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
)

// DefaultDebounce is the quiet period before a batch is delivered. Editors
// often write a temp file and rename it; both events land in one batch.
const DefaultDebounce = 300 * time.Millisecond

var (
	// defaultPatterns select manifest files below the plugins root.
	defaultPatterns = []string{"*/plugin.json"}

	// defaultIgnores are never reported: hidden entries, editor swap and
	// backup files, and registry temp files.
	defaultIgnores = []string{
		".*",
		"*/.*",
		"**/*.swp",
		"**/*.swo",
		"**/*~",
		"**/*.tmp",
	}
)

// Config holds the parameters for a Watcher.
type Config struct {
	// Root is the plugins root.
	Root string

	// Patterns are doublestar globs, relative to Root, selecting the files
	// whose changes are reported. Empty selects */plugin.json. Plugin
	// directories being created, removed or renamed are always reported.
	Patterns []string

	// Ignore adds globs to the built-in ignore list.
	Ignore []string

	// Debounce is the quiet period; zero or negative means DefaultDebounce.
	Debounce time.Duration

	// OnChange receives the changed paths, relative to Root and sorted.
	OnChange func(ctx context.Context, changed []string) error

	// Logger receives watcher diagnostics; nil discards them.
	Logger *log.Logger
}

// matcher decides which relative paths are reported.
type matcher struct {
	patterns []string
	ignores  []string
}

func newMatcher(patterns, ignore []string) (*matcher, error) {
	if len(patterns) == 0 {
		patterns = defaultPatterns
	}
	for _, set := range []struct {
		label    string
		patterns []string
	}{{"watch", patterns}, {"ignore", ignore}} {
		for _, pat := range set.patterns {
			if !doublestar.ValidatePattern(pat) {
				return nil, fmt.Errorf("watch: invalid %s pattern %q: %w", set.label, pat, doublestar.ErrBadPattern)
			}
		}
	}

	ignores := make([]string, 0, len(defaultIgnores)+len(ignore))
	ignores = append(ignores, defaultIgnores...)
	ignores = append(ignores, ignore...)

	return &matcher{patterns: patterns, ignores: ignores}, nil
}

func (m *matcher) ignored(rel string) bool {
	return matchAny(m.ignores, filepath.ToSlash(rel))
}

func (m *matcher) selected(rel string) bool {
	return matchAny(m.patterns, filepath.ToSlash(rel))
}

func matchAny(patterns []string, path string) bool {
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, path); err == nil && ok {
			return true
		}
	}
	return false
}
