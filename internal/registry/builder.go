// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/stumpfworks/nasapps/internal/discovery"
	"github.com/stumpfworks/nasapps/pkg/manifest"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

const (
	// OutcomeLoaded means the manifest was loaded and produced an entry.
	OutcomeLoaded OutcomeKind = "loaded"
	// OutcomeSkipped means the directory has no plugin.json.
	OutcomeSkipped OutcomeKind = "skipped"
	// OutcomeFailed means plugin.json exists but could not be loaded.
	OutcomeFailed OutcomeKind = "failed"
)

type (
	// Clock supplies the generation timestamp.
	Clock interface {
		Now() time.Time
	}

	// Options configures a Builder.
	Options struct {
		// PluginsDir is the plugins root.
		PluginsDir string
		// RepositoryURL is the base URL entries are templated from.
		RepositoryURL string
		// CatalogVersion is written to the document's version field.
		// Empty means CatalogVersion.
		CatalogVersion string
		// Clock defaults to the system clock.
		Clock Clock
		// Logger defaults to a discarding logger.
		Logger *log.Logger
	}

	// OutcomeKind classifies what happened to one plugin directory.
	OutcomeKind string

	// Outcome is the per-plugin result of a generation pass.
	Outcome struct {
		Kind OutcomeKind
		Slug manifest.Slug
		// ManifestPath is the plugin.json location.
		ManifestPath string
		// Entry is set for OutcomeLoaded.
		Entry *Entry
		// Diagnostic is set for OutcomeFailed.
		Diagnostic *discovery.Diagnostic
	}

	// Result is a completed generation pass.
	Result struct {
		// Document is the catalog, entries sorted.
		Document *Document
		// Outcomes holds one value per plugin directory, in slug order.
		Outcomes []Outcome
	}

	// Builder generates registry documents.
	Builder struct {
		fs     afero.Fs
		opts   Options
		clock  Clock
		logger *log.Logger
	}

	systemClock struct{}
)

// Now returns the current time.
func (systemClock) Now() time.Time { return time.Now() }

// NewBuilder creates a Builder reading manifests from fsys.
func NewBuilder(fsys afero.Fs, opts Options) *Builder {
	if opts.CatalogVersion == "" {
		opts.CatalogVersion = CatalogVersion
	}
	clock := opts.Clock
	if clock == nil {
		clock = systemClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Builder{fs: fsys, opts: opts, clock: clock, logger: logger}
}

// Generate scans the plugins root and builds the catalog. Individual manifest
// failures are recorded as OutcomeFailed and never abort the pass; the error
// return is reserved for an unreadable plugins root or cancellation.
func (b *Builder) Generate(ctx context.Context) (*Result, error) {
	dirs, err := discovery.Plugins(b.fs, b.opts.PluginsDir)
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(dirs))
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("registry generation canceled: %w", err)
		}
		outcomes = append(outcomes, b.load(dir))
	}

	entries := Entries(outcomes)
	doc := NewDocument(b.opts.CatalogVersion, b.opts.RepositoryURL, b.clock.Now(), entries)

	b.logger.Debug("registry generated", "plugins", len(doc.Plugins), "failed", len(Diagnostics(outcomes)))

	return &Result{Document: doc, Outcomes: outcomes}, nil
}

func (b *Builder) load(dir discovery.PluginDir) Outcome {
	out := Outcome{Slug: dir.Slug, ManifestPath: dir.ManifestPath()}

	m, err := manifest.Load(b.fs, dir.Path)
	switch {
	case errors.Is(err, manifest.ErrManifestNotFound):
		b.logger.Debug("skipping directory without manifest", "slug", dir.Slug)
		out.Kind = OutcomeSkipped
	case err != nil:
		code := discovery.CodeUnreadableManifest
		if errors.Is(err, manifest.ErrMalformedManifest) {
			code = discovery.CodeMalformedManifest
		}
		diag := discovery.Errorf(code, "%v", err).WithPath(out.ManifestPath).WithCause(err)
		b.logger.Warn("failed to load manifest", "slug", dir.Slug, "err", err)
		out.Kind = OutcomeFailed
		out.Diagnostic = &diag
	default:
		entry := NewEntry(b.opts.RepositoryURL, dir.Slug, m)
		b.logger.Debug("loaded manifest", "slug", dir.Slug, "name", entry.Name, "version", entry.Version)
		out.Kind = OutcomeLoaded
		out.Entry = &entry
	}

	return out
}

// Entries folds the loaded outcomes into catalog entries.
func Entries(outcomes []Outcome) []Entry {
	entries := make([]Entry, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Kind == OutcomeLoaded && o.Entry != nil {
			entries = append(entries, *o.Entry)
		}
	}
	return entries
}

// Diagnostics folds the failed outcomes into diagnostics.
func Diagnostics(outcomes []Outcome) []discovery.Diagnostic {
	var diags []discovery.Diagnostic
	for _, o := range outcomes {
		if o.Kind == OutcomeFailed && o.Diagnostic != nil {
			diags = append(diags, *o.Diagnostic)
		}
	}
	return diags
}

// ManifestCount returns how many directories had a plugin.json, loadable or not.
func (r *Result) ManifestCount() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Kind != OutcomeSkipped {
			n++
		}
	}
	return n
}

// Diagnostics returns the diagnostics of failed plugins.
func (r *Result) Diagnostics() []discovery.Diagnostic { return Diagnostics(r.Outcomes) }
