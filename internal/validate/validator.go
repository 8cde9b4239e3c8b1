// SPDX-License-Identifier: MPL-2.0

package validate

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/stumpfworks/nasapps/internal/discovery"
	"github.com/stumpfworks/nasapps/pkg/manifest"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// Validator checks every plugin directory under a plugins root.
type Validator struct {
	fs     afero.Fs
	logger *log.Logger
}

// New creates a Validator reading from fsys. A nil logger discards output.
func New(fsys afero.Fs, logger *log.Logger) *Validator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Validator{fs: fsys, logger: logger}
}

// Run validates root with a discarding logger.
func Run(ctx context.Context, fsys afero.Fs, root string) (*Report, error) {
	return New(fsys, nil).Run(ctx, root)
}

// Run validates every immediate subdirectory of root. The returned error is
// reserved for an unreadable root or cancellation; manifest problems are
// findings in the report.
func (v *Validator) Run(ctx context.Context, root string) (*Report, error) {
	dirs, err := discovery.Plugins(v.fs, root)
	if err != nil {
		return nil, err
	}

	report := &Report{Plugins: make([]PluginReport, 0, len(dirs))}
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("validation canceled: %w", err)
		}
		report.Plugins = append(report.Plugins, v.check(dir))
	}

	v.logger.Debug("validation finished", "plugins", report.PluginCount(),
		"errors", report.ErrorCount(), "warnings", report.WarningCount())

	return report, nil
}

func (v *Validator) check(dir discovery.PluginDir) PluginReport {
	pr := newPluginReport(dir)

	m, err := manifest.Load(v.fs, dir.Path)
	if err != nil {
		pr.Add(loadDiagnostic(err).WithPath(pr.Path).WithCause(err))
		pr.MissingManifest = errors.Is(err, manifest.ErrManifestNotFound)
		v.logger.Debug("manifest not loaded", "slug", dir.Slug, "err", err)
		return pr
	}

	for _, d := range Manifest(m) {
		pr.Add(d.WithPath(pr.Path))
	}
	return pr
}

// loadDiagnostic classifies a manifest.Load failure.
func loadDiagnostic(err error) discovery.Diagnostic {
	var malformed *manifest.MalformedManifestError
	switch {
	case errors.Is(err, manifest.ErrManifestNotFound):
		return discovery.Warningf(discovery.CodeMissingManifest, "Missing %s", manifest.FileName)
	case errors.As(err, &malformed):
		return discovery.Errorf(discovery.CodeMalformedManifest, "Invalid JSON: %v", malformed.Cause)
	default:
		return discovery.Errorf(discovery.CodeUnreadableManifest, "Error reading file: %v", err)
	}
}
