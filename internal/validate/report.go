// SPDX-License-Identifier: MPL-2.0

package validate

import (
	"github.com/stumpfworks/nasapps/internal/discovery"
	"github.com/stumpfworks/nasapps/pkg/manifest"
)

type (
	// PluginReport holds the findings for one plugin directory.
	PluginReport struct {
		Slug manifest.Slug `json:"slug" yaml:"slug"`
		// Path is the plugin.json location.
		Path string `json:"path" yaml:"path"`
		// MissingManifest is set when the directory has no plugin.json.
		MissingManifest bool                   `json:"missing_manifest" yaml:"missing_manifest"`
		Errors          []discovery.Diagnostic `json:"errors" yaml:"errors"`
		Warnings        []discovery.Diagnostic `json:"warnings" yaml:"warnings"`
	}

	// Report is the outcome of one validation run. It is built fresh per run.
	Report struct {
		Plugins []PluginReport `json:"plugins" yaml:"plugins"`
	}

	// Summary is the aggregate view of a Report.
	Summary struct {
		Plugins  int  `json:"plugins" yaml:"plugins"`
		Errors   int  `json:"errors" yaml:"errors"`
		Warnings int  `json:"warnings" yaml:"warnings"`
		Passed   bool `json:"passed" yaml:"passed"`
	}

	// Export is the machine-readable form of a Report.
	Export struct {
		Summary Summary        `json:"summary" yaml:"summary"`
		Plugins []PluginReport `json:"plugins" yaml:"plugins"`
	}
)

// newPluginReport creates an empty report for one directory.
func newPluginReport(dir discovery.PluginDir) PluginReport {
	return PluginReport{
		Slug:     dir.Slug,
		Path:     dir.ManifestPath(),
		Errors:   []discovery.Diagnostic{},
		Warnings: []discovery.Diagnostic{},
	}
}

// Add files d under errors or warnings by severity.
func (p *PluginReport) Add(diags ...discovery.Diagnostic) {
	for _, d := range diags {
		if d.IsError() {
			p.Errors = append(p.Errors, d)
		} else {
			p.Warnings = append(p.Warnings, d)
		}
	}
}

// Valid reports whether the plugin has no findings at all.
func (p *PluginReport) Valid() bool {
	return len(p.Errors) == 0 && len(p.Warnings) == 0
}

// PluginCount returns the number of plugin directories checked.
func (r *Report) PluginCount() int { return len(r.Plugins) }

// ErrorCount returns the total number of errors.
func (r *Report) ErrorCount() int {
	n := 0
	for i := range r.Plugins {
		n += len(r.Plugins[i].Errors)
	}
	return n
}

// WarningCount returns the total number of warnings, missing manifests included.
func (r *Report) WarningCount() int {
	n := 0
	for i := range r.Plugins {
		n += len(r.Plugins[i].Warnings)
	}
	return n
}

// Passed reports whether the run recorded no errors.
func (r *Report) Passed() bool { return r.ErrorCount() == 0 }

// Summary returns the aggregate counts.
func (r *Report) Summary() Summary {
	return Summary{
		Plugins:  r.PluginCount(),
		Errors:   r.ErrorCount(),
		Warnings: r.WarningCount(),
		Passed:   r.Passed(),
	}
}

// Export returns the report with its summary for serialization.
func (r *Report) Export() Export {
	plugins := r.Plugins
	if plugins == nil {
		plugins = []PluginReport{}
	}
	return Export{Summary: r.Summary(), Plugins: plugins}
}

// Codes returns the distinct finding codes of the run, in first-seen order.
func (r *Report) Codes() []discovery.Code {
	seen := make(map[discovery.Code]bool)
	var codes []discovery.Code
	for i := range r.Plugins {
		for _, group := range [][]discovery.Diagnostic{r.Plugins[i].Errors, r.Plugins[i].Warnings} {
			for _, d := range group {
				if !seen[d.Code] {
					seen[d.Code] = true
					codes = append(codes, d.Code)
				}
			}
		}
	}
	return codes
}
