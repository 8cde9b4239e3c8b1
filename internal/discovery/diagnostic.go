// SPDX-License-Identifier: MPL-2.0

package discovery

import "fmt"

const (
	// SeverityWarning indicates a soft issue that does not fail a run.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a hard issue.
	SeverityError Severity = "error"

	// CodeMissingManifest marks a plugin directory without plugin.json.
	CodeMissingManifest Code = "missing_manifest"
	// CodeMalformedManifest marks a plugin.json that is not a JSON object.
	CodeMalformedManifest Code = "malformed_manifest"
	// CodeUnreadableManifest marks a plugin.json that could not be read.
	CodeUnreadableManifest Code = "unreadable_manifest"
)

type (
	// Severity represents diagnostic severity.
	Severity string

	// Code is a machine-readable diagnostic identifier (e.g., "missing_field").
	Code string

	// Diagnostic is a structured finding about one plugin directory. Diagnostics
	// are returned to callers rather than written to stderr so the CLI layer
	// owns the rendering policy.
	Diagnostic struct {
		// Severity is the diagnostic level (warning or error).
		Severity Severity `json:"severity" yaml:"severity"`
		// Code is a machine-readable identifier.
		Code Code `json:"code" yaml:"code"`
		// Message is the human-readable description.
		Message string `json:"message" yaml:"message"`
		// Path is the file or directory the diagnostic refers to (optional).
		Path string `json:"path,omitempty" yaml:"path,omitempty"`
		// Cause is the underlying error (optional, for programmatic inspection).
		Cause error `json:"-" yaml:"-"`
	}
)

// Errorf builds an error-severity diagnostic.
func Errorf(code Code, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Warningf builds a warning-severity diagnostic.
func Warningf(code Code, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsError reports whether the diagnostic is error-severity.
func (d Diagnostic) IsError() bool { return d.Severity == SeverityError }

// WithPath returns a copy of d associated with path.
func (d Diagnostic) WithPath(path string) Diagnostic {
	d.Path = path
	return d
}

// WithCause returns a copy of d carrying the underlying error.
func (d Diagnostic) WithCause(err error) Diagnostic {
	d.Cause = err
	return d
}

// Error implements the error interface so a Diagnostic can travel as one.
func (d Diagnostic) Error() string {
	if d.Path != "" {
		return fmt.Sprintf("[%s] %s: %s", d.Code, d.Path, d.Message)
	}
	return fmt.Sprintf("[%s] %s", d.Code, d.Message)
}
