// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"testing"
)

func TestDiagnostic_Constructors(t *testing.T) {
	t.Parallel()

	e := Errorf(CodeMalformedManifest, "Invalid JSON: %s", "unexpected end")
	if !e.IsError() || e.Code != CodeMalformedManifest || e.Message != "Invalid JSON: unexpected end" {
		t.Errorf("Errorf() = %+v", e)
	}

	w := Warningf(CodeMissingManifest, "Missing %s", "plugin.json")
	if w.IsError() || w.Severity != SeverityWarning {
		t.Errorf("Warningf() = %+v", w)
	}
}

func TestDiagnostic_WithPathAndCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	base := Errorf(CodeUnreadableManifest, "Error reading file: boom")
	d := base.WithPath("plugins/demo/plugin.json").WithCause(cause)

	if base.Path != "" || base.Cause != nil {
		t.Error("WithPath/WithCause mutated the receiver")
	}
	if d.Path != "plugins/demo/plugin.json" || !errors.Is(d.Cause, cause) {
		t.Errorf("d = %+v", d)
	}
}

func TestDiagnostic_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		d    Diagnostic
		want string
	}{
		{"with path", Errorf(CodeMissingManifest, "Missing plugin.json").WithPath("plugins/x"), "[missing_manifest] plugins/x: Missing plugin.json"},
		{"without path", Warningf(CodeMissingManifest, "Missing plugin.json"), "[missing_manifest] Missing plugin.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.d.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
