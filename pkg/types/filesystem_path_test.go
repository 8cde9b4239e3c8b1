// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestFilesystemPath_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    FilesystemPath
		want    bool
		wantErr bool
	}{
		{"relative directory", FilesystemPath("plugins"), true, false},
		{"relative file", FilesystemPath("registry.json"), true, false},
		{"absolute path", FilesystemPath("/srv/apps/plugins"), true, false},
		{"dot path", FilesystemPath("."), true, false},
		{"empty is invalid", FilesystemPath(""), false, true},
		{"whitespace only is invalid", FilesystemPath("   "), false, true},
		{"tab only is invalid", FilesystemPath("\t"), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			isValid, errs := tt.path.IsValid()
			if isValid != tt.want {
				t.Errorf("FilesystemPath(%q).IsValid() = %v, want %v", tt.path, isValid, tt.want)
			}
			if tt.wantErr {
				if len(errs) == 0 {
					t.Fatalf("FilesystemPath(%q).IsValid() returned no errors, want error", tt.path)
				}
				if !errors.Is(errs[0], ErrInvalidFilesystemPath) {
					t.Errorf("error should wrap ErrInvalidFilesystemPath, got: %v", errs[0])
				}
			} else if len(errs) > 0 {
				t.Errorf("FilesystemPath(%q).IsValid() returned unexpected errors: %v", tt.path, errs)
			}
		})
	}
}

func TestFilesystemPath_Join(t *testing.T) {
	t.Parallel()

	got := FilesystemPath("plugins").Join("nextcloud", "plugin.json")
	want := FilesystemPath(filepath.Join("plugins", "nextcloud", "plugin.json"))
	if got != want {
		t.Errorf("Join() = %q, want %q", got, want)
	}
	if base := got.Base(); base != "plugin.json" {
		t.Errorf("Base() = %q, want %q", base, "plugin.json")
	}
	if cleaned := FilesystemPath("plugins/./nextcloud/").Clean(); cleaned != FilesystemPath(filepath.Join("plugins", "nextcloud")) {
		t.Errorf("Clean() = %q", cleaned)
	}
}
