// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// PluginsRoot is the plugins directory used by in-memory fixtures.
const PluginsRoot = "plugins"

// NewPluginsFs returns an in-memory filesystem with an empty plugins root.
func NewPluginsFs(t testing.TB) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	if err := fsys.MkdirAll(PluginsRoot, 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", PluginsRoot, err)
	}
	return fsys
}

// WriteManifest encodes fields as plugins/<slug>/plugin.json.
func WriteManifest(t testing.TB, fsys afero.Fs, slug string, fields map[string]any) string {
	t.Helper()
	data, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		t.Fatalf("failed to encode manifest for %s: %v", slug, err)
	}
	return WriteRawManifest(t, fsys, slug, string(data))
}

// WriteRawManifest writes content verbatim as plugins/<slug>/plugin.json.
func WriteRawManifest(t testing.TB, fsys afero.Fs, slug, content string) string {
	t.Helper()
	dir := MkPluginDir(t, fsys, slug)
	path := filepath.Join(dir, "plugin.json")
	if err := afero.WriteFile(fsys, path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// MkPluginDir creates plugins/<slug> without a manifest.
func MkPluginDir(t testing.TB, fsys afero.Fs, slug string) string {
	t.Helper()
	dir := filepath.Join(PluginsRoot, slug)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", dir, err)
	}
	return dir
}

// ValidManifest returns a manifest that passes every validation rule.
func ValidManifest(id, name string) map[string]any {
	return map[string]any{
		"id":          id,
		"name":        name,
		"version":     "1.2.3",
		"author":      "stumpfworks",
		"description": "A plugin that does something useful on the NAS",
		"icon":        "📦",
		"category":    "utilities",
	}
}
