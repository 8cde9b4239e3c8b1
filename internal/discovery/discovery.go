// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/stumpfworks/nasapps/pkg/manifest"

	"github.com/spf13/afero"
)

// PluginDir is one plugin directory found under the plugins root.
type PluginDir struct {
	// Slug is the directory name.
	Slug manifest.Slug
	// Path is the directory path (root joined with Slug).
	Path string
}

// ManifestPath returns the expected plugin.json location for the directory.
func (d PluginDir) ManifestPath() string {
	return filepath.Join(d.Path, manifest.FileName)
}

// Plugins lists the immediate subdirectories of root, sorted by slug.
// An unreadable or missing root is an error; callers cannot produce a
// meaningful catalog or report without it.
func Plugins(fsys afero.Fs, root string) ([]PluginDir, error) {
	entries, err := afero.ReadDir(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("failed to list plugins directory %s: %w", root, err)
	}

	// afero.ReadDir returns entries sorted by name.
	dirs := make([]PluginDir, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())
		if !isDir(fsys, path, entry) {
			continue
		}
		dirs = append(dirs, PluginDir{
			Slug: manifest.Slug(entry.Name()),
			Path: path,
		})
	}

	return dirs, nil
}

// isDir reports whether entry is a directory, following symlinks.
func isDir(fsys afero.Fs, path string, entry fs.FileInfo) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Mode()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := fsys.Stat(path)
	return err == nil && info.IsDir()
}
