// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

var (
	// ErrManifestNotFound is returned when a plugin directory has no plugin.json.
	// Callers decide whether a missing manifest is a skip or a warning.
	ErrManifestNotFound = errors.New("plugin.json not found")

	// ErrMalformedManifest is the sentinel error wrapped by MalformedManifestError.
	ErrMalformedManifest = errors.New("malformed manifest")
)

// MalformedManifestError is returned when plugin.json is not a well-formed JSON
// object, or one of its known fields has the wrong JSON type.
type MalformedManifestError struct {
	// Path is the manifest file.
	Path string
	// Cause is the parse diagnostic.
	Cause error
}

// Error implements the error interface.
func (e *MalformedManifestError) Error() string {
	return fmt.Sprintf("malformed manifest: %v", e.Cause)
}

// Unwrap returns ErrMalformedManifest for errors.Is() compatibility.
func (e *MalformedManifestError) Unwrap() error { return ErrMalformedManifest }

// Load reads dir/plugin.json from fsys and parses it.
//
// A missing manifest (or a directory named plugin.json) yields an error
// wrapping ErrManifestNotFound. Content that is not a JSON object yields a
// *MalformedManifestError. Any other failure is an I/O error.
func Load(fsys afero.Fs, dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)

	info, err := fsys.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrManifestNotFound)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory: %w", path, ErrManifestNotFound)
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return Parse(data, path)
}

// Parse decodes manifest content. path is recorded on the result and in errors.
func Parse(data []byte, path string) (*Manifest, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] != '{' {
		if json.Valid(trimmed) {
			return nil, &MalformedManifestError{Path: path, Cause: errors.New("top-level value must be a JSON object")}
		}
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &MalformedManifestError{Path: path, Cause: describeJSONError(data, err)}
	}
	m.Path = path

	return &m, nil
}

// describeJSONError adds a line and column to syntax and type errors so the
// diagnostic points at the offending spot in the file.
func describeJSONError(data []byte, err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		offset    int64
	)
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return err
	}

	line, col := position(data, offset)
	return fmt.Errorf("%w (line %d, column %d)", err, line, col)
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, col = 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
