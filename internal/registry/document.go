// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/spf13/afero"
)

const (
	// CatalogVersion is the registry.json format version.
	CatalogVersion = "1.0.0"

	timestampLayout      = "2006-01-02T15:04:05Z"
	timestampLayoutMicro = "2006-01-02T15:04:05.000000Z"
)

type (
	// Timestamp is the generation time of a document. It encodes as UTC
	// ISO-8601 with a Z suffix, with microseconds unless they are all zero.
	Timestamp time.Time

	// Document is the registry.json envelope.
	Document struct {
		Version    string    `json:"version"`
		Updated    Timestamp `json:"updated"`
		Repository string    `json:"repository"`
		Plugins    []Entry   `json:"plugins"`
	}
)

// NewDocument wraps entries (sorted in place) in a catalog envelope.
func NewDocument(version, repo string, updated time.Time, entries []Entry) *Document {
	if entries == nil {
		entries = []Entry{}
	}
	SortEntries(entries)
	return &Document{
		Version:    version,
		Updated:    Timestamp(updated.UTC()),
		Repository: repo,
		Plugins:    entries,
	}
}

// SortEntries orders entries by name ignoring case. Names equal under case
// folding fall back to a case-sensitive comparison, then to the slug, so the
// order is total.
func SortEntries(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		if c := strings.Compare(a.sortKey(), b.sortKey()); c != 0 {
			return c
		}
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(string(a.Slug), string(b.Slug))
	})
}

// Time returns the timestamp as a time.Time.
func (t Timestamp) Time() time.Time { return time.Time(t) }

// String formats the timestamp as it appears in registry.json.
func (t Timestamp) String() string {
	tt := time.Time(t).UTC()
	if tt.Nanosecond()/int(time.Microsecond) == 0 {
		return tt.Format(timestampLayout)
	}
	return tt.Format(timestampLayoutMicro)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("updated: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("updated: %w", err)
	}
	*t = Timestamp(parsed.UTC())
	return nil
}

// updatedLine matches the top-level "updated" member as Encode lays it out.
var updatedLine = regexp.MustCompile(`(?m)^  "updated": "[^"\n]*",$`)

// sameContent reports whether two encoded registries are byte-identical once
// their generation timestamps are blanked.
func sameContent(a, b []byte) bool {
	blank := []byte(`  "updated": "",`)
	return bytes.Equal(updatedLine.ReplaceAll(a, blank), updatedLine.ReplaceAll(b, blank))
}

// UpToDate reports whether the file at path holds exactly what Write would
// produce for doc, apart from the generation timestamp. Members unknown to
// Document, null values and formatting differences all count as changes.
func UpToDate(fsys afero.Fs, path string, doc *Document) (bool, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return false, fmt.Errorf("failed to read registry: %w", err)
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return false, fmt.Errorf("failed to parse registry %s: %w", path, err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return false, err
	}
	return sameContent(data, buf.Bytes()), nil
}

// Encode writes doc as 2-space indented JSON followed by a newline. Non-ASCII
// text (icons are usually emoji) and HTML characters are written verbatim.
func Encode(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}
	return nil
}

// Write replaces path with the encoded document. The content is written to a
// temporary file in the same directory first and renamed into place, so an
// interrupted write never leaves a truncated registry behind.
func Write(fsys afero.Fs, path string, doc *Document) error {
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := afero.TempFile(fsys, dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary registry file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()          //nolint:errcheck // best-effort cleanup
		fsys.Remove(tmpName) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		fsys.Remove(tmpName) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := fsys.Chmod(tmpName, 0o644); err != nil {
		fsys.Remove(tmpName) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("failed to set permissions on %s: %w", tmpName, err)
	}
	if err := fsys.Rename(tmpName, path); err != nil {
		fsys.Remove(tmpName) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}
