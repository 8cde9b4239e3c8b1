// SPDX-License-Identifier: MPL-2.0

package validate

import (
	"strings"
	"unicode/utf8"

	"github.com/stumpfworks/nasapps/internal/discovery"
	"github.com/stumpfworks/nasapps/pkg/manifest"
)

const (
	// CodeMissingField marks an absent required field.
	CodeMissingField discovery.Code = "missing_field"
	// CodeInvalidID marks an id that is not in reverse domain notation.
	CodeInvalidID discovery.Code = "invalid_id"
	// CodeVersionFormat marks a version that is not MAJOR.MINOR.PATCH.
	CodeVersionFormat discovery.Code = "version_format"
	// CodeInvalidCategory marks a category outside the fixed set.
	CodeInvalidCategory discovery.Code = "invalid_category"
	// CodeDescriptionLength marks a description outside the recommended length.
	CodeDescriptionLength discovery.Code = "description_length"
	// CodeNameLength marks a name that is too short.
	CodeNameLength discovery.Code = "name_length"
	// CodeAuthorEmail marks an author field that embeds an email address.
	CodeAuthorEmail discovery.Code = "author_email"

	// MinIDSegments is the minimum number of dot-separated id segments.
	MinIDSegments = 3
	// MinNameLength is the minimum name length in characters.
	MinNameLength = 3
	// MinDescriptionLength is the recommended minimum description length.
	MinDescriptionLength = 20
	// MaxDescriptionLength is the recommended maximum description length.
	MaxDescriptionLength = 200
)

// rule inspects one aspect of a manifest.
type rule func(m *manifest.Manifest) []discovery.Diagnostic

// rules run in this order; findings keep it.
var rules = []rule{
	checkRequired,
	checkID,
	checkVersion,
	checkCategory,
	checkDescription,
	checkName,
	checkAuthor,
}

// Manifest applies every rule to m and returns the findings in rule order.
// A nil result means the manifest is valid.
func Manifest(m *manifest.Manifest) []discovery.Diagnostic {
	var diags []discovery.Diagnostic
	for _, r := range rules {
		diags = append(diags, r(m)...)
	}
	return diags
}

// ValidID reports whether id has at least three dot-separated segments.
func ValidID(id string) bool {
	return len(strings.Split(id, ".")) >= MinIDSegments
}

// ValidVersion reports whether version has at least three dot-separated
// segments and the first three are non-negative integers. Anything after the
// third segment is not inspected.
func ValidVersion(version string) bool {
	parts := strings.Split(version, ".")
	if len(parts) < 3 {
		return false
	}
	for _, p := range parts[:3] {
		if !isDigits(p) {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func checkRequired(m *manifest.Manifest) []discovery.Diagnostic {
	var diags []discovery.Diagnostic
	for _, f := range manifest.RequiredFields() {
		if !m.Has(f) {
			diags = append(diags, discovery.Errorf(CodeMissingField, "Missing required field: %s", f))
		}
	}
	return diags
}

func checkID(m *manifest.Manifest) []discovery.Diagnostic {
	id, ok := m.Lookup(manifest.FieldID)
	if !ok || ValidID(id) {
		return nil
	}
	return []discovery.Diagnostic{
		discovery.Errorf(CodeInvalidID, "Invalid plugin ID format: %s (should be reverse domain notation)", id),
	}
}

func checkVersion(m *manifest.Manifest) []discovery.Diagnostic {
	v, ok := m.Lookup(manifest.FieldVersion)
	if !ok || ValidVersion(v) {
		return nil
	}
	return []discovery.Diagnostic{
		discovery.Warningf(CodeVersionFormat, "Version %s doesn't follow semantic versioning", v),
	}
}

func checkCategory(m *manifest.Manifest) []discovery.Diagnostic {
	c, ok := m.Lookup(manifest.FieldCategory)
	if !ok || manifest.Category(c).IsValid() {
		return nil
	}
	return []discovery.Diagnostic{
		discovery.Errorf(CodeInvalidCategory, "Invalid category: %s. Must be one of: %s", c, manifest.CategoryList()),
	}
}

func checkDescription(m *manifest.Manifest) []discovery.Diagnostic {
	d, ok := m.Lookup(manifest.FieldDescription)
	if !ok {
		return nil
	}
	switch n := utf8.RuneCountInString(d); {
	case n < MinDescriptionLength:
		return []discovery.Diagnostic{
			discovery.Warningf(CodeDescriptionLength, "Description is very short (%d characters)", n),
		}
	case n > MaxDescriptionLength:
		return []discovery.Diagnostic{
			discovery.Warningf(CodeDescriptionLength, "Description is very long (%d characters)", n),
		}
	}
	return nil
}

func checkName(m *manifest.Manifest) []discovery.Diagnostic {
	name, ok := m.Lookup(manifest.FieldName)
	if !ok || utf8.RuneCountInString(name) >= MinNameLength {
		return nil
	}
	return []discovery.Diagnostic{discovery.Errorf(CodeNameLength, "Plugin name is too short")}
}

func checkAuthor(m *manifest.Manifest) []discovery.Diagnostic {
	a, ok := m.Lookup(manifest.FieldAuthor)
	if !ok || !strings.Contains(a, "@") {
		return nil
	}
	return []discovery.Diagnostic{
		discovery.Warningf(CodeAuthorEmail, "Author field should not contain email (use links section instead)"),
	}
}
