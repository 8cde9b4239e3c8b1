// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

const (
	// FileName is the manifest file expected directly inside each plugin directory.
	FileName = "plugin.json"

	// FieldID is the reverse-domain plugin identifier.
	FieldID Field = "id"
	// FieldName is the human-readable plugin name.
	FieldName Field = "name"
	// FieldVersion is the plugin version string.
	FieldVersion Field = "version"
	// FieldAuthor is the plugin author handle.
	FieldAuthor Field = "author"
	// FieldDescription is the short plugin description.
	FieldDescription Field = "description"
	// FieldIcon is the emoji or icon identifier.
	FieldIcon Field = "icon"
	// FieldCategory is the catalog category.
	FieldCategory Field = "category"

	// Catalog categories, in listing order.
	CategoryStorage       Category = "storage"
	CategoryMedia         Category = "media"
	CategoryCommunication Category = "communication"
	CategoryDevelopment   Category = "development"
	CategoryMonitoring    Category = "monitoring"
	CategoryNetworking    Category = "networking"
	CategoryProductivity  Category = "productivity"
	CategorySecurity      Category = "security"
	CategoryUtilities     Category = "utilities"
)

var (
	// categories is the fixed category enumeration in listing order.
	categories = []Category{
		CategoryStorage,
		CategoryMedia,
		CategoryCommunication,
		CategoryDevelopment,
		CategoryMonitoring,
		CategoryNetworking,
		CategoryProductivity,
		CategorySecurity,
		CategoryUtilities,
	}

	categorySet = mapset.NewThreadUnsafeSet(categories...)

	// requiredFields lists the top-level fields every manifest must declare.
	requiredFields = []Field{
		FieldID,
		FieldName,
		FieldVersion,
		FieldAuthor,
		FieldDescription,
		FieldIcon,
		FieldCategory,
	}
)

type (
	// Field names a top-level string field of plugin.json.
	Field string

	// Category is a catalog classification value.
	Category string

	// Slug is a plugin's directory name.
	Slug string

	// Links holds optional external links.
	Links struct {
		Homepage *string `json:"homepage,omitempty" jsonschema:"format=uri"`
	}

	// Requirements declares what the NAS must provide for the plugin to run.
	Requirements struct {
		MinNasVersion *string `json:"minNasVersion,omitempty" jsonschema:"default=0.1.0"`
		Docker        *bool   `json:"docker,omitempty" jsonschema:"default=false"`
		Ports         *[]int  `json:"ports,omitempty"`
	}

	// Manifest is the parsed content of a plugin.json file.
	Manifest struct {
		ID          *string       `json:"id,omitempty" jsonschema:"required,description=Reverse domain identifier (e.g. com.example.plugin)"`
		Name        *string       `json:"name,omitempty" jsonschema:"required,minLength=3"`
		Version     *string       `json:"version,omitempty" jsonschema:"required,description=Semantic version (MAJOR.MINOR.PATCH)"`
		Author      *string       `json:"author,omitempty" jsonschema:"required"`
		Description *string       `json:"description,omitempty" jsonschema:"required,minLength=20,maxLength=200"`
		Icon        *string       `json:"icon,omitempty" jsonschema:"required"`
		Category    *string       `json:"category,omitempty" jsonschema:"required,enum=storage,enum=media,enum=communication,enum=development,enum=monitoring,enum=networking,enum=productivity,enum=security,enum=utilities"`
		Tags        *[]string     `json:"tags,omitempty"`
		Links       *Links        `json:"links,omitempty"`
		Requires    *Requirements `json:"requires,omitempty"`

		// Path is the file the manifest was loaded from.
		Path string `json:"-"`
	}
)

// Categories returns the valid categories in listing order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// CategoryList returns the valid categories joined with ", ".
func CategoryList() string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// String returns the category as a string.
func (c Category) String() string { return string(c) }

// IsValid reports whether c is one of the fixed categories.
func (c Category) IsValid() bool { return categorySet.Contains(c) }

// String returns the slug as a string.
func (s Slug) String() string { return string(s) }

// RequiredFields returns the fields every manifest must declare.
func RequiredFields() []Field {
	out := make([]Field, len(requiredFields))
	copy(out, requiredFields)
	return out
}

// Lookup returns the value of a top-level string field and whether the
// manifest declares it.
func (m *Manifest) Lookup(f Field) (string, bool) {
	var p *string
	switch f {
	case FieldID:
		p = m.ID
	case FieldName:
		p = m.Name
	case FieldVersion:
		p = m.Version
	case FieldAuthor:
		p = m.Author
	case FieldDescription:
		p = m.Description
	case FieldIcon:
		p = m.Icon
	case FieldCategory:
		p = m.Category
	}
	if p == nil {
		return "", false
	}
	return *p, true
}

// Has reports whether the manifest declares field f.
func (m *Manifest) Has(f Field) bool {
	_, ok := m.Lookup(f)
	return ok
}

// Homepage returns links.homepage when declared.
func (m *Manifest) Homepage() (string, bool) {
	if m.Links == nil || m.Links.Homepage == nil {
		return "", false
	}
	return *m.Links.Homepage, true
}

// DeclaredTags returns the manifest's tags, or nil when none are declared.
func (m *Manifest) DeclaredTags() []string {
	if m.Tags == nil {
		return nil
	}
	return *m.Tags
}

// String is a convenience for building option-typed fields in tests and tools.
func String(s string) *string { return &s }
