// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

const (
	ManifestNotFoundId Id = iota + 1
	ManifestMalformedId
	ManifestInvalidId
	ManifestStyleId
	PluginsDirNotFoundId
	RegistryStaleId
	RegistryWriteFailedId
	ConfigLoadFailedId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		docLinks []HttpLink  // catalog documentation for this issue
		extLinks []HttpLink  // external references
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the guide with the given glamour style ("dark", "light",
// "notty", "auto" or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	var sb strings.Builder
	sb.WriteString(string(i.mdMsg))
	if links := append(i.DocLinks(), i.extLinks...); len(links) > 0 {
		sb.WriteString("\n\n## See also\n")
		for _, link := range links {
			sb.WriteString("\n- <" + string(link) + ">")
		}
	}
	return render(sb.String(), stylePath)
}

const catalogDocs HttpLink = "https://github.com/Stumpf-works/stumpfworks-nas-apps#plugin-manifest"

var (
	render = glamour.Render

	manifestNotFoundIssue = &Issue{
		id: ManifestNotFoundId,
		mdMsg: `
# Plugin directory without plugin.json

Every directory under the plugins root is treated as a plugin. This one has no
` + "`plugin.json`" + ` next to its sources, so it is left out of the registry.

## Things you can try:
- Add a manifest to the directory:
~~~json
{
  "id": "com.example.myplugin",
  "name": "My Plugin",
  "version": "1.0.0",
  "author": "example",
  "description": "What the plugin does, in a sentence or two",
  "icon": "🔌",
  "category": "utilities"
}
~~~
- Or move non-plugin directories out of the plugins root.`,
		docLinks: []HttpLink{catalogDocs},
	}

	manifestMalformedIssue = &Issue{
		id: ManifestMalformedId,
		mdMsg: `
# plugin.json is not valid JSON

The manifest could not be decoded. The message shows the line and column of
the first problem.

## Common causes:
- A trailing comma after the last field
- Comments (JSON has none)
- A number or list where a string is expected, e.g. ` + "`\"version\": 1`" + `
- A top-level array instead of an object

## Things you can try:
~~~
$ python3 -m json.tool plugins/<slug>/plugin.json
~~~`,
		docLinks: []HttpLink{catalogDocs},
		extLinks: []HttpLink{"https://www.json.org/json-en.html"},
	}

	manifestInvalidIssue = &Issue{
		id: ManifestInvalidId,
		mdMsg: `
# Manifest fails the catalog rules

These errors block publication:

| Rule | Requirement |
|------|-------------|
| Required fields | id, name, version, author, description, icon, category |
| id | reverse domain notation with at least three parts (` + "`com.example.plugin`" + `) |
| category | storage, media, communication, development, monitoring, networking, productivity, security or utilities |
| name | at least 3 characters |

## Things you can try:
- Fix the fields named in the report and run ` + "`nasapps validate`" + ` again
- Print the manifest schema with ` + "`nasapps schema`" + ` and point your editor at it`,
		docLinks: []HttpLink{catalogDocs},
	}

	manifestStyleIssue = &Issue{
		id: ManifestStyleId,
		mdMsg: `
# Manifest style warnings

Warnings do not fail validation, but the catalog looks better without them:

- **version** should be ` + "`MAJOR.MINOR.PATCH`" + ` with numeric parts
- **description** should be between 20 and 200 characters
- **author** should be a name or handle; put contact addresses under ` + "`links`",
		docLinks: []HttpLink{catalogDocs},
		extLinks: []HttpLink{"https://semver.org"},
	}

	pluginsDirNotFoundIssue = &Issue{
		id: PluginsDirNotFoundId,
		mdMsg: `
# Plugins directory not found

The plugins root could not be listed.

## Things you can try:
- Run the command from the catalog repository root
- Pass the directory explicitly:
~~~
$ nasapps validate --plugins-dir path/to/plugins
~~~
- Or set ` + "`plugins_dir`" + ` in ` + "`nasapps.cue`",
	}

	registryStaleIssue = &Issue{
		id: RegistryStaleId,
		mdMsg: `
# registry.json is out of date

The committed registry does not match what the current manifests produce.
The ` + "`updated`" + ` timestamp is ignored in this comparison.

## Things you can try:
~~~
$ nasapps registry generate
$ git add registry.json
~~~`,
	}

	registryWriteFailedIssue = &Issue{
		id: RegistryWriteFailedId,
		mdMsg: `
# Could not write the registry

The new registry is written to a temporary file next to the target and then
renamed into place. The existing file is left untouched when this fails.

## Things you can try:
- Check that the output directory exists and is writable
- Check for free disk space`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration

` + "`nasapps.cue`" + ` could not be read or does not match the expected schema.

## Example:
~~~cue
plugins_dir:      "plugins"
registry_file:    "registry.json"
repository_url:   "https://github.com/Stumpf-works/stumpfworks-nas-apps"
registry_version: "1.0.0"
ui: {
	verbose:      false
	color_scheme: "auto"
}
~~~

## Things you can try:
- Print the effective configuration with ` + "`nasapps config show`" + `
- Remove the file to fall back to the defaults`,
	}

	issues = map[Id]*Issue{
		manifestNotFoundIssue.Id():    manifestNotFoundIssue,
		manifestMalformedIssue.Id():   manifestMalformedIssue,
		manifestInvalidIssue.Id():     manifestInvalidIssue,
		manifestStyleIssue.Id():       manifestStyleIssue,
		pluginsDirNotFoundIssue.Id():  pluginsDirNotFoundIssue,
		registryStaleIssue.Id():       registryStaleIssue,
		registryWriteFailedIssue.Id(): registryWriteFailedIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
	}

	// codeIssues maps diagnostic codes to the guide explaining them.
	codeIssues = map[string]Id{
		"missing_manifest":    ManifestNotFoundId,
		"malformed_manifest":  ManifestMalformedId,
		"unreadable_manifest": ManifestMalformedId,
		"missing_field":       ManifestInvalidId,
		"invalid_id":          ManifestInvalidId,
		"invalid_category":    ManifestInvalidId,
		"name_length":         ManifestInvalidId,
		"version_format":      ManifestStyleId,
		"description_length":  ManifestStyleId,
		"author_email":        ManifestStyleId,
	}
)

// Values returns every issue ordered by id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}

// ForCodes returns the guides for a set of diagnostic codes, deduplicated and
// ordered by id. Unknown codes are ignored.
func ForCodes(codes ...string) []*Issue {
	var ids []Id
	for _, c := range codes {
		if id, ok := codeIssues[c]; ok && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	out := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}
