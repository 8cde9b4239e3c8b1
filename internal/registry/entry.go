// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"fmt"
	"strings"

	"github.com/stumpfworks/nasapps/pkg/manifest"
)

const (
	// DefaultVersion is used when a manifest declares no version.
	DefaultVersion = "1.0.0"
	// DefaultIcon is used when a manifest declares no icon.
	DefaultIcon = "🔌"
	// DefaultCategory is used when a manifest declares no category.
	DefaultCategory = manifest.CategoryUtilities
	// DefaultMinNasVersion is used when requires.minNasVersion is absent.
	DefaultMinNasVersion = "0.1.0"
)

// Entry is one plugin in the catalog. Field order matches the published
// registry.json layout.
type Entry struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Version       string   `json:"version"`
	Author        string   `json:"author"`
	Description   string   `json:"description"`
	Icon          string   `json:"icon"`
	Category      string   `json:"category"`
	RepositoryURL string   `json:"repository_url"`
	DownloadURL   string   `json:"download_url"`
	Homepage      string   `json:"homepage"`
	MinNasVersion string   `json:"min_nas_version"`
	RequireDocker bool     `json:"require_docker"`
	RequiredPorts []int    `json:"required_ports"`
	Screenshots   []string `json:"screenshots"`
	Tags          []string `json:"tags"`

	// Slug is the plugin directory name; it is not published.
	Slug manifest.Slug `json:"-"`
}

// RepositoryURL returns the browse URL of a plugin directory:
// <repo>/tree/main/plugins/<slug>.
func RepositoryURL(repo string, slug manifest.Slug) string {
	return fmt.Sprintf("%s/tree/main/plugins/%s", repo, slug)
}

// DownloadURL returns the release artifact URL of a plugin version:
// <repo>/releases/download/<slug>-v<version>/<slug>-v<version>.tar.gz.
func DownloadURL(repo string, slug manifest.Slug, version string) string {
	release := fmt.Sprintf("%s-v%s", slug, version)
	return fmt.Sprintf("%s/releases/download/%s/%s.tar.gz", repo, release, release)
}

// NewEntry derives the catalog entry for the manifest found in directory slug.
// All defaults are applied here and nowhere else.
func NewEntry(repo string, slug manifest.Slug, m *manifest.Manifest) Entry {
	version := valueOr(m.Version, DefaultVersion)
	category := valueOr(m.Category, string(DefaultCategory))
	repoURL := RepositoryURL(repo, slug)

	homepage := repoURL
	if h, ok := m.Homepage(); ok {
		homepage = h
	}

	e := Entry{
		ID:            valueOr(m.ID, ""),
		Name:          valueOr(m.Name, ""),
		Version:       version,
		Author:        valueOr(m.Author, ""),
		Description:   valueOr(m.Description, ""),
		Icon:          valueOr(m.Icon, DefaultIcon),
		Category:      category,
		RepositoryURL: repoURL,
		DownloadURL:   DownloadURL(repo, slug, version),
		Homepage:      homepage,
		MinNasVersion: DefaultMinNasVersion,
		RequiredPorts: []int{},
		Screenshots:   []string{},
		Slug:          slug,
	}

	if req := m.Requires; req != nil {
		e.MinNasVersion = valueOr(req.MinNasVersion, DefaultMinNasVersion)
		if req.Docker != nil {
			e.RequireDocker = *req.Docker
		}
		if req.Ports != nil && *req.Ports != nil {
			e.RequiredPorts = append([]int{}, *req.Ports...)
		}
	}

	declared := m.DeclaredTags()
	e.Tags = make([]string, 0, len(declared)+1)
	e.Tags = append(e.Tags, category)
	e.Tags = append(e.Tags, declared...)

	return e
}

// sortKey orders entries by name ignoring case.
func (e Entry) sortKey() string { return strings.ToLower(e.Name) }

func valueOr(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}
