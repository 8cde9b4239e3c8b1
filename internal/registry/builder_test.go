// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stumpfworks/nasapps/internal/discovery"
	"github.com/stumpfworks/nasapps/internal/testutil"

	"github.com/spf13/afero"
)

func newTestBuilder(fsys afero.Fs, clock Clock) *Builder {
	return NewBuilder(fsys, Options{
		PluginsDir:    testutil.PluginsRoot,
		RepositoryURL: testRepo,
		Clock:         clock,
	})
}

func TestGenerate_SortedEntriesWithURLs(t *testing.T) {
	t.Parallel()

	fsys := testutil.NewPluginsFs(t)
	names := map[string]string{
		"zeta":    "zeta tools",
		"alpha":   "Alpha Sync",
		"backup":  "backup Manager",
		"monitor": "Monitor",
	}
	for slug, name := range names {
		testutil.WriteManifest(t, fsys, slug, testutil.ValidManifest("com.stumpfworks."+slug, name))
	}

	res, err := newTestBuilder(fsys, testutil.NewFakeClock(time.Time{})).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	plugins := res.Document.Plugins
	if len(plugins) != len(names) {
		t.Fatalf("len(Plugins) = %d, want %d", len(plugins), len(names))
	}
	wantOrder := []string{"Alpha Sync", "backup Manager", "Monitor", "zeta tools"}
	for i, e := range plugins {
		if e.Name != wantOrder[i] {
			t.Errorf("Plugins[%d].Name = %q, want %q", i, e.Name, wantOrder[i])
		}
		wantRepo := fmt.Sprintf("%s/tree/main/plugins/%s", testRepo, e.Slug)
		wantDL := fmt.Sprintf("%s/releases/download/%s-v1.2.3/%s-v1.2.3.tar.gz", testRepo, e.Slug, e.Slug)
		if e.RepositoryURL != wantRepo {
			t.Errorf("%s RepositoryURL = %q, want %q", e.Slug, e.RepositoryURL, wantRepo)
		}
		if e.DownloadURL != wantDL {
			t.Errorf("%s DownloadURL = %q, want %q", e.Slug, e.DownloadURL, wantDL)
		}
	}
	if res.ManifestCount() != len(names) {
		t.Errorf("ManifestCount() = %d, want %d", res.ManifestCount(), len(names))
	}
	if got := res.Document.Updated.String(); got != "2025-01-15T12:30:45.123456Z" {
		t.Errorf("Updated = %q", got)
	}
	if res.Document.Version != CatalogVersion || res.Document.Repository != testRepo {
		t.Errorf("envelope = (%q, %q)", res.Document.Version, res.Document.Repository)
	}
}

func TestGenerate_SingleManifestScenario(t *testing.T) {
	t.Parallel()

	fsys := testutil.NewPluginsFs(t)
	testutil.WriteManifest(t, fsys, "demo", map[string]any{
		"id":          "com.x.demo",
		"name":        "Demo",
		"version":     "0.2.0",
		"author":      "me",
		"description": "A demo plugin for tests.",
		"icon":        "🧪",
		"category":    "development",
	})

	res, err := newTestBuilder(fsys, nil).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(res.Document.Plugins) != 1 {
		t.Fatalf("len(Plugins) = %d, want 1", len(res.Document.Plugins))
	}
	e := res.Document.Plugins[0]
	checks := map[string][2]string{
		"repository_url":  {e.RepositoryURL, testRepo + "/tree/main/plugins/demo"},
		"download_url":    {e.DownloadURL, testRepo + "/releases/download/demo-v0.2.0/demo-v0.2.0.tar.gz"},
		"homepage":        {e.Homepage, testRepo + "/tree/main/plugins/demo"},
		"min_nas_version": {e.MinNasVersion, "0.1.0"},
		"tags":            {strings.Join(e.Tags, ","), "development"},
	}
	for field, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s = %q, want %q", field, c[0], c[1])
		}
	}
	if e.RequireDocker || len(e.RequiredPorts) != 0 || len(e.Screenshots) != 0 {
		t.Errorf("requires defaults not applied: %+v", e)
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	t.Parallel()

	fsys := testutil.NewPluginsFs(t)
	testutil.WriteManifest(t, fsys, "one", testutil.ValidManifest("com.x.one", "One"))
	testutil.WriteManifest(t, fsys, "two", testutil.ValidManifest("com.x.two", "Two"))

	clock := testutil.NewFakeClock(time.Time{})
	b := newTestBuilder(fsys, clock)

	first, err := b.Generate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	clock.Advance(time.Hour)
	second, err := b.Generate(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	var a, b bytes.Buffer
	if err := Encode(&a, first.Document); err != nil {
		t.Fatal(err)
	}
	if err := Encode(&b, second.Document); err != nil {
		t.Fatal(err)
	}
	if !sameContent(a.Bytes(), b.Bytes()) {
		t.Error("regenerated document differs beyond the timestamp")
	}
	if first.Document.Updated.String() == second.Document.Updated.String() {
		t.Error("timestamps should differ between runs")
	}
}

func TestGenerate_EmptyPluginsDir(t *testing.T) {
	t.Parallel()

	fsys := testutil.NewPluginsFs(t)
	res, err := newTestBuilder(fsys, nil).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, res.Document); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"plugins": []`) {
		t.Errorf("empty catalog should encode plugins as []:\n%s", buf.String())
	}
}

func TestGenerate_SkipsAndFailures(t *testing.T) {
	t.Parallel()

	fsys := testutil.NewPluginsFs(t)
	testutil.WriteManifest(t, fsys, "good", testutil.ValidManifest("com.x.good", "Good"))
	testutil.WriteRawManifest(t, fsys, "broken", `{"id": "com.x.broken",`)
	testutil.WriteRawManifest(t, fsys, "array", `[1, 2]`)
	testutil.MkPluginDir(t, fsys, "empty")
	if err := afero.WriteFile(fsys, testutil.PluginsRoot+"/README.md", []byte("# plugins"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := newTestBuilder(fsys, nil).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	kinds := map[string]OutcomeKind{}
	for _, o := range res.Outcomes {
		kinds[string(o.Slug)] = o.Kind
	}
	want := map[string]OutcomeKind{
		"array":  OutcomeFailed,
		"broken": OutcomeFailed,
		"empty":  OutcomeSkipped,
		"good":   OutcomeLoaded,
	}
	if len(kinds) != len(want) {
		t.Errorf("outcomes = %v, want %v", kinds, want)
	}
	for slug, k := range want {
		if kinds[slug] != k {
			t.Errorf("outcome[%s] = %q, want %q", slug, kinds[slug], k)
		}
	}

	if len(res.Document.Plugins) != 1 || res.Document.Plugins[0].Name != "Good" {
		t.Errorf("Plugins = %+v, want only Good", res.Document.Plugins)
	}
	if res.ManifestCount() != 3 {
		t.Errorf("ManifestCount() = %d, want 3", res.ManifestCount())
	}

	diags := res.Diagnostics()
	if len(diags) != 2 {
		t.Fatalf("Diagnostics() = %v, want 2", diags)
	}
	for _, d := range diags {
		if !d.IsError() || d.Code != discovery.CodeMalformedManifest {
			t.Errorf("diagnostic = %+v, want malformed_manifest error", d)
		}
		if !strings.HasSuffix(d.Path, "plugin.json") {
			t.Errorf("diagnostic path = %q", d.Path)
		}
	}
}

func TestGenerate_MissingRoot(t *testing.T) {
	t.Parallel()

	b := NewBuilder(afero.NewMemMapFs(), Options{PluginsDir: "nope", RepositoryURL: testRepo})
	if _, err := b.Generate(context.Background()); err == nil {
		t.Fatal("Generate() on missing root succeeded, want error")
	}
}

func TestGenerate_Canceled(t *testing.T) {
	t.Parallel()

	fsys := testutil.NewPluginsFs(t)
	testutil.WriteManifest(t, fsys, "one", testutil.ValidManifest("com.x.one", "One"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestBuilder(fsys, nil).Generate(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Generate() error = %v, want context.Canceled", err)
	}
}
