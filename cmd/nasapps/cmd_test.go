// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stumpfworks/nasapps/internal/registry"
	"github.com/stumpfworks/nasapps/internal/testutil"
	"github.com/stumpfworks/nasapps/internal/validate"
	"github.com/stumpfworks/nasapps/pkg/types"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

type cliResult struct {
	stdout string
	stderr string
	code   types.ExitCode
}

func runCLI(t *testing.T, fsys afero.Fs, args ...string) cliResult {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, Dependencies{
		Fs:     fsys,
		Clock:  testutil.NewFakeClock(testutil.ReferenceTime),
		Stdout: &stdout,
		Stderr: &stderr,
	})
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func assertContains(t *testing.T, label, got string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("%s does not contain %q\n--- %s ---\n%s", label, want, label, got)
		}
	}
}

func TestValidate_AllValid(t *testing.T) {
	t.Parallel()

	fsys := testutil.NewPluginsFs(t)
	testutil.WriteManifest(t, fsys, "alpha", testutil.ValidManifest("com.example.alpha", "Alpha"))
	testutil.WriteManifest(t, fsys, "beta", testutil.ValidManifest("com.example.beta", "Beta"))

	res := runCLI(t, fsys, "validate")
	if res.code != types.ExitSuccess {
		t.Fatalf("exit code = %d, want 0\nstderr:\n%s", res.code, res.stderr)
	}
	assertContains(t, "stdout", res.stdout,
		"🔍 Validating plugin manifests...\n\n",
		"✅ alpha: Valid\n",
		"✅ beta: Valid\n",
		"\n"+strings.Repeat("=", 60)+"\n",
		"Total plugins checked: 2\n",
		"Errors: 0\n",
		"Warnings: 0\n",
		"\n✅ All plugins are valid!\n",
	)
}

func TestValidate_Findings(t *testing.T) {
	t.Parallel()

	fsys := testutil.NewPluginsFs(t)
	bad := testutil.ValidManifest("broken", "Broken plugin")
	delete(bad, "category")
	bad["author"] = "dev@example.com"
	testutil.WriteManifest(t, fsys, "broken", bad)
	testutil.MkPluginDir(t, fsys, "empty")
	testutil.WriteRawManifest(t, fsys, "garbled", `{"id": `)

	res := runCLI(t, fsys, "validate")
	if res.code != types.ExitFailure {
		t.Fatalf("exit code = %d, want 1", res.code)
	}
	assertContains(t, "stdout", res.stdout,
		"❌ broken:\n",
		"   ERROR: Missing required field: category\n",
		"   ERROR: Invalid plugin ID format: broken (should be reverse domain notation)\n",
		"⚠️  broken:\n",
		"   WARNING: Author field should not contain email (use links section instead)\n",
		"⚠️  empty: Missing plugin.json\n",
		"❌ garbled:\n",
		"   ERROR: Invalid JSON: ",
		"Total plugins checked: 3\n",
		"Errors: 3\n",
		"Warnings: 2\n",
		"\n❌ Validation failed!\n",
	)
	if strings.Contains(res.stderr, "exit status") {
		t.Errorf("silent exit printed an error:\n%s", res.stderr)
	}
}

func TestValidate_Explain(t *testing.T) {
	t.Parallel()

	fsys := testutil.NewPluginsFs(t)
	testutil.MkPluginDir(t, fsys, "empty")

	res := runCLI(t, fsys, "validate", "--explain")
	if res.code != types.ExitSuccess {
		t.Fatalf("exit code = %d, want 0 (a missing manifest is a warning)", res.code)
	}
	assertContains(t, "stderr", res.stderr, "plugin.json")
}

func TestValidate_MachineReadable(t *testing.T) {
	t.Parallel()

	fsys := testutil.NewPluginsFs(t)
	testutil.WriteManifest(t, fsys, "alpha", testutil.ValidManifest("com.example.alpha", "Alpha"))
	short := testutil.ValidManifest("com.example.short", "Short")
	short["description"] = "Too short"
	testutil.WriteManifest(t, fsys, "short", short)

	decoders := map[string]func([]byte, any) error{
		"json": json.Unmarshal,
		"yaml": yaml.Unmarshal,
	}
	for format, decode := range decoders {
		t.Run(format, func(t *testing.T) {
			t.Parallel()

			res := runCLI(t, fsys, "validate", "--format", format)
			if res.code != types.ExitSuccess {
				t.Fatalf("exit code = %d, want 0", res.code)
			}

			var export validate.Export
			if err := decode([]byte(res.stdout), &export); err != nil {
				t.Fatalf("decode %s report: %v\n%s", format, err, res.stdout)
			}
			want := validate.Summary{Plugins: 2, Errors: 0, Warnings: 1, Passed: true}
			if export.Summary != want {
				t.Errorf("summary = %+v, want %+v", export.Summary, want)
			}
			if len(export.Plugins) != 2 || export.Plugins[1].Slug != "short" {
				t.Fatalf("plugins = %+v", export.Plugins)
			}
			if got := export.Plugins[1].Warnings[0].Message; got != "Description is very short (9 characters)" {
				t.Errorf("warning = %q", got)
			}
		})
	}
}

func TestValidate_InvalidFormat(t *testing.T) {
	t.Parallel()

	res := runCLI(t, testutil.NewPluginsFs(t), "validate", "--format", "xml")
	if res.code != types.ExitFailure {
		t.Fatalf("exit code = %d, want 1", res.code)
	}
	assertContains(t, "stderr", res.stderr, "xml")
}

func TestValidate_MissingPluginsDir(t *testing.T) {
	t.Parallel()

	res := runCLI(t, afero.NewMemMapFs(), "validate")
	if res.code != types.ExitFailure {
		t.Fatalf("exit code = %d, want 1", res.code)
	}
	assertContains(t, "stderr", res.stderr, "failed to read plugins directory: plugins", "--plugins-dir")
}

func TestRegistryGenerate(t *testing.T) {
	t.Parallel()

	fsys := testutil.NewPluginsFs(t)
	testutil.WriteManifest(t, fsys, "zeta", testutil.ValidManifest("com.example.zeta", "zeta"))
	testutil.WriteManifest(t, fsys, "alpha", testutil.ValidManifest("com.example.alpha", "Alpha"))
	testutil.WriteRawManifest(t, fsys, "broken", `[1, 2]`)
	testutil.MkPluginDir(t, fsys, "draft")

	res := runCLI(t, fsys, "registry", "generate")
	if res.code != types.ExitSuccess {
		t.Fatalf("exit code = %d, want 0\nstderr:\n%s", res.code, res.stderr)
	}
	assertContains(t, "stdout", res.stdout,
		"Found 3 plugin manifests\n",
		"✅ Loaded Alpha v1.2.3\n",
		"✅ Loaded zeta v1.2.3\n",
		"❌ Error loading plugins/broken/plugin.json: ",
		"\n✅ Generated registry.json with 2 plugins\n",
	)

	doc := readRegistry(t, fsys, "registry.json")
	if len(doc.Plugins) != 2 || doc.Plugins[0].Name != "Alpha" || doc.Plugins[1].Name != "zeta" {
		t.Fatalf("plugins = %+v", doc.Plugins)
	}
	if !doc.Updated.Time().Equal(testutil.ReferenceTime) {
		t.Errorf("updated = %v, want %v", doc.Updated, testutil.ReferenceTime)
	}
	if doc.Plugins[0].DownloadURL != "https://github.com/Stumpf-works/stumpfworks-nas-apps/releases/download/alpha-v1.2.3/alpha-v1.2.3.tar.gz" {
		t.Errorf("download_url = %q", doc.Plugins[0].DownloadURL)
	}
}

func TestRegistryGenerate_Output(t *testing.T) {
	t.Parallel()

	fsys := testutil.NewPluginsFs(t)
	if err := fsys.MkdirAll("dist", 0o755); err != nil {
		t.Fatal(err)
	}

	res := runCLI(t, fsys, "registry", "generate", "--output", "dist/catalog.json")
	if res.code != types.ExitSuccess {
		t.Fatalf("exit code = %d\nstderr:\n%s", res.code, res.stderr)
	}
	assertContains(t, "stdout", res.stdout, "Found 0 plugin manifests\n", "Generated catalog.json with 0 plugins")

	doc := readRegistry(t, fsys, "dist/catalog.json")
	if doc.Plugins == nil || len(doc.Plugins) != 0 {
		t.Errorf("plugins = %#v, want empty list", doc.Plugins)
	}
}

func TestRegistryGenerate_Check(t *testing.T) {
	t.Parallel()

	fsys := testutil.NewPluginsFs(t)
	testutil.WriteManifest(t, fsys, "alpha", testutil.ValidManifest("com.example.alpha", "Alpha"))

	if res := runCLI(t, fsys, "registry", "generate", "--check"); res.code != types.ExitFailure {
		t.Errorf("check without registry: exit code = %d, want 1", res.code)
	} else {
		assertContains(t, "stderr", res.stderr, "registry file does not exist")
	}

	if res := runCLI(t, fsys, "registry", "generate"); res.code != types.ExitSuccess {
		t.Fatalf("generate: exit code = %d\n%s", res.code, res.stderr)
	}

	res := runCLI(t, fsys, "registry", "generate", "--check")
	if res.code != types.ExitSuccess {
		t.Errorf("check after generate: exit code = %d\n%s", res.code, res.stderr)
	}
	assertContains(t, "stdout", res.stdout, "registry.json is up to date with 1 plugins")

	testutil.WriteManifest(t, fsys, "beta", testutil.ValidManifest("com.example.beta", "Beta"))
	res = runCLI(t, fsys, "registry", "generate", "--check")
	if res.code != types.ExitFailure {
		t.Errorf("check after new plugin: exit code = %d, want 1", res.code)
	}
	assertContains(t, "stderr", res.stderr, "registry is out of date", "nasapps registry generate")
}

func TestRegistryGenerate_CheckDetectsExtraContent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		old  string
		new  string
	}{
		{"unknown member", `  "repository":`, "  \"generator\": \"legacy\",\n  \"repository\":"},
		{"null author", `"author": "stumpfworks"`, `"author": null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fsys := testutil.NewPluginsFs(t)
			testutil.WriteManifest(t, fsys, "alpha", testutil.ValidManifest("com.example.alpha", "Alpha"))
			if res := runCLI(t, fsys, "registry", "generate"); res.code != types.ExitSuccess {
				t.Fatalf("generate: exit code = %d\n%s", res.code, res.stderr)
			}

			data, err := afero.ReadFile(fsys, "registry.json")
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(data), tt.old) {
				t.Fatalf("registry.json lacks %q:\n%s", tt.old, data)
			}
			edited := strings.Replace(string(data), tt.old, tt.new, 1)
			if err := afero.WriteFile(fsys, "registry.json", []byte(edited), 0o644); err != nil {
				t.Fatal(err)
			}

			res := runCLI(t, fsys, "registry", "generate", "--check")
			if res.code != types.ExitFailure {
				t.Errorf("exit code = %d, want 1", res.code)
			}
			assertContains(t, "stderr", res.stderr, "registry is out of date")
		})
	}
}

func TestSchema(t *testing.T) {
	t.Parallel()

	res := runCLI(t, afero.NewMemMapFs(), "schema")
	if res.code != types.ExitSuccess {
		t.Fatalf("exit code = %d\n%s", res.code, res.stderr)
	}

	var schema map[string]any
	if err := json.Unmarshal([]byte(res.stdout), &schema); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	if _, ok := schema["properties"]; !ok {
		t.Errorf("schema has no properties: %v", schema)
	}
}

func TestConfig(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "nasapps.cue", []byte(`plugins_dir: "apps"`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res := runCLI(t, fsys, "config", "show")
	if res.code != types.ExitSuccess {
		t.Fatalf("config show: exit code = %d\n%s", res.code, res.stderr)
	}
	assertContains(t, "stdout", res.stdout, "Config file: nasapps.cue", "plugins_dir: apps", "registry_file: registry.json")

	res = runCLI(t, fsys, "config", "dump")
	assertContains(t, "stdout", res.stdout, `plugins_dir:      "apps"`)

	res = runCLI(t, fsys, "config", "schema")
	assertContains(t, "stdout", res.stdout, "#Config")
}

func TestConfig_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	res := runCLI(t, afero.NewMemMapFs(), "--config", "nope.cue", "validate")
	if res.code != types.ExitFailure {
		t.Fatalf("exit code = %d, want 1", res.code)
	}
	assertContains(t, "stderr", res.stderr, "nope.cue")
}

func TestConfig_PluginsDirFromFile(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "nasapps.cue", []byte(`plugins_dir: "apps"`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := fsys.MkdirAll("apps/solo", 0o755); err != nil {
		t.Fatal(err)
	}

	res := runCLI(t, fsys, "validate")
	assertContains(t, "stdout", res.stdout, "⚠️  solo: Missing plugin.json", "Total plugins checked: 1")

	res = runCLI(t, fsys, "validate", "--plugins-dir", "elsewhere")
	if res.code != types.ExitFailure {
		t.Errorf("flag override: exit code = %d, want 1", res.code)
	}
}

func readRegistry(t *testing.T, fsys afero.Fs, path string) *registry.Document {
	t.Helper()

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", path, err)
	}
	var doc registry.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal(%s) error = %v", path, err)
	}
	return &doc
}
