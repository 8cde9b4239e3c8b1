// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/stumpfworks/nasapps/internal/issue"
	"github.com/stumpfworks/nasapps/internal/registry"
	"github.com/stumpfworks/nasapps/pkg/types"

	"github.com/spf13/cobra"
)

// registryFlagValues holds the flags of `nasapps registry generate`.
type registryFlagValues struct {
	pluginsDir string
	output     string
	check      bool
	watch      bool
}

// newRegistryCommand creates the `nasapps registry` command tree.
func newRegistryCommand(app *App) *cobra.Command {
	registryCmd := &cobra.Command{
		Use:   "registry",
		Short: "Manage the plugin registry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := &registryFlagValues{}
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate registry.json from every plugin manifest",
		Long: `Generate registry.json from every plugins/<slug>/plugin.json.

Directories without a manifest are skipped. A manifest that cannot be loaded
is reported and left out of the registry; the run still succeeds. The file is
replaced atomically once every plugin has been processed.

Examples:
  nasapps registry generate
  nasapps registry generate --output dist/registry.json
  nasapps registry generate --check        Exit 1 when registry.json is stale
  nasapps registry generate --watch        Regenerate on manifest changes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd.Context(), app, flags)
		},
	}

	generateCmd.Flags().StringVar(&flags.pluginsDir, "plugins-dir", "", "plugins directory (default from config: plugins)")
	generateCmd.Flags().StringVarP(&flags.output, "output", "o", "", "registry file to write (default from config: registry.json)")
	generateCmd.Flags().BoolVar(&flags.check, "check", false, "compare with the existing registry instead of writing it")
	generateCmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "regenerate whenever a manifest changes")
	generateCmd.MarkFlagsMutuallyExclusive("check", "watch")

	registryCmd.AddCommand(generateCmd)
	return registryCmd
}

func runGenerate(ctx context.Context, app *App, flags *registryFlagValues) error {
	root := app.pluginsDir(flags.pluginsDir)
	output := app.config().RegistryFile
	if flags.output != "" {
		output = types.FilesystemPath(flags.output)
	}

	pass := func(ctx context.Context) error {
		return generateRegistry(ctx, app, root, output, flags.check)
	}
	if flags.watch {
		return runWatchMode(ctx, app, root, "registry generation", pass)
	}
	return pass(ctx)
}

// generateRegistry runs one generation pass and prints the per-plugin log.
func generateRegistry(ctx context.Context, app *App, root, output types.FilesystemPath, check bool) error {
	cfg := app.config()
	builder := registry.NewBuilder(app.Fs, registry.Options{
		PluginsDir:     root.String(),
		RepositoryURL:  cfg.RepositoryURL,
		CatalogVersion: cfg.RegistryVersion,
		Clock:          app.Clock,
		Logger:         app.logger,
	})

	result, err := builder.Generate(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return app.pluginsDirError(root, err)
	}

	out := app.stdout
	fmt.Fprintf(out, "Found %d plugin manifests\n", result.ManifestCount())
	for _, o := range result.Outcomes {
		switch o.Kind {
		case registry.OutcomeLoaded:
			fmt.Fprintf(out, "%s Loaded %s v%s\n", SuccessStyle.Render(iconSuccess), o.Entry.Name, o.Entry.Version)
		case registry.OutcomeFailed:
			fmt.Fprintf(out, "%s Error loading %s: %s\n", ErrorStyle.Render(iconError), o.ManifestPath, o.Diagnostic.Message)
		case registry.OutcomeSkipped:
		}
	}

	if check {
		return checkRegistry(app, output, result.Document)
	}

	if err := registry.Write(app.Fs, output.String(), result.Document); err != nil {
		app.renderIssue(issue.RegistryWriteFailedId)
		return &ExitError{Code: types.ExitFailure, Err: issue.NewErrorContext().
			WithOperation("write registry").
			WithResource(output.String()).
			WithSuggestion("Check that the output directory exists and is writable").
			Wrap(err).
			BuildError()}
	}

	fmt.Fprintf(out, "\n%s Generated %s with %d plugins\n", SuccessStyle.Render(iconSuccess), output.Base(), len(result.Document.Plugins))
	return nil
}

// checkRegistry compares fresh with the registry on disk byte for byte,
// ignoring the generation timestamp.
func checkRegistry(app *App, output types.FilesystemPath, fresh *registry.Document) error {
	stale := func(reason string, cause error) error {
		app.renderIssue(issue.RegistryStaleId)
		ctx := issue.NewErrorContext().
			WithOperation("check registry").
			WithResource(output.String()).
			WithSuggestion("Run 'nasapps registry generate' and commit the result")
		if cause != nil {
			ctx = ctx.Wrap(fmt.Errorf("%s: %w", reason, cause))
		} else {
			ctx = ctx.Wrap(errors.New(reason))
		}
		return &ExitError{Code: types.ExitFailure, Err: ctx.BuildError()}
	}

	same, err := registry.UpToDate(app.Fs, output.String(), fresh)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return stale("registry file does not exist", nil)
		}
		return stale("existing registry is unreadable", err)
	}
	if !same {
		return stale("registry is out of date", nil)
	}

	fmt.Fprintf(app.stdout, "\n%s %s is up to date with %d plugins\n", SuccessStyle.Render(iconSuccess), output.Base(), len(fresh.Plugins))
	return nil
}
