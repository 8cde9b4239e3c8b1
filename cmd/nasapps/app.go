// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/stumpfworks/nasapps/internal/config"
	"github.com/stumpfworks/nasapps/internal/issue"
	"github.com/stumpfworks/nasapps/internal/registry"
	"github.com/stumpfworks/nasapps/pkg/types"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: every Cobra handler receives an App and reads its filesystem,
	// clock, logger and loaded configuration from it.
	App struct {
		Config config.Provider
		Fs     afero.Fs
		Clock  registry.Clock
		stdout io.Writer
		stderr io.Writer
		logger *log.Logger

		// cfg is set by the root command's PersistentPreRunE.
		cfg     *config.Config
		verbose bool
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Fs     afero.Fs
		Clock  registry.Clock
		Stdout io.Writer
		Stderr io.Writer
	}

	// rootFlagValues holds the persistent flags of the root command.
	rootFlagValues struct {
		verbose    bool
		configPath string
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}

	logger := log.NewWithOptions(deps.Stderr, log.Options{
		Prefix: config.AppName,
		Level:  log.WarnLevel,
	})

	return &App{
		Config: deps.Config,
		Fs:     deps.Fs,
		Clock:  deps.Clock,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
		logger: logger,
	}, nil
}

// configure loads the configuration for one invocation and applies the
// verbosity it asks for. --verbose wins over ui.verbose being false.
func (a *App) configure(ctx context.Context, flags *rootFlagValues) error {
	a.verbose = flags.verbose
	if a.verbose {
		a.logger.SetLevel(log.DebugLevel)
	}

	cfg, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: types.FilesystemPath(flags.configPath),
		Fs:             a.Fs,
	})
	if err != nil {
		a.renderIssue(issue.ConfigLoadFailedId)
		return &ExitError{Code: types.ExitFailure, Err: err}
	}

	a.cfg = cfg
	if cfg.UI.Verbose {
		a.verbose = true
		a.logger.SetLevel(log.DebugLevel)
	}
	a.logger.Debug("configuration loaded", "source", sourceLabel(cfg))

	return nil
}

// config returns the loaded configuration, or the defaults when the root
// command's pre-run did not execute.
func (a *App) config() *config.Config {
	if a.cfg == nil {
		return config.DefaultConfig()
	}
	return a.cfg
}

// pluginsDir returns the flag value when set, else the configured root.
func (a *App) pluginsDir(flag string) types.FilesystemPath {
	if flag != "" {
		return types.FilesystemPath(flag)
	}
	return a.config().PluginsDir
}

// renderIssue writes the guide for id to stderr. Rendering failures are
// logged and otherwise ignored; the caller still returns its own error.
func (a *App) renderIssue(id issue.Id) {
	guide := issue.Get(id)
	if guide == nil {
		return
	}
	rendered, err := guide.Render(a.config().UI.GlamourStyle())
	if err != nil {
		a.logger.Debug("failed to render issue guide", "id", id, "err", err)
		return
	}
	fmt.Fprint(a.stderr, rendered)
}

// pluginsDirError turns a failure to list the plugins root into an
// ActionableError and renders the matching guide.
func (a *App) pluginsDirError(root types.FilesystemPath, err error) error {
	a.renderIssue(issue.PluginsDirNotFoundId)

	ctx := issue.NewErrorContext().
		WithOperation("read plugins directory").
		WithResource(root.String()).
		Wrap(err)
	if errors.Is(err, fs.ErrNotExist) {
		ctx = ctx.WithSuggestions(
			"Run nasapps from the catalog repository root",
			"Pass --plugins-dir or set plugins_dir in nasapps.cue",
		)
	}
	return &ExitError{Code: types.ExitFailure, Err: ctx.BuildError()}
}

func sourceLabel(cfg *config.Config) string {
	if cfg.Source == "" {
		return "(defaults)"
	}
	return cfg.Source
}
