// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/stumpfworks/nasapps/internal/issue"
	"github.com/stumpfworks/nasapps/pkg/types"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the nasapps command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "nasapps",
		Short: "Plugin catalog tooling for the NAS apps repository",
		Long: TitleStyle.Render("nasapps") + SubtitleStyle.Render(" - Plugin catalog tooling for the NAS apps repository") + `

nasapps reads every plugins/<slug>/plugin.json in the apps repository.
It validates the manifests against the catalog rules and generates the
registry.json index that NAS installations download.

` + SubtitleStyle.Render("Examples:") + `
  nasapps validate                 Check every plugin manifest
  nasapps registry generate        Write registry.json
  nasapps registry generate --check
                                   Fail when registry.json is out of date
  nasapps schema                   Print the plugin.json JSON Schema
  nasapps config show              Show the effective configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.configure(cmd.Context(), flags)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is ./nasapps.cue when present)")

	rootCmd.AddCommand(
		newValidateCommand(app),
		newRegistryCommand(app),
		newSchemaCommand(app),
		newConfigCommand(app),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI with the process arguments and exits with its code.
// This is called by main.main().
func Execute() {
	os.Exit(int(run(context.Background(), os.Args[1:], Dependencies{})))
}

// run executes one invocation and returns its exit code.
func run(ctx context.Context, args []string, deps Dependencies) types.ExitCode {
	app, err := NewApp(deps)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return types.ExitFailure
	}

	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.handleError),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		return types.ExitFailure
	}
	return types.ExitSuccess
}

// handleError prints err unless it is a silent ExitError. Actionable errors
// are printed with their suggestions; everything else goes to fang.
func (a *App) handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(ae, a.verbose))
		return
	}

	fang.DefaultErrorHandler(w, styles, err)
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
