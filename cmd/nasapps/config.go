// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/stumpfworks/nasapps/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `nasapps config` command tree. The
// configuration itself is loaded by the root command before any of these run.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect nasapps configuration",
		Long: `Inspect nasapps configuration.

Configuration is read from nasapps.cue in the working directory, or from the
file passed with --config. Without a file the built-in defaults apply.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			showConfig(app.stdout, app.config())
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := io.WriteString(app.stdout, config.GenerateCUE(app.config()))
			return err
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "schema",
		Short: "Output the CUE schema nasapps.cue is checked against",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := io.WriteString(app.stdout, config.Schema())
			return err
		},
	})

	return cfgCmd
}

func showConfig(w io.Writer, cfg *config.Config) {
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	if cfg.Source != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), cfg.Source)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("plugins_dir"), valueStyle.Render(cfg.PluginsDir.String()))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("registry_file"), valueStyle.Render(cfg.RegistryFile.String()))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("repository_url"), valueStyle.Render(cfg.RepositoryURL))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("registry_version"), valueStyle.Render(cfg.RegistryVersion))

	fmt.Fprintln(w)
	fmt.Fprintln(w, SubtitleStyle.Render("UI:"))
	fmt.Fprintf(w, "  %s: %s\n", keyStyle.Render("verbose"), valueStyle.Render(fmt.Sprint(cfg.UI.Verbose)))
	fmt.Fprintf(w, "  %s: %s\n", keyStyle.Render("color_scheme"), valueStyle.Render(cfg.UI.ColorScheme.String()))
}
