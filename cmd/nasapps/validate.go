// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/stumpfworks/nasapps/internal/issue"
	"github.com/stumpfworks/nasapps/internal/validate"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	formatText reportFormat = "text"
	formatJSON reportFormat = "json"
	formatYAML reportFormat = "yaml"

	ruleWidth = 60
)

type (
	// reportFormat selects how the validation report is printed.
	reportFormat string

	// validateFlagValues holds the flags of `nasapps validate`.
	validateFlagValues struct {
		pluginsDir string
		format     string
		explain    bool
		watch      bool
	}
)

// newValidateCommand creates the `nasapps validate` command.
func newValidateCommand(app *App) *cobra.Command {
	flags := &validateFlagValues{}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate every plugin manifest",
		Long: `Validate every plugins/<slug>/plugin.json against the catalog rules.

Errors fail the run (exit status 1). Warnings are reported but do not fail it.
A plugin directory without a manifest is a warning.

Examples:
  nasapps validate
  nasapps validate --explain               Show how to fix what was found
  nasapps validate --format json           Machine-readable report
  nasapps validate --watch                 Re-validate on manifest changes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd.Context(), app, flags)
		},
	}

	validateCmd.Flags().StringVar(&flags.pluginsDir, "plugins-dir", "", "plugins directory (default from config: plugins)")
	validateCmd.Flags().StringVarP(&flags.format, "format", "f", string(formatText), "report format: text, json or yaml")
	validateCmd.Flags().BoolVar(&flags.explain, "explain", false, "print a fix-it guide for every kind of finding")
	validateCmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "re-validate whenever a manifest changes")

	return validateCmd
}

func runValidate(ctx context.Context, app *App, flags *validateFlagValues) error {
	format, err := parseReportFormat(flags.format)
	if err != nil {
		return err
	}
	root := app.pluginsDir(flags.pluginsDir)
	validator := validate.New(app.Fs, app.logger)

	pass := func(ctx context.Context) error {
		report, err := validator.Run(ctx, root.String())
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			return app.pluginsDirError(root, err)
		}

		if err := printReport(app.stdout, report, format); err != nil {
			return err
		}
		if flags.explain {
			app.explain(report)
		}
		if !report.Passed() {
			return failed()
		}
		return nil
	}

	if flags.watch {
		return runWatchMode(ctx, app, root, "validation", pass)
	}
	return pass(ctx)
}

func parseReportFormat(s string) (reportFormat, error) {
	switch f := reportFormat(strings.ToLower(s)); f {
	case formatText, formatJSON, formatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("invalid --format %q (valid: text, json, yaml)", s)
	}
}

func printReport(w io.Writer, report *validate.Report, format reportFormat) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report.Export()); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return nil
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report.Export()); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return enc.Close()
	default:
		printTextReport(w, report)
		return nil
	}
}

// printTextReport prints the per-plugin breakdown, the totals and the verdict.
func printTextReport(w io.Writer, report *validate.Report) {
	warn := WarningStyle.Render(iconWarning)

	fmt.Fprintf(w, "%s Validating plugin manifests...\n\n", iconSearch)

	for _, p := range report.Plugins {
		if p.MissingManifest {
			fmt.Fprintf(w, "%s  %s: %s\n", warn, p.Slug, p.Warnings[0].Message)
			continue
		}
		if len(p.Errors) > 0 {
			fmt.Fprintf(w, "%s %s:\n", ErrorStyle.Render(iconError), p.Slug)
			for _, d := range p.Errors {
				fmt.Fprintf(w, "   ERROR: %s\n", d.Message)
			}
		}
		if len(p.Warnings) > 0 {
			fmt.Fprintf(w, "%s  %s:\n", warn, p.Slug)
			for _, d := range p.Warnings {
				fmt.Fprintf(w, "   WARNING: %s\n", d.Message)
			}
		}
		if p.Valid() {
			fmt.Fprintf(w, "%s %s: Valid\n", SuccessStyle.Render(iconSuccess), p.Slug)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", ruleWidth))
	fmt.Fprintf(w, "Total plugins checked: %d\n", report.PluginCount())
	fmt.Fprintf(w, "Errors: %d\n", report.ErrorCount())
	fmt.Fprintf(w, "Warnings: %d\n", report.WarningCount())

	if report.Passed() {
		fmt.Fprintf(w, "\n%s All plugins are valid!\n", SuccessStyle.Render(iconSuccess))
	} else {
		fmt.Fprintf(w, "\n%s Validation failed!\n", ErrorStyle.Render(iconError))
	}
}

// explain renders the guides matching the report's finding codes to stderr.
func (a *App) explain(report *validate.Report) {
	codes := report.Codes()
	names := make([]string, len(codes))
	for i, c := range codes {
		names[i] = string(c)
	}
	for _, guide := range issue.ForCodes(names...) {
		a.renderIssue(guide.Id())
	}
}
