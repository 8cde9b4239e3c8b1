// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/stumpfworks/nasapps/pkg/manifest"

	"github.com/spf13/cobra"
)

// newSchemaCommand creates the `nasapps schema` command.
func newSchemaCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for plugin.json",
		Long: `Print a JSON Schema (Draft 2020-12) describing plugin.json.

Point your editor at it to get completion and inline checks while editing
manifests:
  nasapps schema > plugin.schema.json`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			data, err := manifest.JSONSchema()
			if err != nil {
				return err
			}
			_, err = app.stdout.Write(data)
			return err
		},
	}
}
