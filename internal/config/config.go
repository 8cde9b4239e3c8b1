// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/stumpfworks/nasapps/internal/issue"
	"github.com/stumpfworks/nasapps/pkg/cueutil"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "nasapps"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "nasapps"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
)

//go:embed config_schema.cue
var configSchema string

// Schema returns the embedded CUE schema for nasapps.cue.
func Schema() string { return configSchema }

// loadWithOptions resolves the config file, merges it over the defaults and
// validates the result.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load config canceled: %w", err)
	}

	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	v := viper.New()
	defaults := DefaultConfig()
	v.SetDefault("plugins_dir", defaults.PluginsDir.String())
	v.SetDefault("registry_file", defaults.RegistryFile.String())
	v.SetDefault("repository_url", defaults.RepositoryURL)
	v.SetDefault("registry_version", defaults.RegistryVersion)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme.String())

	path, err := resolvePath(fsys, opts)
	if err != nil {
		return nil, err
	}

	if path != "" {
		if err := loadCUEIntoViper(fsys, v, path); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the values match the schema printed by 'nasapps config schema'").
				WithSuggestion("Use 'nasapps config show' to see the effective configuration").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Source = path

	if valid, errs := cfg.IsValid(); !valid {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithSuggestion("repository_url must be an http(s) URL without a trailing slash").
			WithSuggestion("registry_version must look like 1.0.0").
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	return &cfg, nil
}

// resolvePath returns the config file to load, or "" when defaults apply.
// An explicit ConfigFilePath must exist; the working-directory file is optional.
func resolvePath(fsys afero.Fs, opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		path := opts.ConfigFilePath.String()
		if !fileExists(fsys, path) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithSuggestion("Omit --config to use nasapps.cue from the working directory").
				Wrap(fmt.Errorf("config file not found: %s: %w", path, fs.ErrNotExist)).
				BuildError()
		}
		return path, nil
	}

	local := filepath.Join(opts.WorkDir.String(), ConfigFileName+"."+ConfigFileExt)
	if fileExists(fsys, local) {
		return local, nil
	}
	return "", nil
}

// loadCUEIntoViper validates the file against #Config and merges its
// contents into v, on top of the defaults.
func loadCUEIntoViper(fsys afero.Fs, v *viper.Viper, path string) error {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := cueutil.DecodeMap(configSchema, "#Config", data, path)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory.
func fileExists(fsys afero.Fs, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && !info.IsDir()
}

// GenerateCUE renders cfg as a nasapps.cue file.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// nasapps configuration\n\n")
	fmt.Fprintf(&sb, "plugins_dir:      %q\n", cfg.PluginsDir)
	fmt.Fprintf(&sb, "registry_file:    %q\n", cfg.RegistryFile)
	fmt.Fprintf(&sb, "repository_url:   %q\n", cfg.RepositoryURL)
	fmt.Fprintf(&sb, "registry_version: %q\n", cfg.RegistryVersion)

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose:      %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	sb.WriteString("}\n")

	return sb.String()
}
