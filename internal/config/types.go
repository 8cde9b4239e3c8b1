// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"

	"github.com/stumpfworks/nasapps/internal/registry"
	"github.com/stumpfworks/nasapps/pkg/types"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultPluginsDir is the plugins root relative to the working directory.
	DefaultPluginsDir types.FilesystemPath = "plugins"
	// DefaultRegistryFile is the registry output path.
	DefaultRegistryFile types.FilesystemPath = "registry.json"
	// DefaultRepositoryURL is the catalog repository the URLs point into.
	DefaultRepositoryURL = "https://github.com/Stumpf-works/stumpfworks-nas-apps"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")

	validate = validator.New(validator.WithRequiredStructEnabled())
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidConfigError collects the field errors of a Config.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config is the effective nasapps configuration.
	Config struct {
		// PluginsDir is the directory scanned for plugin manifests.
		PluginsDir types.FilesystemPath `json:"plugins_dir" mapstructure:"plugins_dir" validate:"required"`
		// RegistryFile is where the registry is written.
		RegistryFile types.FilesystemPath `json:"registry_file" mapstructure:"registry_file" validate:"required"`
		// RepositoryURL is the base of every generated URL.
		RepositoryURL string `json:"repository_url" mapstructure:"repository_url" validate:"required,url,endsnotwith=/"`
		// RegistryVersion is the catalog format version.
		RegistryVersion string `json:"registry_version" mapstructure:"registry_version" validate:"required,semver"`
		// UI configures terminal output.
		UI UIConfig `json:"ui" mapstructure:"ui"`

		// Source is the file the configuration was read from; empty for defaults.
		Source string `json:"-" mapstructure:"-"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables debug logging.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// ColorScheme selects the style used for rendered guides.
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme" validate:"oneof=auto dark light"`
	}
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		PluginsDir:      DefaultPluginsDir,
		RegistryFile:    DefaultRegistryFile,
		RepositoryURL:   DefaultRepositoryURL,
		RegistryVersion: registry.CatalogVersion,
		UI: UIConfig{
			Verbose:     false,
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// IsValid checks the struct tags, then the typed fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error

	var verrs validator.ValidationErrors
	if err := validate.Struct(c); err != nil {
		if !errors.As(err, &verrs) {
			return false, []error{&InvalidConfigError{FieldErrors: []error{err}}}
		}
		for _, fe := range verrs {
			errs = append(errs, fmt.Errorf("%s: failed %q check (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
	}
	if valid, fieldErrs := c.PluginsDir.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.RegistryFile.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}

	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// GlamourStyle maps the color scheme to a glamour style name.
func (c UIConfig) GlamourStyle() string {
	if c.ColorScheme == "" {
		return string(ColorSchemeAuto)
	}
	return string(c.ColorScheme)
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, fe := range e.FieldErrors {
		msgs[i] = fe.Error()
	}
	return fmt.Sprintf("invalid config: %d field error(s): %v", len(e.FieldErrors), msgs)
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}
