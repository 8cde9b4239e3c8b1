// SPDX-License-Identifier: MPL-2.0

// Package config loads nasapps settings using Viper with CUE as the file format.
//
// Defaults reproduce the fixed layout of the catalog repository: manifests
// under plugins/, output in registry.json, URLs built from the upstream
// repository. A nasapps.cue file in the working directory (or the file given
// with --config) overrides any subset of them. The file is checked against the
// embedded config_schema.cue and the decoded struct is checked again with
// go-playground/validator.
package config
