// SPDX-License-Identifier: MPL-2.0

// Package cueutil compiles user CUE files against embedded schemas and turns
// CUE errors into path-qualified messages.
//
//	//go:embed config_schema.cue
//	var schema string
//
//	fields, err := cueutil.DecodeMap(schema, "#Config", data, "nasapps.cue")
//	if err != nil {
//	    return err // "nasapps.cue: ui.color_scheme: ..."
//	}
package cueutil
