// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Unify compiles data, unifies it with the named definition of schema and
// validates the result. Incomplete values are allowed, so every field of the
// definition may be left out of the file.
func Unify(schema, definition string, data []byte, filename string) (cue.Value, error) {
	if err := CheckFileSize(data, DefaultMaxFileSize, filename); err != nil {
		return cue.Value{}, err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(schema)
	if err := schemaValue.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("internal error: failed to compile schema: %w", err)
	}
	def := schemaValue.LookupPath(cue.ParsePath(definition))
	if !def.Exists() {
		return cue.Value{}, fmt.Errorf("internal error: schema has no definition %s", definition)
	}

	userValue := ctx.CompileBytes(data, cue.Filename(filename))
	if err := userValue.Err(); err != nil {
		return cue.Value{}, FormatError(err, filename)
	}

	unified := def.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return cue.Value{}, FormatError(err, filename)
	}

	return unified, nil
}

// DecodeMap is Unify followed by a decode into a generic map, the shape
// viper.MergeConfigMap expects.
func DecodeMap(schema, definition string, data []byte, filename string) (map[string]any, error) {
	unified, err := Unify(schema, definition, data, filename)
	if err != nil {
		return nil, err
	}

	var out map[string]any
	if err := unified.Decode(&out); err != nil {
		return nil, FormatError(err, filename)
	}
	return out, nil
}
