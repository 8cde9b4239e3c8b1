// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaID is the $id published with the generated plugin.json schema.
const SchemaID = "https://github.com/Stumpf-works/stumpfworks-nas-apps/plugin.schema.json"

// JSONSchema reflects Manifest into a JSON Schema (Draft 2020-12) document,
// indented with two spaces. Editors can use it to autocomplete plugin.json.
func JSONSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct:             true,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	schema := reflector.Reflect(&Manifest{})
	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "NAS plugin manifest"
	schema.Description = "Describes one plugin directory (" + FileName + ") in the apps repository."

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	return append(data, '\n'), nil
}
