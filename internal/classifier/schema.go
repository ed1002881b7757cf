package classifier

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// ArtifactSchema returns the JSON Schema describing artifact files.
func ArtifactSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(&Artifact{})
	schema.Title = "Bloomly classifier artifact"
	return json.MarshalIndent(schema, "", "  ")
}
