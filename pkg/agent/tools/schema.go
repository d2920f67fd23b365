package tools

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// SchemaFor reflects the JSON schema of an argument struct. Field names come
// from json tags, descriptions from jsonschema_description tags, and fields
// tagged omitempty are optional.
func SchemaFor(args any) map[string]any {
	reflector := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
	}
	raw, err := json.Marshal(reflector.Reflect(args))
	if err != nil {
		panic(err)
	}

	var schema map[string]any
	if err := json.Unmarshal(raw, &schema); err != nil {
		panic(err)
	}
	delete(schema, "$schema")
	delete(schema, "$id")
	if _, ok := schema["properties"]; !ok {
		schema["properties"] = map[string]any{}
	}
	return schema
}
