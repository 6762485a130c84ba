package openapi

import (
	"encoding/json"

	"github.com/vitalvas/routekit/schema"
)

// schemaMarkers are the keywords that make a fragment a usable schema.
var schemaMarkers = []string{
	"type", "$ref", "oneOf", "anyOf", "allOf",
	"properties", "items", "enum", "const", "not",
}

// rawSchema returns the adapter's document, or nil when the adapter is nil,
// panics or returns nothing.
func rawSchema(a schema.Adapter) (doc map[string]any) {
	if a == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			doc = nil
		}
	}()

	out := a.JSONSchema()
	if len(out) == 0 {
		return nil
	}
	return map[string]any(out)
}

// fromAdapter converts the adapter's document to a Schema.
func fromAdapter(a schema.Adapter) *Schema {
	doc := rawSchema(a)
	if doc == nil {
		return nil
	}
	return fromFragment(doc)
}

// fromFragment converts a raw schema fragment. It returns nil for anything
// that is not an object carrying a schema keyword or that does not decode
// into the document model.
func fromFragment(v any) (out *Schema) {
	m, ok := asMap(v)
	if !ok || !hasMarker(m) {
		return nil
	}
	defer func() {
		if recover() != nil {
			out = nil
		}
	}()

	data, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}

	// The fragment is embedded in the document, not a standalone resource.
	s.SchemaURI = ""
	s.ID = ""
	return &s
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case schema.JSONSchema:
		return map[string]any(m), true
	}
	return nil, false
}

func hasMarker(m map[string]any) bool {
	for _, key := range schemaMarkers {
		if _, ok := m[key]; ok {
			return true
		}
	}
	return false
}
