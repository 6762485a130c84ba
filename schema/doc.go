// Package schema defines the contract between route definitions and the
// schema libraries that validate request and response data.
//
// An Adapter does two things: it validates a raw value and it exposes a
// structural JSON Schema fragment describing the values it accepts. The
// fragment is consumed by the OpenAPI generator and may be incomplete or
// malformed; consumers must not trust its shape.
//
// Two adapters are provided:
//
//	// JSON Schema documents, validated by santhosh-tekuri/jsonschema.
//	user := schema.MustJSON(`{"type":"object","properties":{"name":{"type":"string"}}}`)
//
//	// Go structs, validated by go-playground/validator tags.
//	type Query struct {
//	    Page int `json:"page" validate:"min=1"`
//	}
//	query := schema.Struct[Query]()
package schema
