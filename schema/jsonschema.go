package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const resourceURL = "routekit://schema.json"

var printer = message.NewPrinter(language.English)

// JSONSchemaAdapter validates values against a JSON Schema document.
type JSONSchemaAdapter struct {
	doc      JSONSchema
	compiled *jsonschema.Schema
}

// FromMap compiles doc into an adapter. Format assertions are enabled.
func FromMap(doc JSONSchema) (*JSONSchemaAdapter, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("schema: encode document: %w", err)
	}
	return FromJSON(data)
}

// FromJSON parses and compiles a JSON Schema document.
func FromJSON(data []byte) (*JSONSchemaAdapter, error) {
	resource, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("schema: parse document: %w", err)
	}

	var doc JSONSchema
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schema: document must be an object: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat()
	if err := compiler.AddResource(resourceURL, resource); err != nil {
		return nil, fmt.Errorf("schema: add resource: %w", err)
	}
	compiled, err := compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("schema: compile: %w", err)
	}

	return &JSONSchemaAdapter{doc: doc, compiled: compiled}, nil
}

// MustJSON is like FromJSON but panics on error. It is intended for
// package-level schema literals.
func MustJSON(doc string) *JSONSchemaAdapter {
	a, err := FromJSON([]byte(doc))
	if err != nil {
		panic(err)
	}
	return a
}

// JSONSchema returns a copy of the source document.
func (a *JSONSchemaAdapter) JSONSchema() JSONSchema {
	return a.doc.Clone()
}

// Validate checks raw against the compiled schema. Byte slices and
// json.RawMessage are decoded as JSON; other values are normalized
// through a JSON round trip so Go structs validate like their encoding.
func (a *JSONSchemaAdapter) Validate(raw any) Result {
	data, err := toJSON(raw)
	if err != nil {
		return Fail(Issue{Message: err.Error(), Code: "decode"})
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return Fail(Issue{Message: err.Error(), Code: "decode"})
	}

	if err := a.compiled.Validate(instance); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return Fail(collectIssues(verr, nil)...)
		}
		return Fail(Issue{Message: err.Error(), Code: "validate"})
	}

	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return Fail(Issue{Message: err.Error(), Code: "decode"})
	}
	return OK(out)
}

func toJSON(raw any) ([]byte, error) {
	switch v := raw.(type) {
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	default:
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("encode value: %w", err)
		}
		return data, nil
	}
}

// collectIssues flattens the validation error tree into its leaves.
func collectIssues(verr *jsonschema.ValidationError, issues []Issue) []Issue {
	if verr == nil {
		return issues
	}
	if len(verr.Causes) == 0 {
		issue := Issue{
			Path:    slices.Clone(verr.InstanceLocation),
			Message: verr.Error(),
		}
		if verr.ErrorKind != nil {
			issue.Message = verr.ErrorKind.LocalizedString(printer)
			issue.Code = strings.Join(verr.ErrorKind.KeywordPath(), "/")
		}
		return append(issues, issue)
	}
	for _, cause := range verr.Causes {
		issues = collectIssues(cause, issues)
	}
	return issues
}
