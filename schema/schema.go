package schema

import (
	"fmt"
	"strings"
)

// JSONSchema is a raw JSON Schema document as produced by an Adapter.
type JSONSchema map[string]any

// Clone returns a deep copy of the document.
func (s JSONSchema) Clone() JSONSchema {
	if s == nil {
		return nil
	}
	out, _ := cloneValue(map[string]any(s)).(map[string]any)
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case JSONSchema:
		return JSONSchema(cloneValue(map[string]any(val)).(map[string]any))
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	default:
		return v
	}
}

// Issue describes a single validation failure.
type Issue struct {
	Path    []string `json:"path"`
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
}

// String formats the issue as "path: message".
func (i Issue) String() string {
	if len(i.Path) == 0 {
		return i.Message
	}
	return strings.Join(i.Path, ".") + ": " + i.Message
}

// Result is the outcome of Adapter.Validate. On success Data holds the
// validated (and possibly decoded) value; on failure Issues is non-empty.
type Result struct {
	Success bool
	Data    any
	Issues  []Issue
}

// OK returns a successful result carrying data.
func OK(data any) Result {
	return Result{Success: true, Data: data}
}

// Fail returns a failed result with the given issues.
func Fail(issues ...Issue) Result {
	return Result{Issues: issues}
}

// Err converts a failed result into an error. It returns nil on success.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	msgs := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		msgs = append(msgs, issue.String())
	}
	return fmt.Errorf("schema: validation failed: %s", strings.Join(msgs, "; "))
}

// Adapter is the uniform interface over schema libraries. Implementations
// must be safe for concurrent use.
type Adapter interface {
	// Validate checks raw and returns the validated value or issues.
	Validate(raw any) Result
	// JSONSchema returns a structural description of accepted values.
	JSONSchema() JSONSchema
}

// Func adapts a pair of functions into an Adapter.
type Func struct {
	ValidateFunc func(raw any) Result
	SchemaFunc   func() JSONSchema
}

// Validate calls ValidateFunc, accepting every value when it is nil.
func (f Func) Validate(raw any) Result {
	if f.ValidateFunc == nil {
		return OK(raw)
	}
	return f.ValidateFunc(raw)
}

// JSONSchema calls SchemaFunc, returning nil when it is unset.
func (f Func) JSONSchema() JSONSchema {
	if f.SchemaFunc == nil {
		return nil
	}
	return f.SchemaFunc()
}
