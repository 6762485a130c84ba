package mux

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/spf13/cast"

	"github.com/vitalvas/routekit/route"
	"github.com/vitalvas/routekit/schema"
)

// validateRequest runs the params, query, headers and body slots of def
// through their adapters. Query, path and header strings are coerced to
// the property type of the slot schema first. The request body is read and
// replaced so handlers can decode it again. A non-nil error means the body
// could not be read.
func validateRequest(req *http.Request, def *route.Definition, params map[string]string) (Input, []schema.Issue, error) {
	var (
		in     Input
		issues []schema.Issue
	)
	slots := def.Request()

	if f := slots.Params; f != nil && f.Schema != nil {
		props := properties(f.Schema)
		raw := make(map[string]any, len(params))
		for name, value := range params {
			raw[name] = coerce(value, props[name])
		}
		in.Params, issues = check(issues, route.SlotParams, f.Schema, raw)
	}

	if f := slots.Query; f != nil && f.Schema != nil {
		props := properties(f.Schema)
		raw := make(map[string]any)
		for name, values := range req.URL.Query() {
			prop := props[name]
			if schemaType(prop) == "array" {
				items, _ := asMap(prop["items"])
				list := make([]any, len(values))
				for i, value := range values {
					list[i] = coerce(value, items)
				}
				raw[name] = list
				continue
			}
			if len(values) > 0 {
				raw[name] = coerce(values[0], prop)
			}
		}
		in.Query, issues = check(issues, route.SlotQuery, f.Schema, raw)
	}

	if f := slots.Headers; f != nil && f.Schema != nil {
		props := properties(f.Schema)
		raw := make(map[string]any, len(props))
		for name, prop := range props {
			if value := req.Header.Get(name); value != "" {
				raw[name] = coerce(value, prop)
			}
		}
		in.Headers, issues = check(issues, route.SlotHeaders, f.Schema, raw)
	}

	if f := slots.Body; f != nil {
		var data []byte
		if req.Body != nil {
			var err error
			data, err = io.ReadAll(req.Body)
			if err != nil {
				return Input{}, nil, err
			}
			req.Body = io.NopCloser(bytes.NewReader(data))
		}

		switch {
		case len(bytes.TrimSpace(data)) == 0:
			if f.IsRequired(true) {
				issues = append(issues, schema.Issue{
					Path:    []string{string(route.SlotBody)},
					Message: "request body is required",
					Code:    "required",
				})
			}
		case f.Schema == nil || !isJSON(f.ContentType):
		default:
			var decoded any
			if err := json.Unmarshal(data, &decoded); err != nil {
				issues = append(issues, schema.Issue{
					Path:    []string{string(route.SlotBody)},
					Message: "invalid JSON: " + err.Error(),
					Code:    "json",
				})
				break
			}
			in.Body, issues = check(issues, route.SlotBody, f.Schema, decoded)
		}
	}

	return in, issues, nil
}

// check validates raw and prefixes the issue paths with the slot name.
func check(issues []schema.Issue, slot route.Slot, a schema.Adapter, raw any) (any, []schema.Issue) {
	result := a.Validate(raw)
	if result.Success {
		return result.Data, issues
	}
	if len(result.Issues) == 0 {
		return nil, append(issues, schema.Issue{Path: []string{string(slot)}, Message: "invalid value"})
	}
	for _, issue := range result.Issues {
		issue.Path = append([]string{string(slot)}, issue.Path...)
		issues = append(issues, issue)
	}
	return nil, issues
}

func isJSON(contentType string) bool {
	return contentType == "" || strings.Contains(strings.ToLower(contentType), "json")
}

// coerce converts a string to the primitive type named by prop. Values
// that do not convert stay strings so the adapter reports them.
func coerce(value string, prop map[string]any) any {
	var (
		out any
		err error
	)
	switch schemaType(prop) {
	case "integer":
		out, err = cast.ToInt64E(value)
	case "number":
		out, err = cast.ToFloat64E(value)
	case "boolean":
		out, err = cast.ToBoolE(value)
	default:
		return value
	}
	if err != nil {
		return value
	}
	return out
}

// schemaType returns the first non-null type name of a schema fragment.
func schemaType(prop map[string]any) string {
	switch t := prop["type"].(type) {
	case string:
		return t
	case []any:
		for _, v := range t {
			if name, ok := v.(string); ok && name != "null" {
				return name
			}
		}
	case []string:
		if i := slices.IndexFunc(t, func(name string) bool { return name != "null" }); i >= 0 {
			return t[i]
		}
	}
	return ""
}

// properties returns the top-level property schemas of the adapter's
// document. Adapters that panic or declare no properties yield nil.
func properties(a schema.Adapter) (props map[string]map[string]any) {
	defer func() {
		if recover() != nil {
			props = nil
		}
	}()

	raw, ok := asMap(a.JSONSchema()["properties"])
	if !ok {
		return nil
	}
	props = make(map[string]map[string]any, len(raw))
	for name, v := range raw {
		if m, ok := asMap(v); ok {
			props[name] = m
		}
	}
	return props
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
