package schema

import (
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Exampler can be implemented by types to provide an example value for the
// generated schema.
//
//	func (u User) SchemaExample() any {
//	    return User{ID: "550e8400-e29b-41d4-a716-446655440000", Name: "Alice"}
//	}
type Exampler interface {
	SchemaExample() any
}

var timeType = reflect.TypeOf(time.Time{})

// Generate produces an inline JSON Schema for the Go type of v. Struct
// fields follow encoding/json naming, the `openapi` tag sets constraint
// keywords and common `validate` tags are mirrored (required, min, max,
// len, gt, gte, lt, lte, oneof, email, uuid, url).
func Generate(v any) JSONSchema {
	if v == nil {
		return nil
	}
	return GenerateType(reflect.TypeOf(v))
}

// GenerateType is like Generate but takes a reflect.Type.
func GenerateType(t reflect.Type) JSONSchema {
	g := &generator{inProgress: make(map[reflect.Type]bool)}
	return g.generateType(t)
}

type generator struct {
	inProgress map[reflect.Type]bool
}

func (g *generator) generateType(t reflect.Type) JSONSchema {
	nullable := false
	if t.Kind() == reflect.Pointer {
		nullable = true
		t = t.Elem()
	}

	s := g.generateInlineType(t)
	if s != nil && nullable {
		applyNullable(s)
	}
	return s
}

func (g *generator) generateInlineType(t reflect.Type) JSONSchema {
	if t == timeType {
		return JSONSchema{"type": "string", "format": "date-time"}
	}

	switch t.Kind() {
	case reflect.Bool:
		return JSONSchema{"type": "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return JSONSchema{"type": "integer"}
	case reflect.Float32, reflect.Float64:
		return JSONSchema{"type": "number"}
	case reflect.String:
		return JSONSchema{"type": "string"}
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return JSONSchema{"type": "string", "format": "byte"}
		}
		return g.arraySchema(t.Elem())
	case reflect.Array:
		return g.arraySchema(t.Elem())
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return JSONSchema{"type": "object"}
		}
		s := JSONSchema{"type": "object"}
		if elem := g.generateType(t.Elem()); elem != nil {
			s["additionalProperties"] = map[string]any(elem)
		}
		return s
	case reflect.Struct:
		return g.generateStructSchema(t)
	case reflect.Interface:
		return JSONSchema{}
	}

	return nil
}

func (g *generator) arraySchema(elem reflect.Type) JSONSchema {
	s := JSONSchema{"type": "array"}
	if items := g.generateType(elem); items != nil {
		s["items"] = map[string]any(items)
	}
	return s
}

func (g *generator) generateStructSchema(t reflect.Type) JSONSchema {
	// Recursive types collapse to a plain object at the cycle.
	if g.inProgress[t] {
		return JSONSchema{"type": "object"}
	}
	g.inProgress[t] = true
	defer delete(g.inProgress, t)

	s := JSONSchema{"type": "object"}
	props := make(map[string]any)
	var required []any
	g.collectFields(t, props, &required)

	if len(props) > 0 {
		s["properties"] = props
	}
	if len(required) > 0 {
		s["required"] = required
	}

	if ex, ok := reflect.New(t).Elem().Interface().(Exampler); ok {
		s["example"] = ex.SchemaExample()
	}
	return s
}

func (g *generator) collectFields(t reflect.Type, props map[string]any, required *[]any) {
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		// encoding/json inlines anonymous structs without a tag name.
		if field.Anonymous {
			if name, _ := parseJSONTag(field.Tag.Get("json")); name == "" {
				ft := field.Type
				if ft.Kind() == reflect.Pointer {
					ft = ft.Elem()
				}
				if ft.Kind() == reflect.Struct {
					g.collectFields(ft, props, required)
					continue
				}
			}
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name, opts := parseJSONTag(jsonTag)
		if name == "" {
			name = field.Name
		}

		fieldSchema := g.generateType(field.Type)
		if fieldSchema == nil {
			continue
		}

		isRequired := applyValidateTag(fieldSchema, field.Tag.Get("validate"))
		applyOpenAPITag(fieldSchema, field.Tag.Get("openapi"))
		if opts.stringEncode {
			applyStringEncoding(fieldSchema)
		}

		props[name] = map[string]any(fieldSchema)
		if isRequired {
			*required = append(*required, name)
		}
	}
}

type jsonTagOpts struct {
	stringEncode bool
}

func parseJSONTag(tag string) (string, jsonTagOpts) {
	if tag == "" {
		return "", jsonTagOpts{}
	}
	name, rest, _ := strings.Cut(tag, ",")
	return name, jsonTagOpts{
		stringEncode: strings.Contains(rest, "string"),
	}
}

// applyValidateTag mirrors validator rules as schema keywords and reports
// whether the field is required.
func applyValidateTag(s JSONSchema, tag string) bool {
	if tag == "" {
		return false
	}

	required := false
	for rule := range strings.SplitSeq(tag, ",") {
		key, value, _ := strings.Cut(strings.TrimSpace(rule), "=")
		switch key {
		case "required":
			required = true
		case "min", "gte":
			setBound(s, value, "minimum", "minLength", "minItems")
		case "max", "lte":
			setBound(s, value, "maximum", "maxLength", "maxItems")
		case "gt":
			if kind(s) == "integer" || kind(s) == "number" {
				setNumber(s, "exclusiveMinimum", value)
			}
		case "lt":
			if kind(s) == "integer" || kind(s) == "number" {
				setNumber(s, "exclusiveMaximum", value)
			}
		case "len":
			setBound(s, value, "", "minLength", "minItems")
			setBound(s, value, "", "maxLength", "maxItems")
		case "oneof":
			fields := strings.Fields(value)
			enum := make([]any, len(fields))
			for i, f := range fields {
				enum[i] = parseTypedValue(s, f)
			}
			s["enum"] = enum
		case "email":
			s["format"] = "email"
		case "uuid", "uuid4":
			s["format"] = "uuid"
		case "url", "uri":
			s["format"] = "uri"
		}
	}
	return required
}

// setBound writes value to the numeric, string or array keyword matching
// the schema type.
func setBound(s JSONSchema, value, numeric, str, array string) {
	switch kind(s) {
	case "integer", "number":
		if numeric != "" {
			setNumber(s, numeric, value)
		}
	case "string":
		setInt(s, str, value)
	case "array":
		setInt(s, array, value)
	}
}

func setNumber(s JSONSchema, key, value string) {
	if v, err := strconv.ParseFloat(value, 64); err == nil {
		s[key] = v
	}
}

func setInt(s JSONSchema, key, value string) {
	if v, err := strconv.Atoi(value); err == nil {
		s[key] = v
	}
}

// kind returns the primary non-null type of s.
func kind(s JSONSchema) string {
	switch t := s["type"].(type) {
	case string:
		return t
	case []any:
		for _, v := range t {
			if name, ok := v.(string); ok && name != "null" {
				return name
			}
		}
	}
	return ""
}

// applyOpenAPITag parses the `openapi` struct tag and applies its keywords.
func applyOpenAPITag(s JSONSchema, tag string) {
	if tag == "" {
		return
	}

	for part := range strings.SplitSeq(tag, ",") {
		key, value, _ := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "description", "format", "pattern", "title":
			s[key] = value
		case "example", "default", "const":
			s[key] = parseTypedValue(s, value)
		case "minimum", "maximum", "exclusiveMinimum", "exclusiveMaximum", "multipleOf":
			setNumber(s, key, value)
		case "minLength", "maxLength", "minItems", "maxItems", "minProperties", "maxProperties":
			setInt(s, key, value)
		case "enum":
			values := strings.Split(value, "|")
			enum := make([]any, len(values))
			for i, v := range values {
				enum[i] = parseTypedValue(s, v)
			}
			s["enum"] = enum
		case "deprecated", "readOnly", "writeOnly", "uniqueItems":
			s[key] = true
		}
	}
}

// parseTypedValue converts a tag value to the Go type matching the schema.
func parseTypedValue(s JSONSchema, value string) any {
	switch kind(s) {
	case "integer":
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			return v
		}
	case "number":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	case "boolean":
		if v, err := strconv.ParseBool(value); err == nil {
			return v
		}
	}
	return value
}

// applyNullable widens the type to include null.
func applyNullable(s JSONSchema) {
	if t, ok := s["type"].(string); ok {
		s["type"] = []any{t, "null"}
	}
}

// applyStringEncoding matches the encoding/json ",string" option.
func applyStringEncoding(s JSONSchema) {
	switch t := s["type"].(type) {
	case string:
		s["type"] = "string"
	case []any:
		if len(t) > 1 {
			s["type"] = []any{"string", "null"}
		} else {
			s["type"] = "string"
		}
	}
}
