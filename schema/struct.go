package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

// StructAdapter validates values by decoding them into T and running the
// `validate` struct tags of T.
type StructAdapter[T any] struct {
	validate *validator.Validate
	doc      JSONSchema
}

// Struct returns an adapter for T. The JSON Schema is generated once from
// the type's fields.
func Struct[T any]() *StructAdapter[T] {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _ := parseJSONTag(field.Tag.Get("json"))
		switch name {
		case "-":
			return ""
		case "":
			return field.Name
		}
		return name
	})

	return &StructAdapter[T]{
		validate: v,
		doc:      GenerateType(reflect.TypeFor[T]()),
	}
}

// JSONSchema returns a copy of the generated schema.
func (a *StructAdapter[T]) JSONSchema() JSONSchema {
	return a.doc.Clone()
}

// Validate decodes raw into T and validates it. On success Data holds a T.
func (a *StructAdapter[T]) Validate(raw any) Result {
	_, res := a.Decode(raw)
	return res
}

// Decode is like Validate but also returns the typed value.
func (a *StructAdapter[T]) Decode(raw any) (T, Result) {
	var zero T

	value, err := decodeInto[T](raw)
	if err != nil {
		return zero, Fail(Issue{Message: err.Error(), Code: "decode"})
	}

	if issues := a.check(value); len(issues) > 0 {
		return zero, Fail(issues...)
	}
	return value, OK(value)
}

func (a *StructAdapter[T]) check(value T) []Issue {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	err := a.validate.Struct(rv.Interface())
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Issue{{Message: err.Error(), Code: "validate"}}
	}

	issues := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, Issue{
			Path:    fieldPath(fe.Namespace()),
			Message: fieldMessage(fe),
			Code:    fe.Tag(),
		})
	}
	return issues
}

// fieldPath drops the root type name from a validator namespace.
func fieldPath(namespace string) []string {
	parts := strings.Split(namespace, ".")
	if len(parts) <= 1 {
		return nil
	}
	return parts[1:]
}

func fieldMessage(fe validator.FieldError) string {
	if fe.Param() != "" {
		return fmt.Sprintf("failed on the %q rule (%s)", fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("failed on the %q rule", fe.Tag())
}

func decodeInto[T any](raw any) (T, error) {
	var out T

	switch v := raw.(type) {
	case T:
		return v, nil
	case *T:
		if v == nil {
			return out, errors.New("nil value")
		}
		return *v, nil
	case []byte:
		err := json.Unmarshal(v, &out)
		return out, err
	case json.RawMessage:
		err := json.Unmarshal(v, &out)
		return out, err
	case map[string][]string:
		return decodeMap[T](flattenValues(v))
	case url.Values:
		return decodeMap[T](flattenValues(v))
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}
		return decodeMap[T](m)
	case map[string]any:
		return decodeMap[T](v)
	case nil:
		return out, nil
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(data, &out)
	return out, err
}

func decodeMap[T any](m map[string]any) (T, error) {
	var out T
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc("2006-01-02T15:04:05Z07:00"),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return out, err
	}
	err = decoder.Decode(m)
	return out, err
}

// flattenValues turns single-element value lists (url.Values, headers)
// into scalars.
func flattenValues(values map[string][]string) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		switch len(v) {
		case 0:
		case 1:
			out[k] = v[0]
		default:
			out[k] = append([]string(nil), v...)
		}
	}
	return out
}
