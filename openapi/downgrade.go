package openapi

import (
	"slices"
)

// Downgrade rewrites doc in place into its OpenAPI 3.0 form:
//   - type ["T", "null"] becomes type T with nullable
//   - const becomes a single-value enum
//   - examples becomes example
//   - numeric exclusiveMinimum/exclusiveMaximum become minimum/maximum
//     with the boolean flag
//   - anyOf/oneOf null members become nullable
//   - boolean schemas become {} and {"not": {}}
//
// It also clears the 3.1-only info fields.
func Downgrade(doc *Document) {
	if doc == nil {
		return
	}
	doc.Info.Summary = ""
	if doc.Info.License != nil {
		license := *doc.Info.License
		license.Identifier = ""
		doc.Info.License = &license
	}

	for _, item := range doc.Paths {
		for _, op := range item.Operations() {
			for _, param := range op.Parameters {
				downgradeSchema(param.Schema)
			}
			if op.RequestBody != nil {
				for _, media := range op.RequestBody.Content {
					downgradeSchema(media.Schema)
				}
			}
			for _, resp := range op.Responses {
				for _, media := range resp.Content {
					downgradeSchema(media.Schema)
				}
				for _, header := range resp.Headers {
					downgradeSchema(header.Schema)
				}
			}
		}
	}

	if doc.Components != nil {
		for _, s := range doc.Components.Schemas {
			downgradeSchema(s)
		}
	}
}

func downgradeSchema(s *Schema) {
	if s == nil {
		return
	}

	if b, ok := s.Bool(); ok {
		if b {
			*s = Schema{}
		} else {
			*s = Schema{Not: &Schema{}}
		}
		return
	}

	types := s.Type.Values()
	if slices.Contains(types, "null") {
		rest := slices.DeleteFunc(slices.Clone(types), func(t string) bool { return t == "null" })
		s.Nullable = true
		switch len(rest) {
		case 0:
			s.Type = SchemaType{}
		case 1:
			s.Type = TypeString(rest[0])
		default:
			s.Type = SchemaType{}
			for _, t := range rest {
				s.AnyOf = append(s.AnyOf, &Schema{Type: TypeString(t)})
			}
		}
	}

	if s.Const != nil {
		s.Enum = []any{s.Const}
		s.Const = nil
	}

	if len(s.Examples) > 0 {
		if s.Example == nil {
			s.Example = s.Examples[0]
		}
		s.Examples = nil
	}

	if s.ExclusiveMinimum != nil {
		v := *s.ExclusiveMinimum
		s.Minimum = &v
		s.ExclusiveMinimum = nil
		s.exclusiveBoolMin = true
	}
	if s.ExclusiveMaximum != nil {
		v := *s.ExclusiveMaximum
		s.Maximum = &v
		s.ExclusiveMaximum = nil
		s.exclusiveBoolMax = true
	}

	if s.ContentEncoding == "base64" && s.Format == "" {
		s.Format = "byte"
		s.ContentEncoding = ""
	}

	s.AnyOf = dropNullMember(s, s.AnyOf)
	s.OneOf = dropNullMember(s, s.OneOf)

	for _, sub := range s.Properties {
		downgradeSchema(sub)
	}
	for _, sub := range s.PatternProperties {
		downgradeSchema(sub)
	}
	for _, sub := range s.Defs {
		downgradeSchema(sub)
	}
	for _, list := range [][]*Schema{s.AllOf, s.AnyOf, s.OneOf, s.PrefixItems} {
		for _, sub := range list {
			downgradeSchema(sub)
		}
	}
	for _, sub := range []*Schema{
		s.Items, s.AdditionalProperties, s.PropertyNames, s.Contains,
		s.Not, s.If, s.Then, s.Else,
	} {
		downgradeSchema(sub)
	}
}

// dropNullMember removes {"type": "null"} members from an anyOf/oneOf list
// and marks s nullable. A single remaining member moves to allOf, the 3.0
// way to combine a $ref with nullable.
func dropNullMember(s *Schema, members []*Schema) []*Schema {
	if len(members) == 0 {
		return members
	}
	rest := slices.DeleteFunc(slices.Clone(members), func(m *Schema) bool {
		if m == nil {
			return false
		}
		t := m.Type.Values()
		return len(t) == 1 && t[0] == "null"
	})
	if len(rest) == len(members) {
		return members
	}

	s.Nullable = true
	if len(rest) == 1 {
		s.AllOf = append(s.AllOf, rest[0])
		return nil
	}
	return rest
}
