package openapi

import (
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vitalvas/routekit/pathpattern"
	"github.com/vitalvas/routekit/route"
	"github.com/vitalvas/routekit/schema"
)

// DefaultContentType is used for bodies and responses that do not name one.
const DefaultContentType = "application/json"

// OperationID derives an operation id from a dotted route key by
// upper-casing the first letter of every segment after the first:
// "users.list.byStatus" becomes "usersListByStatus". The rest of each
// segment is kept as is.
func OperationID(key string) string {
	upper := cases.Upper(language.Und)

	var b strings.Builder
	for i, part := range strings.Split(key, ".") {
		if part == "" {
			continue
		}
		if i == 0 || b.Len() == 0 {
			b.WriteString(part)
			continue
		}
		_, size := utf8.DecodeRuneInString(part)
		b.WriteString(upper.String(part[:size]))
		b.WriteString(part[size:])
	}
	return b.String()
}

// buildOperation converts one collected route to an operation.
func (s *Spec) buildOperation(key string, def *route.Definition) *Operation {
	docs := def.Docs()

	op := &Operation{
		Tags:        docs.Tags,
		Summary:     docs.Summary,
		Description: docs.Description,
		OperationID: docs.OperationID,
		Deprecated:  docs.Deprecated,
		Responses:   make(map[string]*Response),
	}
	if op.OperationID == "" {
		op.OperationID = OperationID(key)
	}
	if docs.ExternalDocs != nil {
		op.ExternalDocs = &ExternalDocs{URL: docs.ExternalDocs.URL, Description: docs.ExternalDocs.Description}
	}
	if docs.Security != nil {
		op.Security = make([]SecurityRequirement, 0, len(docs.Security))
		for _, req := range docs.Security {
			op.Security = append(op.Security, SecurityRequirement(req))
		}
	}

	req := def.Request()
	op.Parameters = append(op.Parameters, s.pathParameters(key, def.Path(), req.Params)...)
	op.Parameters = append(op.Parameters, s.slotParameters(key, "query", req.Query)...)
	op.Parameters = append(op.Parameters, s.slotParameters(key, "header", req.Headers)...)

	if req.Body != nil {
		op.RequestBody = s.requestBody(key, req.Body)
	}

	responses := def.Responses()
	for _, code := range def.StatusCodes() {
		op.Responses[code] = s.response(key, code, responses[code])
	}
	if len(op.Responses) == 0 {
		op.Responses["200"] = &Response{Description: "Successful response"}
	}

	return op
}

// pathParameters lists the template parameters, each required, typed from
// the params schema property of the same name when it has a usable one.
func (s *Spec) pathParameters(key, template string, field *route.Field) []*Parameter {
	names := pathpattern.ParamNames(template)
	if len(names) == 0 {
		return nil
	}

	var props map[string]any
	if field != nil {
		props, _ = s.properties(key, field.Schema)
	}

	params := make([]*Parameter, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		param := &Parameter{
			Name:     name,
			In:       "path",
			Required: true,
			Schema:   fromFragment(props[name]),
		}
		finishParameter(param)
		params = append(params, param)
	}
	return params
}

// slotParameters lists the top-level properties of a query or header
// schema in name order. Schemas without top-level properties contribute
// nothing.
func (s *Spec) slotParameters(key, in string, field *route.Field) []*Parameter {
	if field == nil {
		return nil
	}
	props, required := s.properties(key, field.Schema)
	if len(props) == 0 {
		return nil
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	slices.Sort(names)

	params := make([]*Parameter, 0, len(names))
	for _, name := range names {
		param := &Parameter{
			Name:     name,
			In:       in,
			Required: slices.Contains(required, name),
			Schema:   fromFragment(props[name]),
		}
		finishParameter(param)
		params = append(params, param)
	}
	return params
}

// finishParameter lifts the schema description and falls back to an
// unconstrained string schema.
func finishParameter(param *Parameter) {
	if param.Schema == nil {
		param.Schema = &Schema{Type: TypeString("string")}
		return
	}
	if param.Description == "" {
		param.Description = param.Schema.Description
	}
	param.Deprecated = param.Schema.Deprecated
}

func (s *Spec) requestBody(key string, field *route.Field) *RequestBody {
	contentType := field.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}

	return &RequestBody{
		Description: field.Description,
		Required:    field.IsRequired(true),
		Content: map[string]*MediaType{
			contentType: {Schema: s.adapterSchema(key, "body", field.Schema)},
		},
	}
}

func (s *Spec) response(key, code string, resp route.Response) *Response {
	out := &Response{Description: resp.Description}
	if out.Description == "" {
		out.Description = "Response " + code
	}
	if resp.Schema == nil {
		return out
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}
	out.Content = map[string]*MediaType{
		contentType: {Schema: s.adapterSchema(key, "response "+code, resp.Schema)},
	}
	return out
}

// adapterSchema converts the adapter's schema, logging when it is unusable.
func (s *Spec) adapterSchema(key, slot string, a schema.Adapter) *Schema {
	out := fromAdapter(a)
	if out == nil && a != nil {
		s.logger.Debug("no usable schema", "key", key, "slot", slot)
	}
	return out
}

// properties returns the top-level properties and required names of the
// adapter's schema.
func (s *Spec) properties(key string, a schema.Adapter) (map[string]any, []string) {
	doc := rawSchema(a)
	if doc == nil {
		if a != nil {
			s.logger.Debug("no usable schema for parameters", "key", key)
		}
		return nil, nil
	}

	props, _ := asMap(doc["properties"])

	var required []string
	switch list := doc["required"].(type) {
	case []string:
		required = list
	case []any:
		for _, v := range list {
			if name, ok := v.(string); ok {
				required = append(required, name)
			}
		}
	}
	return props, required
}
