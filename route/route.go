package route

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/vitalvas/routekit/schema"
)

// Method is an HTTP method.
type Method string

// Supported methods.
const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodOptions Method = "OPTIONS"
	MethodHead    Method = "HEAD"
	MethodTrace   Method = "TRACE"
)

// Methods returns every supported method.
func Methods() []Method {
	return []Method{
		MethodGet, MethodPost, MethodPut, MethodPatch,
		MethodDelete, MethodOptions, MethodHead, MethodTrace,
	}
}

// Valid reports whether m is a supported method.
func (m Method) Valid() bool {
	return slices.Contains(Methods(), m)
}

// Field is a request slot: a schema plus optional metadata.
type Field struct {
	Schema      schema.Adapter
	Description string
	ContentType string
	// Required is nil when unset. Only the body slot reads it.
	Required *bool
}

// Schema wraps a bare adapter as a Field.
func Schema(a schema.Adapter) *Field {
	if a == nil {
		return nil
	}
	return &Field{Schema: a}
}

// IsRequired returns Required, or def when it is unset.
func (f *Field) IsRequired(def bool) bool {
	if f == nil || f.Required == nil {
		return def
	}
	return *f.Required
}

// Clone returns a deep copy of f. A nil field clones to nil.
func (f *Field) Clone() *Field {
	if f == nil {
		return nil
	}
	out := *f
	if f.Required != nil {
		v := *f.Required
		out.Required = &v
	}
	return &out
}

// Slot names a request field.
type Slot string

// Request slots.
const (
	SlotBody    Slot = "body"
	SlotQuery   Slot = "query"
	SlotParams  Slot = "params"
	SlotHeaders Slot = "headers"
	SlotContext Slot = "context"
)

// Request groups the request slots of a route. A nil slot is absent.
type Request struct {
	Body    *Field
	Query   *Field
	Params  *Field
	Headers *Field
	Context *Field
}

// Slot returns the field for s.
func (r Request) Slot(s Slot) *Field {
	switch s {
	case SlotBody:
		return r.Body
	case SlotQuery:
		return r.Query
	case SlotParams:
		return r.Params
	case SlotHeaders:
		return r.Headers
	case SlotContext:
		return r.Context
	}
	return nil
}

func (r Request) clone() Request {
	return Request{
		Body:    r.Body.Clone(),
		Query:   r.Query.Clone(),
		Params:  r.Params.Clone(),
		Headers: r.Headers.Clone(),
		Context: r.Context.Clone(),
	}
}

// Response describes the response for one status key.
type Response struct {
	Schema      schema.Adapter
	Description string
	ContentType string
}

// SecurityRequirement maps security scheme names to required scopes.
type SecurityRequirement map[string][]string

// ExternalDocs references external documentation.
type ExternalDocs struct {
	Description string
	URL         string
}

// Docs holds documentation metadata. Deprecated defaults to false.
type Docs struct {
	Summary      string
	Description  string
	Tags         []string
	OperationID  string
	Deprecated   bool
	Security     []SecurityRequirement
	ExternalDocs *ExternalDocs
}

func (d Docs) clone() Docs {
	out := d
	out.Tags = slices.Clone(d.Tags)
	if d.Security != nil {
		out.Security = make([]SecurityRequirement, len(d.Security))
		for i, req := range d.Security {
			cp := make(SecurityRequirement, len(req))
			for name, scopes := range req {
				cp[name] = slices.Clone(scopes)
			}
			out.Security[i] = cp
		}
	}
	if d.ExternalDocs != nil {
		ed := *d.ExternalDocs
		out.ExternalDocs = &ed
	}
	return out
}

// Input is the declaration passed to Define.
type Input struct {
	Method    Method
	Path      string
	Request   Request
	Responses map[string]Response
	Docs      Docs
}

// Definition is an immutable route declaration.
type Definition struct {
	method    Method
	path      string
	request   Request
	responses map[string]Response
	docs      Docs
}

// Define builds a Definition from in. The input is copied, the method is
// upper-cased and status keys are normalized with NormalizeStatus. When
// several keys normalize to the same one, the lexically greatest original
// key wins.
func Define(in Input) *Definition {
	d := &Definition{
		method:  Method(strings.ToUpper(strings.TrimSpace(string(in.Method)))),
		path:    in.Path,
		request: in.Request.clone(),
		docs:    in.Docs.clone(),
	}
	if len(in.Responses) > 0 {
		d.responses = make(map[string]Response, len(in.Responses))
		for _, key := range slices.Sorted(maps.Keys(in.Responses)) {
			d.responses[NormalizeStatus(key)] = in.Responses[key]
		}
	}
	return d
}

// Status converts a numeric status code to a response key.
func Status(code int) string {
	return strconv.Itoa(code)
}

// NormalizeStatus trims key, upper-cases range wildcards ("2xx" -> "2XX")
// and lower-cases "default".
func NormalizeStatus(key string) string {
	key = strings.TrimSpace(key)
	if strings.EqualFold(key, "default") {
		return "default"
	}
	if len(key) == 3 && strings.EqualFold(key[1:], "xx") {
		return key[:1] + "XX"
	}
	return key
}

// Method returns the HTTP method.
func (d *Definition) Method() Method { return d.method }

// Path returns the path template.
func (d *Definition) Path() string { return d.path }

// Request returns a copy of the request slots.
func (d *Definition) Request() Request { return d.request.clone() }

// Slot returns a copy of one request slot, or nil when it is absent.
func (d *Definition) Slot(s Slot) *Field { return d.request.Slot(s).Clone() }

// Responses returns a copy of the responses by status key.
func (d *Definition) Responses() map[string]Response { return maps.Clone(d.responses) }

// StatusCodes returns the declared status keys in sorted order.
func (d *Definition) StatusCodes() []string {
	return slices.Sorted(maps.Keys(d.responses))
}

// Docs returns a copy of the documentation metadata.
func (d *Definition) Docs() Docs { return d.docs.clone() }

// Tags returns a copy of the route tags.
func (d *Definition) Tags() []string { return slices.Clone(d.docs.Tags) }

// WithDefaults returns d with router defaults applied. The route's own
// context wins over ctx. Tags are the union of tags and the route tags,
// defaults first, without duplicates. When nothing changes d itself is
// returned.
func (d *Definition) WithDefaults(tags []string, ctx *Field) *Definition {
	merged := UnionTags(tags, d.docs.Tags)
	applyCtx := ctx != nil && d.request.Context == nil

	if !applyCtx && slices.Equal(merged, d.docs.Tags) {
		return d
	}

	out := &Definition{
		method:    d.method,
		path:      d.path,
		request:   d.request.clone(),
		responses: maps.Clone(d.responses),
		docs:      d.docs.clone(),
	}
	out.docs.Tags = merged
	if applyCtx {
		out.request.Context = ctx.Clone()
	}
	return out
}

// UnionTags concatenates the lists, keeping the first occurrence of each tag.
func UnionTags(lists ...[]string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, tag := range list {
			if seen[tag] {
				continue
			}
			seen[tag] = true
			out = append(out, tag)
		}
	}
	return out
}
