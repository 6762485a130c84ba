package route

import (
	"github.com/vitalvas/routekit/schema"
)

// FieldOption sets metadata on a request field or response.
type FieldOption func(*Field)

// WithDescription sets the description.
func WithDescription(desc string) FieldOption {
	return func(f *Field) { f.Description = desc }
}

// WithContentType sets the media type.
func WithContentType(contentType string) FieldOption {
	return func(f *Field) { f.ContentType = contentType }
}

// WithRequired sets whether the request body is required.
func WithRequired(required bool) FieldOption {
	return func(f *Field) { f.Required = &required }
}

func newField(a schema.Adapter, opts []FieldOption) *Field {
	f := &Field{Schema: a}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Builder assembles a Definition with a fluent API. A Builder is not safe
// for concurrent use; the Definition it builds is.
type Builder struct {
	in Input
}

// New starts a route declaration.
func New(method Method, path string) *Builder {
	return &Builder{in: Input{Method: method, Path: path}}
}

// Body sets the request body schema.
func (b *Builder) Body(a schema.Adapter, opts ...FieldOption) *Builder {
	b.in.Request.Body = newField(a, opts)
	return b
}

// Query sets the query string schema.
func (b *Builder) Query(a schema.Adapter, opts ...FieldOption) *Builder {
	b.in.Request.Query = newField(a, opts)
	return b
}

// Params sets the path parameter schema.
func (b *Builder) Params(a schema.Adapter, opts ...FieldOption) *Builder {
	b.in.Request.Params = newField(a, opts)
	return b
}

// Headers sets the request header schema.
func (b *Builder) Headers(a schema.Adapter, opts ...FieldOption) *Builder {
	b.in.Request.Headers = newField(a, opts)
	return b
}

// Context sets the request context schema.
func (b *Builder) Context(a schema.Adapter, opts ...FieldOption) *Builder {
	b.in.Request.Context = newField(a, opts)
	return b
}

// Response registers a response for an HTTP status code. Pass a nil
// adapter for responses without content.
func (b *Builder) Response(code int, a schema.Adapter, opts ...FieldOption) *Builder {
	return b.ResponseKey(Status(code), a, opts...)
}

// DefaultResponse registers the "default" response.
func (b *Builder) DefaultResponse(a schema.Adapter, opts ...FieldOption) *Builder {
	return b.ResponseKey("default", a, opts...)
}

// ResponseKey registers a response for a status key such as "404", "4XX"
// or "default".
func (b *Builder) ResponseKey(key string, a schema.Adapter, opts ...FieldOption) *Builder {
	f := newField(a, opts)
	if b.in.Responses == nil {
		b.in.Responses = make(map[string]Response)
	}
	b.in.Responses[key] = Response{
		Schema:      f.Schema,
		Description: f.Description,
		ContentType: f.ContentType,
	}
	return b
}

// Summary sets the operation summary.
func (b *Builder) Summary(s string) *Builder {
	b.in.Docs.Summary = s
	return b
}

// Description sets the operation description.
func (b *Builder) Description(d string) *Builder {
	b.in.Docs.Description = d
	return b
}

// Tags appends tags.
func (b *Builder) Tags(tags ...string) *Builder {
	b.in.Docs.Tags = append(b.in.Docs.Tags, tags...)
	return b
}

// OperationID sets an explicit operation id.
func (b *Builder) OperationID(id string) *Builder {
	b.in.Docs.OperationID = id
	return b
}

// Deprecated marks the route as deprecated.
func (b *Builder) Deprecated() *Builder {
	b.in.Docs.Deprecated = true
	return b
}

// Security appends security requirements. Calling it without arguments
// marks the route as public by setting an empty, non-nil list.
func (b *Builder) Security(reqs ...SecurityRequirement) *Builder {
	if b.in.Docs.Security == nil {
		b.in.Docs.Security = []SecurityRequirement{}
	}
	b.in.Docs.Security = append(b.in.Docs.Security, reqs...)
	return b
}

// ExternalDocs links external documentation.
func (b *Builder) ExternalDocs(url, description string) *Builder {
	b.in.Docs.ExternalDocs = &ExternalDocs{URL: url, Description: description}
	return b
}

// Build returns the immutable Definition. The builder may be reused.
func (b *Builder) Build() *Definition {
	return Define(b.in)
}
