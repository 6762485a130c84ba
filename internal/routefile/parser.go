package routefile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cast"
	"github.com/vitalvas/routekit/route"
	"github.com/vitalvas/routekit/router"
	"github.com/vitalvas/routekit/schema"
	"gopkg.in/yaml.v3"
)

type fieldSpec struct {
	Schema      map[string]any `mapstructure:"schema"`
	Description string         `mapstructure:"description"`
	ContentType string         `mapstructure:"contentType"`
	Required    *bool          `mapstructure:"required"`
}

type responseSpec struct {
	Schema      map[string]any `mapstructure:"schema"`
	Description string         `mapstructure:"description"`
	ContentType string         `mapstructure:"contentType"`
}

type externalDocsSpec struct {
	URL         string `mapstructure:"url"`
	Description string `mapstructure:"description"`
}

type routeSpec struct {
	Method       string                  `mapstructure:"method"`
	Path         string                  `mapstructure:"path"`
	Summary      string                  `mapstructure:"summary"`
	Description  string                  `mapstructure:"description"`
	Tags         []string                `mapstructure:"tags"`
	OperationID  string                  `mapstructure:"operationId"`
	Deprecated   bool                    `mapstructure:"deprecated"`
	Security     []map[string][]string   `mapstructure:"security"`
	ExternalDocs *externalDocsSpec       `mapstructure:"externalDocs"`
	Body         map[string]any          `mapstructure:"body"`
	Query        map[string]any          `mapstructure:"query"`
	Params       map[string]any          `mapstructure:"params"`
	Headers      map[string]any          `mapstructure:"headers"`
	Context      map[string]any          `mapstructure:"context"`
	Responses    map[string]responseSpec `mapstructure:"responses"`
}

type defaultsSpec struct {
	Tags    []string       `mapstructure:"tags"`
	Context map[string]any `mapstructure:"context"`
}

// parser walks a route document and collects every problem it finds.
type parser struct {
	errs *multierror.Error
}

func (p *parser) fail(at, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if at != "" {
		msg = at + ": " + msg
	}
	p.errs = multierror.Append(p.errs, errors.New(msg))
}

// router parses a mapping with basePath, defaults and routes.
func (p *parser) router(n *yaml.Node, at string) *router.Definition {
	if n.Kind != yaml.MappingNode {
		p.fail(at, "expected a mapping")
		return router.Define(router.Config{})
	}

	var (
		cfg  router.Config
		opts []router.Option
	)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		switch key {
		case "router":
		case "basePath":
			opts = append(opts, router.WithBasePath(val.Value))
		case "defaults":
			if d, ok := p.defaults(val, join(at, key)); ok {
				opts = append(opts, router.WithDefaults(d))
			}
		case "routes":
			cfg = p.config(val, at)
		default:
			p.fail(join(at, key), "unknown field")
		}
	}
	return router.Define(cfg, opts...)
}

// config parses a routes mapping, keeping key order.
func (p *parser) config(n *yaml.Node, at string) router.Config {
	if n.Kind != yaml.MappingNode {
		p.fail(at, "routes must be a mapping")
		return router.Config{}
	}

	entries := make([]router.Entry, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		path := join(at, key)

		switch {
		case val.Kind != yaml.MappingNode:
			p.fail(path, "expected a mapping")
		case lookup(val, "method") != nil:
			if def := p.route(val, path); def != nil {
				entries = append(entries, router.Route(key, def))
			}
		case isMount(val):
			entries = append(entries, router.Mount(key, p.router(val, path)))
		default:
			entries = append(entries, router.GroupConfig(key, p.config(val, path)))
		}
	}
	return router.Routes(entries...)
}

func (p *parser) route(n *yaml.Node, at string) *route.Definition {
	var spec routeSpec
	if !p.decodeNode(n, at, &spec) {
		return nil
	}

	method := route.Method(strings.ToUpper(strings.TrimSpace(spec.Method)))
	if !method.Valid() {
		p.fail(at, "unsupported method %q", spec.Method)
		return nil
	}
	if spec.Path == "" {
		p.fail(at, "path is required")
		return nil
	}

	in := route.Input{
		Method: method,
		Path:   spec.Path,
		Request: route.Request{
			Body:    p.field(spec.Body, join(at, "body")),
			Query:   p.field(spec.Query, join(at, "query")),
			Params:  p.field(spec.Params, join(at, "params")),
			Headers: p.field(spec.Headers, join(at, "headers")),
			Context: p.field(spec.Context, join(at, "context")),
		},
		Docs: route.Docs{
			Summary:     spec.Summary,
			Description: spec.Description,
			Tags:        spec.Tags,
			OperationID: spec.OperationID,
			Deprecated:  spec.Deprecated,
		},
	}
	for _, req := range spec.Security {
		in.Docs.Security = append(in.Docs.Security, route.SecurityRequirement(req))
	}
	if spec.ExternalDocs != nil {
		in.Docs.ExternalDocs = &route.ExternalDocs{
			URL:         spec.ExternalDocs.URL,
			Description: spec.ExternalDocs.Description,
		}
	}

	if len(spec.Responses) > 0 {
		in.Responses = make(map[string]route.Response, len(spec.Responses))
		for status, resp := range spec.Responses {
			in.Responses[status] = route.Response{
				Schema:      p.adapter(resp.Schema, join(at, "responses", status)),
				Description: resp.Description,
				ContentType: resp.ContentType,
			}
		}
	}

	return route.Define(in)
}

func (p *parser) defaults(n *yaml.Node, at string) (router.Defaults, bool) {
	var spec defaultsSpec
	if !p.decodeNode(n, at, &spec) {
		return router.Defaults{}, false
	}
	return router.Defaults{
		Tags:    spec.Tags,
		Context: p.field(spec.Context, join(at, "context")),
	}, true
}

// field converts a request slot. A mapping with a "schema" key carries
// metadata; anything else is the schema itself.
func (p *parser) field(raw map[string]any, at string) *route.Field {
	if raw == nil {
		return nil
	}
	if _, ok := raw["schema"]; !ok {
		return route.Schema(p.adapter(raw, at))
	}

	var spec fieldSpec
	if !p.decode(raw, at, &spec) {
		return nil
	}
	a := p.adapter(spec.Schema, join(at, "schema"))
	if a == nil {
		return nil
	}
	return &route.Field{
		Schema:      a,
		Description: spec.Description,
		ContentType: spec.ContentType,
		Required:    spec.Required,
	}
}

func (p *parser) adapter(doc map[string]any, at string) schema.Adapter {
	if doc == nil {
		return nil
	}
	a, err := schema.FromMap(schema.JSONSchema(doc))
	if err != nil {
		p.fail(at, "%v", err)
		return nil
	}
	return a
}

func (p *parser) decodeNode(n *yaml.Node, at string, out any) bool {
	var raw any
	if err := n.Decode(&raw); err != nil {
		p.fail(at, "%v", err)
		return false
	}
	return p.decode(normalize(raw), at, out)
}

func (p *parser) decode(raw any, at string, out any) bool {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		p.fail(at, "%v", err)
		return false
	}
	if err := dec.Decode(raw); err != nil {
		p.fail(at, "%v", err)
		return false
	}
	return true
}

// normalize converts YAML maps with non-string keys, such as numeric
// status codes, into map[string]any.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = normalize(item)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[cast.ToString(k)] = normalize(item)
		}
		return out
	case []any:
		for i, item := range val {
			val[i] = normalize(item)
		}
		return val
	}
	return v
}

func lookup(n *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func isMount(n *yaml.Node) bool {
	v := lookup(n, "router")
	return v != nil && v.Kind == yaml.ScalarNode && cast.ToBool(v.Value)
}

func join(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ".")
}
