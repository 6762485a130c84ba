package openapi

import (
	"log/slog"
	"sort"
	"strings"

	"dario.cat/mergo"

	"github.com/vitalvas/routekit/pathpattern"
	"github.com/vitalvas/routekit/route"
	"github.com/vitalvas/routekit/router"
)

// Supported document versions.
const (
	Version30 = "3.0.3"
	Version31 = "3.1.0"
)

// Config is the document-level input of Generate.
type Config struct {
	// OpenAPI is the document version. 3.0.x versions get downgraded
	// schemas, see Downgrade.
	OpenAPI         string
	Info            Info
	Servers         []Server
	SecuritySchemes map[string]*SecurityScheme
	Security        []SecurityRequirement
	Tags            []Tag
	ExternalDocs    *ExternalDocs
}

// DefaultConfig returns the values used for unset Config fields.
func DefaultConfig() Config {
	return Config{
		OpenAPI: Version31,
		Info: Info{
			Title:   "API",
			Version: "0.0.0",
		},
	}
}

func (c Config) withDefaults() Config {
	out := c
	// mergo only fails on mismatched kinds, which cannot happen here.
	_ = mergo.Merge(&out, DefaultConfig())
	return out
}

// Is30 reports whether the configured version is a 3.0.x version.
func (c Config) Is30() bool {
	return strings.HasPrefix(c.withDefaults().OpenAPI, "3.0")
}

// Generate builds the document for every route reachable from src. It
// never fails: schemas it cannot interpret are left out.
func Generate(src router.Source, cfg Config) *Document {
	return FromConfig(cfg).Build(src)
}

// Spec collects document metadata and builds a Document from a router.
type Spec struct {
	cfg    Config
	logger *slog.Logger
}

// NewSpec creates a spec builder with the given API info.
func NewSpec(info Info) *Spec {
	return FromConfig(Config{Info: info})
}

// FromConfig creates a spec builder from cfg.
func FromConfig(cfg Config) *Spec {
	return &Spec{
		cfg:    cfg,
		logger: slog.New(slog.DiscardHandler),
	}
}

// WithLogger sets the logger used for generation warnings.
func (s *Spec) WithLogger(logger *slog.Logger) *Spec {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// SetVersion sets the document version, for example Version30.
func (s *Spec) SetVersion(version string) *Spec {
	s.cfg.OpenAPI = version
	return s
}

// AddServer adds a server to the document.
func (s *Spec) AddServer(server Server) *Spec {
	s.cfg.Servers = append(s.cfg.Servers, server)
	return s
}

// SetExternalDocs sets the document-level external documentation link.
func (s *Spec) SetExternalDocs(url, description string) *Spec {
	s.cfg.ExternalDocs = &ExternalDocs{URL: url, Description: description}
	return s
}

// SetSecurity sets the document-level security requirements.
func (s *Spec) SetSecurity(reqs ...SecurityRequirement) *Spec {
	s.cfg.Security = reqs
	return s
}

// AddTag adds a tag description. A tag with the same name as a route tag
// replaces the generated entry.
func (s *Spec) AddTag(tag Tag) *Spec {
	s.cfg.Tags = append(s.cfg.Tags, tag)
	return s
}

// AddSecurityScheme registers a reusable security scheme in components.
func (s *Spec) AddSecurityScheme(name string, scheme *SecurityScheme) *Spec {
	if s.cfg.SecuritySchemes == nil {
		s.cfg.SecuritySchemes = make(map[string]*SecurityScheme)
	}
	s.cfg.SecuritySchemes[name] = scheme
	return s
}

// Config returns the effective configuration with defaults applied.
func (s *Spec) Config() Config {
	return s.cfg.withDefaults()
}

// Build collects the routes of src and assembles the document.
func (s *Spec) Build(src router.Source) *Document {
	cfg := s.cfg.withDefaults()
	doc := &Document{
		OpenAPI:      cfg.OpenAPI,
		Info:         cfg.Info,
		Servers:      cfg.Servers,
		Paths:        make(map[string]*PathItem),
		Security:     cfg.Security,
		ExternalDocs: cfg.ExternalDocs,
	}

	owners := make(map[string]string)
	for _, entry := range router.Collect(src) {
		def := entry.Route
		path := pathpattern.ToOpenAPIPath(def.Path())

		pathItem, ok := doc.Paths[path]
		if !ok {
			pathItem = &PathItem{}
			doc.Paths[path] = pathItem
		}

		op := s.buildOperation(entry.Key, def)
		slot := string(def.Method()) + " " + path
		if prev, dup := owners[slot]; dup {
			s.logger.Warn("duplicate operation, later route wins",
				"method", def.Method(), "path", path, "previous", prev, "key", entry.Key)
		}
		owners[slot] = entry.Key

		if !assignOperation(pathItem, def.Method(), op) {
			s.logger.Warn("skipping route with unsupported method",
				"method", def.Method(), "key", entry.Key)
		}
	}

	// Paths whose only route had an unsupported method stay out.
	for path, item := range doc.Paths {
		if len(item.Operations()) == 0 {
			delete(doc.Paths, path)
		}
	}

	if len(cfg.SecuritySchemes) > 0 {
		doc.Components = &Components{SecuritySchemes: cfg.SecuritySchemes}
	}
	doc.Tags = mergeTags(cfg.Tags, doc.Paths)

	if cfg.Is30() {
		Downgrade(doc)
	}
	return doc
}

// mergeTags unions the operation tags with the configured tags. A
// configured tag keeps its description and external docs. The result is
// sorted by name.
func mergeTags(configured []Tag, paths map[string]*PathItem) []Tag {
	userTags := make(map[string]Tag, len(configured))
	for _, tag := range configured {
		userTags[tag.Name] = tag
	}

	seen := make(map[string]bool)
	var tags []Tag

	for _, pathItem := range paths {
		for _, op := range pathItem.Operations() {
			for _, name := range op.Tags {
				if seen[name] {
					continue
				}
				seen[name] = true
				if userTag, ok := userTags[name]; ok {
					tags = append(tags, userTag)
				} else {
					tags = append(tags, Tag{Name: name})
				}
			}
		}
	}

	for _, tag := range configured {
		if !seen[tag.Name] {
			seen[tag.Name] = true
			tags = append(tags, tag)
		}
	}

	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Name < tags[j].Name
	})

	return tags
}

// assignOperation sets op on the path item field for method. It reports
// false for methods a path item cannot hold.
func assignOperation(pathItem *PathItem, method route.Method, op *Operation) bool {
	switch method {
	case route.MethodGet:
		pathItem.Get = op
	case route.MethodPost:
		pathItem.Post = op
	case route.MethodPut:
		pathItem.Put = op
	case route.MethodDelete:
		pathItem.Delete = op
	case route.MethodPatch:
		pathItem.Patch = op
	case route.MethodHead:
		pathItem.Head = op
	case route.MethodOptions:
		pathItem.Options = op
	case route.MethodTrace:
		pathItem.Trace = op
	default:
		return false
	}
	return true
}
