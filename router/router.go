package router

import (
	"slices"

	"github.com/vitalvas/routekit/route"
)

// Source is anything that exposes a router config: a Config or a
// *Definition.
type Source interface {
	RouterConfig() Config
}

// Defaults are applied to every route reachable from a router.
type Defaults struct {
	Tags    []string
	Context *route.Field
}

func (d Defaults) isZero() bool {
	return len(d.Tags) == 0 && d.Context == nil
}

func (d Defaults) clone() Defaults {
	return Defaults{
		Tags:    slices.Clone(d.Tags),
		Context: d.Context.Clone(),
	}
}

// Option configures Define.
type Option func(*Definition)

// WithBasePath records a path prefix. It is metadata for callers and is not
// applied to child route paths.
func WithBasePath(path string) Option {
	return func(d *Definition) { d.basePath = path }
}

// WithDefaults sets defaults applied to every reachable route.
func WithDefaults(defaults Defaults) Option {
	return func(d *Definition) { d.defaults = defaults.clone() }
}

// Definition is an immutable router: a config plus router metadata.
type Definition struct {
	routes   Config
	basePath string
	defaults Defaults
}

// Define builds a router from cfg. When defaults are set, every route
// reachable from cfg, including routes of mounted routers, is replaced by
// a copy with the defaults applied.
func Define(cfg Config, opts ...Option) *Definition {
	d := &Definition{}
	for _, opt := range opts {
		opt(d)
	}
	d.routes = cfg
	if !d.defaults.isZero() {
		d.routes, _ = applyDefaults(cfg, d.defaults)
	}
	return d
}

// RouterConfig returns the router's config.
func (d *Definition) RouterConfig() Config { return d.routes }

// Routes returns the router's config.
func (d *Definition) Routes() Config { return d.routes }

// BasePath returns the recorded path prefix.
func (d *Definition) BasePath() string { return d.basePath }

// Defaults returns a copy of the router defaults.
func (d *Definition) Defaults() Defaults { return d.defaults.clone() }

// applyDefaults rewrites routes copy-on-write. Unchanged subtrees are
// shared with cfg.
func applyDefaults(cfg Config, defaults Defaults) (Config, bool) {
	b := newBuilder(cfg.Len())
	changed := false

	for key, n := range cfg.All() {
		out, ok := applyDefaultsNode(n, defaults)
		changed = changed || ok
		b.set(key, out)
	}

	if !changed {
		return cfg, false
	}
	return b.config(), true
}

func applyDefaultsNode(n Node, defaults Defaults) (Node, bool) {
	switch n.kind {
	case KindRoute:
		out := n.route.WithDefaults(defaults.Tags, defaults.Context)
		if out == n.route {
			return n, false
		}
		return Node{kind: KindRoute, route: out}, true
	case KindGroup:
		children, changed := applyDefaults(n.group, defaults)
		if !changed {
			return n, false
		}
		return Node{kind: KindGroup, group: children}, true
	case KindRouter:
		children, changed := applyDefaults(n.router.routes, defaults)
		if !changed {
			return n, false
		}
		return Node{kind: KindRouter, router: &Definition{
			routes:   children,
			basePath: n.router.basePath,
			defaults: n.router.defaults,
		}}, true
	}
	return n, false
}
