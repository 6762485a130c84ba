package router

import (
	"iter"
	"slices"

	"github.com/vitalvas/routekit/route"
)

// Kind discriminates the variants of Node.
type Kind int

// Node kinds.
const (
	KindRoute Kind = iota + 1
	KindGroup
	KindRouter
)

func (k Kind) String() string {
	switch k {
	case KindRoute:
		return "route"
	case KindGroup:
		return "group"
	case KindRouter:
		return "router"
	}
	return "invalid"
}

// Node is one value of a Config: a route, a nested group or a mounted
// router.
type Node struct {
	kind   Kind
	route  *route.Definition
	group  Config
	router *Definition
}

// Kind returns the node variant.
func (n Node) Kind() Kind { return n.kind }

// Route returns the route of a KindRoute node, or nil.
func (n Node) Route() *route.Definition { return n.route }

// Group returns the config of a KindGroup node.
func (n Node) Group() Config { return n.group }

// Router returns the router of a KindRouter node, or nil.
func (n Node) Router() *Definition { return n.router }

// children returns the config a container node wraps.
func (n Node) children() Config {
	switch n.kind {
	case KindGroup:
		return n.group
	case KindRouter:
		return n.router.routes
	}
	return Config{}
}

func (n Node) isContainer() bool {
	return n.kind == KindGroup || n.kind == KindRouter
}

// IsRoute reports whether n is a route leaf.
func IsRoute(n Node) bool { return n.kind == KindRoute }

// IsRouter reports whether n is a mounted router.
func IsRouter(n Node) bool { return n.kind == KindRouter }

// Entry is a keyed node used to build a Config.
type Entry struct {
	Key  string
	Node Node
}

// Route returns an entry holding a route. A nil definition yields an
// entry that Routes ignores.
func Route(key string, d *route.Definition) Entry {
	if d == nil {
		return Entry{Key: key}
	}
	return Entry{Key: key, Node: Node{kind: KindRoute, route: d}}
}

// Group returns an entry holding a plain nested config.
func Group(key string, entries ...Entry) Entry {
	return Entry{Key: key, Node: Node{kind: KindGroup, group: Routes(entries...)}}
}

// GroupConfig is like Group but takes an existing config.
func GroupConfig(key string, cfg Config) Entry {
	return Entry{Key: key, Node: Node{kind: KindGroup, group: cfg}}
}

// Mount returns an entry holding a router. A nil router yields an entry
// that Routes ignores.
func Mount(key string, r *Definition) Entry {
	if r == nil {
		return Entry{Key: key}
	}
	return Entry{Key: key, Node: Node{kind: KindRouter, router: r}}
}

// Config is an immutable, insertion-ordered mapping of keys to nodes.
// The zero value is an empty config.
type Config struct {
	keys  []string
	nodes map[string]Node
}

// Routes builds a Config. A repeated key keeps its first position and
// takes the last value.
func Routes(entries ...Entry) Config {
	b := newBuilder(len(entries))
	for _, e := range entries {
		if e.Node.kind == 0 {
			continue
		}
		b.set(e.Key, e.Node)
	}
	return b.config()
}

// RouterConfig returns c, making Config a Source.
func (c Config) RouterConfig() Config { return c }

// Len returns the number of keys.
func (c Config) Len() int { return len(c.keys) }

// Keys returns the keys in insertion order.
func (c Config) Keys() []string { return slices.Clone(c.keys) }

// Get returns the node stored at key.
func (c Config) Get(key string) (Node, bool) {
	n, ok := c.nodes[key]
	return n, ok
}

// All iterates keys and nodes in insertion order.
func (c Config) All() iter.Seq2[string, Node] {
	return func(yield func(string, Node) bool) {
		for _, key := range c.keys {
			if !yield(key, c.nodes[key]) {
				return
			}
		}
	}
}

// configBuilder accumulates an ordered mapping before it is frozen.
type configBuilder struct {
	keys  []string
	nodes map[string]Node
}

func newBuilder(size int) *configBuilder {
	return &configBuilder{
		keys:  make([]string, 0, size),
		nodes: make(map[string]Node, size),
	}
}

func (b *configBuilder) set(key string, n Node) {
	if _, ok := b.nodes[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.nodes[key] = n
}

func (b *configBuilder) config() Config {
	return Config{keys: b.keys, nodes: b.nodes}
}
