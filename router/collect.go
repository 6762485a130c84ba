package router

import (
	"github.com/vitalvas/routekit/route"
)

// Collected is a route with its dotted key.
type Collected struct {
	Key   string
	Route *route.Definition
}

// Collect flattens src into its routes in insertion order. Keys join the
// ancestor keys with ".".
func Collect(src Source) []Collected {
	return CollectPrefixed(src, "")
}

// CollectPrefixed is like Collect with every key prefixed by prefix.
func CollectPrefixed(src Source, prefix string) []Collected {
	if src == nil {
		return nil
	}
	var out []Collected
	return collect(src.RouterConfig(), prefix, out)
}

func collect(cfg Config, prefix string, out []Collected) []Collected {
	for key, n := range cfg.All() {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}

		switch n.kind {
		case KindRoute:
			out = append(out, Collected{Key: full, Route: n.route})
		case KindGroup, KindRouter:
			out = collect(n.children(), full, out)
		}
	}
	return out
}
