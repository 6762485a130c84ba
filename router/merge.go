package router

// Merge folds sources left to right into a new router. At each key:
//
//   - when both sides hold a group or router, their configs merge
//     recursively and the wrapper (kind, base path) follows the later side;
//   - otherwise the later value replaces the earlier one, so a route can
//     replace a container and the reverse.
//
// Keys keep the position of their first appearance. Every input already
// carries its defaults on its routes, so the result and merged mounted
// routers have no defaults of their own. The result takes the base path of
// the last *Definition argument that sets one.
func Merge(sources ...Source) *Definition {
	out := &Definition{}

	for _, src := range sources {
		if src == nil {
			continue
		}
		if def, ok := src.(*Definition); ok {
			if def == nil {
				continue
			}
			if def.basePath != "" {
				out.basePath = def.basePath
			}
		}
		out.routes = mergeConfigs(out.routes, src.RouterConfig())
	}

	return out
}

func mergeConfigs(a, b Config) Config {
	out := newBuilder(a.Len() + b.Len())
	for key, n := range a.All() {
		out.set(key, n)
	}
	for key, n := range b.All() {
		if prev, ok := a.Get(key); ok {
			out.set(key, mergeNodes(prev, n))
			continue
		}
		out.set(key, n)
	}
	return out.config()
}

func mergeNodes(a, b Node) Node {
	if !a.isContainer() || !b.isContainer() {
		return b
	}

	children := mergeConfigs(a.children(), b.children())
	if b.kind == KindRouter {
		return Node{kind: KindRouter, router: &Definition{
			routes:   children,
			basePath: b.router.basePath,
		}}
	}
	return Node{kind: KindGroup, group: children}
}
