package mux

import (
	"slices"

	"github.com/vitalvas/routekit/pathpattern"
	"github.com/vitalvas/routekit/route"
	"github.com/vitalvas/routekit/router"
)

// Status is the outcome of a table lookup.
type Status int

// Lookup outcomes.
const (
	NotFound Status = iota
	Found
	MethodNotAllowed
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case MethodNotAllowed:
		return "method not allowed"
	}
	return "not found"
}

// Match is a resolved route.
type Match struct {
	// Key is the dotted key of the route in its router.
	Key    string
	Route  *route.Definition
	Params map[string]string
}

type entry struct {
	key     string
	route   *route.Definition
	matcher *pathpattern.Matcher
}

// Table resolves (method, path) pairs against the routes of a router. It
// is read-only after construction.
type Table struct {
	entries []entry
}

// NewTable compiles one matcher per collected route of src.
func NewTable(src router.Source) *Table {
	t := &Table{}
	for _, c := range router.Collect(src) {
		t.entries = append(t.entries, newEntry(c.Key, c.Route))
	}
	return t
}

func newEntry(key string, def *route.Definition) entry {
	return entry{
		key:     key,
		route:   def,
		matcher: pathpattern.ToMatcher(def.Path()),
	}
}

// Len returns the number of routes.
func (t *Table) Len() int {
	return len(t.entries)
}

// Routes returns the routes in lookup order.
func (t *Table) Routes() []router.Collected {
	out := make([]router.Collected, len(t.entries))
	for i, e := range t.entries {
		out[i] = router.Collected{Key: e.key, Route: e.route}
	}
	return out
}

// Lookup finds the first route, in collected order, whose method and
// template match. When only the template matches some route the status is
// MethodNotAllowed.
func (t *Table) Lookup(method, path string) (*Match, Status) {
	return lookup(t.entries, method, path)
}

// Allowed returns the sorted methods of the routes whose template matches
// path.
func (t *Table) Allowed(path string) []string {
	methods := allowed(nil, t.entries, path)
	slices.Sort(methods)
	return methods
}

func lookup(entries []entry, method, path string) (*Match, Status) {
	status := NotFound
	for _, e := range entries {
		params, ok := e.matcher.Match(path)
		if !ok {
			continue
		}
		if string(e.route.Method()) != method {
			status = MethodNotAllowed
			continue
		}
		return &Match{Key: e.key, Route: e.route, Params: params}, Found
	}
	return nil, status
}

// allowed appends the methods of entries matching path to methods.
func allowed(methods []string, entries []entry, path string) []string {
	for _, e := range entries {
		if _, ok := e.matcher.Match(path); !ok {
			continue
		}
		m := string(e.route.Method())
		if !slices.Contains(methods, m) {
			methods = append(methods, m)
		}
	}
	return methods
}
