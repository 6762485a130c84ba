package mux

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/vitalvas/routekit/route"
	"github.com/vitalvas/routekit/router"
)

// DefaultMaxBodyBytes limits request bodies read for validation.
const DefaultMaxBodyBytes = 10 << 20

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger for rejected requests and unbound routes.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithoutValidation disables request validation.
func WithoutValidation() Option {
	return func(r *Router) { r.validate = false }
}

// WithMaxBodyBytes sets the body size limit used during validation.
func WithMaxBodyBytes(n int64) Option {
	return func(r *Router) { r.maxBodyBytes = n }
}

// Router dispatches requests to handlers bound to the routes of a router
// definition. It implements http.Handler:
//
//	r := mux.New(api)
//	r.BindFunc("users.get", getUser)
//	http.ListenAndServe(":8080", r)
//
// Binding and middleware registration are not safe for concurrent use
// with ServeHTTP; finish them before serving.
type Router struct {
	// NotFoundHandler is called when no route matches. If nil, a JSON 404
	// is written.
	NotFoundHandler http.Handler

	// MethodNotAllowedHandler is called when a route matches the path but
	// not the method. The Allow header is set before it runs. If nil, a
	// JSON 405 is written.
	MethodNotAllowedHandler http.Handler

	table       *Table
	extra       []entry
	handlers    map[string]http.Handler
	middlewares []MiddlewareFunc

	// handlerCache holds the middleware-wrapped handler per route key.
	handlerCache sync.Map

	validate     bool
	maxBodyBytes int64
	logger       *slog.Logger
}

// New returns a router serving the routes of src.
func New(src router.Source, opts ...Option) *Router {
	r := &Router{
		table:        NewTable(src),
		handlers:     make(map[string]http.Handler),
		validate:     true,
		maxBodyBytes: DefaultMaxBodyBytes,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Table returns the route table.
func (r *Router) Table() *Table {
	return r.table
}

// Bind sets the handler for the route with the given dotted key.
func (r *Router) Bind(key string, handler http.Handler) error {
	for _, e := range r.table.entries {
		if e.key == key {
			r.handlers[key] = handler
			r.handlerCache.Delete(key)
			return nil
		}
	}
	return fmt.Errorf("mux: unknown route key %q", key)
}

// BindFunc is like Bind for a handler function.
func (r *Router) BindFunc(key string, fn func(http.ResponseWriter, *http.Request)) error {
	return r.Bind(key, http.HandlerFunc(fn))
}

// HandleFunc registers a route outside the router definition, such as a
// documentation endpoint. It is matched after the defined routes and is
// not validated.
func (r *Router) HandleFunc(method, template string, fn func(http.ResponseWriter, *http.Request)) {
	key := method + " " + template
	r.extra = append(r.extra, newEntry(key, route.Define(route.Input{Method: route.Method(method), Path: template})))
	r.handlers[key] = http.HandlerFunc(fn)
	r.handlerCache.Delete(key)
}

// Allowed returns the sorted methods accepted for path by the defined
// routes and the routes added with HandleFunc.
func (r *Router) Allowed(path string) []string {
	methods := allowed(allowed(nil, r.table.entries, path), r.extra, path)
	slices.Sort(methods)
	return methods
}

func (r *Router) lookup(method, path string) (*Match, Status) {
	match, status := r.table.Lookup(method, path)
	if status == Found {
		return match, status
	}
	extraMatch, extraStatus := lookup(r.extra, method, path)
	switch extraStatus {
	case Found:
		return extraMatch, Found
	case MethodNotAllowed:
		status = MethodNotAllowed
	}
	return nil, status
}

// Use appends middleware. Middleware runs for matched routes only, before
// request validation.
func (r *Router) Use(mwf ...MiddlewareFunc) {
	r.middlewares = append(r.middlewares, mwf...)
	r.handlerCache.Clear()
}

// ServeHTTP resolves the request and runs the bound handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	p := cleanPath(req.URL.Path)

	match, status := r.lookup(req.Method, p)
	switch status {
	case NotFound:
		if r.NotFoundHandler != nil {
			r.NotFoundHandler.ServeHTTP(w, req)
			return
		}
		writeError(w, http.StatusNotFound, ErrorBody{})
		return

	case MethodNotAllowed:
		w.Header().Set("Allow", strings.Join(r.Allowed(p), ", "))
		if r.MethodNotAllowedHandler != nil {
			r.MethodNotAllowedHandler.ServeHTTP(w, req)
			return
		}
		writeError(w, http.StatusMethodNotAllowed, ErrorBody{})
		return
	}

	handler, ok := r.handlers[match.Key]
	if !ok {
		r.logger.Warn("route has no handler", "key", match.Key, "method", req.Method, "path", p)
		writeError(w, http.StatusNotImplemented, ErrorBody{Error: "route " + match.Key + " has no handler"})
		return
	}

	req = setRouteContext(req, match)
	r.wrapped(match.Key, handler).ServeHTTP(w, req)
}

func (r *Router) wrapped(key string, handler http.Handler) http.Handler {
	if cached, ok := r.handlerCache.Load(key); ok {
		return cached.(http.Handler)
	}

	h := handler
	if r.validate {
		h = r.validating(h)
	}
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		h = r.middlewares[i].Middleware(h)
	}

	r.handlerCache.Store(key, h)
	return h
}

// validating rejects requests whose slots fail their adapters with 400.
func (r *Router) validating(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rc := fromContext(req)
		if rc == nil || rc.match == nil {
			next.ServeHTTP(w, req)
			return
		}

		if req.Body != nil && r.maxBodyBytes > 0 {
			req.Body = http.MaxBytesReader(w, req.Body, r.maxBodyBytes)
		}

		in, issues, err := validateRequest(req, rc.match.Route, rc.match.Params)
		if err != nil {
			code := http.StatusBadRequest
			if maxErr := (*http.MaxBytesError)(nil); errors.As(err, &maxErr) {
				code = http.StatusRequestEntityTooLarge
			}
			r.logger.Info("request body unreadable", "key", rc.match.Key, "error", err)
			writeError(w, code, ErrorBody{RequestID: requestID(req)})
			return
		}

		if len(issues) > 0 {
			id := requestID(req)
			r.logger.Debug("request rejected",
				"key", rc.match.Key, "request_id", id, "issues", len(issues))
			writeError(w, http.StatusBadRequest, ErrorBody{
				Error:     "request validation failed",
				RequestID: id,
				Issues:    issues,
			})
			return
		}

		rc.validated = &in
		next.ServeHTTP(w, req)
	})
}

// cleanPath returns the canonical path for p, eliminating . and .. elements
// per RFC 3986 Section 5.2.4. A trailing slash is kept.
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	np := path.Clean(p)
	if p[len(p)-1] == '/' && np != "/" {
		np += "/"
	}
	return np
}
