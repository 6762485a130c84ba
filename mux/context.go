package mux

import (
	"context"
	"net/http"
)

// routeContextKey is an unexported type for the single context key.
type routeContextKey struct{}

var ctxKey = routeContextKey{}

// routeContext holds the matched route and the validated request input.
type routeContext struct {
	match     *Match
	validated *Input
}

// Input holds the decoded request slots after validation. A slot without
// a schema is nil.
type Input struct {
	Params  any `json:"params,omitempty"`
	Query   any `json:"query,omitempty"`
	Headers any `json:"headers,omitempty"`
	Body    any `json:"body,omitempty"`
}

func fromContext(r *http.Request) *routeContext {
	rc, _ := r.Context().Value(ctxKey).(*routeContext)
	return rc
}

// Params returns the path parameters of the current request, if any.
func Params(r *http.Request) map[string]string {
	if rc := fromContext(r); rc != nil && rc.match != nil {
		return rc.match.Params
	}
	return nil
}

// Param returns one path parameter and whether it exists.
func Param(r *http.Request, name string) (string, bool) {
	val, ok := Params(r)[name]
	return val, ok
}

// CurrentRoute returns the matched route for the current request. It is
// only set inside the handler of a matched route.
func CurrentRoute(r *http.Request) *Match {
	if rc := fromContext(r); rc != nil {
		return rc.match
	}
	return nil
}

// Validated returns the decoded request input. ok is false when the
// request was not validated.
func Validated(r *http.Request) (Input, bool) {
	if rc := fromContext(r); rc != nil && rc.validated != nil {
		return *rc.validated, true
	}
	return Input{}, false
}

// SetParams returns a copy of r carrying params as its path parameters.
// It is intended for testing handlers.
func SetParams(r *http.Request, params map[string]string) *http.Request {
	match := &Match{Params: params}
	if rc := fromContext(r); rc != nil && rc.match != nil {
		cp := *rc.match
		cp.Params = params
		match = &cp
	}
	return setRouteContext(r, match)
}

func setRouteContext(r *http.Request, match *Match) *http.Request {
	ctx := context.WithValue(r.Context(), ctxKey, &routeContext{match: match})
	return r.WithContext(ctx)
}
