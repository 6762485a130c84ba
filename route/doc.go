// Package route declares single HTTP endpoints.
//
// A Definition bundles a method, a path template, request schemas for the
// body, query, params, headers and context slots, per-status responses and
// documentation metadata. Definitions are immutable: every accessor returns
// a copy and every transformation returns a new Definition.
//
//	getUser := route.Define(route.Input{
//	    Method: route.MethodGet,
//	    Path:   "/users/:userId",
//	    Request: route.Request{
//	        Params: route.Schema(userParams),
//	    },
//	    Responses: map[string]route.Response{
//	        "200": {Schema: user, Description: "The user"},
//	    },
//	    Docs: route.Docs{Summary: "Get a user", Tags: []string{"Users"}},
//	})
//
// The same route can be written with the fluent builder:
//
//	getUser := route.New(route.MethodGet, "/users/:userId").
//	    Params(userParams).
//	    Response(http.StatusOK, user, route.WithDescription("The user")).
//	    Summary("Get a user").
//	    Tags("Users").
//	    Build()
package route
