// Package mux dispatches HTTP requests to handlers bound to the routes of
// a router definition.
//
// # Route Table
//
// Table is the pure lookup structure: one compiled path matcher per
// collected route, searched in collected order. Lookup distinguishes a
// missing path (NotFound) from a path served under other methods
// (MethodNotAllowed).
//
//	t := mux.NewTable(api)
//	m, status := t.Lookup("GET", "/users/42")
//	// m.Key == "users.get", m.Params["id"] == "42"
//
// # Router
//
// Router implements http.Handler on top of a Table. Handlers are bound by
// the dotted route key:
//
//	r := mux.New(api, mux.WithLogger(logger))
//	if err := r.BindFunc("users.get", getUser); err != nil {
//	    log.Fatal(err)
//	}
//
// A route without a handler answers 501 Not Implemented. A 405 response
// carries an Allow header listing the methods of the matching routes.
//
// # Request Validation
//
// Unless WithoutValidation is set, the params, query, headers and JSON body
// of a request are validated through the adapters of the matched route.
// Path, query and header strings are coerced to the integer, number or
// boolean type their schema property declares. A failure answers 400 with
// a JSON body:
//
//	{
//	  "error": "request validation failed",
//	  "requestId": "7c2f...",
//	  "issues": [{"path": ["query", "limit"], "message": "...", "code": "..."}]
//	}
//
// Handlers read the decoded slots with Validated and path parameters with
// Params or Param.
//
// # Middleware
//
// Use registers middleware applied to matched routes. RequestIDMiddleware
// propagates X-Request-ID and RecoveryMiddleware turns panics into logged
// 500 responses.
package mux
