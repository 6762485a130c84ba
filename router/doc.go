// Package router groups route definitions into hierarchical, named trees.
//
// A Config is an insertion-ordered mapping from keys to nodes. A node is a
// route leaf, a plain nested group or a mounted router Definition:
//
//	users := router.Define(router.Routes(
//	    router.Route("list", listUsers),
//	    router.Route("get", getUser),
//	), router.WithDefaults(router.Defaults{Tags: []string{"Users"}}))
//
//	api := router.Define(router.Routes(
//	    router.Mount("users", users),
//	    router.Group("admin",
//	        router.Route("stats", stats),
//	    ),
//	))
//
// Collect flattens a tree into dotted keys ("users.list", "admin.stats") in
// insertion order. Merge combines trees left to right: routes are replaced
// by later arguments, containers present on both sides merge recursively.
//
// Every value in this package is immutable once constructed.
package router
