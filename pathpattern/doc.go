// Package pathpattern compiles path templates with `:name` parameters into
// anchored matchers and converts them to the OpenAPI brace form.
//
// A parameter is a colon followed by an identifier ([a-zA-Z_][a-zA-Z0-9_]*)
// and matches one or more characters other than "/". Every other character
// matches literally, including a colon that does not start an identifier.
//
//	params, ok := pathpattern.Match("/users/42", "/users/:id")
//	// params["id"] == "42", ok == true
//
//	pathpattern.ToOpenAPIPath("/users/:id") // "/users/{id}"
//
// Matching never normalizes the input. Call NormalizePath explicitly when
// trailing or repeated slashes should be ignored.
package pathpattern
