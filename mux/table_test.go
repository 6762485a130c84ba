package mux

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/routekit/route"
	"github.com/vitalvas/routekit/router"
)

func testAPI() *router.Definition {
	return router.Define(router.Routes(
		router.Group("users",
			router.Route("list", route.New(route.MethodGet, "/users").Build()),
			router.Route("create", route.New(route.MethodPost, "/users").Build()),
			router.Route("get", route.New(route.MethodGet, "/users/:id").Build()),
			router.Route("delete", route.New(route.MethodDelete, "/users/:id").Build()),
		),
		router.Route("health", route.New(route.MethodGet, "/health").Build()),
	))
}

func TestTableLookup(t *testing.T) {
	table := NewTable(testAPI())
	require.Equal(t, 5, table.Len())

	tests := []struct {
		name   string
		method string
		path   string
		status Status
		key    string
		params map[string]string
	}{
		{"static route", "GET", "/users", Found, "users.list", map[string]string{}},
		{"same path other method", "POST", "/users", Found, "users.create", map[string]string{}},
		{"path parameter", "GET", "/users/42", Found, "users.get", map[string]string{"id": "42"}},
		{"method mismatch", "PUT", "/users/42", MethodNotAllowed, "", nil},
		{"unknown path", "GET", "/nope", NotFound, "", nil},
		{"parameter does not span segments", "GET", "/users/1/2", NotFound, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, status := table.Lookup(tt.method, tt.path)
			assert.Equal(t, tt.status, status)
			if tt.status != Found {
				assert.Nil(t, m)
				return
			}
			require.NotNil(t, m)
			assert.Equal(t, tt.key, m.Key)
			assert.Equal(t, tt.params, m.Params)
			assert.Equal(t, tt.method, string(m.Route.Method()))
		})
	}
}

func TestTableFirstMatchWins(t *testing.T) {
	table := NewTable(router.Routes(
		router.Route("me", route.New(route.MethodGet, "/users/me").Build()),
		router.Route("byID", route.New(route.MethodGet, "/users/:id").Build()),
	))

	m, status := table.Lookup("GET", "/users/me")
	require.Equal(t, Found, status)
	assert.Equal(t, "me", m.Key)

	m, status = table.Lookup("GET", "/users/7")
	require.Equal(t, Found, status)
	assert.Equal(t, "byID", m.Key)
}

func TestTableAllowed(t *testing.T) {
	table := NewTable(testAPI())

	assert.Equal(t, []string{"DELETE", "GET"}, table.Allowed("/users/1"))
	assert.Equal(t, []string{"GET", "POST"}, table.Allowed("/users"))
	assert.Empty(t, table.Allowed("/nope"))
}

func TestTableRoutes(t *testing.T) {
	routes := NewTable(testAPI()).Routes()
	keys := make([]string, len(routes))
	for i, r := range routes {
		keys[i] = r.Key
	}
	assert.Equal(t, []string{"users.list", "users.create", "users.get", "users.delete", "health"}, keys)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "found", Found.String())
	assert.Equal(t, "not found", NotFound.String())
	assert.Equal(t, "method not allowed", MethodNotAllowed.String())
}
