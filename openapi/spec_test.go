package openapi

import (
	"bytes"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/routekit/route"
	"github.com/vitalvas/routekit/router"
	"github.com/vitalvas/routekit/schema"
)

var (
	itemSchema = schema.MustJSON(`{
		"type": "object",
		"properties": {"id": {"type": "string"}, "name": {"type": "string"}},
		"required": ["id"]
	}`)
	idParams = schema.MustJSON(`{
		"type": "object",
		"properties": {"id": {"type": "integer", "minimum": 1, "description": "Item id"}}
	}`)
	searchQuery = schema.MustJSON(`{
		"type": "object",
		"properties": {
			"q": {"type": "string"},
			"limit": {"type": "integer"},
			"cursor": {"type": "string", "deprecated": true}
		},
		"required": ["q"]
	}`)
	panicking = schema.Func{SchemaFunc: func() schema.JSONSchema { panic("broken adapter") }}
	markerless = schema.Func{SchemaFunc: func() schema.JSONSchema {
		return schema.JSONSchema{"description": "no keywords"}
	}}
)

func testInfo() Config {
	return Config{Info: Info{Title: "t", Version: "1"}}
}

func TestGenerateScenario(t *testing.T) {
	get := route.Define(route.Input{
		Method: route.MethodGet,
		Path:   "/users/:userId",
		Responses: map[string]route.Response{
			"200": {Description: "ok"},
		},
	})

	doc := Generate(router.Routes(router.Route("get", get)), testInfo())

	item := doc.Paths["/users/{userId}"]
	require.NotNil(t, item)
	require.NotNil(t, item.Get)
	assert.Equal(t, []*Parameter{{
		Name:     "userId",
		In:       "path",
		Required: true,
		Schema:   &Schema{Type: TypeString("string")},
	}}, item.Get.Parameters)
	assert.Equal(t, "ok", item.Get.Responses["200"].Description)
	assert.Nil(t, item.Get.Responses["200"].Content)
	assert.False(t, item.Get.Deprecated)
}

func TestGenerateDocument(t *testing.T) {
	t.Run("applies config defaults", func(t *testing.T) {
		doc := Generate(router.Routes(), Config{})
		assert.Equal(t, Version31, doc.OpenAPI)
		assert.Equal(t, "API", doc.Info.Title)
		assert.Equal(t, "0.0.0", doc.Info.Version)
		assert.NotNil(t, doc.Paths)
		assert.Empty(t, doc.Paths)
		assert.Nil(t, doc.Components)
	})

	t.Run("copies document metadata", func(t *testing.T) {
		cfg := testInfo()
		cfg.Servers = []Server{{URL: "https://api.example.com"}}
		cfg.Security = []SecurityRequirement{{"bearer": {}}}
		cfg.SecuritySchemes = map[string]*SecurityScheme{"bearer": {Type: "http", Scheme: "bearer"}}
		cfg.ExternalDocs = &ExternalDocs{URL: "https://docs.example.com"}

		doc := Generate(router.Routes(), cfg)
		assert.Equal(t, cfg.Servers, doc.Servers)
		assert.Equal(t, cfg.Security, doc.Security)
		assert.Equal(t, cfg.ExternalDocs, doc.ExternalDocs)
		require.NotNil(t, doc.Components)
		assert.Equal(t, "bearer", doc.Components.SecuritySchemes["bearer"].Scheme)
	})

	t.Run("shared path holds several operations", func(t *testing.T) {
		api := router.Routes(router.Group("items",
			router.Route("list", route.New(route.MethodGet, "/items").Build()),
			router.Route("create", route.New(route.MethodPost, "/items").Build()),
		))

		doc := Generate(api, testInfo())
		require.Len(t, doc.Paths, 1)
		item := doc.Paths["/items"]
		require.NotNil(t, item.Get)
		require.NotNil(t, item.Post)
		assert.Equal(t, "itemsList", item.Get.OperationID)
		assert.Equal(t, "itemsCreate", item.Post.OperationID)
	})

	t.Run("walks mounted routers", func(t *testing.T) {
		admin := router.Define(router.Routes(
			router.Route("stats", route.New(route.MethodGet, "/admin/stats").Build()),
		), router.WithDefaults(router.Defaults{Tags: []string{"admin"}}))

		doc := Generate(router.Routes(router.Mount("admin", admin)), testInfo())
		op := doc.Paths["/admin/stats"].Get
		require.NotNil(t, op)
		assert.Equal(t, "adminStats", op.OperationID)
		assert.Equal(t, []string{"admin"}, op.Tags)
	})

	t.Run("later duplicate wins with warning", func(t *testing.T) {
		var logs bytes.Buffer
		api := router.Routes(
			router.Route("first", route.New(route.MethodGet, "/dup").Summary("first").Build()),
			router.Route("second", route.New(route.MethodGet, "/dup").Summary("second").Build()),
		)

		doc := FromConfig(testInfo()).WithLogger(slog.New(slog.NewTextHandler(&logs, nil))).Build(api)
		assert.Equal(t, "second", doc.Paths["/dup"].Get.Summary)
		assert.Contains(t, logs.String(), "duplicate operation")
	})

	t.Run("output is deterministic", func(t *testing.T) {
		api := router.Routes(
			router.Route("a", route.New(route.MethodGet, "/a").Query(searchQuery).Tags("x", "y").Build()),
			router.Route("b", route.New(route.MethodPost, "/b/:id").Params(idParams).Body(itemSchema).Build()),
		)

		first, err := Marshal(Generate(api, testInfo()), FormatJSON)
		require.NoError(t, err)
		second, err := Marshal(Generate(api, testInfo()), FormatJSON)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(second))
	})
}

func TestOperationID(t *testing.T) {
	tests := []struct {
		key      string
		expected string
	}{
		{"users.list.byStatus", "usersListByStatus"},
		{"get", "get"},
		{"users.get", "usersGet"},
		{"a..b", "aB"},
		{"a.get-by-id", "aGet-by-id"},
		{"a.user_roles", "aUser_roles"},
		{"a.getByID", "aGetByID"},
		{"a.élan.b", "aÉlanB"},
		{"users.2fa", "users2fa"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.expected, OperationID(tt.key))
		})
	}

	t.Run("explicit id wins", func(t *testing.T) {
		api := router.Routes(router.Group("users",
			router.Route("list", route.New(route.MethodGet, "/users").OperationID("listAllUsers").Build()),
		))
		doc := Generate(api, testInfo())
		assert.Equal(t, "listAllUsers", doc.Paths["/users"].Get.OperationID)
	})
}

func TestGenerateParameters(t *testing.T) {
	t.Run("path parameters are refined from params schema", func(t *testing.T) {
		api := router.Routes(router.Route("get", route.New(route.MethodGet, "/items/:id/parts/:part").Params(idParams).Build()))

		params := Generate(api, testInfo()).Paths["/items/{id}/parts/{part}"].Get.Parameters
		require.Len(t, params, 2)

		assert.Equal(t, "id", params[0].Name)
		assert.True(t, params[0].Required)
		assert.Equal(t, TypeString("integer"), params[0].Schema.Type)
		assert.Equal(t, ptr(1.0), params[0].Schema.Minimum)
		assert.Equal(t, "Item id", params[0].Description)

		assert.Equal(t, "part", params[1].Name)
		assert.True(t, params[1].Required)
		assert.Equal(t, &Schema{Type: TypeString("string")}, params[1].Schema)
	})

	t.Run("query and header parameters come from properties", func(t *testing.T) {
		headers := schema.MustJSON(`{"type":"object","properties":{"X-Trace":{"type":"string"}}}`)
		api := router.Routes(router.Route("search", route.New(route.MethodGet, "/search").
			Query(searchQuery).Headers(headers).Build()))

		params := Generate(api, testInfo()).Paths["/search"].Get.Parameters
		require.Len(t, params, 4)

		var names []string
		for _, p := range params {
			names = append(names, p.In+":"+p.Name)
		}
		assert.Equal(t, []string{"query:cursor", "query:limit", "query:q", "header:X-Trace"}, names)

		assert.True(t, params[0].Deprecated)
		assert.False(t, params[1].Required)
		assert.True(t, params[2].Required)
		assert.Equal(t, TypeString("integer"), params[1].Schema.Type)
	})

	t.Run("struct adapters contribute parameters", func(t *testing.T) {
		type listQuery struct {
			Page  int    `json:"page" validate:"min=1"`
			Order string `json:"order" validate:"required,oneof=asc desc"`
		}
		api := router.Routes(router.Route("list", route.New(route.MethodGet, "/list").Query(schema.Struct[listQuery]()).Build()))

		params := Generate(api, testInfo()).Paths["/list"].Get.Parameters
		require.Len(t, params, 2)
		assert.Equal(t, "order", params[0].Name)
		assert.True(t, params[0].Required)
		assert.Equal(t, []any{"asc", "desc"}, params[0].Schema.Enum)
		assert.Equal(t, "page", params[1].Name)
		assert.Equal(t, TypeString("integer"), params[1].Schema.Type)
	})

	t.Run("schemas without top-level properties contribute nothing", func(t *testing.T) {
		union := schema.MustJSON(`{"anyOf":[{"type":"object","properties":{"a":{"type":"string"}}},{"type":"object"}]}`)
		api := router.Routes(router.Route("u", route.New(route.MethodGet, "/u").Query(union).Build()))

		assert.Empty(t, Generate(api, testInfo()).Paths["/u"].Get.Parameters)
	})

	t.Run("unusable schemas degrade", func(t *testing.T) {
		api := router.Routes(
			router.Route("p", route.New(route.MethodGet, "/p/:id").Params(panicking).Query(panicking).Build()),
			router.Route("m", route.New(route.MethodGet, "/m/:id").Params(markerless).Build()),
		)

		doc := Generate(api, testInfo())
		for _, path := range []string{"/p/{id}", "/m/{id}"} {
			params := doc.Paths[path].Get.Parameters
			require.Len(t, params, 1, path)
			assert.Equal(t, &Schema{Type: TypeString("string")}, params[0].Schema, path)
			assert.True(t, params[0].Required, path)
		}
	})

	t.Run("repeated path parameter is listed once", func(t *testing.T) {
		api := router.Routes(router.Route("r", route.New(route.MethodGet, "/a/:id/b/:id").Build()))
		assert.Len(t, Generate(api, testInfo()).Paths["/a/{id}/b/{id}"].Get.Parameters, 1)
	})
}

func TestGenerateRequestBody(t *testing.T) {
	tests := []struct {
		name        string
		build       func(*route.Builder) *route.Builder
		required    bool
		contentType string
		hasSchema   bool
	}{
		{
			name:        "defaults to required json",
			build:       func(b *route.Builder) *route.Builder { return b.Body(itemSchema) },
			required:    true,
			contentType: "application/json",
			hasSchema:   true,
		},
		{
			name: "explicitly optional",
			build: func(b *route.Builder) *route.Builder {
				return b.Body(itemSchema, route.WithRequired(false))
			},
			required:    false,
			contentType: "application/json",
			hasSchema:   true,
		},
		{
			name: "custom content type",
			build: func(b *route.Builder) *route.Builder {
				return b.Body(itemSchema, route.WithContentType("application/merge-patch+json"))
			},
			required:    true,
			contentType: "application/merge-patch+json",
			hasSchema:   true,
		},
		{
			name:        "unusable schema keeps content entry",
			build:       func(b *route.Builder) *route.Builder { return b.Body(panicking) },
			required:    true,
			contentType: "application/json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := tt.build(route.New(route.MethodPost, "/items")).Build()
			doc := Generate(router.Routes(router.Route("create", def)), testInfo())

			body := doc.Paths["/items"].Post.RequestBody
			require.NotNil(t, body)
			assert.Equal(t, tt.required, body.Required)
			require.Contains(t, body.Content, tt.contentType)
			assert.Equal(t, tt.hasSchema, body.Content[tt.contentType].Schema != nil)
		})
	}

	t.Run("absent without body slot", func(t *testing.T) {
		doc := Generate(router.Routes(router.Route("list", route.New(route.MethodGet, "/items").Build())), testInfo())
		assert.Nil(t, doc.Paths["/items"].Get.RequestBody)
	})

	t.Run("schema is converted", func(t *testing.T) {
		def := route.New(route.MethodPost, "/items").Body(itemSchema).Build()
		doc := Generate(router.Routes(router.Route("create", def)), testInfo())

		s := doc.Paths["/items"].Post.RequestBody.Content["application/json"].Schema
		assert.Equal(t, TypeString("object"), s.Type)
		assert.Equal(t, []string{"id"}, s.Required)
		assert.Equal(t, TypeString("string"), s.Properties["name"].Type)
	})
}

func TestGenerateResponses(t *testing.T) {
	t.Run("synthesizes default response", func(t *testing.T) {
		doc := Generate(router.Routes(router.Route("ping", route.New(route.MethodGet, "/ping").Build())), testInfo())
		assert.Equal(t, map[string]*Response{"200": {Description: "Successful response"}}, doc.Paths["/ping"].Get.Responses)
	})

	t.Run("describes declared responses", func(t *testing.T) {
		def := route.New(route.MethodGet, "/items/:id").
			Response(http.StatusOK, itemSchema, route.WithDescription("The item")).
			Response(http.StatusNotFound, nil).
			ResponseKey("5xx", itemSchema, route.WithContentType("application/problem+json")).
			Build()

		responses := Generate(router.Routes(router.Route("get", def)), testInfo()).Paths["/items/{id}"].Get.Responses
		require.Len(t, responses, 3)

		assert.Equal(t, "The item", responses["200"].Description)
		require.Contains(t, responses["200"].Content, "application/json")
		assert.Equal(t, TypeString("object"), responses["200"].Content["application/json"].Schema.Type)

		assert.Equal(t, "Response 404", responses["404"].Description)
		assert.Nil(t, responses["404"].Content)

		assert.Equal(t, "Response 5XX", responses["5XX"].Description)
		assert.Contains(t, responses["5XX"].Content, "application/problem+json")
	})
}

func TestGenerateDocs(t *testing.T) {
	def := route.New(route.MethodDelete, "/items/:id").
		Summary("Delete").
		Description("Deletes an item").
		Tags("items").
		Deprecated().
		Security().
		ExternalDocs("https://example.com/delete", "guide").
		Build()

	op := Generate(router.Routes(router.Route("delete", def)), testInfo()).Paths["/items/{id}"].Delete
	require.NotNil(t, op)
	assert.Equal(t, "Delete", op.Summary)
	assert.Equal(t, "Deletes an item", op.Description)
	assert.Equal(t, []string{"items"}, op.Tags)
	assert.True(t, op.Deprecated)
	assert.NotNil(t, op.Security)
	assert.Empty(t, op.Security)
	assert.Equal(t, &ExternalDocs{URL: "https://example.com/delete", Description: "guide"}, op.ExternalDocs)
}

func TestMergeTags(t *testing.T) {
	api := router.Routes(
		router.Route("a", route.New(route.MethodGet, "/a").Tags("zeta", "alpha").Build()),
		router.Route("b", route.New(route.MethodGet, "/b").Tags("alpha").Build()),
	)

	doc := NewSpec(Info{Title: "t", Version: "1"}).
		AddTag(Tag{Name: "alpha", Description: "First letter"}).
		AddTag(Tag{Name: "unused", Description: "No routes"}).
		Build(api)

	assert.Equal(t, []Tag{
		{Name: "alpha", Description: "First letter"},
		{Name: "unused", Description: "No routes"},
		{Name: "zeta"},
	}, doc.Tags)
}

func TestSpecBuilder(t *testing.T) {
	spec := NewSpec(Info{Title: "Builder", Version: "2"}).
		SetVersion(Version30).
		AddServer(Server{URL: "https://a"}).
		SetExternalDocs("https://docs", "Docs").
		SetSecurity(SecurityRequirement{"key": {}}).
		AddSecurityScheme("key", &SecurityScheme{Type: "apiKey", Name: "X-Key", In: "header"})

	cfg := spec.Config()
	assert.Equal(t, Version30, cfg.OpenAPI)
	assert.True(t, cfg.Is30())
	assert.Equal(t, "Builder", cfg.Info.Title)

	doc := spec.Build(router.Routes())
	assert.Equal(t, Version30, doc.OpenAPI)
	assert.Equal(t, []Server{{URL: "https://a"}}, doc.Servers)
	assert.Equal(t, &ExternalDocs{URL: "https://docs", Description: "Docs"}, doc.ExternalDocs)
	assert.Equal(t, []SecurityRequirement{{"key": {}}}, doc.Security)
	assert.Equal(t, "apiKey", doc.Components.SecuritySchemes["key"].Type)
}
