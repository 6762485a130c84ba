// Package openapi generates OpenAPI documents from router definitions.
//
// Documents target OpenAPI 3.1.0 with JSON Schema Draft 2020-12 by default.
// Setting the version to a 3.0.x value produces a downgraded document whose
// schemas use the 3.0 dialect (nullable, boolean exclusive bounds, example).
//
// See: https://spec.openapis.org/oas/v3.1.0
// See: https://spec.openapis.org/oas/v3.0.3
//
// # Generating a document
//
// Routes carry schema adapters for their inputs and responses. Generate
// walks the router in declaration order and emits one operation per route:
//
//	getUser := route.New(route.MethodGet, "/users/:userId").
//	    Params(schema.MustJSON(`{"type":"object","properties":{"userId":{"type":"string"}}}`)).
//	    Response(http.StatusOK, userSchema, route.WithDescription("The user")).
//	    Tags("users").
//	    Build()
//
//	api := router.Routes(
//	    router.Group("users", router.Route("get", getUser)),
//	)
//
//	doc := openapi.Generate(api, openapi.Config{
//	    Info: openapi.Info{Title: "Users", Version: "1.0.0"},
//	})
//
// The route key "users.get" becomes the operationId "UsersGet" unless the
// route sets its own. `:userId` is written as `{userId}` and documented as
// a required path parameter.
//
// # Spec builder
//
// Spec collects document metadata fluently and builds any number of
// documents from it:
//
//	spec := openapi.NewSpec(openapi.Info{Title: "Users", Version: "1.0.0"}).
//	    AddServer(openapi.Server{URL: "https://api.example.com"}).
//	    AddSecurityScheme("bearerAuth", &openapi.SecurityScheme{
//	        Type:         "http",
//	        Scheme:       "bearer",
//	        BearerFormat: "JWT",
//	    }).
//	    SetSecurity(openapi.SecurityRequirement{"bearerAuth": {}}).
//	    WithLogger(slog.Default())
//
//	doc := spec.Build(api)
//
// # Parameters and bodies
//
// Params, Query and Headers adapters are expanded into one parameter per
// object property. Query and header parameters are sorted by name and are
// required when listed in the schema's "required" array. Path parameters
// are always required; a template parameter without a property schema is
// documented as a string.
//
// Body adapters become the request body under the route's content type
// (application/json by default). Response status keys are normalized:
// 200, "200", "2XX" and "default" are all accepted. A route without
// responses gets a 200 "Successful response".
//
// Adapters whose schema cannot be converted (nil, no recognized keyword,
// or a panic while producing it) are skipped; the operation is still
// emitted.
//
// # Output
//
// Marshal and WriteFile encode a document as JSON or YAML:
//
//	data, err := openapi.Marshal(doc, openapi.FormatYAML)
//	err = openapi.WriteFile(doc, "api/openapi.yaml", openapi.FormatFromPath("api/openapi.yaml"))
//
// Validate checks a document with the oastools validator; 3.0.x documents
// are additionally loaded by kin-openapi:
//
//	report, err := openapi.Validate(ctx, doc)
//	if err == nil && !report.Valid {
//	    for _, issue := range report.Issues {
//	        fmt.Println(issue)
//	    }
//	}
//
// # Serving
//
// Handle registers the document and an interactive docs page on a mux
// router:
//
//	r := mux.New(api)
//	openapi.Handle(r, "/docs", doc, &openapi.HandleConfig{UI: openapi.DocsRedoc})
//
// This serves:
//
//	GET /docs              docs page
//	GET /docs/schema.json  JSON document
//	GET /docs/schema.yaml  YAML document
//
// Swagger UI, RapiDoc and Redoc are supported. Each encoding is produced
// once, on first request.
package openapi
