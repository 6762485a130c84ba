package openapi

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/vitalvas/routekit/mux"
)

// DocsUI selects the interactive documentation page.
type DocsUI int

// Documentation pages.
const (
	DocsSwaggerUI DocsUI = iota
	DocsRapiDoc
	DocsRedoc
)

// ParseDocsUI parses "swagger", "rapidoc" or "redoc".
func ParseDocsUI(s string) (DocsUI, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "swagger", "swagger-ui", "swaggerui":
		return DocsSwaggerUI, nil
	case "rapidoc":
		return DocsRapiDoc, nil
	case "redoc":
		return DocsRedoc, nil
	}
	return 0, fmt.Errorf("openapi: unknown docs ui %q", s)
}

// HandleConfig configures the endpoints registered by Handle.
type HandleConfig struct {
	// UI selects the docs page (default: DocsSwaggerUI).
	UI DocsUI

	// Title overrides the page title (default: info.title).
	Title string

	// JSONFilename is the path of the JSON endpoint (default:
	// "schema.json"). Relative paths are joined with the base path,
	// absolute paths are used as-is. "-" disables the endpoint.
	JSONFilename string

	// YAMLFilename is the path of the YAML endpoint (default:
	// "schema.yaml"). Same rules as JSONFilename.
	YAMLFilename string

	// DisableDocs disables the HTML page.
	DisableDocs bool

	// SwaggerUIConfig adds SwaggerUIBundle options, for example
	// {"docExpansion": "none"}. Only used with DocsSwaggerUI.
	SwaggerUIConfig map[string]any
}

func (cfg HandleConfig) filename(name, def string) string {
	if name == "" {
		return def
	}
	return name
}

// resolvePath joins a relative filename under basePath.
func resolvePath(basePath, filename string) string {
	if strings.HasPrefix(filename, "/") {
		return filename
	}
	return basePath + "/" + filename
}

// Handle registers documentation endpoints for doc on r:
//
//	<basePath>/            interactive docs (unless DisableDocs)
//	<basePath>/schema.json document as JSON (unless JSONFilename is "-")
//	<basePath>/schema.yaml document as YAML (unless YAMLFilename is "-")
//
// A nil cfg uses the defaults. Each encoding is produced on first request
// and cached.
func Handle(r *mux.Router, basePath string, doc *Document, cfg *HandleConfig) {
	if cfg == nil {
		cfg = &HandleConfig{}
	}
	basePath = strings.TrimRight(basePath, "/")

	var jsonPath, yamlPath string

	if name := cfg.filename(cfg.JSONFilename, "schema.json"); name != "-" {
		jsonPath = resolvePath(basePath, name)
		r.HandleFunc(http.MethodGet, jsonPath, documentHandler(doc, FormatJSON, "application/json"))
	}
	if name := cfg.filename(cfg.YAMLFilename, "schema.yaml"); name != "-" {
		yamlPath = resolvePath(basePath, name)
		r.HandleFunc(http.MethodGet, yamlPath, documentHandler(doc, FormatYAML, "application/x-yaml"))
	}

	if cfg.DisableDocs {
		return
	}
	specURL := jsonPath
	if specURL == "" {
		specURL = yamlPath
	}
	if specURL == "" {
		return
	}

	title := cfg.Title
	if title == "" && doc != nil {
		title = doc.Info.Title
	}
	page := []byte(docsPage(cfg.UI, title, specURL, cfg.SwaggerUIConfig))
	pageHandler := func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(page)
	}

	if basePath == "" {
		r.HandleFunc(http.MethodGet, "/", pageHandler)
		return
	}
	r.HandleFunc(http.MethodGet, basePath, pageHandler)
	r.HandleFunc(http.MethodGet, basePath+"/", pageHandler)
}

func documentHandler(doc *Document, format Format, contentType string) http.HandlerFunc {
	var (
		once sync.Once
		data []byte
		err  error
	)
	return func(w http.ResponseWriter, _ *http.Request) {
		once.Do(func() {
			defer func() {
				if rv := recover(); rv != nil {
					err = fmt.Errorf("openapi: encode document: %v", rv)
				}
			}()
			data, err = Marshal(doc, format)
		})
		if err != nil {
			http.Error(w, "failed to encode OpenAPI document as "+string(format), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
%s</head>
<body>
%s
</body>
</html>`

func docsPage(ui DocsUI, title, specURL string, swaggerConfig map[string]any) string {
	var head, body string
	switch ui {
	case DocsRapiDoc:
		head = `<script type="module" src="https://unpkg.com/rapidoc/dist/rapidoc-min.js"></script>` + "\n"
		body = fmt.Sprintf(`<rapi-doc spec-url=%q></rapi-doc>`, specURL)
	case DocsRedoc:
		body = fmt.Sprintf(`<redoc spec-url=%q></redoc>`+"\n"+
			`<script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>`, specURL)
	default:
		head = `<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist/swagger-ui.css">` + "\n"
		body = fmt.Sprintf(`<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist/swagger-ui-bundle.js"></script>
<script>
SwaggerUIBundle({url: %q, dom_id: "#swagger-ui"%s});
</script>`, specURL, swaggerOptions(swaggerConfig))
	}
	return fmt.Sprintf(pageHead, html.EscapeString(title), head, body)
}

// swaggerOptions renders extra SwaggerUIBundle options in key order.
func swaggerOptions(config map[string]any) string {
	keys := make([]string, 0, len(config))
	for k := range config {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf strings.Builder
	for _, k := range keys {
		v, err := json.Marshal(config[k])
		if err != nil {
			continue
		}
		fmt.Fprintf(&buf, ", %s: %s", k, v)
	}
	return buf.String()
}
