package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/routekit/openapi"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, []string{"routes/**/*.yaml"}, cfg.Routes)
	assert.Equal(t, "openapi.yaml", cfg.Output)
	assert.Equal(t, openapi.Version31, cfg.OpenAPI.Version)
	assert.Equal(t, "API", cfg.OpenAPI.Info.Title)
	assert.Equal(t, 300, cfg.Watch.Debounce)
	assert.Equal(t, ":8080", cfg.Serve.Addr)
	assert.True(t, cfg.Serve.Validate)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Run("explicit yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
routes:
  - api/*.yaml
output: dist/openapi.json
openapi:
  version: 3.0.3
  info:
    title: Pets
    version: 2.0.0
    description: Pet store
  servers:
    - url: https://pets.example.com
  securitySchemes:
    bearer:
      type: http
      scheme: bearer
      bearerFormat: JWT
serve:
  addr: 127.0.0.1:9000
  validate: false
`), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, []string{"api/*.yaml"}, cfg.Routes)
		assert.Equal(t, "dist/openapi.json", cfg.Output)
		assert.Equal(t, openapi.Version30, cfg.OpenAPI.Version)
		assert.Equal(t, "Pets", cfg.OpenAPI.Info.Title)
		assert.Equal(t, "Pet store", cfg.OpenAPI.Info.Description)
		require.Len(t, cfg.OpenAPI.Servers, 1)
		assert.Equal(t, "https://pets.example.com", cfg.OpenAPI.Servers[0].URL)
		require.Contains(t, cfg.OpenAPI.SecuritySchemes, "bearer")
		assert.Equal(t, "JWT", cfg.OpenAPI.SecuritySchemes["bearer"].BearerFormat)
		assert.Equal(t, "127.0.0.1:9000", cfg.Serve.Addr)
		assert.False(t, cfg.Serve.Validate)

		t.Run("unset values keep defaults", func(t *testing.T) {
			assert.Equal(t, 300, cfg.Watch.Debounce)
			assert.Equal(t, "/docs", cfg.Serve.DocsPath)
		})
	})

	t.Run("json file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "routekit.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"output": "api.json", "watch": {"debounce": 50}}`), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "api.json", cfg.Output)
		assert.Equal(t, 50, cfg.Watch.Debounce)
		assert.Equal(t, []string{"routes/**/*.yaml"}, cfg.Routes)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, ErrConfigNotFound)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "routekit.yaml")
		require.NoError(t, os.WriteFile(path, []byte("routes: ["), 0o644))

		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("no file uses defaults", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("discovered file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".routekit.yaml"), []byte("output: found.yaml\n"), 0o644))
		t.Chdir(dir)

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "found.yaml", cfg.Output)
	})
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, Find(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".routekit.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "routekit.yaml"), []byte(""), 0o644))
	assert.Equal(t, filepath.Join(dir, "routekit.yaml"), Find(dir))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		fields []string
	}{
		{"defaults are valid", func(*Config) {}, nil},
		{"no routes", func(c *Config) { c.Routes = nil }, []string{"routes"}},
		{"bad format", func(c *Config) { c.Format = "xml" }, []string{"format"}},
		{"bad version", func(c *Config) { c.OpenAPI.Version = "2.0" }, []string{"openapi.version"}},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = -1 }, []string{"watch.debounce"}},
		{"bad docs ui", func(c *Config) { c.Serve.DocsUI = "scalar" }, []string{"serve.docsUI"}},
		{"relative docs path", func(c *Config) { c.Serve.DocsPath = "docs" }, []string{"serve.docsPath"}},
		{
			name: "every problem is reported",
			modify: func(c *Config) {
				c.Format = "xml"
				c.Watch.Debounce = -5
			},
			fields: []string{"format", "watch.debounce"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}

			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			var got []string
			for _, v := range verrs {
				got = append(got, v.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestOutputFormat(t *testing.T) {
	cfg := Default()
	assert.Equal(t, openapi.FormatYAML, cfg.OutputFormat())

	cfg.Output = "api.json"
	assert.Equal(t, openapi.FormatJSON, cfg.OutputFormat())

	cfg.Format = "yaml"
	assert.Equal(t, openapi.FormatYAML, cfg.OutputFormat())
}

func TestDocumentConfig(t *testing.T) {
	cfg := Default()
	cfg.OpenAPI.Tags = []openapi.Tag{{Name: "pets"}}

	dc := cfg.DocumentConfig()
	assert.Equal(t, openapi.Version31, dc.OpenAPI)
	assert.Equal(t, "API", dc.Info.Title)
	assert.Equal(t, []openapi.Tag{{Name: "pets"}}, dc.Tags)
}
