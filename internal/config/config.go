// Package config loads the routekit CLI configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/viper"
	"github.com/vitalvas/routekit/openapi"
)

// Config is the CLI configuration.
type Config struct {
	// Routes lists route file patterns. Doublestar globs are allowed.
	Routes []string `mapstructure:"routes" yaml:"routes" json:"routes"`

	// Output is the path of the generated document.
	Output string `mapstructure:"output" yaml:"output" json:"output"`

	// Format is "yaml" or "json". Empty means derived from Output.
	Format string `mapstructure:"format" yaml:"format" json:"format"`

	OpenAPI OpenAPIConfig `mapstructure:"openapi" yaml:"openapi" json:"openapi"`
	Watch   WatchConfig   `mapstructure:"watch" yaml:"watch" json:"watch"`
	Serve   ServeConfig   `mapstructure:"serve" yaml:"serve" json:"serve"`
}

// OpenAPIConfig holds document metadata.
type OpenAPIConfig struct {
	Version         string                             `mapstructure:"version" yaml:"version" json:"version"`
	Info            openapi.Info                       `mapstructure:"info" yaml:"info" json:"info"`
	Servers         []openapi.Server                   `mapstructure:"servers" yaml:"servers" json:"servers"`
	Tags            []openapi.Tag                      `mapstructure:"tags" yaml:"tags" json:"tags"`
	SecuritySchemes map[string]*openapi.SecurityScheme `mapstructure:"securitySchemes" yaml:"securitySchemes" json:"securitySchemes"`
	Security        []openapi.SecurityRequirement      `mapstructure:"security" yaml:"security" json:"security"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	// Debounce is the quiet period in milliseconds before regenerating.
	Debounce int `mapstructure:"debounce" yaml:"debounce" json:"debounce"`
}

// ServeConfig configures the serve command.
type ServeConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr" json:"addr"`
	DocsPath string `mapstructure:"docsPath" yaml:"docsPath" json:"docsPath"`
	DocsUI   string `mapstructure:"docsUI" yaml:"docsUI" json:"docsUI"`
	Validate bool   `mapstructure:"validate" yaml:"validate" json:"validate"`

	// CORSOrigins enables CORS for the listed origins.
	CORSOrigins []string `mapstructure:"corsOrigins" yaml:"corsOrigins" json:"corsOrigins"`
}

// configFileNames are searched in order when no path is given.
var configFileNames = []string{
	"routekit.yaml",
	"routekit.json",
	".routekit.yaml",
	".routekit.json",
}

var (
	supportedFormats  = []string{"yaml", "json"}
	supportedVersions = []string{openapi.Version30, openapi.Version31}
)

// ErrConfigNotFound is returned when an explicit config path does not exist.
var ErrConfigNotFound = errors.New("config: file not found")

// ValidationError is one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is returned by Validate.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return "config: " + e[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("config: invalid configuration:")
	for _, err := range e {
		sb.WriteString("\n  - ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Routes: []string{"routes/**/*.yaml"},
		Output: "openapi.yaml",
		OpenAPI: OpenAPIConfig{
			Version: openapi.Version31,
			Info: openapi.Info{
				Title:   "API",
				Version: "0.0.0",
			},
		},
		Watch: WatchConfig{Debounce: 300},
		Serve: ServeConfig{
			Addr:     ":8080",
			DocsPath: "/docs",
			DocsUI:   "swagger",
			Validate: true,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("routes", d.Routes)
	v.SetDefault("output", d.Output)
	v.SetDefault("format", d.Format)
	v.SetDefault("openapi.version", d.OpenAPI.Version)
	v.SetDefault("openapi.info.title", d.OpenAPI.Info.Title)
	v.SetDefault("openapi.info.version", d.OpenAPI.Info.Version)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("serve.addr", d.Serve.Addr)
	v.SetDefault("serve.docsPath", d.Serve.DocsPath)
	v.SetDefault("serve.docsUI", d.Serve.DocsUI)
	v.SetDefault("serve.validate", d.Serve.Validate)
}

// Load reads the configuration at path. With an empty path the working
// directory is searched for routekit.yaml, routekit.json, .routekit.yaml
// and .routekit.json; when none exists the defaults are returned.
// ROUTEKIT_* environment variables override file values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Find(".")
		if path == "" {
			return Default(), nil
		}
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("routekit")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return &cfg, nil
}

// Find returns the first known config file in dir, or "".
func Find(dir string) string {
	for _, name := range configFileNames {
		path := name
		if dir != "" && dir != "." {
			path = dir + string(os.PathSeparator) + name
		}
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Validate checks field values and reports every problem at once.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if len(c.Routes) == 0 {
		errs = append(errs, ValidationError{Field: "routes", Message: "at least one pattern is required"})
	}
	if c.Format != "" && !slices.Contains(supportedFormats, c.Format) {
		errs = append(errs, ValidationError{
			Field:   "format",
			Message: fmt.Sprintf("unsupported format %q, must be one of: %s", c.Format, strings.Join(supportedFormats, ", ")),
		})
	}
	if c.OpenAPI.Version != "" && !slices.Contains(supportedVersions, c.OpenAPI.Version) {
		errs = append(errs, ValidationError{
			Field:   "openapi.version",
			Message: fmt.Sprintf("unsupported version %q, must be one of: %s", c.OpenAPI.Version, strings.Join(supportedVersions, ", ")),
		})
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, ValidationError{Field: "watch.debounce", Message: "must be non-negative"})
	}
	if c.Serve.DocsUI != "" {
		if _, err := openapi.ParseDocsUI(c.Serve.DocsUI); err != nil {
			errs = append(errs, ValidationError{Field: "serve.docsUI", Message: err.Error()})
		}
	}
	if c.Serve.DocsPath != "" && !strings.HasPrefix(c.Serve.DocsPath, "/") {
		errs = append(errs, ValidationError{Field: "serve.docsPath", Message: "must start with /"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// OutputFormat returns Format, or the format implied by Output.
func (c *Config) OutputFormat() openapi.Format {
	if f, err := openapi.ParseFormat(c.Format); err == nil {
		return f
	}
	return openapi.FormatFromPath(c.Output)
}

// DocumentConfig converts the openapi section for openapi.Generate.
func (c *Config) DocumentConfig() openapi.Config {
	return openapi.Config{
		OpenAPI:         c.OpenAPI.Version,
		Info:            c.OpenAPI.Info,
		Servers:         c.OpenAPI.Servers,
		Tags:            c.OpenAPI.Tags,
		SecuritySchemes: c.OpenAPI.SecuritySchemes,
		Security:        c.OpenAPI.Security,
	}
}
