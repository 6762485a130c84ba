// Package routefile loads router definitions from YAML or JSON files.
//
// A route file describes one router:
//
//	basePath: /api
//	defaults:
//	  tags: [api]
//	routes:
//	  health:
//	    method: GET
//	    path: /health
//	    responses:
//	      200: {description: ok}
//	  users:
//	    get:
//	      method: GET
//	      path: /users/:id
//	      params:
//	        type: object
//	        properties:
//	          id: {type: string, format: uuid}
//	      responses:
//	        200:
//	          description: The user
//	          schema: {type: object}
//	    admin:
//	      router: true
//	      defaults: {tags: [admin]}
//	      routes: {}
//
// Under routes, a mapping with a "method" key is a route, a mapping with
// "router: true" is a mounted router and any other mapping is a group.
// Key order is preserved. Schemas are JSON Schema documents; a request
// slot is either a bare schema or a mapping with "schema", "description",
// "contentType" and "required".
package routefile

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/vitalvas/routekit/router"
	"gopkg.in/yaml.v3"
)

// ErrNoFiles is returned when no file matches the given patterns.
var ErrNoFiles = errors.New("routefile: no files matched")

// FileError reports the problems found in one route file.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("routefile: %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

type options struct {
	logger *slog.Logger
}

// Option configures Load.
type Option func(*options)

// WithLogger sets the logger used to report loaded files.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Expand resolves doublestar glob patterns into a sorted, de-duplicated
// file list. Patterns without meta characters are returned when the file
// exists.
func Expand(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("routefile: pattern %q: %w", pattern, err)
		}
		slices.Sort(matches)
		for _, m := range matches {
			if !slices.Contains(files, m) {
				files = append(files, m)
			}
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFiles, strings.Join(patterns, ", "))
	}
	return files, nil
}

// Load parses every file matching patterns and merges them in file order.
// Problems in all files are reported together.
func Load(patterns []string, opts ...Option) (*router.Definition, error) {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}

	files, err := Expand(patterns)
	if err != nil {
		return nil, err
	}

	var (
		merr    *multierror.Error
		sources = make([]router.Source, 0, len(files))
	)
	for _, path := range files {
		def, err := ParseFile(path)
		if err != nil {
			merr = multierror.Append(merr, err)
			continue
		}
		o.logger.Debug("route file loaded", "path", path, "routes", len(router.Collect(def)))
		sources = append(sources, def)
	}
	if err := merr.ErrorOrNil(); err != nil {
		return nil, err
	}

	return router.Merge(sources...), nil
}

// ParseFile reads and parses one route file.
func ParseFile(path string) (*router.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	def, err := Parse(data)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	return def, nil
}

// Parse parses a route document. JSON documents are accepted as YAML.
func Parse(data []byte) (*router.Definition, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(doc.Content) == 0 {
		return router.Define(router.Config{}), nil
	}

	p := &parser{}
	def := p.router(doc.Content[0], "")
	if err := p.errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return def, nil
}
