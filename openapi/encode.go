package openapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a document encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses "json", "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("openapi: unsupported format %q", s)
}

// FormatFromPath infers the format from a file extension, defaulting to
// YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Marshal encodes doc. JSON output is indented by two spaces.
func Marshal(doc *Document, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes doc to w. YAML output keeps the JSON field names and
// field order.
func Encode(w io.Writer, doc *Document, format Format) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(doc); err != nil {
			return fmt.Errorf("openapi: encode json: %w", err)
		}
		return nil

	case FormatYAML:
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("openapi: encode yaml: %w", err)
		}

		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return fmt.Errorf("openapi: encode yaml: %w", err)
		}
		blockStyle(&node)

		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		defer encoder.Close()

		if err := encoder.Encode(&node); err != nil {
			return fmt.Errorf("openapi: encode yaml: %w", err)
		}
		return nil
	}

	return fmt.Errorf("openapi: unsupported format %q", format)
}

// blockStyle clears the flow and quoting styles left by parsing JSON. The
// encoder re-quotes scalars whose tag would otherwise change.
func blockStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		blockStyle(child)
	}
}

// WriteFile writes doc to path, creating parent directories. An empty
// format is inferred from the extension.
func WriteFile(doc *Document, path string, format Format) error {
	if format == "" {
		format = FormatFromPath(path)
	}

	data, err := Marshal(doc, format)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("openapi: create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("openapi: write %s: %w", path, err)
	}
	return nil
}

// Unmarshal decodes a JSON or YAML document.
func Unmarshal(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err == nil {
		return &doc, nil
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("openapi: parse document: %w", err)
	}
	converted, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: parse document: %w", err)
	}
	if err := json.Unmarshal(converted, &doc); err != nil {
		return nil, fmt.Errorf("openapi: parse document: %w", err)
	}
	return &doc, nil
}

// ReadFile reads a JSON or YAML document.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("openapi: read %s: %w", path, err)
	}
	return Unmarshal(data)
}
