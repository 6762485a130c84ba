package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/erraggy/oastools/parser"
	"github.com/erraggy/oastools/validator"
	"github.com/getkin/kin-openapi/openapi3"
)

// Issue is one problem found in a generated document.
type Issue struct {
	// Source names the checker that reported the issue.
	Source  string `json:"source"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// String formats the issue as "source: path: message".
func (i Issue) String() string {
	if i.Path == "" {
		return i.Source + ": " + i.Message
	}
	return i.Source + ": " + i.Path + ": " + i.Message
}

// Report is the result of Validate.
type Report struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Validate checks doc against the OpenAPI specification with the oastools
// validator. 3.0.x documents are also loaded and validated by kin-openapi.
// The error is non-nil only when doc cannot be checked at all.
func Validate(ctx context.Context, doc *Document) (Report, error) {
	if doc == nil {
		return Report{}, fmt.Errorf("openapi: nil document")
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return Report{}, fmt.Errorf("openapi: encode document: %w", err)
	}

	var report Report

	parsed, err := parser.ParseWithOptions(parser.WithBytes(data))
	if err != nil {
		return Report{}, fmt.Errorf("openapi: parse document: %w", err)
	}
	for _, perr := range parsed.Errors {
		report.Issues = append(report.Issues, Issue{Source: "oastools", Message: perr.Error()})
	}

	v := validator.New()
	v.IncludeWarnings = false
	result, err := v.ValidateParsed(*parsed)
	if err != nil {
		return Report{}, fmt.Errorf("openapi: validate document: %w", err)
	}
	for _, verr := range result.Errors {
		report.Issues = append(report.Issues, Issue{Source: "oastools", Path: verr.Path, Message: verr.Message})
	}

	if strings.HasPrefix(doc.OpenAPI, "3.0") {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		report.Issues = append(report.Issues, validateKin(ctx, data)...)
	}

	report.Valid = len(report.Issues) == 0
	return report, nil
}

func validateKin(ctx context.Context, data []byte) []Issue {
	loader := openapi3.NewLoader()
	loaded, err := loader.LoadFromData(data)
	if err != nil {
		return []Issue{{Source: "kin-openapi", Message: err.Error()}}
	}
	if err := loaded.Validate(ctx); err != nil {
		return []Issue{{Source: "kin-openapi", Message: err.Error()}}
	}
	return nil
}
