package mux

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// BindJSON decodes the request body as JSON into v. Unknown fields are
// rejected unless allowUnknownFields is true. Trailing data after the
// first value is an error.
func BindJSON(r *http.Request, v any, allowUnknownFields ...bool) error {
	dec := json.NewDecoder(r.Body)

	if len(allowUnknownFields) == 0 || !allowUnknownFields[0] {
		dec.DisallowUnknownFields()
	}

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("mux: decode body: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("mux: unexpected trailing data after JSON value")
	}

	return nil
}
