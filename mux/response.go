package mux

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/vitalvas/routekit/schema"
)

// ResponseJSON encodes v as JSON and writes it with the given status code.
// If encoding fails, 500 Internal Server Error is written instead.
func ResponseJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}

// ErrorBody is the JSON body of error responses written by the router.
type ErrorBody struct {
	Error     string         `json:"error"`
	RequestID string         `json:"requestId,omitempty"`
	Issues    []schema.Issue `json:"issues,omitempty"`
}

func writeError(w http.ResponseWriter, code int, body ErrorBody) {
	if body.Error == "" {
		body.Error = http.StatusText(code)
	}
	ResponseJSON(w, code, body)
}
