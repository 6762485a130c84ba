package mux

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// MiddlewareFunc wraps an http.Handler.
type MiddlewareFunc func(http.Handler) http.Handler

// Middleware allows MiddlewareFunc to be used as a middleware value.
func (mw MiddlewareFunc) Middleware(handler http.Handler) http.Handler {
	return mw(handler)
}

// RequestIDHeader is the header carrying the request id.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestIDFromContext returns the id stored by RequestIDMiddleware.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// RequestIDMiddleware reuses the incoming X-Request-ID or generates a UUID
// and sets it on the request context and the response.
func RequestIDMiddleware() MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.New().String()
			}

			w.Header().Set(RequestIDHeader, id)
			r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))

			next.ServeHTTP(w, r)
		})
	}
}

// requestID returns the id for error bodies: the context id, the incoming
// header, or a new UUID.
func requestID(r *http.Request) string {
	if id := RequestIDFromContext(r.Context()); id != "" {
		return id
	}
	if id := r.Header.Get(RequestIDHeader); id != "" {
		return id
	}
	return uuid.New().String()
}

// RecoveryMiddleware recovers from handler panics, logs them and answers
// 500 Internal Server Error.
func RecoveryMiddleware(logger *slog.Logger) MiddlewareFunc {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					attrs := []any{"method", r.Method, "path", r.URL.Path, "panic", err}
					if m := CurrentRoute(r); m != nil {
						attrs = append(attrs, "key", m.Key)
					}
					logger.Error("handler panic", attrs...)

					writeError(w, http.StatusInternalServerError, ErrorBody{RequestID: requestID(r)})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
