package muxhandlers

import (
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/vitalvas/routekit/mux"
)

// ErrWildcardCredentials is returned when AllowedOrigins contains "*" and
// AllowCredentials is true.
var ErrWildcardCredentials = errors.New("muxhandlers: wildcard origin \"*\" cannot be used with AllowCredentials")

// CORSConfig configures CORSMiddleware.
//
// See: https://fetch.spec.whatwg.org/#http-cors-protocol
type CORSConfig struct {
	// AllowedOrigins holds exact origins, "*", or subdomain patterns such
	// as "https://*.example.com".
	AllowedOrigins []string

	// AllowedMethods overrides the advertised methods. When empty the
	// methods declared for the request path are used.
	AllowedMethods []string

	// AllowedHeaders lists the request headers a client may send. When
	// empty, or "*", Access-Control-Request-Headers is reflected.
	AllowedHeaders []string

	// ExposeHeaders lists response headers readable by client code.
	ExposeHeaders []string

	AllowCredentials bool

	// MaxAge is the preflight cache duration in seconds. Zero omits the
	// header, negative values send "0".
	MaxAge int
}

type originPattern struct {
	prefix string
	suffix string
}

type originMatcher struct {
	any      bool
	exact    []string
	patterns []originPattern
}

func newOriginMatcher(origins []string) (*originMatcher, error) {
	m := &originMatcher{}
	for _, o := range origins {
		if o == "*" {
			m.any = true
			continue
		}
		lower := strings.ToLower(o)
		prefix, suffix, found := strings.Cut(lower, "*")
		if !found {
			m.exact = append(m.exact, lower)
			continue
		}
		if strings.Contains(suffix, "*") {
			return nil, errors.New("muxhandlers: origin pattern contains multiple wildcards: " + o)
		}
		m.patterns = append(m.patterns, originPattern{prefix: prefix, suffix: suffix})
	}
	return m, nil
}

func (m *originMatcher) match(origin string) bool {
	if m.any {
		return true
	}
	origin = strings.ToLower(origin)
	if slices.Contains(m.exact, origin) {
		return true
	}
	for _, p := range m.patterns {
		if len(origin) >= len(p.prefix)+len(p.suffix) &&
			strings.HasPrefix(origin, p.prefix) && strings.HasSuffix(origin, p.suffix) {
			return true
		}
	}
	return false
}

// CORSMiddleware returns a middleware implementing CORS for the routes of
// r. Middleware only runs for matched routes, so preflight requests, which
// match a path but not its methods, are answered from r's
// MethodNotAllowedHandler; the previous handler still serves every other
// 405.
func CORSMiddleware(r *mux.Router, cfg CORSConfig) (mux.MiddlewareFunc, error) {
	if cfg.AllowCredentials && slices.Contains(cfg.AllowedOrigins, "*") {
		return nil, ErrWildcardCredentials
	}

	origins, err := newOriginMatcher(cfg.AllowedOrigins)
	if err != nil {
		return nil, err
	}

	c := &cors{router: r, cfg: cfg, origins: origins}

	prev := r.MethodNotAllowedHandler
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if origin := req.Header.Get("Origin"); origin != "" && isPreflight(req) && origins.match(origin) {
			c.setOrigin(w, origin)
			c.preflight(w, req)
			return
		}
		if prev != nil {
			prev.ServeHTTP(w, req)
			return
		}
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			origin := req.Header.Get("Origin")
			if origin == "" {
				if !origins.any {
					w.Header().Add("Vary", "Origin")
				}
				next.ServeHTTP(w, req)
				return
			}
			if !origins.match(origin) {
				next.ServeHTTP(w, req)
				return
			}

			c.setOrigin(w, origin)
			if isPreflight(req) {
				c.preflight(w, req)
				return
			}

			if methods := c.methods(req); len(methods) > 0 {
				w.Header().Set("Access-Control-Allow-Methods", strings.Join(methods, ","))
			}
			if len(cfg.ExposeHeaders) > 0 {
				w.Header().Set("Access-Control-Expose-Headers", strings.Join(cfg.ExposeHeaders, ","))
			}
			next.ServeHTTP(w, req)
		})
	}, nil
}

type cors struct {
	router  *mux.Router
	cfg     CORSConfig
	origins *originMatcher
}

func isPreflight(req *http.Request) bool {
	return req.Method == http.MethodOptions && req.Header.Get("Access-Control-Request-Method") != ""
}

func (c *cors) setOrigin(w http.ResponseWriter, origin string) {
	if c.origins.any && !c.cfg.AllowCredentials {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	} else {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
	}
	if c.cfg.AllowCredentials {
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
}

// methods returns the configured methods or those declared for the path.
func (c *cors) methods(req *http.Request) []string {
	if len(c.cfg.AllowedMethods) > 0 {
		return c.cfg.AllowedMethods
	}
	return c.router.Allowed(req.URL.Path)
}

func (c *cors) preflight(w http.ResponseWriter, req *http.Request) {
	h := w.Header()
	if methods := c.methods(req); len(methods) > 0 {
		h.Set("Access-Control-Allow-Methods", strings.Join(methods, ","))
	}

	requested := req.Header.Get("Access-Control-Request-Headers")
	switch {
	case len(c.cfg.AllowedHeaders) > 0 && !slices.Contains(c.cfg.AllowedHeaders, "*"):
		h.Set("Access-Control-Allow-Headers", strings.Join(c.cfg.AllowedHeaders, ","))
	case requested != "":
		h.Set("Access-Control-Allow-Headers", requested)
	}

	switch {
	case c.cfg.MaxAge > 0:
		h.Set("Access-Control-Max-Age", strconv.Itoa(c.cfg.MaxAge))
	case c.cfg.MaxAge < 0:
		h.Set("Access-Control-Max-Age", "0")
	}

	h.Add("Vary", "Access-Control-Request-Method")
	h.Add("Vary", "Access-Control-Request-Headers")
	w.WriteHeader(http.StatusNoContent)
}
