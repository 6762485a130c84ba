package pathpattern

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		template string
		expected []segment
	}{
		{name: "empty", template: "", expected: nil},
		{name: "literal only", template: "/users", expected: []segment{{text: "/users"}}},
		{
			name:     "single param",
			template: "/users/:id",
			expected: []segment{{text: "/users/"}, {text: "id", isParam: true}},
		},
		{
			name:     "param with suffix",
			template: "/files/:name.json",
			expected: []segment{{text: "/files/"}, {text: "name", isParam: true}, {text: ".json"}},
		},
		{
			name:     "colon without identifier is literal",
			template: "/a/:/b:1",
			expected: []segment{{text: "/a/:/b:1"}},
		},
		{
			name:     "adjacent params",
			template: "/:a_1:B",
			expected: []segment{{text: "/"}, {text: "a_1", isParam: true}, {text: "B", isParam: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parse(tt.template))
		})
	}
}

func TestToMatcher(t *testing.T) {
	t.Run("anchored regexp", func(t *testing.T) {
		m := ToMatcher("/users/:id/posts/:postId")
		assert.Equal(t, `^/users/([^/]+)/posts/([^/]+)$`, m.Regexp().String())
		assert.Equal(t, []string{"id", "postId"}, m.ParamNames())
		assert.Equal(t, "/users/:id/posts/:postId", m.Template())
	})

	t.Run("quotes literal metacharacters", func(t *testing.T) {
		m := ToMatcher("/v1.0/(items)+")
		_, ok := m.Match("/v1.0/(items)+")
		assert.True(t, ok)
		_, ok = m.Match("/v1x0/(items)+")
		assert.False(t, ok)
	})

	t.Run("returns cached instance", func(t *testing.T) {
		assert.Same(t, ToMatcher("/cached/:x"), ToMatcher("/cached/:x"))
	})

	t.Run("param names are a copy", func(t *testing.T) {
		m := ToMatcher("/copy/:a")
		names := m.ParamNames()
		names[0] = "changed"
		assert.Equal(t, []string{"a"}, m.ParamNames())
	})
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		template string
		params   map[string]string
		ok       bool
	}{
		{name: "literal", path: "/health", template: "/health", params: map[string]string{}, ok: true},
		{name: "literal mismatch", path: "/healthz", template: "/health"},
		{name: "single", path: "/users/42", template: "/users/:id", params: map[string]string{"id": "42"}, ok: true},
		{
			name:     "multiple",
			path:     "/users/7/posts/abc",
			template: "/users/:userId/posts/:postId",
			params:   map[string]string{"userId": "7", "postId": "abc"},
			ok:       true,
		},
		{name: "extra segment", path: "/users/1/2", template: "/users/:id"},
		{name: "missing segment", path: "/users", template: "/users/:id"},
		{name: "empty param", path: "/users/", template: "/users/:id"},
		{name: "trailing slash not normalized", path: "/users/", template: "/users"},
		{
			name:     "values are not decoded",
			path:     "/files/a%20b",
			template: "/files/:name",
			params:   map[string]string{"name": "a%20b"},
			ok:       true,
		},
		{
			name:     "suffix literal",
			path:     "/files/report.json",
			template: "/files/:name.json",
			params:   map[string]string{"name": "report"},
			ok:       true,
		},
		{
			name:     "duplicate names keep last",
			path:     "/a/1/b/2",
			template: "/a/:id/b/:id",
			params:   map[string]string{"id": "2"},
			ok:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, ok := Match(tt.path, tt.template)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.params, params)
			} else {
				assert.Nil(t, params)
			}
		})
	}
}

func TestHasParamsAndParamNames(t *testing.T) {
	assert.False(t, HasParams("/users"))
	assert.False(t, HasParams("/time/12:30"))
	assert.True(t, HasParams("/users/:id"))

	assert.Nil(t, ParamNames("/users"))
	assert.Equal(t, []string{"a", "b", "a"}, ParamNames("/:a/:b/:a"))
}

func TestToOpenAPIPath(t *testing.T) {
	tests := []struct {
		template string
		expected string
	}{
		{template: "/users", expected: "/users"},
		{template: "/users/:id", expected: "/users/{id}"},
		{template: "/orgs/:org/repos/:repo.git", expected: "/orgs/{org}/repos/{repo}.git"},
		{template: "/at/:/x", expected: "/at/:/x"},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			got := ToOpenAPIPath(tt.template)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, got, ToOpenAPIPath(got))
		})
	}
}

func TestBuildPath(t *testing.T) {
	t.Run("substitutes and escapes", func(t *testing.T) {
		path, err := BuildPath("/users/:id/files/:name", map[string]string{"id": "7", "name": "a b/c"})
		require.NoError(t, err)
		assert.Equal(t, "/users/7/files/a%20b%2Fc", path)
	})

	t.Run("missing param", func(t *testing.T) {
		_, err := BuildPath("/users/:id", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingParam)
		assert.Contains(t, err.Error(), `"id"`)
	})

	t.Run("round trips through match", func(t *testing.T) {
		path, err := BuildPath("/a/:x/b/:y", map[string]string{"x": "1", "y": "two"})
		require.NoError(t, err)
		params, ok := Match(path, "/a/:x/b/:y")
		require.True(t, ok)
		assert.Equal(t, map[string]string{"x": "1", "y": "two"}, params)
	})
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "", expected: "/"},
		{input: "/", expected: "/"},
		{input: "//", expected: "/"},
		{input: "users", expected: "/users"},
		{input: "/users/", expected: "/users"},
		{input: "//users///42//", expected: "/users/42"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePath(tt.input))
		})
	}
}

func randomIdent(r *rand.Rand) string {
	const first = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_"
	const rest = first + "0123456789"
	var b strings.Builder
	b.WriteByte(first[r.IntN(len(first))])
	for range r.IntN(6) {
		b.WriteByte(rest[r.IntN(len(rest))])
	}
	return b.String()
}

func randomValue(r *rand.Rand) string {
	const chars = "abcxyz0123456789-_.~%"
	var b strings.Builder
	for range 1 + r.IntN(8) {
		b.WriteByte(chars[r.IntN(len(chars))])
	}
	return b.String()
}

func TestMatchProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	for i := range 200 {
		var (
			template strings.Builder
			path     strings.Builder
			openapi  strings.Builder
			names    []string
			values   = map[string]string{}
		)
		segments := 1 + r.IntN(5)
		for s := range segments {
			template.WriteByte('/')
			path.WriteByte('/')
			openapi.WriteByte('/')
			if r.IntN(2) == 0 {
				lit := fmt.Sprintf("seg%d", s)
				template.WriteString(lit)
				path.WriteString(lit)
				openapi.WriteString(lit)
				continue
			}
			name := fmt.Sprintf("%s%d", randomIdent(r), s)
			value := randomValue(r)
			names = append(names, name)
			values[name] = value
			template.WriteString(":" + name)
			path.WriteString(value)
			openapi.WriteString("{" + name + "}")
		}

		tpl := template.String()
		t.Run(fmt.Sprintf("case %d", i), func(t *testing.T) {
			params, ok := Match(path.String(), tpl)
			require.True(t, ok)
			assert.Equal(t, values, params)
			assert.Equal(t, names, ParamNames(tpl))
			assert.Equal(t, len(names) > 0, HasParams(tpl))
			assert.Equal(t, openapi.String(), ToOpenAPIPath(tpl))

			_, ok = Match(path.String()+"/extra", tpl)
			assert.False(t, ok)
			_, ok = Match("/other"+path.String(), tpl)
			assert.False(t, ok)
		})
	}
}
