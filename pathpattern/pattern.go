package pathpattern

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"sync"
)

// ErrMissingParam is returned by BuildPath when a template parameter has
// no value.
var ErrMissingParam = errors.New("pathpattern: missing parameter")

// paramPattern matches a single parameter value.
const paramPattern = "[^/]+"

// segment is one piece of a parsed template: literal text or a parameter.
type segment struct {
	text    string
	isParam bool
}

// Matcher is a compiled path template. It is immutable and safe for
// concurrent use.
type Matcher struct {
	template   string
	segments   []segment
	regexp     *regexp.Regexp
	paramNames []string
}

// matcherCache holds compiled matchers by template. The number of templates
// is bounded by the declared routes.
var matcherCache sync.Map

// ToMatcher compiles template. Compilation cannot fail: literal runs are
// quoted and parameters use a fixed pattern.
func ToMatcher(template string) *Matcher {
	if v, ok := matcherCache.Load(template); ok {
		return v.(*Matcher)
	}

	m := compile(template)
	actual, _ := matcherCache.LoadOrStore(template, m)
	return actual.(*Matcher)
}

func compile(template string) *Matcher {
	segments := parse(template)

	var (
		pattern strings.Builder
		names   []string
	)
	pattern.WriteByte('^')
	for _, seg := range segments {
		if seg.isParam {
			fmt.Fprintf(&pattern, "(%s)", paramPattern)
			names = append(names, seg.text)
			continue
		}
		pattern.WriteString(regexp.QuoteMeta(seg.text))
	}
	pattern.WriteByte('$')

	return &Matcher{
		template:   template,
		segments:   segments,
		regexp:     regexp.MustCompile(pattern.String()),
		paramNames: names,
	}
}

// parse splits template into literal and parameter segments.
func parse(template string) []segment {
	var (
		segments []segment
		literal  strings.Builder
	)
	flush := func() {
		if literal.Len() > 0 {
			segments = append(segments, segment{text: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != ':' || i+1 >= len(template) || !isIdentStart(template[i+1]) {
			literal.WriteByte(c)
			continue
		}

		end := i + 2
		for end < len(template) && isIdentPart(template[end]) {
			end++
		}
		flush()
		segments = append(segments, segment{text: template[i+1 : end], isParam: true})
		i = end - 1
	}
	flush()

	return segments
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// Template returns the source template.
func (m *Matcher) Template() string {
	return m.template
}

// Regexp returns the anchored regular expression. The returned value is
// shared and must not be modified.
func (m *Matcher) Regexp() *regexp.Regexp {
	return m.regexp
}

// ParamNames returns the parameter names in template order.
func (m *Matcher) ParamNames() []string {
	return slices.Clone(m.paramNames)
}

// Match extracts parameter values from path. Values are returned exactly
// as they appear in path. When a name repeats, the right-most value wins.
func (m *Matcher) Match(path string) (map[string]string, bool) {
	matches := m.regexp.FindStringSubmatch(path)
	if matches == nil {
		return nil, false
	}
	params := make(map[string]string, len(m.paramNames))
	for i, name := range m.paramNames {
		params[name] = matches[i+1]
	}
	return params, true
}

// Match reports whether path matches template and returns its parameters.
func Match(path, template string) (map[string]string, bool) {
	return ToMatcher(template).Match(path)
}

// HasParams reports whether template declares any parameter.
func HasParams(template string) bool {
	return len(ToMatcher(template).paramNames) > 0
}

// ParamNames returns the parameter names of template in order.
func ParamNames(template string) []string {
	return ToMatcher(template).ParamNames()
}

// ToOpenAPIPath replaces every `:name` with `{name}`.
func ToOpenAPIPath(template string) string {
	m := ToMatcher(template)
	if len(m.paramNames) == 0 {
		return template
	}

	var b strings.Builder
	for _, seg := range m.segments {
		if seg.isParam {
			b.WriteString("{" + seg.text + "}")
			continue
		}
		b.WriteString(seg.text)
	}
	return b.String()
}

// BuildPath substitutes params into template. Values are path-escaped.
func BuildPath(template string, params map[string]string) (string, error) {
	m := ToMatcher(template)

	var b strings.Builder
	for _, seg := range m.segments {
		if !seg.isParam {
			b.WriteString(seg.text)
			continue
		}
		v, ok := params[seg.text]
		if !ok {
			return "", fmt.Errorf("%w %q in %q", ErrMissingParam, seg.text, template)
		}
		b.WriteString(url.PathEscape(v))
	}
	return b.String(), nil
}

// NormalizePath ensures a leading slash, collapses repeated slashes and
// strips a trailing slash except for the root path.
func NormalizePath(path string) string {
	var b strings.Builder
	b.Grow(len(path) + 1)
	b.WriteByte('/')

	prevSlash := true
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteByte(c)
	}

	out := b.String()
	if len(out) > 1 && strings.HasSuffix(out, "/") {
		out = out[:len(out)-1]
	}
	return out
}
