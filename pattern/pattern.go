// Package pattern compiles route path patterns into anchored matchers.
//
// Two forms are accepted, mirroring the teacher library's literal/parametric
// segment matching (rest.go, path.go) generalized to a single regex engine:
//
//   - literal/parametric: "/users/:id" — a segment beginning with ':' captures
//     one path segment (no '/') under that name.
//   - regex: a pattern whose first byte is '^' is used as a POSIX-style
//     regular expression, anchored to the full path; its named captures are
//     the parameter names, in declaration order.
package pattern

import (
	"fmt"
	"regexp"
	"strings"
)

// ErrPattern is returned when a pattern fails to compile or declares the
// same parameter name twice.
type ErrPattern struct {
	Source string
	Reason string
}

func (e *ErrPattern) Error() string {
	return fmt.Sprintf("pattern: %q: %s", e.Source, e.Reason)
}

// Matcher is a compiled path pattern: an anchored regular expression plus
// the ordered list of named parameters it captures.
type Matcher struct {
	source string
	re     *regexp.Regexp
	names  []string
}

// Source returns the original pattern string the Matcher was compiled from.
// It is part of a Route's identity (spec.md §3).
func (m *Matcher) Source() string {
	return m.source
}

// ParamNames returns the ordered parameter names the pattern captures.
func (m *Matcher) ParamNames() []string {
	names := make([]string, len(m.names))
	copy(names, m.names)
	return names
}

// Match reports whether path satisfies the pattern and, if so, the captured
// named parameters. An empty pattern matches any path.
func (m *Matcher) Match(path string) (ok bool, params map[string]string) {
	if m.re == nil {
		return true, map[string]string{}
	}
	sub := m.re.FindStringSubmatch(path)
	if sub == nil {
		return false, nil
	}
	params = make(map[string]string, len(m.names))
	for i, name := range m.names {
		idx := i + 1 // literal form: groups are unnamed and in names order
		if j := m.re.SubexpIndex(name); j > 0 {
			idx = j // regex form: unnamed groups may precede named ones
		}
		params[name] = sub[idx]
	}
	return true, params
}

// Compile compiles src into a Matcher. An empty src matches any path.
func Compile(src string) (*Matcher, error) {
	if src == "" {
		return &Matcher{source: src}, nil
	}
	if src[0] == '^' {
		return compileRegex(src)
	}
	return compileLiteral(src)
}

func compileRegex(src string) (*Matcher, error) {
	body := src[1:]
	re, err := regexp.Compile("^" + body + "$")
	if err != nil {
		return nil, &ErrPattern{Source: src, Reason: err.Error()}
	}
	names := make([]string, 0, re.NumSubexp())
	seen := make(map[string]bool, re.NumSubexp())
	for _, name := range re.SubexpNames()[1:] {
		if name == "" {
			continue
		}
		if seen[name] {
			return nil, &ErrPattern{Source: src, Reason: "duplicate parameter name: " + name}
		}
		seen[name] = true
		names = append(names, name)
	}
	return &Matcher{source: src, re: re, names: names}, nil
}

func compileLiteral(src string) (*Matcher, error) {
	segments := strings.Split(src, "/")
	var b strings.Builder
	b.WriteByte('^')
	names := make([]string, 0, len(segments))
	seen := make(map[string]bool, len(segments))
	for i, seg := range segments {
		if i > 0 {
			b.WriteByte('/')
		}
		if strings.HasPrefix(seg, ":") {
			name := seg[1:]
			if name == "" {
				return nil, &ErrPattern{Source: src, Reason: "empty parameter name"}
			}
			if seen[name] {
				return nil, &ErrPattern{Source: src, Reason: "duplicate parameter name: " + name}
			}
			seen[name] = true
			names = append(names, name)
			b.WriteString("([^/]+)")
			continue
		}
		b.WriteString(regexp.QuoteMeta(seg))
	}
	b.WriteByte('$')

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, &ErrPattern{Source: src, Reason: err.Error()}
	}
	return &Matcher{source: src, re: re, names: names}, nil
}
