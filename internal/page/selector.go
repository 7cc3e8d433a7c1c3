package page

import (
	"fmt"
	"strings"
)

// Selector is a compiled match rule against a document. The supported
// grammar is the subset the detection lists need:
//
//	tag                  matches any element with that tag name
//	[attr*="substring"]  matches any element carrying attr with the
//	                     substring anywhere in its value
//
// Matching is case-insensitive on tag names, attribute names, and values.
type Selector struct {
	raw    string
	tag    string
	attr   string
	substr string
}

// String returns the selector source text.
func (s Selector) String() string { return s.raw }

// CompileSelector parses selector source text. Text outside the supported
// grammar returns an error; callers that treat invalid selectors as
// non-matches should drop the selector at compile time.
func CompileSelector(raw string) (Selector, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Selector{}, fmt.Errorf("empty selector")
	}

	if !strings.HasPrefix(trimmed, "[") {
		if strings.ContainsAny(trimmed, "[]()>~+#.:, \t") {
			return Selector{}, fmt.Errorf("unsupported selector %q", raw)
		}
		return Selector{raw: raw, tag: strings.ToLower(trimmed)}, nil
	}

	if !strings.HasSuffix(trimmed, "]") {
		return Selector{}, fmt.Errorf("unterminated attribute selector %q", raw)
	}

	inner := trimmed[1 : len(trimmed)-1]
	attr, value, found := strings.Cut(inner, "*=")
	if !found {
		return Selector{}, fmt.Errorf("attribute selector %q must use substring matching (*=)", raw)
	}

	attr = strings.TrimSpace(attr)
	if attr == "" {
		return Selector{}, fmt.Errorf("attribute selector %q has no attribute name", raw)
	}

	value = strings.TrimSpace(value)
	if len(value) < 2 || value[0] != '"' || value[len(value)-1] != '"' {
		return Selector{}, fmt.Errorf("attribute selector %q value must be double-quoted", raw)
	}
	value = value[1 : len(value)-1]
	if value == "" {
		return Selector{}, fmt.Errorf("attribute selector %q has an empty value", raw)
	}

	return Selector{
		raw:    raw,
		attr:   strings.ToLower(attr),
		substr: strings.ToLower(value),
	}, nil
}

// MustCompileSelector is CompileSelector for selectors known valid at build
// time. It panics on error.
func MustCompileSelector(raw string) Selector {
	sel, err := CompileSelector(raw)
	if err != nil {
		panic(err)
	}
	return sel
}

// matchesElement reports whether one element node satisfies the selector.
func (s Selector) matchesElement(tag string, attrs []Attribute) bool {
	if s.tag != "" {
		return strings.EqualFold(tag, s.tag)
	}

	for _, a := range attrs {
		if strings.EqualFold(a.Key, s.attr) &&
			strings.Contains(strings.ToLower(a.Val), s.substr) {
			return true
		}
	}
	return false
}
