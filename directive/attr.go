// Package directive implements the eleven SSI directives (spec.md
// §4.C, §4.G, §4.H): attribute tokenization, the dispatch table that
// maps a directive name to its handler, and the handlers themselves.
// The fixed-name-to-constructor registry populated from init() mirrors
// config.BlockWrappers in the teacher's config/config.go; the Get
// lookup helper over parsed attributes mirrors config.Parameter's
// getters in config/statement.go.
package directive

import (
	"strings"

	"github.com/taiseen-cell/ssi/entity"
	"github.com/taiseen-cell/ssi/ssierr"
)

// Attr is one name="value" pair parsed out of a directive tag (spec.md
// §4.C). Value has already had its surrounding quotes stripped and its
// HTML entities decoded; it has NOT yet had $variable interpolation
// applied — handlers do that themselves via interp.Interpolate, since
// some attributes (notably #if's expr) are not interpolated at the
// attribute layer at all.
type Attr struct {
	Name  string
	Value string
}

// ParseAttrs scans the raw text between a directive's name and its
// closing "-->" into a slice of Attrs. It accepts both double- and
// single-quoted values, and tolerates extra whitespace the way Apache's
// get_tag_and_value does. A malformed attribute (unterminated quote,
// stray '=' with no name) is reported as a MalformedAttributes error
// but does not stop the scan — later, well-formed attributes are still
// returned so a handler can decide how to degrade.
func ParseAttrs(s string) ([]Attr, error) {
	var attrs []Attr
	var firstErr error
	i, n := 0, len(s)
	for i < n {
		for i < n && isAttrSpace(s[i]) {
			i++
		}
		if i >= n {
			break
		}
		start := i
		for i < n && s[i] != '=' && !isAttrSpace(s[i]) {
			i++
		}
		name := s[start:i]
		if name == "" {
			if firstErr == nil {
				firstErr = ssierr.New(ssierr.MalformedAttributes, "'=' with no attribute name")
			}
			i++
			continue
		}
		for i < n && isAttrSpace(s[i]) {
			i++
		}
		if i >= n || s[i] != '=' {
			if firstErr == nil {
				firstErr = ssierr.New(ssierr.MalformedAttributes, "missing '=' after attribute name").WithAttribute(name)
			}
			continue
		}
		i++ // skip '='
		for i < n && isAttrSpace(s[i]) {
			i++
		}
		if i >= n {
			if firstErr == nil {
				firstErr = ssierr.New(ssierr.MalformedAttributes, "missing value after '='").WithAttribute(name)
			}
			break
		}
		quote := s[i]
		var value string
		if quote == '"' || quote == '\'' {
			i++
			valStart := i
			closed := false
			for i < n {
				if s[i] == '\\' && i+1 < n {
					i += 2
					continue
				}
				if s[i] == quote {
					closed = true
					break
				}
				i++
			}
			value = s[valStart:i]
			if closed {
				i++
			} else if firstErr == nil {
				firstErr = ssierr.New(ssierr.MalformedAttributes, "unterminated quoted value").WithAttribute(name)
			}
		} else {
			valStart := i
			for i < n && !isAttrSpace(s[i]) {
				i++
			}
			value = s[valStart:i]
		}
		attrs = append(attrs, Attr{Name: strings.ToLower(name), Value: entity.Decode(unescapeQuotes(value))})
	}
	return attrs, firstErr
}

func isAttrSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// unescapeQuotes turns \" and \' into their literal characters, leaving
// every other backslash sequence untouched for interp.Interpolate to
// handle later.
func unescapeQuotes(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var out strings.Builder
	out.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\'') {
			out.WriteByte(s[i+1])
			i++
			continue
		}
		out.WriteByte(s[i])
	}
	return out.String()
}

// Get returns the value of the named attribute and whether it was
// present.
func Get(attrs []Attr, name string) (string, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}
