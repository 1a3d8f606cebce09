// Package interp implements the variable-interpolation substring engine
// (spec.md §4.B, the "parse_string" routine) shared by directive
// handlers and the expression evaluator (ssiexpr).
package interp

import (
	"strings"

	"github.com/taiseen-cell/ssi/env"
	"github.com/taiseen-cell/ssi/ssierr"
)

// Interpolate substitutes $name and ${name} references in in against
// vars, bounded to at most maxLen bytes of output. Truncation is silent
// (spec.md §4.B): the result is simply cut short, never partially wrong.
//
// leaveName controls what happens to a $name reference whose name is
// not present in vars: true keeps the literal "$name" text, false drops
// it entirely. ${name} follows the same rule, except an unterminated
// ${ (no closing '}') always aborts interpolation of the remainder of
// the string and is reported through err — the caller (a directive
// handler or the evaluator) is responsible for surfacing the
// configured error template at the interpolation point (spec.md §7).
func Interpolate(in string, vars env.Environment, leaveName bool, maxLen int) (string, error) {
	var out strings.Builder
	var err error
	for i := 0; i < len(in); {
		c := in[i]
		switch {
		case c == '\\' && i+1 < len(in):
			if in[i+1] == '$' {
				out.WriteByte('$')
			} else {
				out.WriteByte('\\')
				out.WriteByte(in[i+1])
			}
			i += 2
		case c == '\\':
			out.WriteByte('\\')
			i++
		case c == '$' && i+1 < len(in) && in[i+1] == '{':
			end := strings.IndexByte(in[i+2:], '}')
			if end < 0 {
				err = ssierr.New(ssierr.UnterminatedVariable, "unterminated ${ construct")
				i = len(in)
				continue
			}
			name := in[i+2 : i+2+end]
			writeVar(&out, vars, name, leaveName)
			i = i + 2 + end + 1
		case c == '$':
			j := i + 1
			for j < len(in) && isNameByte(in[j]) {
				j++
			}
			name := in[i+1 : j]
			if name == "" {
				out.WriteByte('$')
			} else {
				writeVar(&out, vars, name, leaveName)
			}
			i = j
		default:
			out.WriteByte(c)
			i++
		}
		if maxLen > 0 && out.Len() >= maxLen {
			return truncate(out.String(), maxLen), err
		}
	}
	return truncate(out.String(), maxLen), err
}

func writeVar(out *strings.Builder, vars env.Environment, name string, leaveName bool) {
	if vars != nil {
		if v, ok := vars.Get(name); ok {
			out.WriteString(v)
			return
		}
	}
	if leaveName {
		out.WriteByte('$')
		out.WriteString(name)
	}
}

func isNameByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

func truncate(s string, maxLen int) string {
	if maxLen > 0 && len(s) > maxLen-1 {
		return s[:maxLen-1]
	}
	return s
}
