package directive

import (
	"context"
	"strings"

	"github.com/taiseen-cell/ssi/entity"
)

func init() {
	register("printenv", handlePrintenv)
}

// handlePrintenv implements #printenv (spec.md §4.H): it lists every
// variable currently in the environment as "name=value" lines, with
// both name and value HTML-entity-encoded the same way ap_escape_html
// guards the rest of the output stream against a variable value that
// happens to contain markup. Order must be the variables' insertion
// order, not map iteration order — env.Map.Each guarantees this (the
// supplemented "#printenv must be deterministic" behavior from
// original_source).
func handlePrintenv(_ context.Context, sc *Context, _ []Attr) ([]byte, error) {
	var out strings.Builder
	sc.Vars.Each(func(name, value string) bool {
		out.WriteString(entity.Encode(name))
		out.WriteByte('=')
		out.WriteString(entity.Encode(value))
		out.WriteByte('\n')
		return true
	})
	return []byte(out.String()), nil
}
