package directive

import (
	"context"

	"github.com/taiseen-cell/ssi/interp"
	"github.com/taiseen-cell/ssi/ssierr"
)

func init() {
	register("set", handleSet)
}

// handleSet implements #set var="name" value="..." (spec.md §4.H): the
// value is interpolated against the current environment and the result
// is stored back into it, so a later reference to $name sees it and a
// nested #include sharing the same environment sees it too.
//
// var must appear before value in the attribute list — mod_include.c's
// handle_set rejects a value seen before its var, since there is no
// pending variable name to bind it to yet.
func handleSet(_ context.Context, sc *Context, attrs []Attr) ([]byte, error) {
	var name string
	var haveName bool
	for _, a := range attrs {
		switch a.Name {
		case "var":
			name = a.Value
			haveName = true
		case "value":
			if !haveName {
				return nil, ssierr.New(ssierr.MalformedAttributes, "variable must precede value in set directive").WithDirective("set").WithAttribute("value")
			}
			val, err := interp.Interpolate(a.Value, sc.Vars, true, 0)
			if err != nil {
				return nil, err
			}
			sc.Vars.Set(name, val)
		}
	}
	return nil, nil
}
