package directive

import (
	"context"

	"github.com/taiseen-cell/ssi/ssierr"
	"github.com/taiseen-cell/ssi/ssiexpr"
)

func init() {
	register("if", handleIf)
	register("elif", handleElif)
	register("else", handleElse)
	register("endif", handleEndif)
}

// evalExpr parses and evaluates an #if/#elif expr attribute. A
// malformed expression is treated as false rather than aborting
// processing (spec.md §7) — the parse error is still returned so the
// caller can surface it as a diagnostic.
func evalExpr(sc *Context, attrs []Attr) (bool, error) {
	raw, ok := Get(attrs, "expr")
	if !ok {
		return false, nil
	}
	tree, err := ssiexpr.Parse(raw)
	if err != nil {
		return false, err
	}
	matched, err := tree.Eval(sc.Vars)
	if err != nil {
		return false, err
	}
	return matched, nil
}

// handleIf only evaluates expr when not already inside a suppressed
// block; otherwise it just bumps IfDepth so the matching #endif can
// find its way back out without touching Printing (spec.md §4.G).
func handleIf(_ context.Context, sc *Context, attrs []Attr) ([]byte, error) {
	if !sc.Printing() {
		sc.pushIf(false)
		return nil, nil
	}
	matched, err := evalExpr(sc, attrs)
	sc.pushIf(matched)
	return nil, err
}

// handleElif must decide whether this branch is already settled before
// it ever looks at expr: once an enclosing #if/#elif in this block has
// already matched, a later #elif's expression is never evaluated, the
// same way Apache's handle_elif short-circuits before calling
// parse_expr (mod_include.c's elif handling).
func handleElif(_ context.Context, sc *Context, attrs []Attr) ([]byte, error) {
	if sc.IfDepth() != 0 {
		return nil, nil
	}
	if sc.condTrue {
		sc.elif(false)
		return nil, nil
	}
	if _, ok := Get(attrs, "expr"); !ok {
		return nil, ssierr.New(ssierr.UnknownAttribute, "elif requires an expr attribute").WithDirective("elif")
	}
	matched, err := evalExpr(sc, attrs)
	sc.elif(matched)
	return nil, err
}

func handleElse(_ context.Context, sc *Context, attrs []Attr) ([]byte, error) {
	if len(attrs) != 0 {
		return nil, ssierr.New(ssierr.UnknownAttribute, "else takes no attributes").WithDirective("else").WithAttribute(attrs[0].Name)
	}
	sc.els()
	return nil, nil
}

func handleEndif(_ context.Context, sc *Context, attrs []Attr) ([]byte, error) {
	if len(attrs) != 0 {
		return nil, ssierr.New(ssierr.UnknownAttribute, "endif takes no attributes").WithDirective("endif").WithAttribute(attrs[0].Name)
	}
	sc.endif()
	return nil, nil
}
