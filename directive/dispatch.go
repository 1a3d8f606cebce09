package directive

import (
	"context"
	"time"

	"github.com/taiseen-cell/ssi/env"
	"github.com/taiseen-cell/ssi/host"
	"github.com/taiseen-cell/ssi/ssiconfig"
	"github.com/taiseen-cell/ssi/ssierr"
)

// Handler renders one directive invocation given its attributes and the
// request-scoped Context, returning bytes to splice into the output
// stream in its place (nil for directives with no direct output, like
// #set). Conditional-state mutation (if/elif/else/endif) happens inside
// the handler via ctx's printing/condTrue/ifDepth flags.
type Handler func(ctx context.Context, sc *Context, attrs []Attr) ([]byte, error)

// registry maps a directive name to its Handler, populated from init()
// in each handler's source file — the same shape as the teacher's
// config.BlockWrappers registry in config/config.go.
var registry = map[string]Handler{}

func register(name string, h Handler) {
	registry[name] = h
}

// Context carries everything a directive handler needs beyond its own
// attributes: the live CGI/user variable environment, host
// collaborators, configuration, the include-recursion chain, and the
// conditional-block flags #if/#elif/#else/#endif maintain.
//
// The conditional model is deliberately flat, not a stack of per-level
// frames: spec.md §3/§4.G track a single Printing flag, a single
// CondTrue flag, and an IfDepth counter that only increments while an
// #if is entered with Printing already false — i.e. while the whole
// block is being skipped outright and its nested directives need no
// evaluation at all, just matching-#endif bookkeeping. An #if/#elif/
// #else/#endif reached while IfDepth == 0 operates directly on
// Printing/CondTrue, even if it is nested inside an enclosing branch
// that is itself printing; this mirrors the reference implementation's
// actual (non-reentrant) behavior rather than a more "correct" nested
// stack, per the design note in spec.md §9.
type Context struct {
	Vars   env.Environment
	Config ssiconfig.Config
	Logger host.Logger
	Stat   host.FileStatter
	Render host.Renderer
	XBit   host.XBitPolicy
	Chain  host.RequestChain

	// Now returns the current time; #echo of DATE_LOCAL/DATE_GMT calls
	// it at the moment the echo runs rather than once per request, so
	// a #config timefmt change mid-document takes effect immediately
	// (spec.md SPEC_FULL §Supplemented 3). Tests substitute a fixed
	// clock.
	Now func() time.Time

	printing bool
	condTrue bool
	ifDepth  int
}

// NewContext returns a Context ready to process directives for one
// request. vars must be shared (not cloned) with any parent Context
// when processing a nested #include, so that a nested #set remains
// visible to the parent after the include returns.
func NewContext(vars env.Environment, cfg ssiconfig.Config) *Context {
	return &Context{Vars: vars, Config: cfg, Logger: host.NopLogger{}, Now: time.Now, printing: true, condTrue: true}
}

// Printing reports whether output should currently be emitted.
func (c *Context) Printing() bool {
	return c.printing
}

// IfDepth returns the current count of #if blocks entered while
// already suppressed (spec.md §3's if_depth).
func (c *Context) IfDepth() int {
	return c.ifDepth
}

// pushIf implements the #if handler's bookkeeping (spec.md §4.G).
func (c *Context) pushIf(matched bool) {
	if !c.printing {
		c.ifDepth++
		return
	}
	c.printing = matched
	c.condTrue = matched
}

// elif implements the #elif handler's bookkeeping.
func (c *Context) elif(matched bool) {
	if c.ifDepth != 0 {
		return
	}
	if c.condTrue {
		c.printing = false
		return
	}
	c.printing = matched
	c.condTrue = matched
}

// els implements the #else handler's bookkeeping.
func (c *Context) els() {
	if c.ifDepth != 0 {
		return
	}
	if c.condTrue {
		c.printing = false
		return
	}
	c.printing = true
	c.condTrue = true
}

// endif implements the #endif handler's bookkeeping.
func (c *Context) endif() {
	if c.ifDepth != 0 {
		c.ifDepth--
		return
	}
	c.printing = true
	c.condTrue = true
}

// Dispatch looks up name in the registry and runs its handler.
// if/elif/else/endif always run, regardless of the current printing
// state, since they are exactly what computes that state; every other
// directive is skipped (no output, no side effects, attributes not
// even evaluated) when the enclosing conditional scope is suppressing
// output (spec.md §4.G).
func Dispatch(ctx context.Context, sc *Context, name string, attrs []Attr) ([]byte, error) {
	h, ok := registry[name]
	if !ok {
		return nil, ssierr.New(ssierr.UnknownDirective, "unknown directive").WithDirective(name)
	}
	switch name {
	case "if", "elif", "else", "endif":
		return h(ctx, sc, attrs)
	}
	if !sc.Printing() {
		return nil, nil
	}
	return h(ctx, sc, attrs)
}
