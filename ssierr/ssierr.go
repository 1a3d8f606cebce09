// Package ssierr defines the recoverable error taxonomy for the SSI
// filter. None of these errors are fatal to a request (spec.md §7):
// the filter driver records them on a Collection and writes the
// configured error template in place of the offending directive,
// then keeps scanning.
package ssierr

import (
	"fmt"
	"strings"
)

// Kind identifies one of the recoverable error categories the filter
// can encounter while scanning, dispatching, or evaluating a directive.
type Kind int

const (
	// UnknownDirective is reported when a directive name has no handler.
	UnknownDirective Kind = iota
	// MalformedAttributes is reported when an attribute list cannot be tokenized.
	MalformedAttributes
	// UnknownAttribute is reported when a handler receives an attribute it does not accept.
	UnknownAttribute
	// InterpolationTruncated names §4.B output hitting its buffer bound.
	// interp.Interpolate truncates silently and does not report it.
	InterpolationTruncated
	// UnterminatedVariable is reported for an unterminated ${name construct.
	UnterminatedVariable
	// ExpressionParse is reported when the §4.D/§4.E expression cannot be parsed.
	ExpressionParse
	// IncludeRecursion is reported when an include would recurse into its own chain.
	IncludeRecursion
	// IncludePathRejected is reported when an include file= path is absolute or escapes via "..".
	IncludePathRejected
	// IncludeNotText is reported when NoExec is set and the target MIME type is not text/*.
	IncludeNotText
	// SubrequestStatus is reported when an include's subrequest reports a status other than 200.
	SubrequestStatus
)

// String renders the kind the way a host log line would name it.
func (k Kind) String() string {
	switch k {
	case UnknownDirective:
		return "unknown directive"
	case MalformedAttributes:
		return "malformed attribute list"
	case UnknownAttribute:
		return "unknown attribute"
	case InterpolationTruncated:
		return "interpolation truncated"
	case UnterminatedVariable:
		return "unterminated ${ construct"
	case ExpressionParse:
		return "invalid expression"
	case IncludeRecursion:
		return "include recursion detected"
	case IncludePathRejected:
		return "include path rejected"
	case IncludeNotText:
		return "include of non-text/* rejected"
	case SubrequestStatus:
		return "subrequest did not return 200"
	default:
		return "unknown error"
	}
}

// DirectiveError carries the context the host needs to log a recoverable
// SSI error: which directive, which attribute, and why.
type DirectiveError struct {
	Kind      Kind
	Message   string
	Directive string
	Attribute string
	Inner     error
}

// Error implements the error interface.
func (e *DirectiveError) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s] %s", e.Kind, e.Message))
	if e.Directive != "" {
		parts = append(parts, fmt.Sprintf("in directive %q", e.Directive))
	}
	if e.Attribute != "" {
		parts = append(parts, fmt.Sprintf("attribute %q", e.Attribute))
	}
	if e.Inner != nil {
		parts = append(parts, fmt.Sprintf("caused by: %s", e.Inner))
	}
	return strings.Join(parts, " ")
}

// Unwrap supports errors.Is/errors.As against the inner error.
func (e *DirectiveError) Unwrap() error {
	return e.Inner
}

// New creates a DirectiveError of the given kind.
func New(kind Kind, message string) *DirectiveError {
	return &DirectiveError{Kind: kind, Message: message}
}

// WithDirective sets the directive name and returns the receiver.
func (e *DirectiveError) WithDirective(name string) *DirectiveError {
	e.Directive = name
	return e
}

// WithAttribute sets the offending attribute name and returns the receiver.
func (e *DirectiveError) WithAttribute(name string) *DirectiveError {
	e.Attribute = name
	return e
}

// WithInner wraps an underlying error and returns the receiver.
func (e *DirectiveError) WithInner(err error) *DirectiveError {
	e.Inner = err
	return e
}

// Collection accumulates DirectiveErrors across a request so the host
// can surface them to its own logging sink without the core depending
// on a concrete logger.
type Collection struct {
	Errors []*DirectiveError
}

// Add appends err to the collection.
func (c *Collection) Add(err *DirectiveError) {
	c.Errors = append(c.Errors, err)
}

// HasErrors reports whether any error has been recorded.
func (c *Collection) HasErrors() bool {
	return len(c.Errors) > 0
}

// Count returns the number of recorded errors.
func (c *Collection) Count() int {
	return len(c.Errors)
}

// ByKind returns the recorded errors matching kind, in recording order.
func (c *Collection) ByKind(kind Kind) []*DirectiveError {
	var out []*DirectiveError
	for _, e := range c.Errors {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// NewCollection returns an empty error collection.
func NewCollection() *Collection {
	return &Collection{Errors: make([]*DirectiveError, 0)}
}
