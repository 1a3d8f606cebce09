// Package ssi implements the stream scanner and filter driver that tie
// every other package together: it locates directive delimiters across
// chunk boundaries (spec.md §4.F), assembles a directive body, and
// drives it through the directive package's dispatcher (spec.md §4.G,
// §4.I). The switch between hunting for a start delimiter and
// accumulating a directive body is grounded on
// teemuteemu-caddy-language-server's internal/parser/lexer.go; each
// delimiter is located with bytes.Index plus a bounded holdback rather
// than a byte-at-a-time automaton. The directive-body accumulation
// across chunk boundaries keeps one copied segment per chunk in a
// streambuf.Sequence and joins them once, at dispatch.
package ssi

import (
	"bytes"

	"github.com/taiseen-cell/ssi/streambuf"
)

const (
	startDelim = "<!--#"
	endDelim   = "-->"

	// flushThreshold is the "Threshold flush" bound of spec.md §4.F.
	// The scanner never consults it: while hunting for a directive
	// start, Filter.Write holds back at most len(startDelim)-1 bytes,
	// already far below it. Directive bodies are not bounded by it —
	// they may grow without bound, since the whole body must be
	// assembled before evaluation (spec.md §1 Non-goals).
	flushThreshold = 8192
)

// longestDelimPrefixSuffix returns the length (1..len(delim)-1) of the
// longest proper prefix of delim that data ends with, or 0 if none.
// The scanner uses this to decide how many trailing bytes of an
// unmatched chunk must be held back rather than flushed, in case the
// delimiter completes in the next chunk — this is what makes chunk
// boundaries invisible to the scanner's output (spec.md invariant 3).
func longestDelimPrefixSuffix(data []byte, delim string) int {
	max := len(delim) - 1
	if max > len(data) {
		max = len(data)
	}
	for k := max; k > 0; k-- {
		if bytes.HasSuffix(data, []byte(delim[:k])) {
			return k
		}
	}
	return 0
}

// splitDirectiveBody splits a fully-assembled directive body (the
// bytes between "<!--#" and "-->") into its lowercased directive name
// and the raw attribute text that follows (spec.md §4.F's
// get_combined_directive, §4.C's tokenizer boundary).
func splitDirectiveBody(body []byte) (name string, attrText string) {
	i := 0
	for i < len(body) && !isDirectiveSpace(body[i]) {
		i++
	}
	name = string(bytes.ToLower(body[:i]))
	for i < len(body) && isDirectiveSpace(body[i]) {
		i++
	}
	return name, string(body[i:])
}

func isDirectiveSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// carry accumulates the bytes of a directive body currently in
// progress across one or more chunk calls. It wraps a streambuf
// sequence: each chunk's contribution is copied once (the caller may
// reuse its buffer after Write returns) and appended as its own
// segment; the combined bytes are only materialized (via Bytes) once,
// at dispatch time.
type carry struct {
	seq *streambuf.Sequence
}

func newCarry() *carry {
	return &carry{seq: streambuf.NewSequence()}
}

func (c *carry) append(b []byte) {
	if len(b) == 0 {
		return
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	c.seq.Append(cp)
}

func (c *carry) len() int {
	n := 0
	for _, s := range c.seq.Segments() {
		n += s.Len()
	}
	return n
}

func (c *carry) bytes() []byte {
	return c.seq.Bytes()
}

func (c *carry) reset() {
	c.seq = streambuf.NewSequence()
}
