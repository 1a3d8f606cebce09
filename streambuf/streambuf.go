// Package streambuf implements the chunked byte-stream primitives from
// spec.md §3 that this module actually exercises: Segments holding a
// read-only byte view, assembled into a Sequence without copying their
// backing bytes. There is no teacher equivalent for this (nginx configs
// are parsed from a fully-buffered reader, not a live chunked stream);
// it is new infrastructure written in the repository's idiom: small
// structs, method-based mutation, no public fields beyond what callers
// need.
package streambuf

// Segment is a read-only byte view owned by the Sequence that holds it.
// It wraps the slice it was created from without copying it.
type Segment struct {
	data []byte
}

// Bytes returns the segment's byte view.
func (s *Segment) Bytes() []byte {
	return s.data
}

// Len returns the number of bytes in the segment.
func (s *Segment) Len() int {
	return len(s.data)
}

// Sequence is an ordered list of Segments. This module's scanner
// (ssi/scanner.go's carry) only ever appends whole chunk contributions
// and reads the combined result back out through Bytes — it never
// needs to split, delete, or splice bytes mid-segment, so Sequence
// carries no such operations here (see DESIGN.md).
type Sequence struct {
	segs []*Segment
}

// NewSequence returns an empty Sequence.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Append adds a new segment wrapping b to the end of the sequence and
// returns it.
func (sq *Sequence) Append(b []byte) *Segment {
	seg := &Segment{data: b}
	sq.segs = append(sq.segs, seg)
	return seg
}

// Segments returns the sequence's segments in order. Callers must treat
// the returned slice as read-only.
func (sq *Sequence) Segments() []*Segment {
	return sq.segs
}

// Bytes concatenates every segment's bytes into a new slice. The
// filter driver calls it once per directive, on the assembled directive
// body; pass-through bytes outside directives never go through a
// Sequence.
func (sq *Sequence) Bytes() []byte {
	n := 0
	for _, s := range sq.segs {
		n += len(s.data)
	}
	out := make([]byte, 0, n)
	for _, s := range sq.segs {
		out = append(out, s.data...)
	}
	return out
}
