// Package host defines the collaborator interfaces the filter driver and
// directive handlers depend on but do not implement themselves: logging,
// file metadata, subrequest rendering, and the X-bit execute policy.
// Keeping these behind interfaces (rather than calling os.Stat or an
// HTTP client directly) is the same seam the teacher uses for its own
// external collaborators — see lefeck-gonginx's functional-option
// constructors, which take interfaces for everything that isn't pure
// parsing — applied here per spec.md §9's note to keep XBitHack
// "behind an injected policy trait, not #ifdef".
package host

import (
	"context"
	"time"
)

// Logger receives diagnostic output from the filter and its directive
// handlers. Nothing in this module calls a package-level logger
// directly; every component that needs to log takes one of these.
type Logger interface {
	Logf(format string, args ...any)
}

// NopLogger discards everything logged to it.
type NopLogger struct{}

// Logf implements Logger.
func (NopLogger) Logf(string, ...any) {}

// FileInfo is the subset of file metadata the fsize and flastmod
// directives need.
type FileInfo struct {
	Size    int64
	ModTime time.Time
}

// FileStatter resolves a path (as interpolated by the fsize/flastmod
// handlers, which do not check it for ".." or absolute form) to its
// size and modification time.
type FileStatter interface {
	Stat(ctx context.Context, path string) (FileInfo, error)
}

// RenderResult is the outcome of rendering a virtual or file include
// target (spec.md §4.H's include directive).
type RenderResult struct {
	Body        []byte
	ContentType string
	Status      int
}

// Renderer renders an include target — a virtual path dispatched back
// through the serving stack, or a file read from disk — into bytes the
// filter can splice into the output stream.
type Renderer interface {
	Render(ctx context.Context, path string, virtual bool) (RenderResult, error)
}

// ChainEntry identifies one link of the include recursion chain: the
// file that is currently being processed and the URI it was reached
// through (spec.md §4.H's include directive, recursion-chain walk).
type ChainEntry struct {
	Filename string
	URI      string
}

// RequestChain is the list of documents currently being processed,
// self first, as supplied by the host (ssi.WithChain). Nothing in this
// module pushes or pops entries; the include handler walks it to
// detect a document trying to include itself, directly or
// transitively.
type RequestChain []ChainEntry

// Contains reports whether filename already appears anywhere in the
// chain.
func (c RequestChain) Contains(filename string) bool {
	for _, e := range c {
		if e.Filename == filename {
			return true
		}
	}
	return false
}

// XBitPolicy reports whether a file counts as executable for XBitHack
// (spec.md's ambient configuration surface). The filter consults it
// only when XBitHack is "full", to decide whether Filter.LastModified
// exposes the source file's modification time; it does not decide
// whether the file is processed. It is an interface so callers can
// test alternate policies without touching the filesystem.
type XBitPolicy interface {
	Executable(ctx context.Context, path string) (bool, error)
}

// AlwaysExecutable implements XBitPolicy by always answering yes, so
// under XBitHack "full" the modification time is always exposed.
type AlwaysExecutable struct{}

// Executable implements XBitPolicy.
func (AlwaysExecutable) Executable(context.Context, string) (bool, error) {
	return true, nil
}
