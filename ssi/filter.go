package ssi

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/taiseen-cell/ssi/directive"
	"github.com/taiseen-cell/ssi/env"
	"github.com/taiseen-cell/ssi/host"
	"github.com/taiseen-cell/ssi/interp"
	"github.com/taiseen-cell/ssi/ssiconfig"
	"github.com/taiseen-cell/ssi/ssierr"
)

// RequestInfo carries the collaborator-supplied values the driver
// publishes into the environment at request start (spec.md §3, §6).
// Passing a nil *RequestInfo to NewFilter marks the filter as handling
// a nested #include: the driver then skips CGI-variable population and
// expects the caller to have handed it the parent's own Environment
// (spec.md §4.I, §5's cross-arena quirk).
type RequestInfo struct {
	DocumentURI      string
	DocumentPathInfo string
	UserName         string
	DocumentName     string
	QueryString      string
	LastModified     time.Time

	// SourcePath is the on-disk path of the document being filtered.
	// It is only consulted when Config.XBitHack is XBitHackFull, to
	// decide (via the injected host.XBitPolicy) whether LastModified()
	// should be exposed to the host at all (spec.md §6).
	SourcePath string
}

// Option configures a Filter at construction time, following the same
// functional-option shape the teacher uses for its parser
// constructors.
type Option func(*Filter)

// WithLogger overrides the filter's diagnostic sink.
func WithLogger(l host.Logger) Option {
	return func(f *Filter) { f.logger = l }
}

// WithXBitPolicy overrides the filter's execute-bit policy.
func WithXBitPolicy(p host.XBitPolicy) Option {
	return func(f *Filter) { f.xbit = p }
}

// WithStatter supplies the file-metadata collaborator used by #fsize
// and #flastmod.
func WithStatter(s host.FileStatter) Option {
	return func(f *Filter) { f.sc.Stat = s }
}

// WithRenderer supplies the subrequest-rendering collaborator used by
// #include.
func WithRenderer(r host.Renderer) Option {
	return func(f *Filter) { f.sc.Render = r }
}

// WithChain supplies the include-recursion chain this filter is
// running under (spec.md §4.H's include directive).
func WithChain(chain host.RequestChain) Option {
	return func(f *Filter) { f.sc.Chain = chain }
}

// WithClock overrides the filter's time source; tests use this to pin
// DATE_LOCAL/DATE_GMT/#flastmod output.
func WithClock(now func() time.Time) Option {
	return func(f *Filter) { f.sc.Now = now }
}

// Filter is a per-request scanning state machine coordinating the
// stream scanner (spec.md §4.F) with the directive dispatcher
// (spec.md §4.G/§4.H) and forwarding transformed output downstream
// (spec.md §4.I). A Filter is owned by exactly one request and carries
// no state shared across requests (spec.md §5).
type Filter struct {
	sc     *directive.Context
	out    io.Writer
	logger host.Logger
	xbit   host.XBitPolicy
	errs   *ssierr.Collection

	inDirective  bool
	pending      []byte // trailing bytes held back as a possible partial "<!--#" or "-->"
	body         *carry // directive body accumulated while inDirective
	directiveHit bool   // true once at least one directive has been processed

	lastModified time.Time
}

// NewFilter returns a Filter that writes its transformed output to
// out. vars is the request's variable environment; info is nil for a
// nested #include sharing its parent's environment, or a populated
// *RequestInfo for a top-level request, in which case NewFilter
// publishes the CGI-style variables spec.md §3/§6 describe.
func NewFilter(out io.Writer, vars env.Environment, cfg ssiconfig.Config, info *RequestInfo, opts ...Option) *Filter {
	f := &Filter{
		sc:     directive.NewContext(vars, cfg),
		out:    out,
		logger: host.NopLogger{},
		xbit:   host.AlwaysExecutable{},
		errs:   ssierr.NewCollection(),
		body:   newCarry(),
	}
	for _, o := range opts {
		o(f)
	}
	f.sc.Logger = loggerAdapter{f}

	if info != nil {
		f.lastModified = xbitLastModified(f, info)
		publishCGIVars(vars, info, f.sc.Now())
	}
	return f
}

// xbitLastModified implements spec.md §6's XBitHack=full behavior: the
// driver only exposes the source file's mtime when the policy says the
// file is executable. Off and On leave LastModified() at whatever the
// collaborator supplied (On's "only process executable files" gate is
// the host's responsibility, applied before a Filter is even
// constructed).
func xbitLastModified(f *Filter, info *RequestInfo) time.Time {
	if f.sc.Config.XBitHack != ssiconfig.XBitHackFull {
		return info.LastModified
	}
	ok, err := f.xbit.Executable(context.Background(), info.SourcePath)
	if err != nil || !ok {
		return time.Time{}
	}
	return info.LastModified
}

// loggerAdapter routes directive.Context.Logger calls back through the
// Filter so every log line can be tagged consistently, and lets a
// future Filter field (e.g. request ID) be added without touching the
// directive package.
type loggerAdapter struct{ f *Filter }

func (l loggerAdapter) Logf(format string, args ...any) {
	l.f.logger.Logf(format, args...)
}

// Errors returns the recoverable errors accumulated so far.
func (f *Filter) Errors() *ssierr.Collection {
	return f.errs
}

// DirectiveSeen reports whether at least one directive has been
// processed; the host uses this to decide whether to clear
// Content-Length on the response (spec.md §6's side-channel).
func (f *Filter) DirectiveSeen() bool {
	return f.directiveHit
}

// LastModified returns the RequestInfo.LastModified the filter was
// constructed with. Under XBitHack=full it is the zero Time when the
// XBitPolicy does not report the source file as executable; it is
// also zero for a nested filter built with a nil RequestInfo.
func (f *Filter) LastModified() time.Time {
	return f.lastModified
}

// publishCGIVars sets the core's own published variables (spec.md §3,
// §6). DATE_LOCAL/DATE_GMT are intentionally NOT set here — #echo
// computes them lazily from sc.Config.SSITimeFormat at the moment
// they're read (SPEC_FULL §Supplemented 3).
func publishCGIVars(vars env.Environment, info *RequestInfo, now time.Time) {
	if !info.LastModified.IsZero() {
		vars.Set("LAST_MODIFIED", info.LastModified.Format(time.RFC1123))
	}
	vars.Set("DOCUMENT_URI", info.DocumentURI)
	vars.Set("DOCUMENT_PATH_INFO", info.DocumentPathInfo)
	vars.Set("USER_NAME", info.UserName)
	vars.Set("DOCUMENT_NAME", info.DocumentName)
	if info.QueryString != "" {
		if unescaped, err := url.QueryUnescape(info.QueryString); err == nil {
			vars.Set("QUERY_STRING_UNESCAPED", shellEscape(unescaped))
		}
	}
}

// shellEscape renders s safe to paste onto a shell command line,
// single-quoting it and escaping any embedded single quote. There is
// no shell-quoting library anywhere in the example corpus, so this is
// a small hand-rolled leaf (documented in DESIGN.md).
func shellEscape(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Write feeds the next chunk of upstream output through the scanner,
// writing transformed bytes downstream as soon as they are no longer
// needed for a possible directive match (spec.md §4.F, §4.I). It
// implements io.Writer; the returned n is always len(chunk) on a nil
// error, matching the interface contract even though some of those
// bytes may still be buffered internally awaiting a directive close.
func (f *Filter) Write(chunk []byte) (int, error) {
	data := chunk
	if len(f.pending) > 0 {
		data = append(f.pending, chunk...)
		f.pending = nil
	}

	pos := 0
	for pos < len(data) {
		if f.inDirective {
			idx := bytes.Index(data[pos:], []byte(endDelim))
			if idx < 0 {
				// As with the start-delimiter search, hold back a
				// possible partial "-->" so a close split across a
				// chunk boundary is still found once the rest
				// arrives, instead of being swallowed into the body
				// as ordinary content.
				hold := longestDelimPrefixSuffix(data[pos:], endDelim)
				bodyEnd := len(data) - hold
				f.body.append(data[pos:bodyEnd])
				if hold > 0 {
					f.pending = append([]byte(nil), data[bodyEnd:]...)
				}
				pos = len(data)
				break
			}
			f.body.append(data[pos : pos+idx])
			pos += idx + len(endDelim)
			if err := f.dispatchDirective(); err != nil {
				return 0, err
			}
			continue
		}

		idx := bytes.Index(data[pos:], []byte(startDelim))
		if idx < 0 {
			// No start delimiter anywhere in the remainder: flush
			// everything except a possible in-progress prefix of it,
			// which is at most len(startDelim)-1 bytes. Unlike a
			// byte-at-a-time automaton this already bounds
			// pre-match buffering far under flushThreshold on every
			// call, so no separate threshold check is needed here
			// (spec.md §4.F's "Threshold flush" is satisfied as a
			// side effect of flushing eagerly).
			hold := longestDelimPrefixSuffix(data[pos:], startDelim)
			flushEnd := len(data) - hold
			if flushEnd > pos {
				if err := f.emit(data[pos:flushEnd]); err != nil {
					return 0, err
				}
			}
			if hold > 0 {
				f.pending = append([]byte(nil), data[flushEnd:]...)
			}
			pos = len(data)
			break
		}
		if idx > 0 {
			if err := f.emit(data[pos : pos+idx]); err != nil {
				return 0, err
			}
		}
		pos += idx + len(startDelim)
		f.inDirective = true
		f.body.reset()
	}
	return len(chunk), nil
}

// emit writes b downstream only while the current conditional scope is
// printing (spec.md §4.G's Printing flag); bytes scanned inside a
// false #if/#elif/#else branch are dropped here, not at the directive
// layer, since they were never part of a directive at all.
func (f *Filter) emit(b []byte) error {
	if !f.sc.Printing() || len(b) == 0 {
		return nil
	}
	_, err := f.out.Write(b)
	return err
}

// Close flushes any tentative (never-confirmed) pre-directive bytes as
// literal output, and discards any in-progress, never-closed directive
// body: it never became a valid directive, so spec.md §4.I says to
// drop it rather than emit it.
func (f *Filter) Close() error {
	if f.inDirective {
		f.inDirective = false
		f.body.reset()
		f.pending = nil
		return nil
	}
	if len(f.pending) > 0 {
		pending := f.pending
		f.pending = nil
		return f.emit(pending)
	}
	return nil
}

// dispatchDirective runs the fully-assembled body currently in
// f.body through the directive package and writes its result (or the
// configured error template) downstream.
func (f *Filter) dispatchDirective() error {
	f.directiveHit = true
	raw := f.body.bytes()
	f.body.reset()
	f.inDirective = false

	name, attrText := splitDirectiveBody(raw)
	attrs, attrErr := directive.ParseAttrs(attrText)
	if attrErr != nil {
		if de, ok := attrErr.(*ssierr.DirectiveError); ok {
			f.recordError(de)
		}
		return f.writeErrorTemplate()
	}

	out, err := directive.Dispatch(context.Background(), f.sc, name, attrs)
	if err != nil {
		if de, ok := err.(*ssierr.DirectiveError); ok {
			f.recordError(de)
		}
		return f.writeErrorTemplate()
	}
	if len(out) == 0 {
		return nil
	}
	_, werr := f.out.Write(out)
	return werr
}

func (f *Filter) recordError(err *ssierr.DirectiveError) {
	f.errs.Add(err)
	f.logger.Logf("ssi: %s", err.Error())
}

func (f *Filter) writeErrorTemplate() error {
	msg, err := interp.Interpolate(f.sc.Config.SSIErrorMsg, f.sc.Vars, true, 0)
	if err != nil {
		msg = f.sc.Config.SSIErrorMsg
	}
	_, werr := f.out.Write([]byte(msg))
	return werr
}
