package directive

import (
	"context"
	"strings"

	"github.com/taiseen-cell/ssi/ssierr"
)

func init() {
	register("include", handleInclude)
}

// handleInclude implements #include file="..." virtual="..."
// (spec.md §4.H). file= targets are restricted to relative,
// dotdot-free paths (spec.md's path-traversal guard); virtual= targets
// are handed to the host Renderer unchanged, since the host is
// responsible for mapping them back through its own URI space. Either
// form is rejected if it would re-enter a document already on the
// current include chain, directly or transitively.
func handleInclude(ctx context.Context, sc *Context, attrs []Attr) ([]byte, error) {
	path, virtual, ok, err := resolveTarget(sc, attrs)
	if !ok {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !virtual {
		if err := validateIncludePath(path); err != nil {
			return nil, err
		}
	}
	for _, e := range sc.Chain {
		if e.Filename == path || (e.URI != "" && e.URI == path) {
			return nil, ssierr.New(ssierr.IncludeRecursion, "include would re-enter "+path).WithDirective("include")
		}
	}

	res, err := sc.Render.Render(ctx, path, virtual)
	if err != nil {
		return nil, err
	}
	if sc.Config.NoExec && res.ContentType != "" && !strings.HasPrefix(res.ContentType, "text/") {
		return nil, ssierr.New(ssierr.IncludeNotText, "include target is not text: "+res.ContentType).WithDirective("include")
	}
	if res.Status != 0 && res.Status != 200 {
		return nil, ssierr.New(ssierr.SubrequestStatus, "include subrequest failed").WithDirective("include")
	}
	return res.Body, nil
}

// validateIncludePath rejects absolute paths and any path containing a
// ".." component, so a file= attribute can't escape the document root
// (spec.md's path-traversal guard on #include file=).
func validateIncludePath(path string) error {
	if path == "" {
		return ssierr.New(ssierr.IncludePathRejected, "empty include path").WithDirective("include")
	}
	if strings.HasPrefix(path, "/") {
		return ssierr.New(ssierr.IncludePathRejected, "absolute include path rejected").WithDirective("include")
	}
	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return ssierr.New(ssierr.IncludePathRejected, "include path escapes document root").WithDirective("include")
		}
	}
	return nil
}
