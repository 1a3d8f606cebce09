package directive

import "context"

func init() {
	register("config", handleConfig)
}

// handleConfig implements #config errmsg=|timefmt=|sizefmt=
// (spec.md §4.H). Each attribute overwrites the corresponding field of
// sc.Config for the remainder of the request; timefmt applies lazily —
// #echo var="DATE_LOCAL" and #flastmod read sc.Config.SSITimeFormat at
// the moment they run, not a value snapshotted when #config executed
// (the supplemented "timefmt is lazy" behavior from original_source).
func handleConfig(_ context.Context, sc *Context, attrs []Attr) ([]byte, error) {
	if v, ok := Get(attrs, "errmsg"); ok {
		sc.Config.SSIErrorMsg = v
	}
	if v, ok := Get(attrs, "timefmt"); ok {
		sc.Config.SSITimeFormat = v
	}
	if v, ok := Get(attrs, "sizefmt"); ok {
		sc.Config.SizeFmt = v
	}
	return nil, nil
}
