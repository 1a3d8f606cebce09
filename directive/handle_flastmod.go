package directive

import "context"

func init() {
	register("flastmod", handleFlastmod)
}

// handleFlastmod implements #flastmod file="..." virtual="..."
// (spec.md §4.H), rendering the target's modification time through
// sc.Config.SSITimeFormat.
func handleFlastmod(ctx context.Context, sc *Context, attrs []Attr) ([]byte, error) {
	path, virtual, ok, err := resolveTarget(sc, attrs)
	if !ok || err != nil {
		return nil, err
	}
	info, err := sc.Stat.Stat(ctx, resolvedPath(sc, path, virtual))
	if err != nil {
		return nil, err
	}
	return []byte(formatTime(sc.Config.SSITimeFormat, info.ModTime)), nil
}
