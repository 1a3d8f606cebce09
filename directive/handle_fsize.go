package directive

import (
	"context"
	"fmt"

	"github.com/taiseen-cell/ssi/interp"
)

func init() {
	register("fsize", handleFsize)
}

// handleFsize implements #fsize file="..." virtual="..." (spec.md
// §4.H), rendering the target's size either as a comma-grouped byte
// count ("1,234,567") or an abbreviated "12k"/"3.4M" form depending on
// sc.Config.SizeFmt.
func handleFsize(ctx context.Context, sc *Context, attrs []Attr) ([]byte, error) {
	path, virtual, ok, err := resolveTarget(sc, attrs)
	if !ok || err != nil {
		return nil, err
	}
	info, err := sc.Stat.Stat(ctx, resolvedPath(sc, path, virtual))
	if err != nil {
		return nil, err
	}
	if sc.Config.SizeFmt == "bytes" {
		return []byte(formatThousands(info.Size)), nil
	}
	return []byte(formatAbbrevSize(info.Size)), nil
}

// resolveTarget extracts and interpolates a file=/virtual= attribute
// pair shared by #include, #fsize and #flastmod. It does not check the
// path; only #include applies validateIncludePath to file= targets.
func resolveTarget(sc *Context, attrs []Attr) (path string, virtual bool, ok bool, err error) {
	if v, present := Get(attrs, "virtual"); present {
		v, err = interp.Interpolate(v, sc.Vars, true, 0)
		return v, true, true, err
	}
	if v, present := Get(attrs, "file"); present {
		v, err = interp.Interpolate(v, sc.Vars, true, 0)
		return v, false, true, err
	}
	return "", false, false, nil
}

func resolvedPath(_ *Context, path string, _ bool) string {
	return path
}

func formatThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

// formatAbbrevSize mirrors Apache's ap_send_size abbreviated rendering
// (spec.md §4.H): -1 is "unknown", 0 and anything under 1 KiB collapse
// to a single "k" line rather than a byte count, and only sizes at or
// beyond roughly 99 MiB drop the decimal place on the M suffix. There
// is no G tier — ap_send_size never grows one.
func formatAbbrevSize(n int64) string {
	const kb = 1024
	const mb = kb * 1024
	switch {
	case n == -1:
		return "   -"
	case n == 0:
		return "   0k"
	case n < kb:
		return "   1k"
	case n < mb:
		return fmt.Sprintf("%4dk", n/kb)
	case n < mb*99:
		return fmt.Sprintf("%4.1fM", float64(n)/float64(mb))
	default:
		return fmt.Sprintf("%4dM", n/mb)
	}
}
