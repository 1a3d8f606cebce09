package directive

import (
	"context"
	"net/url"

	"github.com/taiseen-cell/ssi/entity"
)

func init() {
	register("echo", handleEcho)
}

// handleEcho implements #echo var="name" encoding="entity|url|none"
// (spec.md §4.H). The variable is looked up directly — not run through
// interp.Interpolate, since echo's var attribute names a variable, it
// is not itself a template — and encoded per the encoding attribute,
// defaulting to sc.Config.DefaultEncoding when omitted.
func handleEcho(_ context.Context, sc *Context, attrs []Attr) ([]byte, error) {
	name, ok := Get(attrs, "var")
	if !ok {
		return nil, nil
	}
	enc, hasEnc := Get(attrs, "encoding")
	if !hasEnc {
		enc = sc.Config.DefaultEncoding
	}

	val, present := "", false
	switch name {
	case "DATE_LOCAL":
		val, present = formatTime(sc.Config.SSITimeFormat, sc.Now().Local()), true
	case "DATE_GMT":
		val, present = formatTime(sc.Config.SSITimeFormat, sc.Now().UTC()), true
	default:
		val, present = sc.Vars.Get(name)
	}
	if !present {
		return []byte("(none)"), nil
	}

	switch enc {
	case "none":
		return []byte(val), nil
	case "url":
		return []byte(url.QueryEscape(val)), nil
	case "entity":
		return []byte(entity.Encode(val)), nil
	default:
		// Unrecognized encoding value: log and fall back to entity
		// encoding rather than failing the directive (original_source
		// supplemented behavior, spec.md SPEC_FULL §Supplemented 1).
		sc.Logger.Logf("echo: unrecognized encoding %q, falling back to entity", enc)
		return []byte(entity.Encode(val)), nil
	}
}
