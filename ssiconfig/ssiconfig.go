// Package ssiconfig loads the filter's ambient configuration — the
// knobs Apache exposes as SSIErrorMsg, SSITimeFormat, XBitHack and
// friends — from YAML, the way the teacher's config package models
// nginx directive values as typed parameters (config.ParameterType in
// lefeck-gonginx/config/statement.go). Unlike nginx config, SSI's
// request-time behavior is fixed at startup by a handful of scalars,
// so one YAML document is enough; there is no directive tree to parse.
package ssiconfig

import (
	"fmt"

	"gopkg.in/yaml.v2"
)

// XBitHack controls whether a file's owner-execute bit affects whether
// it is processed as SSI, mirroring Apache's XBitHack directive.
type XBitHack int

const (
	// XBitHackOff ignores the execute bit entirely; every matched file
	// is processed.
	XBitHackOff XBitHack = iota
	// XBitHackOn requires the execute bit to be set for processing.
	XBitHackOn
	// XBitHackFull behaves like On, and additionally sets the output's
	// last-modified time from the source file's mtime.
	XBitHackFull
)

// String renders the XBitHack value the way it appears in configuration
// files and logs.
func (x XBitHack) String() string {
	switch x {
	case XBitHackOff:
		return "off"
	case XBitHackOn:
		return "on"
	case XBitHackFull:
		return "full"
	default:
		return "unknown"
	}
}

// UnmarshalYAML implements yaml.Unmarshaler so XBitHack can be written
// as a bare string ("off"/"on"/"full") in configuration.
func (x *XBitHack) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	switch s {
	case "", "off":
		*x = XBitHackOff
	case "on":
		*x = XBitHackOn
	case "full":
		*x = XBitHackFull
	default:
		return fmt.Errorf("ssiconfig: invalid xbithack value %q", s)
	}
	return nil
}

// Config holds the filter's startup-time configuration surface
// (spec.md's ambient "Configuration" concern).
type Config struct {
	// XBitHack selects the execute-bit policy (host.XBitPolicy is the
	// runtime hook this drives).
	XBitHack XBitHack `yaml:"xbithack"`

	// SSIErrorMsg is emitted into the output stream in place of a
	// directive that failed to evaluate (spec.md §7).
	SSIErrorMsg string `yaml:"ssi_error_msg"`

	// SSITimeFormat is the strftime-style layout used by #echo for
	// DATE_LOCAL/DATE_GMT and by #flastmod (spec.md's supplemented
	// "config timefmt is lazy" feature applies this at echo time, not
	// snapshotted at request start).
	SSITimeFormat string `yaml:"ssi_time_format"`

	// DefaultEncoding is the #echo encoding applied when a directive
	// omits the attribute ("none", "url", or "entity").
	DefaultEncoding string `yaml:"default_encoding"`

	// AllowExec is always false: the #exec directive is out of scope
	// (spec.md §1 Non-goals) and this module never enables it.
	AllowExec bool `yaml:"allow_exec"`

	// SizeFmt selects #fsize's default rendering ("bytes" or
	// "abbrev").
	SizeFmt string `yaml:"size_fmt"`

	// ErrorOnUndefined is loaded from configuration but nothing in this
	// module reads it: an undefined variable reference in #if/#elif
	// always interpolates to empty (spec.md's supplemented feature 5),
	// whatever this field holds.
	ErrorOnUndefined bool `yaml:"error_on_undefined"`

	// NoExec restricts #include to text/* targets (spec.md §3's flags
	// bitset, §4.H): it is the handler-visible counterpart of Apache's
	// per-directory exec permission, copied onto the request's flags at
	// parse start and checked by handleInclude before splicing in a
	// subrequest's body.
	NoExec bool `yaml:"no_exec"`
}

// Default returns the configuration this module uses when no YAML
// document is supplied, matching stock Apache defaults.
func Default() Config {
	return Config{
		XBitHack:        XBitHackOff,
		SSIErrorMsg:     "[an error occurred while processing this directive]",
		SSITimeFormat:   "%A, %d-%b-%Y %H:%M:%S %Z",
		DefaultEncoding: "entity",
		AllowExec:       false,
		SizeFmt:         "abbrev",
		NoExec:          true,
	}
}

// Load parses a YAML configuration document, starting from Default()
// and overwriting whatever fields are present in data.
func Load(data []byte) (Config, error) {
	cfg := Default()
	if len(data) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("ssiconfig: %w", err)
	}
	cfg.AllowExec = false
	return cfg, nil
}
