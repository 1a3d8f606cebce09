package ssi

import (
	"bytes"

	"github.com/taiseen-cell/ssi/env"
	"github.com/taiseen-cell/ssi/ssiconfig"
	"github.com/taiseen-cell/ssi/ssierr"
)

// ProcessAll runs the full filter over a single, already-complete byte
// slice — a convenience entry point for hosts and tests that have the
// whole document in memory rather than a live chunk stream. It is
// equivalent to one Write call followed by Close.
func ProcessAll(data []byte, vars env.Environment, cfg ssiconfig.Config, info *RequestInfo, opts ...Option) (string, *ssierr.Collection, error) {
	var buf bytes.Buffer
	f := NewFilter(&buf, vars, cfg, info, opts...)
	if _, err := f.Write(data); err != nil {
		return "", f.Errors(), err
	}
	if err := f.Close(); err != nil {
		return "", f.Errors(), err
	}
	return buf.String(), f.Errors(), nil
}
