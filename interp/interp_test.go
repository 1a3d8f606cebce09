package interp

import (
	"testing"

	"github.com/taiseen-cell/ssi/env"
	"gotest.tools/v3/assert"
)

func newVars() *env.Map {
	m := env.NewMap()
	m.Set("X", "Y")
	m.Set("NAME", "world")
	return m
}

func TestInterpolate(t *testing.T) {
	cases := []struct {
		name      string
		in        string
		leaveName bool
		want      string
	}{
		{"simple var", "$X", true, "Y"},
		{"braced var", "hello ${NAME}!", true, "hello world!"},
		{"unset var kept when leaveName", "$MISSING", true, "$MISSING"},
		{"unset var dropped when not leaveName", "$MISSING", false, ""},
		{"escaped dollar", `\$X`, true, "$X"},
		{"literal backslash kept", `a\b`, true, `a\b`},
		{"bare dollar at end", "price: $", true, "price: $"},
		{"mixed text", "a$Xb", true, "aYb"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Interpolate(tc.in, newVars(), tc.leaveName, 0)
			assert.NilError(t, err)
			assert.Equal(t, got, tc.want)
		})
	}
}

func TestInterpolateUnterminatedBrace(t *testing.T) {
	_, err := Interpolate("${X", newVars(), true, 0)
	assert.ErrorContains(t, err, "unterminated")
}

func TestInterpolateTruncates(t *testing.T) {
	got, err := Interpolate("abcdef", newVars(), true, 4)
	assert.NilError(t, err)
	assert.Equal(t, got, "abc")
}

func TestInterpolateIdempotentOnPlainText(t *testing.T) {
	in := "nothing to substitute here"
	got, err := Interpolate(in, newVars(), true, 0)
	assert.NilError(t, err)
	assert.Equal(t, got, in)
}
