package directive

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gotest.tools/v3/assert"
)

func TestParseAttrsBasic(t *testing.T) {
	attrs, err := ParseAttrs(`var="X" value="1"`)
	assert.NilError(t, err)
	want := []Attr{{Name: "var", Value: "X"}, {Name: "value", Value: "1"}}
	if diff := cmp.Diff(want, attrs); diff != "" {
		t.Fatalf("attrs mismatch (-want +got):\n%s", diff)
	}
}

func TestParseAttrsSingleQuoted(t *testing.T) {
	attrs, err := ParseAttrs(`var='X'`)
	assert.NilError(t, err)
	v, ok := Get(attrs, "var")
	assert.Equal(t, ok, true)
	assert.Equal(t, v, "X")
}

func TestParseAttrsUnquoted(t *testing.T) {
	attrs, err := ParseAttrs(`errmsg=oops`)
	assert.NilError(t, err)
	v, ok := Get(attrs, "errmsg")
	assert.Equal(t, ok, true)
	assert.Equal(t, v, "oops")
}

func TestParseAttrsNameLowercased(t *testing.T) {
	attrs, err := ParseAttrs(`VAR="X"`)
	assert.NilError(t, err)
	_, ok := Get(attrs, "var")
	assert.Equal(t, ok, true)
}

func TestParseAttrsEntityDecodesValue(t *testing.T) {
	attrs, err := ParseAttrs(`value="a &amp; b"`)
	assert.NilError(t, err)
	v, _ := Get(attrs, "value")
	assert.Equal(t, v, "a & b")
}

func TestParseAttrsBackslashEscapedQuote(t *testing.T) {
	attrs, err := ParseAttrs(`value="a \"b\" c"`)
	assert.NilError(t, err)
	v, _ := Get(attrs, "value")
	assert.Equal(t, v, `a "b" c`)
}

func TestParseAttrsUnterminatedQuoteReportsButKeepsScanning(t *testing.T) {
	attrs, err := ParseAttrs(`a="1" b="unterminated`)
	assert.ErrorContains(t, err, "unterminated quoted value")
	v, ok := Get(attrs, "a")
	assert.Equal(t, ok, true)
	assert.Equal(t, v, "1")
}

func TestParseAttrsMissingEquals(t *testing.T) {
	_, err := ParseAttrs(`bareword`)
	assert.ErrorContains(t, err, "missing '='")
}

func TestGetMissing(t *testing.T) {
	_, ok := Get(nil, "var")
	assert.Equal(t, ok, false)
}
