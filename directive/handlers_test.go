package directive

import (
	"context"
	"testing"
	"time"

	"github.com/taiseen-cell/ssi/host"
	"gotest.tools/v3/assert"
)

func TestHandleSet(t *testing.T) {
	sc := newTestContext()
	sc.Vars.Set("NAME", "world")

	out, err := handleSet(context.Background(), sc, []Attr{
		{Name: "var", Value: "greeting"},
		{Name: "value", Value: "hello $NAME"},
	})
	assert.NilError(t, err)
	assert.Equal(t, len(out), 0)

	v, ok := sc.Vars.Get("greeting")
	assert.Equal(t, ok, true)
	assert.Equal(t, v, "hello world")
}

func TestHandleSetRejectsValueBeforeVar(t *testing.T) {
	sc := newTestContext()
	_, err := handleSet(context.Background(), sc, []Attr{
		{Name: "value", Value: "hello"},
		{Name: "var", Value: "greeting"},
	})
	assert.ErrorContains(t, err, "variable must precede value")
	_, ok := sc.Vars.Get("greeting")
	assert.Equal(t, ok, false)
}

func TestHandleSetMultiplePairs(t *testing.T) {
	sc := newTestContext()
	_, err := handleSet(context.Background(), sc, []Attr{
		{Name: "var", Value: "a"},
		{Name: "value", Value: "1"},
		{Name: "var", Value: "b"},
		{Name: "value", Value: "2"},
	})
	assert.NilError(t, err)
	v, _ := sc.Vars.Get("a")
	assert.Equal(t, v, "1")
	v, _ = sc.Vars.Get("b")
	assert.Equal(t, v, "2")
}

func TestHandleElifSkipsEvalWhenBranchAlreadyDecided(t *testing.T) {
	sc := newTestContext()
	sc.pushIf(true) // #if true: condTrue already set

	// A malformed expr would normally return a parse error; because the
	// branch is already decided, handleElif must never evaluate it.
	out, err := handleElif(context.Background(), sc, []Attr{{Name: "expr", Value: "("}})
	assert.NilError(t, err)
	assert.Equal(t, len(out), 0)
	assert.Equal(t, sc.Printing(), false)
}

func TestHandleElifRequiresExprWhenBranchUndecided(t *testing.T) {
	sc := newTestContext()
	sc.pushIf(false) // #if false: still undecided

	_, err := handleElif(context.Background(), sc, nil)
	assert.ErrorContains(t, err, "expr")
}

func TestHandleElseRejectsAttributes(t *testing.T) {
	sc := newTestContext()
	sc.pushIf(true)

	_, err := handleElse(context.Background(), sc, []Attr{{Name: "bogus", Value: "x"}})
	assert.ErrorContains(t, err, "else takes no attributes")
}

func TestHandleEndifRejectsAttributes(t *testing.T) {
	sc := newTestContext()
	sc.pushIf(true)

	_, err := handleEndif(context.Background(), sc, []Attr{{Name: "bogus", Value: "x"}})
	assert.ErrorContains(t, err, "endif takes no attributes")
}

func TestHandleConfigOverwritesLiveConfig(t *testing.T) {
	sc := newTestContext()
	_, err := handleConfig(context.Background(), sc, []Attr{
		{Name: "errmsg", Value: "oops"},
		{Name: "timefmt", Value: "%Y"},
		{Name: "sizefmt", Value: "bytes"},
	})
	assert.NilError(t, err)
	assert.Equal(t, sc.Config.SSIErrorMsg, "oops")
	assert.Equal(t, sc.Config.SSITimeFormat, "%Y")
	assert.Equal(t, sc.Config.SizeFmt, "bytes")
}

func TestHandleEchoPlainVariable(t *testing.T) {
	sc := newTestContext()
	sc.Vars.Set("X", "<b>")
	out, err := handleEcho(context.Background(), sc, []Attr{{Name: "var", Value: "X"}, {Name: "encoding", Value: "entity"}})
	assert.NilError(t, err)
	assert.Equal(t, string(out), "&lt;b&gt;")
}

func TestHandleEchoNoneEncoding(t *testing.T) {
	sc := newTestContext()
	sc.Vars.Set("X", "<b>")
	out, err := handleEcho(context.Background(), sc, []Attr{{Name: "var", Value: "X"}, {Name: "encoding", Value: "none"}})
	assert.NilError(t, err)
	assert.Equal(t, string(out), "<b>")
}

func TestHandleEchoUnsetVariable(t *testing.T) {
	sc := newTestContext()
	out, err := handleEcho(context.Background(), sc, []Attr{{Name: "var", Value: "MISSING"}})
	assert.NilError(t, err)
	assert.Equal(t, string(out), "(none)")
}

func TestHandleEchoDateIsLazy(t *testing.T) {
	sc := newTestContext()
	sc.Config.SSITimeFormat = "%Y"

	first := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	second := time.Date(2099, time.January, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	sc.Now = func() time.Time {
		calls++
		if calls == 1 {
			return first
		}
		return second
	}

	out1, err := handleEcho(context.Background(), sc, []Attr{{Name: "var", Value: "DATE_GMT"}, {Name: "encoding", Value: "none"}})
	assert.NilError(t, err)
	assert.Equal(t, string(out1), "2020")

	// A #config timefmt change between two #echo calls takes effect
	// immediately, since DATE_GMT is computed fresh each time rather
	// than snapshotted.
	sc.Config.SSITimeFormat = "%Y-bis"
	out2, err := handleEcho(context.Background(), sc, []Attr{{Name: "var", Value: "DATE_GMT"}, {Name: "encoding", Value: "none"}})
	assert.NilError(t, err)
	assert.Equal(t, string(out2), "2099-bis")
}

func TestHandlePrintenvOrder(t *testing.T) {
	sc := newTestContext()
	sc.Vars.Set("C", "3")
	sc.Vars.Set("A", "1")
	sc.Vars.Set("B", "2")

	out, err := handlePrintenv(context.Background(), sc, nil)
	assert.NilError(t, err)
	assert.Equal(t, string(out), "C=3\nA=1\nB=2\n")
}

func TestHandlePrintenvEscapesMarkup(t *testing.T) {
	sc := newTestContext()
	sc.Vars.Set("X", `<a href="y">&z</a>`)

	out, err := handlePrintenv(context.Background(), sc, nil)
	assert.NilError(t, err)
	assert.Equal(t, string(out), "X=&lt;a href=&quot;y&quot;&gt;&amp;z&lt;/a&gt;\n")
}

type fakeStatter struct {
	info map[string]host.FileInfo
}

func (f fakeStatter) Stat(_ context.Context, path string) (host.FileInfo, error) {
	return f.info[path], nil
}

func TestHandleFsizeAbbrev(t *testing.T) {
	cases := []struct {
		name string
		size int64
		want string
	}{
		{"unknown", -1, "   -"},
		{"zero", 0, "   0k"},
		{"under one k", 500, "   1k"},
		{"k tier", 2048, "   2k"},
		{"m tier with decimal", 2 * 1024 * 1024, " 2.0M"},
		{"m tier without decimal past 99M", 150 * 1024 * 1024, " 150M"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sc := newTestContext()
			sc.Stat = fakeStatter{info: map[string]host.FileInfo{"big.txt": {Size: tc.size}}}

			out, err := handleFsize(context.Background(), sc, []Attr{{Name: "file", Value: "big.txt"}})
			assert.NilError(t, err)
			assert.Equal(t, string(out), tc.want)
		})
	}
}

func TestHandleFsizeBytes(t *testing.T) {
	sc := newTestContext()
	sc.Config.SizeFmt = "bytes"
	sc.Stat = fakeStatter{info: map[string]host.FileInfo{"f.txt": {Size: 1234567}}}

	out, err := handleFsize(context.Background(), sc, []Attr{{Name: "file", Value: "f.txt"}})
	assert.NilError(t, err)
	assert.Equal(t, string(out), "1,234,567")
}

func TestHandleFlastmod(t *testing.T) {
	sc := newTestContext()
	sc.Config.SSITimeFormat = "%Y-%m-%d"
	mod := time.Date(2021, time.March, 5, 0, 0, 0, 0, time.UTC)
	sc.Stat = fakeStatter{info: map[string]host.FileInfo{"f.txt": {ModTime: mod}}}

	out, err := handleFlastmod(context.Background(), sc, []Attr{{Name: "file", Value: "f.txt"}})
	assert.NilError(t, err)
	assert.Equal(t, string(out), "2021-03-05")
}

type fakeRenderer struct {
	result host.RenderResult
	err    error
}

func (f fakeRenderer) Render(_ context.Context, _ string, _ bool) (host.RenderResult, error) {
	return f.result, f.err
}

func TestHandleIncludeFile(t *testing.T) {
	sc := newTestContext()
	sc.Render = fakeRenderer{result: host.RenderResult{Body: []byte("nested"), ContentType: "text/html", Status: 200}}

	out, err := handleInclude(context.Background(), sc, []Attr{{Name: "file", Value: "part.shtml"}})
	assert.NilError(t, err)
	assert.Equal(t, string(out), "nested")
}

func TestHandleIncludeRejectsPathTraversal(t *testing.T) {
	sc := newTestContext()
	sc.Render = fakeRenderer{result: host.RenderResult{Body: []byte("nope")}}

	_, err := handleInclude(context.Background(), sc, []Attr{{Name: "file", Value: "../etc/passwd"}})
	assert.ErrorContains(t, err, "escapes document root")
}

func TestHandleIncludeRejectsRecursion(t *testing.T) {
	sc := newTestContext()
	sc.Chain = host.RequestChain{{Filename: "self.shtml"}}
	sc.Render = fakeRenderer{result: host.RenderResult{Body: []byte("x")}}

	_, err := handleInclude(context.Background(), sc, []Attr{{Name: "file", Value: "self.shtml"}})
	assert.ErrorContains(t, err, "recursion")
}

func TestHandleIncludeRejectsNonText(t *testing.T) {
	sc := newTestContext()
	sc.Render = fakeRenderer{result: host.RenderResult{Body: []byte{0xff}, ContentType: "image/png"}}

	_, err := handleInclude(context.Background(), sc, []Attr{{Name: "file", Value: "pic.png"}})
	assert.ErrorContains(t, err, "not text")
}

func TestHandleIncludeAllowsNonTextWhenNoExecOff(t *testing.T) {
	sc := newTestContext()
	sc.Config.NoExec = false
	sc.Render = fakeRenderer{result: host.RenderResult{Body: []byte{0xff}, ContentType: "image/png", Status: 200}}

	out, err := handleInclude(context.Background(), sc, []Attr{{Name: "file", Value: "pic.png"}})
	assert.NilError(t, err)
	assert.DeepEqual(t, out, []byte{0xff})
}

func TestHandleIncludeRejectsBadStatus(t *testing.T) {
	sc := newTestContext()
	sc.Render = fakeRenderer{result: host.RenderResult{Body: []byte("x"), ContentType: "text/html", Status: 404}}

	_, err := handleInclude(context.Background(), sc, []Attr{{Name: "file", Value: "missing.shtml"}})
	assert.ErrorContains(t, err, "did not return 200")
}
