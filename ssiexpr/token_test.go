package ssiexpr

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gotest.tools/v3/assert"
)

func allTokens(expr string) []Token {
	tz := NewTokenizer(expr)
	var toks []Token
	for {
		tok := tz.Next()
		toks = append(toks, tok)
		if tok.Type == TokEOF {
			return toks
		}
	}
}

func TestTokenizerOperators(t *testing.T) {
	got := allTokens("a = b != c >= d > e <= f < g && h || !i")
	want := []Token{
		{Type: TokString, Literal: "a"},
		{Type: TokEq},
		{Type: TokString, Literal: "b"},
		{Type: TokNe},
		{Type: TokString, Literal: "c"},
		{Type: TokGe},
		{Type: TokString, Literal: "d"},
		{Type: TokGt},
		{Type: TokString, Literal: "e"},
		{Type: TokLe},
		{Type: TokString, Literal: "f"},
		{Type: TokLt},
		{Type: TokString, Literal: "g"},
		{Type: TokAnd},
		{Type: TokString, Literal: "h"},
		{Type: TokOr},
		{Type: TokNot},
		{Type: TokString, Literal: "i"},
		{Type: TokEOF},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("token stream mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizerQuotedString(t *testing.T) {
	got := allTokens(`'ab' = /^a/`)
	want := []Token{
		{Type: TokString, Literal: "ab"},
		{Type: TokEq},
		{Type: TokString, Literal: "/^a/"},
		{Type: TokEOF},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("token stream mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizerBackslashEscape(t *testing.T) {
	tz := NewTokenizer(`'a\'b'`)
	tok := tz.Next()
	assert.Equal(t, tok.Literal, "a'b")
	assert.Equal(t, tz.Unmatched(), false)
}

func TestTokenizerUnmatchedQuote(t *testing.T) {
	tz := NewTokenizer(`'unterminated`)
	tz.Next()
	assert.Equal(t, tz.Unmatched(), true)
}

func TestTokenizerParens(t *testing.T) {
	got := allTokens("(a)")
	want := []Token{
		{Type: TokLBrace},
		{Type: TokString, Literal: "a"},
		{Type: TokRBrace},
		{Type: TokEOF},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("token stream mismatch (-want +got):\n%s", diff)
	}
}
