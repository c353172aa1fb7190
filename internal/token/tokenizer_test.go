package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, src string) []Token {
	t.Helper()
	tok := New(strings.NewReader(src), 8, nil) // tiny buffer to force refills
	var out []Token
	for {
		tk, err := tok.Next()
		require.NoError(t, err)
		out = append(out, tk)
		if tk.Kind == EOF {
			return out
		}
	}
}

func kinds(toks []Token) []Kind {
	ks := make([]Kind, len(toks))
	for i, tk := range toks {
		ks[i] = tk.Kind
	}
	return ks
}

func TestTokenizerBasicNode(t *testing.T) {
	toks := lexAll(t, "node \"arg\" key=1 {\n}")
	require.Equal(t, []Kind{Identifier, QuotedString, Identifier, Equals, Integer, OpenBrace, Newline, CloseBrace, EOF}, kinds(toks))
}

func TestTokenizerSmallBufferForcesRefillAcrossLongIdentifier(t *testing.T) {
	src := "this-is-a-long-bare-identifier-spanning-many-refills 42"
	toks := lexAll(t, src)
	require.Equal(t, Identifier, toks[0].Kind)
	require.Equal(t, "this-is-a-long-bare-identifier-spanning-many-refills", toks[0].Text)
	require.True(t, toks[1].PrecededByWhitespace)
	require.Equal(t, Integer, toks[1].Kind)
}

func TestTokenizerQuotedStringWithEscapes(t *testing.T) {
	toks := lexAll(t, `"a\nb\u{1F600}c"`)
	require.Equal(t, QuotedString, toks[0].Kind)
	require.Equal(t, `a\nb\u{1F600}c`, toks[0].Text)
}

func TestTokenizerRawStringHashCount(t *testing.T) {
	toks := lexAll(t, `##"raw "# content"##`)
	require.Equal(t, RawString, toks[0].Kind)
	require.Equal(t, 2, toks[0].HashCount)
	require.Equal(t, `raw "# content`, toks[0].Text)
}

func TestTokenizerMultilineStringSpansNewlines(t *testing.T) {
	src := "\"\"\"\n  line one\n  line two\n  \"\"\""
	toks := lexAll(t, src)
	require.Equal(t, MultilineString, toks[0].Kind)
	require.Equal(t, "\n  line one\n  line two\n  ", toks[0].Text)
}

func TestTokenizerKeywords(t *testing.T) {
	toks := lexAll(t, "#true #false #null #inf #-inf #nan")
	require.Equal(t, []Kind{KeywordTrue, KeywordFalse, KeywordNull, KeywordInf, KeywordNegInf, KeywordNaN, EOF}, kinds(toks))
}

func TestTokenizerBareKeywordIsInvalid(t *testing.T) {
	toks := lexAll(t, "true")
	require.Equal(t, Invalid, toks[0].Kind)
}

func TestTokenizerSlashdashAndComments(t *testing.T) {
	toks := lexAll(t, "/-node // trailing\n/* block */ next")
	require.Equal(t, Slashdash, toks[0].Kind)
	require.Equal(t, Identifier, toks[1].Kind)
	require.Equal(t, Newline, toks[2].Kind)
	require.Equal(t, Identifier, toks[3].Kind)
	require.True(t, toks[3].PrecededByWhitespace)
}

func TestTokenizerRadixIntegers(t *testing.T) {
	toks := lexAll(t, "0x1F 0o17 0b101 -3.5e+10")
	require.Equal(t, []Kind{HexInteger, OctalInteger, BinaryInteger, Float, EOF}, kinds(toks))
}

func TestTokenizerUnterminatedStringIsLexError(t *testing.T) {
	tok := New(strings.NewReader(`"unterminated`), 4, nil)
	_, err := tok.Next()
	require.Error(t, err)
	var lexErr *LexError
	require.ErrorAs(t, err, &lexErr)
}

func TestTokenizerRejectsMalformedUTF8InQuotedString(t *testing.T) {
	src := "\"a" + string([]byte{0xff}) + "b\""
	tok := New(strings.NewReader(src), 8, nil)
	_, err := tok.Next()
	require.Error(t, err)
	var lexErr *LexError
	require.ErrorAs(t, err, &lexErr)
}

func TestTokenizerRejectsMalformedUTF8InMultilineString(t *testing.T) {
	src := "\"\"\"\n  a" + string([]byte{0xff}) + "b\n  \"\"\""
	tok := New(strings.NewReader(src), 8, nil)
	_, err := tok.Next()
	require.Error(t, err)
}

func TestTokenizerRejectsMalformedUTF8InRawString(t *testing.T) {
	src := "#\"a" + string([]byte{0xff}) + "b\"#"
	tok := New(strings.NewReader(src), 8, nil)
	_, err := tok.Next()
	require.Error(t, err)
}

func TestTokenizerRejectsMalformedUTF8InIdentifier(t *testing.T) {
	src := "ab" + string([]byte{0xff}) + "cd 1"
	tok := New(strings.NewReader(src), 8, nil)
	_, err := tok.Next()
	require.Error(t, err)
}
