package strnum_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdl-lang/kdl/internal/strnum"
)

func TestDecodeQuotedBasicEscapes(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`hello`, "hello"},
		{`a\nb`, "a\nb"},
		{`a\tb`, "a\tb"},
		{`a\\b`, `a\b`},
		{`a\"b`, `a"b`},
		{`a\bb`, "a\bb"},
		{`a\fb`, "a\fb"},
		{`a\sb`, "a b"},
	}
	for _, tc := range tests {
		got, err := strnum.DecodeQuoted(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}

func TestDecodeQuotedUnicodeEscape(t *testing.T) {
	got, err := strnum.DecodeQuoted(`\u{48}\u{65}\u{6C}\u{6C}\u{6F}`)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got)
}

func TestDecodeQuotedRejectsSurrogateUnicodeEscape(t *testing.T) {
	_, err := strnum.DecodeQuoted(`\u{D800}`)
	assert.Error(t, err)
}

func TestDecodeQuotedRejectsOutOfRangeUnicodeEscape(t *testing.T) {
	_, err := strnum.DecodeQuoted(`\u{110000}`)
	assert.Error(t, err)
}

func TestDecodeQuotedRejectsUnknownEscape(t *testing.T) {
	_, err := strnum.DecodeQuoted(`a\qb`)
	assert.Error(t, err)
}

func TestDecodeQuotedRejectsTrailingBackslash(t *testing.T) {
	_, err := strnum.DecodeQuoted(`a\`)
	assert.Error(t, err)
}

func TestDecodeQuotedWhitespaceEscapeConsumesOneNewline(t *testing.T) {
	got, err := strnum.DecodeQuoted("a\\  \n  b")
	require.NoError(t, err)
	assert.Equal(t, "ab", got)
}

func TestDecodeMultilineDedentsAgainstClosingLinePrefix(t *testing.T) {
	content := "\n    line one\n    line two\n    "
	got, err := strnum.DecodeMultiline(content, true, 16)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", got)
}

func TestDecodeMultilineRequiresEmptyFirstLine(t *testing.T) {
	content := "not empty\n    text\n    "
	_, err := strnum.DecodeMultiline(content, true, 16)
	assert.Error(t, err)
}

func TestDecodeMultilineRequiresWhitespaceOnlyClosingLine(t *testing.T) {
	content := "\n    text\n    not-blank"
	_, err := strnum.DecodeMultiline(content, true, 16)
	assert.Error(t, err)
}

func TestDecodeMultilineRejectsLineNotMatchingDedentPrefix(t *testing.T) {
	content := "\n    line one\nline two\n    "
	_, err := strnum.DecodeMultiline(content, true, 16)
	assert.Error(t, err)
}

func TestDecodeMultilineBlankInteriorLinesSkipDedentCheck(t *testing.T) {
	content := "\n    line one\n\n    line two\n    "
	got, err := strnum.DecodeMultiline(content, true, 16)
	require.NoError(t, err)
	assert.Equal(t, "line one\n\nline two", got)
}

func TestDecodeMultilineRawDoesNotApplyEscapes(t *testing.T) {
	content := "\n    a\\nb\n    "
	got, err := strnum.DecodeMultiline(content, false, 16)
	require.NoError(t, err)
	assert.Equal(t, `a\nb`, got)
}
