// Package uniclass implements the KDL 2.0 codepoint classification tables:
// whitespace, newline, disallowed, and identifier-start/continuation
// classes, plus the fast ASCII token-terminator predicate used in the
// tokenizer and structural scanner inner loops.
package uniclass

import (
	"unicode"

	"golang.org/x/text/unicode/rangetable"
)

// Whitespace is the set of non-newline KDL whitespace codepoints: tab,
// space, NBSP, Ogham space mark, the general-punctuation space run
// U+2000..U+200A, narrow NBSP, medium mathematical space, and ideographic
// space.
var Whitespace = rangetable.Merge(
	rangetable.New('	', ' ', ' ', ' '),
	rangetable.New(rangeOf(0x2000, 0x200A)...),
	rangetable.New(' ', ' ', '　'),
)

// Newline is the set of codepoints that terminate a line on their own
// (CRLF is handled as a two-codepoint pair by the caller, not as a single
// member of this set).
var Newline = rangetable.New(
	'\u000A', '\u000B', '\u000C', '\u000D', '\u0085', '\u2028', '\u2029',
)

// directionControl is the set of bidi direction-control codepoints
// disallowed in strings and identifiers.
var directionControl = rangetable.Merge(
	rangetable.New('‎', '‏'),
	rangetable.New(rangeOf(0x202A, 0x202E)...),
	rangetable.New(rangeOf(0x2066, 0x2069)...),
)

var bom = rangetable.New(0xFEFF)

// controlsMinusWhitespace covers the C0/C1 control range minus the
// whitespace and newline codepoints already classified above.
var controlsMinusWhitespace = rangetable.Merge(
	rangetable.New(rangeOf(0x00, 0x08)...),
	rangetable.New(rangeOf(0x0E, 0x1F)...),
	rangetable.New(rangeOf(0x7F, 0x84)...),
	rangetable.New(rangeOf(0x86, 0x9F)...),
)

// Disallowed is the set of codepoints forbidden inside strings and
// identifiers: controls (minus whitespace/newline), UTF-16 surrogates,
// direction-control characters, and the BOM (outside its leading-byte role).
var Disallowed = rangetable.Merge(
	controlsMinusWhitespace,
	rangetable.New(rangeOf(0xD800, 0xDFFF)...),
	directionControl,
	bom,
)

func rangeOf(lo, hi rune) []rune {
	out := make([]rune, 0, hi-lo+1)
	for r := lo; r <= hi; r++ {
		out = append(out, r)
	}
	return out
}

// asciiTerminator marks the ASCII bytes that end a bare identifier or
// number: structural punctuation, string/comment introducers, and
// whitespace/newline. Indexed directly by byte value for speed.
var asciiTerminator [128]bool

func init() {
	for _, b := range []byte{'{', '}', '(', ')', '[', ']', '/', '\\', '"', '#', ';', '=', ' ', '\t', '\r', '\n', '\f', '\v'} {
		asciiTerminator[b] = true
	}
}

// IsTokenTerminator reports whether b (an ASCII byte) ends a bare
// identifier, bare keyword, or number literal.
func IsTokenTerminator(b byte) bool {
	return b < 128 && asciiTerminator[b]
}

// IsWhitespace reports whether r is KDL non-newline whitespace.
func IsWhitespace(r rune) bool { return unicode.Is(Whitespace, r) }

// IsNewline reports whether r is (one half of) a KDL newline.
func IsNewline(r rune) bool { return unicode.Is(Newline, r) }

// IsDisallowed reports whether r may never appear in a string or identifier.
func IsDisallowed(r rune) bool { return unicode.Is(Disallowed, r) }

var bareKeywords = map[string]bool{
	"true": true, "false": true, "null": true, "inf": true, "nan": true,
}

// IsBareKeyword reports whether text is one of the five words KDL forbids
// as a bare (unquoted, un-#-prefixed) identifier.
func IsBareKeyword(text string) bool { return bareKeywords[text] }

// IsIdentifierStart reports whether r may begin a bare identifier: not a
// digit, not an ASCII token terminator, not disallowed. The sign-followed-
// by-digit exclusion is caller-side (it needs two codepoints of lookahead).
func IsIdentifierStart(r rune) bool {
	if r < 128 {
		if r >= '0' && r <= '9' {
			return false
		}
		if IsTokenTerminator(byte(r)) {
			return false
		}
		return !IsDisallowed(r)
	}
	return !IsDisallowed(r)
}

// IsIdentifierContinuation reports whether r may continue a bare
// identifier once started; unlike the start class it permits digits.
func IsIdentifierContinuation(r rune) bool {
	if r < 128 {
		if IsTokenTerminator(byte(r)) {
			return false
		}
		return !IsDisallowed(r)
	}
	return !IsDisallowed(r)
}

// IsDigit reports whether r is an ASCII decimal digit.
func IsDigit(r rune) bool { return r >= '0' && r <= '9' }
