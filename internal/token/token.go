// Package token implements the KDL tokenizer: a buffered, single-pass
// lexer over an io.Reader producing typed tokens.
package token

// Kind tags a Token's lexical category.
type Kind uint8

const (
	Identifier Kind = iota
	QuotedString
	RawString
	MultilineString
	RawMultilineString
	Integer
	HexInteger
	OctalInteger
	BinaryInteger
	Float
	KeywordTrue
	KeywordFalse
	KeywordNull
	KeywordInf
	KeywordNegInf
	KeywordNaN
	OpenParen
	CloseParen
	OpenBrace
	CloseBrace
	Equals
	Semicolon
	Slashdash
	Newline
	EOF
	Invalid
)

func (k Kind) String() string {
	names := [...]string{
		"identifier", "quoted_string", "raw_string", "multiline_string",
		"raw_multiline_string", "integer", "hex_integer", "octal_integer",
		"binary_integer", "float", "keyword_true", "keyword_false",
		"keyword_null", "keyword_inf", "keyword_neg_inf", "keyword_nan",
		"open_paren", "close_paren", "open_brace", "close_brace", "equals",
		"semicolon", "slashdash", "newline", "eof", "invalid",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// Token is one lexical unit: a tag, its literal text, 1-based source
// position, and whether it was preceded by whitespace or a comment.
//
// Text is the token's raw source text (escape sequences and multiline
// dedent are NOT processed here; that is the string/number processor's
// job, driven by the builder). For RawString/RawMultilineString, Text is
// the content between the hash-delimited quotes, not including the hashes
// themselves; HashCount records how many '#' framed the delimiter.
type Token struct {
	Kind                 Kind
	Text                 string
	Line                 int
	Column               int
	PrecededByWhitespace bool
	HashCount            int
}
