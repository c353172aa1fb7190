package build

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kdl-lang/kdl/event"
	"github.com/kdl-lang/kdl/internal/scan"
	"github.com/kdl-lang/kdl/internal/token"
	"github.com/kdl-lang/kdl/internal/uniclass"
)

// indexTokenizer re-derives the same token stream *token.Tokenizer
// produces, but consults a precomputed structural index to jump
// straight to known string/raw-string delimiters and line-comment ends
// instead of scanning for them byte by byte. Bare identifiers, numbers
// and block comments are still scanned directly. This is the index-driven
// builder's lexing layer.
type indexTokenizer struct {
	source []byte
	idx    []int
	cursor int
	pos    int
	line   int
	column int
}

func newIndexTokenizer(source []byte, idx []int) *indexTokenizer {
	return &indexTokenizer{source: source, idx: idx, line: 1, column: 1}
}

// FromIndex drives the grammar over a structural index and its source —
// the index-driven builder path — invoking sink once per event in
// document order. It produces the same events FromTokens would for the
// same source.
func FromIndex(source []byte, indices []int, cfg Config, sink event.Sink) error {
	return newDriver(newIndexTokenizer(source, indices), sink, cfg).Run()
}

// nextStructuralAtOrAfter returns the smallest indexed offset >= pos, or
// len(source) if none remains. The index only ever contains genuine
// structural positions (structscan never indexes a rejected raw-string
// or multiline-string close candidate), so whichever candidate the
// current lexing mode is hunting for is exactly what this returns.
func (t *indexTokenizer) nextStructuralAtOrAfter(pos int) int {
	for t.cursor < len(t.idx) && t.idx[t.cursor] < pos {
		t.cursor++
	}
	if t.cursor < len(t.idx) {
		return t.idx[t.cursor]
	}
	return len(t.source)
}

func (t *indexTokenizer) consume(n int) {
	end := t.pos + n
	for t.pos < end {
		b := t.source[t.pos]
		if b == '\n' {
			t.line++
			t.column = 1
			t.pos++
			continue
		}
		if b < 0x80 {
			t.column++
			t.pos++
			continue
		}
		_, sz := utf8.DecodeRune(t.source[t.pos:end])
		if sz <= 0 {
			sz = 1
		}
		t.column++
		t.pos += sz
	}
}

func (t *indexTokenizer) errAt(line, col int, format string, args ...any) error {
	return &token.LexError{Line: line, Column: col, Message: fmt.Sprintf(format, args...)}
}

func (t *indexTokenizer) skipIntertoken() bool {
	skipped := false
	for t.pos < len(t.source) {
		b := t.source[t.pos]
		if b == ' ' || b == '\t' {
			t.consume(1)
			skipped = true
			continue
		}
		if b >= 0x80 {
			r, sz := utf8.DecodeRune(t.source[t.pos:])
			if uniclass.IsWhitespace(r) {
				t.consume(sz)
				skipped = true
				continue
			}
		}
		if b == '\\' {
			j := t.pos + 1
			for j < len(t.source) && (t.source[j] == ' ' || t.source[j] == '\t') {
				j++
			}
			if j < len(t.source) && (t.source[j] == '\n' || t.source[j] == '\r') {
				nlLen := 1
				if t.source[j] == '\r' && j+1 < len(t.source) && t.source[j+1] == '\n' {
					nlLen = 2
				}
				t.consume(j + nlLen - t.pos)
				skipped = true
				continue
			}
			return skipped
		}
		if b == '/' && t.pos+1 < len(t.source) {
			if t.source[t.pos+1] == '/' {
				end := t.nextStructuralAtOrAfter(t.pos + 2)
				t.consume(end - t.pos)
				skipped = true
				continue
			}
			if t.source[t.pos+1] == '*' {
				depth := 1
				p := t.pos + 2
				for p+1 < len(t.source) && depth > 0 {
					if t.source[p] == '/' && t.source[p+1] == '*' {
						depth++
						p += 2
						continue
					}
					if t.source[p] == '*' && t.source[p+1] == '/' {
						depth--
						p += 2
						continue
					}
					p++
				}
				t.consume(p - t.pos)
				skipped = true
				continue
			}
		}
		return skipped
	}
	return skipped
}

func (t *indexTokenizer) Next() (token.Token, error) {
	ws := t.skipIntertoken()
	line, col := t.line, t.column
	if t.pos >= len(t.source) {
		return token.Token{Kind: token.EOF, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	}
	b := t.source[t.pos]
	switch {
	case b == '\n':
		t.consume(1)
		return token.Token{Kind: token.Newline, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	case b == '\r':
		n := 1
		if t.pos+1 < len(t.source) && t.source[t.pos+1] == '\n' {
			n = 2
		}
		t.consume(n)
		return token.Token{Kind: token.Newline, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	case b == '/':
		if t.pos+1 < len(t.source) && t.source[t.pos+1] == '-' {
			t.consume(2)
			return token.Token{Kind: token.Slashdash, Line: line, Column: col, PrecededByWhitespace: ws}, nil
		}
		return token.Token{}, t.errAt(line, col, "unexpected '/'")
	case b == '{':
		t.consume(1)
		return token.Token{Kind: token.OpenBrace, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	case b == '}':
		t.consume(1)
		return token.Token{Kind: token.CloseBrace, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	case b == '(':
		t.consume(1)
		return token.Token{Kind: token.OpenParen, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	case b == ')':
		t.consume(1)
		return token.Token{Kind: token.CloseParen, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	case b == ';':
		t.consume(1)
		return token.Token{Kind: token.Semicolon, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	case b == '=':
		t.consume(1)
		return token.Token{Kind: token.Equals, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	case b == '"':
		return t.scanQuoted(line, col, ws)
	case b == '#':
		return t.scanHashIntroduced(line, col, ws)
	case b == '+' || b == '-':
		if t.pos+1 < len(t.source) && isASCIIDigit(t.source[t.pos+1]) {
			return t.scanNumber(line, col, ws)
		}
		return t.scanIdentifier(line, col, ws)
	case isASCIIDigit(b):
		return t.scanNumber(line, col, ws)
	default:
		return t.scanIdentifier(line, col, ws)
	}
}

func isASCIIDigit(b byte) bool { return b >= '0' && b <= '9' }

func (t *indexTokenizer) scanQuoted(line, col int, ws bool) (token.Token, error) {
	if t.pos+2 < len(t.source) && t.source[t.pos+1] == '"' && t.source[t.pos+2] == '"' {
		return t.scanMultiline(line, col, ws)
	}
	start := t.pos + 1
	closeAt := t.nextStructuralAtOrAfter(start)
	if closeAt >= len(t.source) || t.source[closeAt] != '"' {
		return token.Token{}, t.errAt(line, col, "unterminated string")
	}
	text := string(t.source[start:closeAt])
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '\n', '\r':
			return token.Token{}, t.errAt(line, col, "unterminated string: bare newline")
		}
	}
	t.consume(closeAt + 1 - t.pos)
	return token.Token{Kind: token.QuotedString, Text: text, Line: line, Column: col, PrecededByWhitespace: ws}, nil
}

func (t *indexTokenizer) scanMultiline(line, col int, ws bool) (token.Token, error) {
	start := t.pos + 3
	closeAt := t.nextStructuralAtOrAfter(start)
	if closeAt+2 >= len(t.source) || t.source[closeAt] != '"' || t.source[closeAt+1] != '"' || t.source[closeAt+2] != '"' {
		return token.Token{}, t.errAt(line, col, "unterminated multiline string")
	}
	text := string(t.source[start:closeAt])
	t.consume(closeAt + 3 - t.pos)
	return token.Token{Kind: token.MultilineString, Text: text, Line: line, Column: col, PrecededByWhitespace: ws}, nil
}

func (t *indexTokenizer) scanHashIntroduced(line, col int, ws bool) (token.Token, error) {
	p := t.pos
	hashCount := 0
	for p+hashCount < len(t.source) && t.source[p+hashCount] == '#' {
		hashCount++
	}
	next := p + hashCount
	if next < len(t.source) && t.source[next] == '"' {
		return t.scanRawString(line, col, ws, hashCount)
	}
	if hashCount != 1 {
		return token.Token{}, t.errAt(line, col, "malformed raw string or keyword introducer")
	}
	return t.scanKeyword(line, col, ws)
}

func (t *indexTokenizer) scanRawString(line, col int, ws bool, hashCount int) (token.Token, error) {
	openEnd := t.pos + hashCount
	multiline := openEnd+2 < len(t.source) && t.source[openEnd+1] == '"' && t.source[openEnd+2] == '"'
	closeLen := 1
	contentStart := openEnd + 1
	if multiline {
		closeLen = 3
		contentStart = openEnd + 3
	}
	closeAt := t.nextStructuralAtOrAfter(contentStart)
	if closeAt >= len(t.source) || t.source[closeAt] != '"' {
		return token.Token{}, t.errAt(line, col, "unterminated raw string")
	}
	text := string(t.source[contentStart:closeAt])
	if !multiline && strings.ContainsAny(text, "\n\r") {
		return token.Token{}, t.errAt(line, col, "unterminated raw string: bare newline")
	}
	if !utf8.ValidString(text) {
		return token.Token{}, t.errAt(line, col, "invalid UTF-8 encoding")
	}
	t.consume(closeAt + closeLen + hashCount - t.pos)
	kind := token.RawString
	if multiline {
		kind = token.RawMultilineString
	}
	return token.Token{Kind: kind, Text: text, HashCount: hashCount, Line: line, Column: col, PrecededByWhitespace: ws}, nil
}

func (t *indexTokenizer) scanKeyword(line, col int, ws bool) (token.Token, error) {
	start := t.pos + 1
	p := start
	for p < len(t.source) {
		b := t.source[p]
		if b < 128 {
			if uniclass.IsTokenTerminator(b) {
				break
			}
			p++
			continue
		}
		r, sz := utf8.DecodeRune(t.source[p:])
		if uniclass.IsDisallowed(r) {
			break
		}
		p += sz
	}
	word := string(t.source[start:p])
	t.consume(p - t.pos)
	switch word {
	case "true":
		return token.Token{Kind: token.KeywordTrue, Text: word, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	case "false":
		return token.Token{Kind: token.KeywordFalse, Text: word, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	case "null":
		return token.Token{Kind: token.KeywordNull, Text: word, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	case "inf":
		return token.Token{Kind: token.KeywordInf, Text: word, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	case "-inf":
		return token.Token{Kind: token.KeywordNegInf, Text: word, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	case "nan":
		return token.Token{Kind: token.KeywordNaN, Text: word, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	}
	return token.Token{}, t.errAt(line, col, "unknown '#' keyword: #%s", word)
}

func (t *indexTokenizer) scanNumber(line, col int, ws bool) (token.Token, error) {
	start := t.pos
	p := start
	if p < len(t.source) && (t.source[p] == '+' || t.source[p] == '-') {
		p++
	}
	kind := token.Integer
	if p < len(t.source) && t.source[p] == '0' && p+1 < len(t.source) {
		switch t.source[p+1] {
		case 'x', 'X':
			kind = token.HexInteger
			p += 2
		case 'o', 'O':
			kind = token.OctalInteger
			p += 2
		case 'b', 'B':
			kind = token.BinaryInteger
			p += 2
		}
	}
	isFloat := false
	for p < len(t.source) {
		b := t.source[p]
		if b < 128 && uniclass.IsTokenTerminator(b) {
			break
		}
		if b == '.' {
			isFloat = true
			p++
			continue
		}
		if b == 'e' || b == 'E' {
			isFloat = true
			p++
			if p < len(t.source) && (t.source[p] == '+' || t.source[p] == '-') {
				p++
			}
			continue
		}
		if b >= 128 {
			break
		}
		p++
	}
	text := string(t.source[start:p])
	t.consume(p - t.pos)
	if isFloat && kind != token.Integer {
		return token.Token{}, t.errAt(line, col, "radix-prefixed numbers cannot have a fractional or exponent part")
	}
	if isFloat {
		kind = token.Float
	}
	return token.Token{Kind: kind, Text: text, Line: line, Column: col, PrecededByWhitespace: ws}, nil
}

func (t *indexTokenizer) scanIdentifier(line, col int, ws bool) (token.Token, error) {
	start := t.pos
	p := start
	for p < len(t.source) {
		end := scan.FindIdentifierEnd(t.source[p:], uniclass.IsTokenTerminator)
		p += end
		if p >= len(t.source) || t.source[p] < 128 {
			break
		}
		r, sz := utf8.DecodeRune(t.source[p:])
		if r == utf8.RuneError && sz <= 1 {
			return token.Token{}, t.errAt(line, col, "invalid UTF-8 encoding")
		}
		if uniclass.IsDisallowed(r) {
			break
		}
		p += sz
	}
	text := string(t.source[start:p])
	t.consume(p - t.pos)
	if text == "" {
		return token.Token{}, t.errAt(line, col, "unexpected character")
	}
	if uniclass.IsBareKeyword(text) {
		return token.Token{Kind: token.Invalid, Text: text, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	}
	return token.Token{Kind: token.Identifier, Text: text, Line: line, Column: col, PrecededByWhitespace: ws}, nil
}
