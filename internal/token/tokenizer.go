package token

import (
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/kdl-lang/kdl/internal/uniclass"
)

// DefaultBufferSize is the tokenizer's default lookahead buffer: 1 MiB.
const DefaultBufferSize = 1 << 20

// LexError reports a lexical failure at a 1-based line/column.
type LexError struct {
	Line, Column int
	Message      string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// Tokenizer is a buffered, single-pass, refill-on-demand lexer over an
// io.Reader. It is single-owner: not safe for concurrent use.
type Tokenizer struct {
	r      io.Reader
	buf    []byte
	start  int
	end    int
	eof    bool
	line   int
	column int

	bomChecked bool
	scratch    []byte
	logger     *slog.Logger
}

// New constructs a Tokenizer reading from r with the given buffer capacity
// (DefaultBufferSize if <= 0). A nil logger defaults to a discarding one,
// following a "logger field, never required" convention.
func New(r io.Reader, bufferSize int, logger *slog.Logger) *Tokenizer {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Tokenizer{r: r, buf: make([]byte, 0, bufferSize), line: 1, column: 1, logger: logger}
}

func (t *Tokenizer) available() int { return t.end - t.start }

// ensure tries to make at least n bytes available starting at t.start,
// looping reads (a single Read call may legitimately be short) and
// compacting/growing the buffer as needed. It returns the number of bytes
// actually available, which may be less than n at EOF.
func (t *Tokenizer) ensure(n int) int {
	if cap(t.buf) < n {
		grown := make([]byte, t.end-t.start, n*2)
		copy(grown, t.buf[t.start:t.end])
		t.buf = grown
		t.end -= t.start
		t.start = 0
	}
	for t.available() < n && !t.eof {
		if t.start > 0 {
			copy(t.buf[:t.end-t.start], t.buf[t.start:t.end])
			t.end -= t.start
			t.start = 0
		}
		if t.end == cap(t.buf) {
			grown := make([]byte, t.end, cap(t.buf)*2)
			copy(grown, t.buf[:t.end])
			t.buf = grown
		}
		t.buf = t.buf[:cap(t.buf)]
		nr, err := t.r.Read(t.buf[t.end:])
		for nr == 0 && err == nil {
			nr, err = t.r.Read(t.buf[t.end:])
		}
		t.end += nr
		t.buf = t.buf[:t.end]
		if err != nil {
			t.eof = true
		}
	}
	if t.available() < n {
		return t.available()
	}
	return n
}

func (t *Tokenizer) byteAt(offset int) (byte, bool) {
	if t.ensure(offset+1) <= offset {
		return 0, false
	}
	return t.buf[t.start+offset], true
}

// peekRune decodes the rune starting at offset without consuming it. ok is
// false only when no bytes are available there (EOF). A malformed UTF-8
// sequence is reported as an error rather than silently decoded as
// utf8.RuneError, so callers raise a LexError instead of admitting an
// invalid byte into scratch as a substitution character.
func (t *Tokenizer) peekRune(offset int) (rune, int, bool, error) {
	t.ensure(offset + utf8.UTFMax)
	avail := t.available() - offset
	if avail <= 0 {
		return 0, 0, false, nil
	}
	end := offset + avail
	r, sz := utf8.DecodeRune(t.buf[t.start+offset : t.start+end])
	if sz == 0 {
		return 0, 0, false, nil
	}
	if r == utf8.RuneError && sz <= 1 {
		return 0, 0, false, t.errf("invalid UTF-8 encoding")
	}
	return r, sz, true, nil
}

// consume advances the read cursor by n bytes (already materialized into
// the current token via scratch, if needed), updating line/column.
func (t *Tokenizer) consume(n int) {
	i := 0
	for i < n {
		b := t.buf[t.start+i]
		if b < 0x80 {
			if b == '\n' {
				t.line++
				t.column = 1
			} else {
				t.column++
			}
			i++
			continue
		}
		_, sz := utf8.DecodeRune(t.buf[t.start+i : t.start+n])
		if sz <= 0 {
			sz = 1
		}
		t.column++
		i += sz
	}
	t.start += n
}

func (t *Tokenizer) errf(format string, args ...any) error {
	return &LexError{Line: t.line, Column: t.column, Message: fmt.Sprintf(format, args...)}
}

func isASCIIDigit(b byte) bool { return b >= '0' && b <= '9' }

// Next returns the next token, or an error classified as a LexError.
func (t *Tokenizer) Next() (Token, error) {
	if !t.bomChecked {
		t.bomChecked = true
		r, sz, ok, err := t.peekRune(0)
		if err != nil {
			return Token{}, err
		}
		if ok && r == 0xFEFF {
			t.consume(sz)
		}
	}

	ws, err := t.skipIntertoken()
	if err != nil {
		return Token{}, err
	}
	line, col := t.line, t.column

	if t.ensure(1) == 0 {
		return Token{Kind: EOF, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	}
	b := t.buf[t.start]

	switch {
	case b == '\n' || b == '\r':
		if err := t.consumeNewline(); err != nil {
			return Token{}, err
		}
		return Token{Kind: Newline, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	case b == '/':
		if nb, ok := t.byteAt(1); ok && nb == '-' {
			t.consume(2)
			return Token{Kind: Slashdash, Line: line, Column: col, PrecededByWhitespace: ws}, nil
		}
		return Token{}, t.errf("unexpected '/'")
	case b == '{':
		t.consume(1)
		return Token{Kind: OpenBrace, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	case b == '}':
		t.consume(1)
		return Token{Kind: CloseBrace, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	case b == '(':
		t.consume(1)
		return Token{Kind: OpenParen, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	case b == ')':
		t.consume(1)
		return Token{Kind: CloseParen, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	case b == ';':
		t.consume(1)
		return Token{Kind: Semicolon, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	case b == '=':
		t.consume(1)
		return Token{Kind: Equals, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	case b == '"':
		return t.scanQuoted(line, col, ws)
	case b == '#':
		return t.scanHashIntroduced(line, col, ws)
	case b == '+' || b == '-':
		if nb, ok := t.byteAt(1); ok && isASCIIDigit(nb) {
			return t.scanNumber(line, col, ws)
		}
		return t.scanIdentifier(line, col, ws)
	case isASCIIDigit(b):
		return t.scanNumber(line, col, ws)
	default:
		return t.scanIdentifier(line, col, ws)
	}
}

func (t *Tokenizer) consumeNewline() error {
	b, _ := t.byteAt(0)
	if b == '\r' {
		if nb, ok := t.byteAt(1); ok && nb == '\n' {
			t.consume(2)
			return nil
		}
		t.consume(1)
		return nil
	}
	if b == '\n' {
		t.consume(1)
		return nil
	}
	_, sz, ok, err := t.peekRune(0)
	if err != nil {
		return err
	}
	if !ok || sz <= 0 {
		sz = 1
	}
	t.consume(sz)
	return nil
}

// skipIntertoken consumes whitespace, line continuations, line comments,
// and nested block comments, reporting whether anything was skipped.
func (t *Tokenizer) skipIntertoken() (bool, error) {
	skipped := false
	for {
		if t.ensure(1) == 0 {
			return skipped, nil
		}
		b := t.buf[t.start]
		if b == ' ' || b == '\t' {
			t.consume(1)
			skipped = true
			continue
		}
		if b >= 0x80 {
			r, sz, ok, err := t.peekRune(0)
			if err == nil && ok && uniclass.IsWhitespace(r) {
				t.consume(sz)
				skipped = true
				continue
			}
		}
		if b == '\\' {
			j := 1
			for {
				nb, ok := t.byteAt(j)
				if ok && (nb == ' ' || nb == '\t') {
					j++
					continue
				}
				break
			}
			nb, ok := t.byteAt(j)
			if ok && (nb == '\n' || nb == '\r') {
				nlLen := 1
				if nb == '\r' {
					if b2, ok2 := t.byteAt(j + 1); ok2 && b2 == '\n' {
						nlLen = 2
					}
				}
				t.consume(j + nlLen)
				skipped = true
				continue
			}
			return skipped, nil
		}
		if b == '/' {
			nb, ok := t.byteAt(1)
			if ok && nb == '/' {
				for {
					cb, ok := t.byteAt(0)
					if !ok || cb == '\n' || cb == '\r' {
						break
					}
					t.consume(1)
				}
				skipped = true
				continue
			}
			if ok && nb == '*' {
				t.consume(2)
				depth := 1
				for depth > 0 {
					cb, ok := t.byteAt(0)
					if !ok {
						return skipped, t.errf("unterminated block comment")
					}
					if cb == '/' {
						if nb2, ok2 := t.byteAt(1); ok2 && nb2 == '*' {
							t.consume(2)
							depth++
							continue
						}
					}
					if cb == '*' {
						if nb2, ok2 := t.byteAt(1); ok2 && nb2 == '/' {
							t.consume(2)
							depth--
							continue
						}
					}
					t.consume(1)
				}
				skipped = true
				continue
			}
			return skipped, nil
		}
		return skipped, nil
	}
}

func (t *Tokenizer) scanQuoted(line, col int, ws bool) (Token, error) {
	if b1, ok1 := t.byteAt(1); ok1 && b1 == '"' {
		if b2, ok2 := t.byteAt(2); ok2 && b2 == '"' {
			return t.scanMultilineString(line, col, ws)
		}
	}
	t.consume(1)
	t.scratch = t.scratch[:0]
	for {
		b, ok := t.byteAt(0)
		if !ok {
			return Token{}, t.errf("unterminated string")
		}
		if b == '"' {
			t.consume(1)
			return Token{Kind: QuotedString, Text: string(t.scratch), Line: line, Column: col, PrecededByWhitespace: ws}, nil
		}
		if b == '\n' || b == '\r' {
			return Token{}, t.errf("unterminated string: bare newline")
		}
		if b == '\\' {
			if err := t.copyEscapeSequence(); err != nil {
				return Token{}, err
			}
			continue
		}
		r, sz, ok, err := t.peekRune(0)
		if err != nil {
			return Token{}, err
		}
		if !ok {
			return Token{}, t.errf("unterminated string")
		}
		t.scratch = utf8.AppendRune(t.scratch, r)
		t.consume(sz)
	}
}

func (t *Tokenizer) scanMultilineString(line, col int, ws bool) (Token, error) {
	t.consume(3)
	t.scratch = t.scratch[:0]
	for {
		b, ok := t.byteAt(0)
		if !ok {
			return Token{}, t.errf("unterminated multiline string")
		}
		if b == '"' {
			if b1, ok1 := t.byteAt(1); ok1 && b1 == '"' {
				if b2, ok2 := t.byteAt(2); ok2 && b2 == '"' {
					t.consume(3)
					return Token{Kind: MultilineString, Text: string(t.scratch), Line: line, Column: col, PrecededByWhitespace: ws}, nil
				}
			}
		}
		if b == '\\' {
			if err := t.copyEscapeSequence(); err != nil {
				return Token{}, err
			}
			continue
		}
		r, sz, ok, err := t.peekRune(0)
		if err != nil {
			return Token{}, err
		}
		if !ok {
			return Token{}, t.errf("unterminated multiline string")
		}
		t.scratch = utf8.AppendRune(t.scratch, r)
		t.consume(sz)
	}
}

// copyEscapeSequence copies one raw `\X` escape (verbatim, undecoded) from
// the input into scratch; strnum decodes escapes later from the token
// text. \u{...} is copied in full so the hex digits survive intact.
func (t *Tokenizer) copyEscapeSequence() error {
	t.scratch = append(t.scratch, '\\')
	t.consume(1)
	nb, ok := t.byteAt(0)
	if !ok {
		return t.errf("unterminated escape sequence")
	}
	if nb != 'u' {
		r, sz, ok, err := t.peekRune(0)
		if err != nil {
			return err
		}
		if !ok {
			return t.errf("unterminated escape sequence")
		}
		t.scratch = utf8.AppendRune(t.scratch, r)
		t.consume(sz)
		return nil
	}
	t.scratch = append(t.scratch, 'u')
	t.consume(1)
	ob, ok := t.byteAt(0)
	if !ok || ob != '{' {
		return t.errf("malformed unicode escape: expected '{'")
	}
	t.scratch = append(t.scratch, '{')
	t.consume(1)
	for {
		cb, ok := t.byteAt(0)
		if !ok {
			return t.errf("unterminated unicode escape")
		}
		t.scratch = append(t.scratch, cb)
		t.consume(1)
		if cb == '}' {
			return nil
		}
	}
}

func (t *Tokenizer) scanHashIntroduced(line, col int, ws bool) (Token, error) {
	hashCount := 0
	for {
		b, ok := t.byteAt(hashCount)
		if ok && b == '#' {
			hashCount++
			continue
		}
		break
	}
	next, ok := t.byteAt(hashCount)
	if ok && next == '"' {
		return t.scanRawString(line, col, ws, hashCount)
	}
	if hashCount != 1 {
		return Token{}, t.errf("malformed raw string or keyword introducer")
	}
	return t.scanKeyword(line, col, ws)
}

func (t *Tokenizer) scanKeyword(line, col int, ws bool) (Token, error) {
	t.consume(1)
	t.scratch = t.scratch[:0]
	for {
		b, ok := t.byteAt(0)
		if !ok {
			break
		}
		if b < 128 {
			if uniclass.IsTokenTerminator(b) {
				break
			}
			t.scratch = append(t.scratch, b)
			t.consume(1)
			continue
		}
		r, sz, ok, err := t.peekRune(0)
		if err != nil {
			return Token{}, err
		}
		if !ok || uniclass.IsDisallowed(r) {
			break
		}
		t.scratch = utf8.AppendRune(t.scratch, r)
		t.consume(sz)
	}
	word := string(t.scratch)
	switch word {
	case "true":
		return Token{Kind: KeywordTrue, Text: word, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	case "false":
		return Token{Kind: KeywordFalse, Text: word, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	case "null":
		return Token{Kind: KeywordNull, Text: word, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	case "inf":
		return Token{Kind: KeywordInf, Text: word, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	case "-inf":
		return Token{Kind: KeywordNegInf, Text: word, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	case "nan":
		return Token{Kind: KeywordNaN, Text: word, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	default:
		return Token{}, t.errf("unknown '#' keyword: #%s", word)
	}
}

func (t *Tokenizer) scanRawString(line, col int, ws bool, hashCount int) (Token, error) {
	t.consume(hashCount)
	b1, ok1 := t.byteAt(1)
	b2, ok2 := t.byteAt(2)
	multiline := ok1 && b1 == '"' && ok2 && b2 == '"'
	closeLen := 1
	if multiline {
		closeLen = 3
		t.consume(3)
	} else {
		t.consume(1)
	}
	t.scratch = t.scratch[:0]
	for {
		matched := true
		for i := 0; i < closeLen; i++ {
			b, ok := t.byteAt(i)
			if !ok || b != '"' {
				matched = false
				break
			}
		}
		if matched {
			allHash := true
			for i := 0; i < hashCount; i++ {
				b, ok := t.byteAt(closeLen + i)
				if !ok || b != '#' {
					allHash = false
					break
				}
			}
			if allHash {
				t.consume(closeLen + hashCount)
				kind := RawString
				if multiline {
					kind = RawMultilineString
				}
				return Token{Kind: kind, Text: string(t.scratch), HashCount: hashCount, Line: line, Column: col, PrecededByWhitespace: ws}, nil
			}
		}
		b, ok := t.byteAt(0)
		if !ok {
			return Token{}, t.errf("unterminated raw string")
		}
		if !multiline && (b == '\n' || b == '\r') {
			return Token{}, t.errf("unterminated raw string: bare newline")
		}
		r, sz, ok, err := t.peekRune(0)
		if err != nil {
			return Token{}, err
		}
		if !ok {
			sz = 1
		}
		t.scratch = utf8.AppendRune(t.scratch, r)
		t.consume(sz)
	}
}

func (t *Tokenizer) scanNumber(line, col int, ws bool) (Token, error) {
	t.scratch = t.scratch[:0]
	if b, ok := t.byteAt(0); ok && (b == '+' || b == '-') {
		t.scratch = append(t.scratch, b)
		t.consume(1)
	}
	kind := Integer
	if b0, ok0 := t.byteAt(0); ok0 && b0 == '0' {
		if b1, ok1 := t.byteAt(1); ok1 {
			switch b1 {
			case 'x', 'X':
				kind = HexInteger
				t.scratch = append(t.scratch, b0, b1)
				t.consume(2)
			case 'o', 'O':
				kind = OctalInteger
				t.scratch = append(t.scratch, b0, b1)
				t.consume(2)
			case 'b', 'B':
				kind = BinaryInteger
				t.scratch = append(t.scratch, b0, b1)
				t.consume(2)
			}
		}
	}
	isFloat := false
	for {
		b, ok := t.byteAt(0)
		if !ok {
			break
		}
		if b < 128 && uniclass.IsTokenTerminator(b) {
			break
		}
		if b == '.' {
			isFloat = true
			t.scratch = append(t.scratch, b)
			t.consume(1)
			continue
		}
		if b == 'e' || b == 'E' {
			isFloat = true
			t.scratch = append(t.scratch, b)
			t.consume(1)
			if sb, ok := t.byteAt(0); ok && (sb == '+' || sb == '-') {
				t.scratch = append(t.scratch, sb)
				t.consume(1)
			}
			continue
		}
		if b >= 128 {
			break
		}
		t.scratch = append(t.scratch, b)
		t.consume(1)
	}
	if isFloat && kind != Integer {
		return Token{}, t.errf("radix-prefixed numbers cannot have a fractional or exponent part")
	}
	if isFloat {
		kind = Float
	}
	return Token{Kind: kind, Text: string(t.scratch), Line: line, Column: col, PrecededByWhitespace: ws}, nil
}

func (t *Tokenizer) scanIdentifier(line, col int, ws bool) (Token, error) {
	t.scratch = t.scratch[:0]
	for {
		b, ok := t.byteAt(0)
		if !ok {
			break
		}
		if b < 128 {
			if uniclass.IsTokenTerminator(b) {
				break
			}
			t.scratch = append(t.scratch, b)
			t.consume(1)
			continue
		}
		r, sz, ok, err := t.peekRune(0)
		if err != nil {
			return Token{}, err
		}
		if !ok || uniclass.IsDisallowed(r) {
			break
		}
		t.scratch = utf8.AppendRune(t.scratch, r)
		t.consume(sz)
	}
	text := string(t.scratch)
	if text == "" {
		return Token{}, t.errf("unexpected character")
	}
	if uniclass.IsBareKeyword(text) {
		return Token{Kind: Invalid, Text: text, Line: line, Column: col, PrecededByWhitespace: ws}, nil
	}
	return Token{Kind: Identifier, Text: text, Line: line, Column: col, PrecededByWhitespace: ws}, nil
}
