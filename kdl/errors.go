package kdl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/kdl-lang/kdl/internal/build"
	"github.com/kdl-lang/kdl/internal/strnum"
	"github.com/kdl-lang/kdl/internal/structscan"
	"github.com/kdl-lang/kdl/internal/token"
)

// ErrorKind classifies a failure by its abstract taxonomy.
type ErrorKind uint8

const (
	// LexicalError covers malformed UTF-8, disallowed codepoints, invalid
	// escapes/numeric forms, unterminated strings/comments, and mismatched
	// raw-string hash counts.
	LexicalError ErrorKind = iota
	// GrammarError covers unexpected tokens, missing required whitespace,
	// malformed property keys, and children-block placement violations.
	GrammarError
	// StringSemanticsError covers multiline-string dedent/structure
	// violations.
	StringSemanticsError
	// ResourceError covers nesting-too-deep, stream-too-long, and I/O
	// failures from the underlying reader.
	ResourceError
)

func (k ErrorKind) String() string {
	switch k {
	case LexicalError:
		return "lexical error"
	case GrammarError:
		return "grammar error"
	case StringSemanticsError:
		return "string semantics error"
	case ResourceError:
		return "resource error"
	default:
		return "error"
	}
}

// Error is the single exported error type for every failure this package
// returns. Line/Column are 1-based and zero when not applicable (e.g. a
// bare I/O failure). Suggestion is populated only for identifier- or
// keyword-shaped failures, via a fuzzy "did you mean" match against the
// valid candidate set (github.com/lithammer/fuzzysearch).
type Error struct {
	Kind       ErrorKind
	Message    string
	Line       int
	Column     int
	Suggestion string
}

func (e *Error) Error() string {
	if e.Line == 0 && e.Column == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	msg := fmt.Sprintf("%s at %d:%d: %s", e.Kind, e.Line, e.Column, e.Message)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean '%s'?)", e.Suggestion)
	}
	return msg
}

// Is makes errors.Is(err, &kdl.Error{Kind: kdl.LexicalError}) etc. work
// by comparing Kind,
// so callers can branch on the taxonomy without a type switch.
func (e *Error) Is(target error) bool {
	var want *Error
	if errors.As(target, &want) {
		return e.Kind == want.Kind
	}
	return false
}

var keywordCandidates = []string{"true", "false", "null", "inf", "-inf", "nan"}

// wrapParseError classifies an internal error from the tokenizer,
// structural scanner, or grammar builder into the exported taxonomy.
func wrapParseError(err error) error {
	if err == nil {
		return nil
	}
	var kdlErr *Error
	if errors.As(err, &kdlErr) {
		return err
	}

	var lex *token.LexError
	if errors.As(err, &lex) {
		return &Error{
			Kind:       LexicalError,
			Message:    lex.Message,
			Line:       lex.Line,
			Column:     lex.Column,
			Suggestion: keywordSuggestion(lex.Message),
		}
	}

	var grammar *build.GrammarError
	if errors.As(err, &grammar) {
		return &Error{Kind: GrammarError, Message: grammar.Message, Line: grammar.Line, Column: grammar.Column}
	}

	var depth *build.DepthError
	if errors.As(err, &depth) {
		return &Error{
			Kind:    ResourceError,
			Message: fmt.Sprintf("max depth %d exceeded", depth.MaxDepth),
			Line:    depth.Line,
			Column:  depth.Column,
		}
	}

	var strSem *strnum.StringSemanticsError
	if errors.As(err, &strSem) {
		return &Error{Kind: StringSemanticsError, Message: strSem.Message}
	}

	var esc *strnum.EscapeError
	if errors.As(err, &esc) {
		return &Error{Kind: LexicalError, Message: esc.Message}
	}

	var num *strnum.NumberError
	if errors.As(err, &num) {
		return &Error{Kind: LexicalError, Message: num.Message}
	}

	var tooLong *structscan.ErrStreamTooLong
	if errors.As(err, &tooLong) {
		return &Error{Kind: ResourceError, Message: err.Error()}
	}

	var unterminated *structscan.ErrUnterminated
	if errors.As(err, &unterminated) {
		return &Error{Kind: LexicalError, Message: err.Error()}
	}

	// Anything else (bare I/O failure from the caller's reader) is a
	// resource error.
	return &Error{Kind: ResourceError, Message: err.Error()}
}

// keywordSuggestion extracts the malformed word from a "#" keyword lex
// error message (see internal/token's "unknown '#' keyword: #%s") and
// fuzzy-matches it against the six valid keywords in keywordCandidates.
func keywordSuggestion(message string) string {
	const marker = "unknown '#' keyword: #"
	idx := strings.Index(message, marker)
	if idx < 0 {
		return ""
	}
	return nearestCandidate(message[idx+len(marker):], keywordCandidates)
}

// nearestCandidate returns the candidate with the smallest fuzzy-match
// distance to word, or "" if none of them fuzzy-match at all.
func nearestCandidate(word string, candidates []string) string {
	best := ""
	bestDistance := -1
	for _, c := range candidates {
		d := fuzzy.RankMatch(word, c)
		if d < 0 {
			continue
		}
		if bestDistance < 0 || d < bestDistance {
			best, bestDistance = c, d
		}
	}
	return best
}
