// Package structscan implements the structural scanner: a state machine
// that walks source bytes in mask-narrowed spans, producing an ordered
// index of byte offsets the grammar-aware builder cares about, while
// staying correct across arbitrary block and reader chunk boundaries.
package structscan

import "fmt"

type mode uint8

const (
	modeNormal mode = iota
	modeInString
	modeInMultilineString
	modeInRawString
	modeInRawMultilineString
	modeInLineComment
	modeInBlockComment
)

// ScanState is the scanner's persistent state: it survives across 64-byte
// scan blocks and across reader chunks.
type ScanState struct {
	mode              mode
	blockCommentDepth int
	rawHashCount      int
}

// NewScanState returns the initial (document-start) state.
func NewScanState() ScanState { return ScanState{mode: modeNormal} }

// ErrStreamTooLong is returned when a streamed source exceeds the
// caller-provided MaxDocumentSize.
type ErrStreamTooLong struct{ Limit int }

func (e *ErrStreamTooLong) Error() string {
	return fmt.Sprintf("stream too long: exceeds %d bytes", e.Limit)
}

// ErrUnterminated reports that the scanner reached end of input while
// still inside a string, raw string, or block comment.
type ErrUnterminated struct {
	What   string
	Offset int
}

func (e *ErrUnterminated) Error() string {
	return fmt.Sprintf("unterminated %s starting near offset %d", e.What, e.Offset)
}
