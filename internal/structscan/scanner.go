package structscan

import (
	"io"
	"math/bits"

	"github.com/kdl-lang/kdl/internal/scan"
)

// Scanner produces a structural index incrementally. Feed may be called
// any number of times with arbitrarily sized chunks (including a single
// call covering the whole source): the resulting index list is identical
// regardless of chunking, because all state that could be affected by a
// chunk boundary (string/comment/raw-string context) lives in ScanState
// between calls.
type Scanner struct {
	state           ScanState
	buf             []byte
	base            int
	maxDocumentSize int
	totalFed        int
}

// NewScanner returns a Scanner. maxDocumentSize <= 0 disables the limit.
func NewScanner(maxDocumentSize int) *Scanner {
	return &Scanner{state: NewScanState(), maxDocumentSize: maxDocumentSize}
}

// Feed appends chunk (which may be empty, e.g. to flush) and scans as far
// as the available bytes allow. Pass eof=true on the call supplying the
// last bytes of the source so that lookahead-dependent candidates near
// the tail are resolved rather than deferred.
func (s *Scanner) Feed(chunk []byte, eof bool) ([]int, error) {
	if len(chunk) > 0 {
		s.totalFed += len(chunk)
		if s.maxDocumentSize > 0 && s.totalFed > s.maxDocumentSize {
			return nil, &ErrStreamTooLong{Limit: s.maxDocumentSize}
		}
		s.buf = append(s.buf, chunk...)
	}

	var out []int
	pos := 0
	for pos < len(s.buf) {
		consumed, idx, need, err := s.step(s.buf[pos:], eof)
		if err != nil {
			return out, err
		}
		if need || consumed == 0 {
			break
		}
		for _, i := range idx {
			out = append(out, s.base+pos+i)
		}
		pos += consumed
	}
	s.base += pos
	if pos > 0 {
		s.buf = append([]byte(nil), s.buf[pos:]...)
	}
	return out, nil
}

// Finish reports an error if end of input was reached mid-string,
// mid-raw-string, or mid-block-comment.
func (s *Scanner) Finish() error {
	switch s.state.mode {
	case modeInString, modeInMultilineString:
		return &ErrUnterminated{What: "string", Offset: s.base}
	case modeInRawString, modeInRawMultilineString:
		return &ErrUnterminated{What: "raw string", Offset: s.base}
	case modeInBlockComment:
		return &ErrUnterminated{What: "block comment", Offset: s.base}
	}
	return nil
}

// ScanAll indexes a fully buffered source in one call by feeding all of it
// to a Scanner and finishing the scan, so its index list is the one the
// chunk-fed form produces. It is not a separate block-at-a-time pass; it
// runs the same stateful scanner.
func ScanAll(source []byte, maxDocumentSize int) ([]int, error) {
	s := NewScanner(maxDocumentSize)
	idx, err := s.Feed(source, true)
	if err != nil {
		return nil, err
	}
	if err := s.Finish(); err != nil {
		return nil, err
	}
	return idx, nil
}

// ChunkedSource drives a Scanner from an io.Reader, accumulating chunks
// for the streaming Reader-driven scan variant.
type ChunkedSource struct {
	r         io.Reader
	scanner   *Scanner
	chunkSize int
}

// NewChunkedSource wraps r. chunkSize <= 0 defaults to 64 KiB.
func NewChunkedSource(r io.Reader, maxDocumentSize, chunkSize int) *ChunkedSource {
	if chunkSize <= 0 {
		chunkSize = 64 * 1024
	}
	return &ChunkedSource{r: r, scanner: NewScanner(maxDocumentSize), chunkSize: chunkSize}
}

// ScanAll drains the reader to EOF, returning the full structural index.
func (c *ChunkedSource) ScanAll() ([]int, error) {
	var all []int
	buf := make([]byte, c.chunkSize)
	for {
		n, err := c.r.Read(buf)
		if n > 0 {
			idx, ferr := c.scanner.Feed(buf[:n], false)
			if ferr != nil {
				return nil, ferr
			}
			all = append(all, idx...)
		}
		if err == io.EOF {
			idx, ferr := c.scanner.Feed(nil, true)
			if ferr != nil {
				return nil, ferr
			}
			all = append(all, idx...)
			if ferr := c.scanner.Finish(); ferr != nil {
				return nil, ferr
			}
			return all, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// step scans at most one mask-narrowed candidate starting at data[0],
// returning how many bytes of data it resolved, any new structural
// indices (relative to data[0]), whether it needs more lookahead than
// data currently provides (only legal when !eof), or an error.
func (s *Scanner) step(data []byte, eof bool) (int, []int, bool, error) {
	if len(data) == 0 {
		return 0, nil, false, nil
	}
	blockLen := len(data)
	if blockLen > 64 {
		blockLen = 64
	}
	masks := scan.BuildMasks(data[:blockLen])

	switch s.state.mode {
	case modeNormal:
		cand := masks.Quotes | masks.Structural | masks.Hashes | masks.Newlines
		if cand == 0 {
			return blockLen, nil, false, nil
		}
		return s.handleNormal(data, bits.TrailingZeros64(cand), eof)
	case modeInString:
		cand := masks.Quotes | masks.Backslashes
		if cand == 0 {
			return blockLen, nil, false, nil
		}
		return s.handleInString(data, bits.TrailingZeros64(cand), false, eof)
	case modeInMultilineString:
		cand := masks.Quotes | masks.Backslashes
		if cand == 0 {
			return blockLen, nil, false, nil
		}
		return s.handleInString(data, bits.TrailingZeros64(cand), true, eof)
	case modeInRawString, modeInRawMultilineString:
		cand := masks.Quotes
		if cand == 0 {
			return blockLen, nil, false, nil
		}
		return s.handleInRawString(data, bits.TrailingZeros64(cand), eof)
	case modeInLineComment:
		cand := masks.Newlines
		if cand == 0 {
			return blockLen, nil, false, nil
		}
		return s.handleInLineComment(data, bits.TrailingZeros64(cand), eof)
	case modeInBlockComment:
		cand := masks.Structural | masks.Asterisks
		if cand == 0 {
			return blockLen, nil, false, nil
		}
		return s.handleInBlockComment(data, bits.TrailingZeros64(cand), eof)
	}
	return blockLen, nil, false, nil
}
