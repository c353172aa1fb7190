package kdl

import (
	"bytes"
	"io"
	"log/slog"

	"github.com/kdl-lang/kdl/document"
	"github.com/kdl-lang/kdl/event"
	"github.com/kdl-lang/kdl/internal/build"
	"github.com/kdl-lang/kdl/internal/structscan"
	"github.com/kdl-lang/kdl/internal/token"
)

// defaultLogger is a no-op slog.Logger, the same "discard by default,
// caller opts in" posture runtime/lexer/lexer.go takes.
var defaultLogger = slog.New(slog.DiscardHandler)

func buildConfig(cfg Config) build.Config {
	return build.Config{MaxDepth: cfg.maxDepth}
}

// Parse parses source in memory and returns a Document.
func Parse(source []byte, opts ...ParseOption) (*document.Document, error) {
	sink := build.NewDocumentSink()
	if err := ParseWithSink(source, sink, opts...); err != nil {
		return nil, err
	}
	return sink.Document(), nil
}

// ParseReader parses from r, which may be read in a single streamed
// pass (StrategyStreaming) or buffered fully first (the other two
// strategies, which need random access into the structural index).
func ParseReader(r io.Reader, opts ...ParseOption) (*document.Document, error) {
	sink := build.NewDocumentSink()
	if err := ParseReaderWithSink(r, sink, opts...); err != nil {
		return nil, err
	}
	return sink.Document(), nil
}

// ParseWithSink parses source, invoking sink once per event in document
// order instead of materializing a Document (the push form of §6).
func ParseWithSink(source []byte, sink event.Sink, opts ...ParseOption) error {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	bcfg := buildConfig(cfg)

	switch cfg.strategy {
	case StrategyStreaming:
		tz := token.New(bytes.NewReader(source), cfg.bufferSize, defaultLogger)
		return wrapParseError(build.FromTokens(tz, bcfg, sink))
	case StrategyPreprocessed:
		idx, err := structscan.ScanAll(source, cfg.maxDocumentSize)
		if err != nil {
			return wrapParseError(err)
		}
		return wrapParseError(build.FromIndex(source, idx, bcfg, sink))
	default: // StrategyStructuralIndex
		idx, err := structscan.NewChunkedSource(bytes.NewReader(source), cfg.maxDocumentSize, 0).ScanAll()
		if err != nil {
			return wrapParseError(err)
		}
		return wrapParseError(build.FromIndex(source, idx, bcfg, sink))
	}
}

// ParseReaderWithSink is the push form of ParseReader.
func ParseReaderWithSink(r io.Reader, sink event.Sink, opts ...ParseOption) error {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	bcfg := buildConfig(cfg)

	if cfg.strategy == StrategyStreaming {
		tz := token.New(r, cfg.bufferSize, defaultLogger)
		return wrapParseError(build.FromTokens(tz, bcfg, sink))
	}

	// The index-driven path needs random access to the whole source, so
	// structural_index/preprocessed over a reader buffer it fully first.
	source, err := readAllLimited(r, cfg.maxDocumentSize)
	if err != nil {
		return wrapParseError(err)
	}
	if acceptor, ok := sink.(event.ChunkedSourceAcceptor); ok {
		acceptor.AcceptChunkedSource(source)
	}
	return ParseWithSink(source, sink, opts...)
}

func readAllLimited(r io.Reader, limit int) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	lr := io.LimitReader(r, int64(limit)+1)
	buf, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if len(buf) > limit {
		return nil, &structScanTooLongError{limit: limit}
	}
	return buf, nil
}

// structScanTooLongError mirrors structscan.ErrStreamTooLong's message
// shape for the reader-buffering path, which sits above structscan and
// hits the limit before any scanning begins.
type structScanTooLongError struct{ limit int }

func (e *structScanTooLongError) Error() string {
	return "stream too long: exceeds configured max_document_size"
}
