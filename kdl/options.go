package kdl

// Strategy selects which of the parsing paths a parse call binds to.
// Strategy is a tuning lever, not a semantic switch: every strategy
// produces the same document for the same input.
type Strategy uint8

const (
	// StrategyStreaming drives the token-driven builder directly off a
	// buffered single-pass tokenizer. The default: it never needs the
	// whole source resident in memory.
	StrategyStreaming Strategy = iota
	// StrategyStructuralIndex runs the structural scanner in its
	// incremental, chunk-fed form ahead of the index-driven builder.
	StrategyStructuralIndex
	// StrategyPreprocessed runs the structural scanner in a single batched
	// pass over the fully buffered source before the index-driven builder
	// runs, trading streaming for a single upfront structural pass.
	StrategyPreprocessed
)

// Config holds parse-time limits and strategy selection. Its fields are
// unexported, following a functional-options convention (runtime/parser/options.go's
// ParserConfig): construct via ParseOption values, never a literal.
type Config struct {
	maxDepth        uint16
	bufferSize      int
	strategy        Strategy
	maxDocumentSize int
}

// ParseOption configures a parse call.
type ParseOption func(*Config)

func defaultConfig() Config {
	return Config{
		maxDepth:        256,
		bufferSize:      1 << 20,
		strategy:        StrategyStreaming,
		maxDocumentSize: 256 << 20,
	}
}

// WithMaxDepth overrides the default children-block nesting limit (256).
func WithMaxDepth(depth uint16) ParseOption {
	return func(c *Config) { c.maxDepth = depth }
}

// WithBufferSize overrides the streaming tokenizer's buffer capacity
// (default 1 MiB); it must be at least as large as the longest token the
// caller expects to tolerate in one pass.
func WithBufferSize(bytes int) ParseOption {
	return func(c *Config) { c.bufferSize = bytes }
}

// WithStrategy selects the parsing strategy (default StrategyStreaming).
func WithStrategy(s Strategy) ParseOption {
	return func(c *Config) { c.strategy = s }
}

// WithMaxDocumentSize overrides the document size limit (default 256 MiB)
// past which a StrategyStructuralIndex or StrategyPreprocessed parse fails
// with a ResourceError. StrategyStreaming does not check this limit.
func WithMaxDocumentSize(bytes int) ParseOption {
	return func(c *Config) { c.maxDocumentSize = bytes }
}

// SerializeConfig holds canonical-serialization options.
type SerializeConfig struct {
	indent string
}

// SerializeOption configures a Serialize/SerializeToBytes call.
type SerializeOption func(*SerializeConfig)

func defaultSerializeConfig() SerializeConfig {
	return SerializeConfig{indent: "    "}
}

// WithIndent overrides the default four-space indent string.
func WithIndent(indent string) SerializeOption {
	return func(c *SerializeConfig) { c.indent = indent }
}
