// Package build implements the grammar-aware document/event builders: the
// token-driven path (C7, fed by internal/token's streaming tokenizer) and
// the index-driven path (C8, fed by internal/structscan's structural
// index). Both funnel through the same grammar state machine in driver.go
// so that the two paths produce identical event streams from identical
// input.
package build

import "fmt"

// Config holds the grammar-level parse limits a caller may tune.
type Config struct {
	MaxDepth uint16
}

// DefaultConfig holds the default parse options.
func DefaultConfig() Config { return Config{MaxDepth: 256} }

// GrammarError reports a structural parse failure at a source position.
type GrammarError struct {
	Line, Column int
	Message      string
}

func (e *GrammarError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// DepthError reports that a children block nested past cfg.MaxDepth. It is
// distinct from GrammarError because the caller-facing taxonomy (see the
// root kdl package) classifies excessive nesting as a resource limit, not
// a malformed document.
type DepthError struct {
	Line, Column int
	MaxDepth     uint16
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("%d:%d: max depth %d exceeded", e.Line, e.Column, e.MaxDepth)
}
