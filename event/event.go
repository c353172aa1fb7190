// Package event implements the KDL parser's event vocabulary: the four
// event kinds every builder emits, and the pull/push shapes callers can
// drive instead of materializing a document.
package event

import "github.com/kdl-lang/kdl/document"

// Kind discriminates an Event.
type Kind uint8

const (
	StartNode Kind = iota
	Argument
	Property
	EndNode
)

func (k Kind) String() string {
	switch k {
	case StartNode:
		return "start_node"
	case Argument:
		return "argument"
	case Property:
		return "property"
	case EndNode:
		return "end_node"
	default:
		return "unknown"
	}
}

// Event is a single parse event. Fields not meaningful for Kind are left
// zero (e.g. Name is empty for Argument/EndNode). String fields are
// transient views into scanner-owned memory: callers that need to retain
// Name/PropertyName/Value past the current event must copy them.
type Event struct {
	Kind           Kind
	Name           string
	PropertyName   string
	Value          document.Value
	ValueText      string // resolved string bytes, when Value.Kind == KindString
	TypeAnnotation string
	HasAnnotation  bool
}

// Iterator is the pull shape: repeated calls to Next return the next event
// until ok is false (end of stream or a terminal error, see Err).
type Iterator interface {
	Next() (Event, bool)
	Err() error
}

// Sink is the push shape: a parser invokes OnEvent synchronously, in
// document order, once per event.
type Sink interface {
	OnEvent(Event) error
}

// ChunkedSourceAcceptor is an optional capability a Sink may implement to
// take ownership of the source buffer that a reader-fed parse with an
// index-driven strategy read in full, enabling zero-copy borrowed string references to survive
// past the parse call.
type ChunkedSourceAcceptor interface {
	AcceptChunkedSource(source []byte)
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(Event) error

func (f SinkFunc) OnEvent(e Event) error { return f(e) }
