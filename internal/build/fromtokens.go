package build

import (
	"github.com/kdl-lang/kdl/event"
	"github.com/kdl-lang/kdl/internal/token"
)

// FromTokens drives the grammar over a *token.Tokenizer — the
// token-driven builder path — invoking sink once per event in document
// order.
func FromTokens(tz *token.Tokenizer, cfg Config, sink event.Sink) error {
	return newDriver(tz, sink, cfg).Run()
}
