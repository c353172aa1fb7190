package build

import (
	"fmt"

	"github.com/kdl-lang/kdl/event"
	"github.com/kdl-lang/kdl/internal/token"
)

// lexer is the minimal contract driver needs: anything that can hand back
// a typed token stream. *token.Tokenizer satisfies it directly; the
// index-driven path satisfies it with indexTokenizer.
type lexer interface {
	Next() (token.Token, error)
}

// driver is the shared grammar state machine (node/entry/children
// parsing, slashdash elision, whitespace and depth enforcement) behind
// both builder paths.
type driver struct {
	lex    lexer
	sink   event.Sink
	cfg    Config
	peeked *token.Token
}

func newDriver(lex lexer, sink event.Sink, cfg Config) *driver {
	return &driver{lex: lex, sink: sink, cfg: cfg}
}

// Run drives the document-level node sequence to end of input.
func (d *driver) Run() error {
	return d.parseNodeSequence(0, true)
}

func (d *driver) next() (token.Token, error) {
	if d.peeked != nil {
		tk := *d.peeked
		d.peeked = nil
		return tk, nil
	}
	return d.lex.Next()
}

func (d *driver) peek() (token.Token, error) {
	if d.peeked == nil {
		tk, err := d.lex.Next()
		if err != nil {
			return token.Token{}, err
		}
		d.peeked = &tk
	}
	return *d.peeked, nil
}

func (d *driver) errf(tk token.Token, format string, args ...any) error {
	return &GrammarError{Line: tk.Line, Column: tk.Column, Message: fmt.Sprintf(format, args...)}
}

// parseNodeSequence drives a run of sibling nodes: the document top level,
// or the body of a children block. It returns with the terminating
// CloseBrace or EOF token unconsumed.
func (d *driver) parseNodeSequence(depth int, emit bool) error {
	for {
		if err := d.skipSeparators(); err != nil {
			return err
		}
		tk, err := d.peek()
		if err != nil {
			return err
		}
		switch tk.Kind {
		case token.EOF, token.CloseBrace:
			return nil
		case token.Slashdash:
			d.next()
			nt, err := d.peek()
			if err != nil {
				return err
			}
			if depth > 0 && nt.Kind == token.OpenBrace {
				d.next()
				if err := d.parseChildrenBlock(depth+1, false); err != nil {
					return err
				}
				continue
			}
			if err := d.parseNode(depth, false); err != nil {
				return err
			}
		default:
			if err := d.parseNode(depth, emit); err != nil {
				return err
			}
		}
	}
}

func (d *driver) skipSeparators() error {
	for {
		tk, err := d.peek()
		if err != nil {
			return err
		}
		if tk.Kind == token.Newline || tk.Kind == token.Semicolon {
			d.next()
			continue
		}
		return nil
	}
}

// maybeTypeAnnotation consumes an optional `(type)` annotation preceding a
// node name, entry value, or property value.
func (d *driver) maybeTypeAnnotation() (string, bool, error) {
	tk, err := d.peek()
	if err != nil {
		return "", false, err
	}
	if tk.Kind != token.OpenParen {
		return "", false, nil
	}
	d.next()
	nameTok, err := d.next()
	if err != nil {
		return "", false, err
	}
	name, err := d.tokenToStringValue(nameTok)
	if err != nil {
		return "", false, d.errf(nameTok, "malformed type annotation: %v", err)
	}
	closeTok, err := d.next()
	if err != nil {
		return "", false, err
	}
	if closeTok.Kind != token.CloseParen {
		return "", false, d.errf(closeTok, "expected ')' closing type annotation")
	}
	return name, true, nil
}

func (d *driver) parseNode(depth int, emit bool) error {
	if depth > int(d.cfg.MaxDepth) {
		tk, _ := d.peek()
		return &DepthError{Line: tk.Line, Column: tk.Column, MaxDepth: d.cfg.MaxDepth}
	}
	typeAnn, hasAnn, err := d.maybeTypeAnnotation()
	if err != nil {
		return err
	}
	nameTok, err := d.next()
	if err != nil {
		return err
	}
	name, err := d.tokenToStringValue(nameTok)
	if err != nil {
		return d.errf(nameTok, "expected node name: %v", err)
	}

	if emit {
		if err := d.sink.OnEvent(event.Event{Kind: event.StartNode, Name: name, TypeAnnotation: typeAnn, HasAnnotation: hasAnn}); err != nil {
			return err
		}
	}

	// sawAnyChildren gates the entries-after-children-block rule: once any
	// children block has appeared, slashdashed or not, no further entries
	// (real or slashdashed) may follow. sawRealChildren gates only the
	// at-most-one cap on the single kept (non-slashdashed) children block;
	// slashdashed children blocks don't count against it, so multiple may
	// appear before and/or after the one real block.
	sawAnyChildren := false
	sawRealChildren := false
	for {
		tk, err := d.peek()
		if err != nil {
			return err
		}
		switch tk.Kind {
		case token.Newline, token.Semicolon, token.EOF, token.CloseBrace:
			if emit {
				if err := d.sink.OnEvent(event.Event{Kind: event.EndNode}); err != nil {
					return err
				}
			}
			return nil
		}

		if !tk.PrecededByWhitespace {
			return d.errf(tk, "entry must be preceded by whitespace")
		}

		switch tk.Kind {
		case token.OpenBrace:
			if sawRealChildren {
				return d.errf(tk, "a node may have at most one children block")
			}
			sawRealChildren = true
			sawAnyChildren = true
			d.next()
			if err := d.parseChildrenBlock(depth+1, emit); err != nil {
				return err
			}
		case token.Slashdash:
			d.next()
			nt, err := d.peek()
			if err != nil {
				return err
			}
			if nt.Kind == token.OpenBrace {
				sawAnyChildren = true
				d.next()
				if err := d.parseChildrenBlock(depth+1, false); err != nil {
					return err
				}
				continue
			}
			if sawAnyChildren {
				return d.errf(nt, "no entries permitted after a children block")
			}
			if err := d.parseEntry(false); err != nil {
				return err
			}
		default:
			if sawAnyChildren {
				return d.errf(tk, "no entries permitted after a children block")
			}
			if err := d.parseEntry(emit); err != nil {
				return err
			}
		}
	}
}

func (d *driver) parseChildrenBlock(depth int, emit bool) error {
	if err := d.parseNodeSequence(depth, emit); err != nil {
		return err
	}
	closeTok, err := d.next()
	if err != nil {
		return err
	}
	if closeTok.Kind != token.CloseBrace {
		return d.errf(closeTok, "expected '}' closing children block")
	}
	return nil
}

func (d *driver) parseEntry(emit bool) error {
	typeAnn, hasAnn, err := d.maybeTypeAnnotation()
	if err != nil {
		return err
	}
	valTok, err := d.next()
	if err != nil {
		return err
	}

	nt, err := d.peek()
	if err != nil {
		return err
	}
	if nt.Kind == token.Equals {
		if hasAnn {
			return d.errf(nt, "a property name cannot carry a type annotation")
		}
		name, nameErr := d.tokenToStringValue(valTok)
		if nameErr != nil {
			return d.errf(valTok, "property name must be a string or bare identifier: %v", nameErr)
		}
		d.next()
		propTypeAnn, propHasAnn, err := d.maybeTypeAnnotation()
		if err != nil {
			return err
		}
		pvTok, err := d.next()
		if err != nil {
			return err
		}
		val, text, err := d.tokenToValue(pvTok)
		if err != nil {
			return err
		}
		if emit {
			return d.sink.OnEvent(event.Event{Kind: event.Property, PropertyName: name, Value: val, ValueText: text, TypeAnnotation: propTypeAnn, HasAnnotation: propHasAnn})
		}
		return nil
	}

	val, text, err := d.tokenToValue(valTok)
	if err != nil {
		return err
	}
	if emit {
		return d.sink.OnEvent(event.Event{Kind: event.Argument, Value: val, ValueText: text, TypeAnnotation: typeAnn, HasAnnotation: hasAnn})
	}
	return nil
}
