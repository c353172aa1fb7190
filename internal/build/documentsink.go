package build

import (
	"github.com/kdl-lang/kdl/document"
	"github.com/kdl-lang/kdl/event"
)

// DocumentSink accumulates an event stream into a document.Document: the
// "materialize a full tree" consumer of the event vocabulary, exercised
// by both builder paths identically.
type DocumentSink struct {
	doc   *document.Document
	stack []frame
}

type frame struct {
	handle document.NodeHandle
	args   []document.Argument
	props  []document.Property
}

// NewDocumentSink returns a sink that builds into a fresh document.
func NewDocumentSink() *DocumentSink {
	return &DocumentSink{doc: document.New()}
}

// Document returns the built document. Only valid once the driving Run
// call has returned successfully.
func (s *DocumentSink) Document() *document.Document { return s.doc }

func (s *DocumentSink) internAnnotation(ann string, has bool) document.StringRef {
	if !has {
		return document.Empty
	}
	return s.doc.Strings.Intern(ann)
}

func (s *DocumentSink) resolveValue(v document.Value, text string) document.Value {
	switch v.Kind {
	case document.KindString:
		v.Str = s.doc.Strings.Intern(text)
	case document.KindFloat:
		v.FloatOriginal = s.doc.Strings.Intern(text)
	}
	return v
}

func (s *DocumentSink) OnEvent(e event.Event) error {
	switch e.Kind {
	case event.StartNode:
		h := s.doc.NewNode()
		s.doc.Names[h] = s.doc.Strings.Intern(e.Name)
		s.doc.TypeAnnotations[h] = s.internAnnotation(e.TypeAnnotation, e.HasAnnotation)
		s.stack = append(s.stack, frame{handle: h})

	case event.Argument:
		top := len(s.stack) - 1
		s.stack[top].args = append(s.stack[top].args, document.Argument{
			Value:          s.resolveValue(e.Value, e.ValueText),
			TypeAnnotation: s.internAnnotation(e.TypeAnnotation, e.HasAnnotation),
		})

	case event.Property:
		top := len(s.stack) - 1
		s.stack[top].props = append(s.stack[top].props, document.Property{
			Name:           s.doc.Strings.Intern(e.PropertyName),
			Value:          s.resolveValue(e.Value, e.ValueText),
			TypeAnnotation: s.internAnnotation(e.TypeAnnotation, e.HasAnnotation),
		})

	case event.EndNode:
		top := len(s.stack) - 1
		f := s.stack[top]
		s.stack = s.stack[:top]
		s.doc.SetArguments(f.handle, f.args)
		s.doc.SetProperties(f.handle, f.props)
		if len(s.stack) == 0 {
			s.doc.AppendRoot(f.handle)
		} else {
			s.doc.AppendChild(s.stack[len(s.stack)-1].handle, f.handle)
		}
	}
	return nil
}
