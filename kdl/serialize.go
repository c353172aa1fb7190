package kdl

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kdl-lang/kdl/document"
	"github.com/kdl-lang/kdl/internal/uniclass"
)

// Serialize writes doc to w in canonical KDL 2.0 form: one node per
// line, arguments in original order, properties rightmost-wins, no
// comments, the given
// indent (default four spaces) per nesting level.
func Serialize(doc *document.Document, w io.Writer, opts ...SerializeOption) error {
	cfg := defaultSerializeConfig()
	for _, o := range opts {
		o(&cfg)
	}
	s := &serializer{doc: doc, w: w, indent: cfg.indent}
	for _, root := range doc.Roots {
		if err := s.writeNode(root, 0); err != nil {
			return err
		}
	}
	return nil
}

// SerializeToBytes is Serialize into a freshly allocated buffer.
func SerializeToBytes(doc *document.Document, opts ...SerializeOption) ([]byte, error) {
	var buf bytes.Buffer
	if err := Serialize(doc, &buf, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type serializer struct {
	doc    *document.Document
	w      io.Writer
	indent string
}

func (s *serializer) writeNode(h document.NodeHandle, depth int) error {
	var line strings.Builder
	line.WriteString(strings.Repeat(s.indent, depth))

	if ann := s.doc.NodeTypeAnnotation(h); ann != "" {
		fmt.Fprintf(&line, "(%s)", ann)
	}
	line.WriteString(renderIdentifier(s.doc.NodeName(h)))

	for _, arg := range s.doc.ArgumentsOf(h) {
		line.WriteByte(' ')
		if ann := s.doc.Strings.Bytes(arg.TypeAnnotation, s.doc.Source); len(ann) > 0 {
			fmt.Fprintf(&line, "(%s)", ann)
		}
		line.WriteString(s.renderValue(arg.Value))
	}

	for _, prop := range s.doc.EffectivePropertiesOf(h) {
		line.WriteByte(' ')
		line.WriteString(renderIdentifier(string(s.doc.Strings.Bytes(prop.Name, s.doc.Source))))
		line.WriteByte('=')
		if ann := s.doc.Strings.Bytes(prop.TypeAnnotation, s.doc.Source); len(ann) > 0 {
			fmt.Fprintf(&line, "(%s)", ann)
		}
		line.WriteString(s.renderValue(prop.Value))
	}

	children := s.doc.Children(h)
	if len(children) > 0 {
		line.WriteString(" {\n")
	} else {
		line.WriteByte('\n')
	}
	if _, err := io.WriteString(s.w, line.String()); err != nil {
		return err
	}
	if len(children) == 0 {
		return nil
	}
	for _, c := range children {
		if err := s.writeNode(c, depth+1); err != nil {
			return err
		}
	}
	_, err := io.WriteString(s.w, strings.Repeat(s.indent, depth)+"}\n")
	return err
}

func (s *serializer) renderValue(v document.Value) string {
	switch v.Kind {
	case document.KindString:
		return renderIdentifier(string(s.doc.Strings.Bytes(v.Str, s.doc.Source)))
	case document.KindInteger:
		return v.Integer.String()
	case document.KindFloat:
		if orig := s.doc.Strings.Bytes(v.FloatOriginal, s.doc.Source); len(orig) > 0 {
			return string(orig)
		}
		return renderMinimalFloat(v.Float)
	case document.KindBoolean:
		if v.Bool {
			return "#true"
		}
		return "#false"
	case document.KindNull:
		return "#null"
	case document.KindPositiveInfinity:
		return "#inf"
	case document.KindNegativeInfinity:
		return "#-inf"
	case document.KindNaN:
		return "#nan"
	default:
		return ""
	}
}

// renderMinimalFloat is used only when a Value carries no original text
// (constructed programmatically rather than parsed): a minimal decimal
// form with at least one fractional digit.
func renderMinimalFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "#inf"
	}
	if math.IsInf(f, -1) {
		return "#-inf"
	}
	if math.IsNaN(f) {
		return "#nan"
	}
	out := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(out, ".") {
		out += ".0"
	}
	return out
}

// renderIdentifier renders name bare when it is a valid KDL identifier
// and not a bare-forbidden keyword; otherwise quoted.
func renderIdentifier(name string) string {
	if isValidBareIdentifier(name) {
		return name
	}
	return renderString(name)
}

func isValidBareIdentifier(name string) bool {
	if name == "" || uniclass.IsBareKeyword(name) {
		return false
	}
	first, size := utf8.DecodeRuneInString(name)
	if first == utf8.RuneError && size <= 1 {
		return false
	}
	if !uniclass.IsIdentifierStart(first) {
		return false
	}
	if (first == '+' || first == '-') && len(name) > size {
		next, _ := utf8.DecodeRuneInString(name[size:])
		if uniclass.IsDigit(next) {
			return false
		}
	}
	for i := size; i < len(name); {
		r, sz := utf8.DecodeRuneInString(name[i:])
		if r == utf8.RuneError && sz <= 1 {
			return false
		}
		if !uniclass.IsIdentifierContinuation(r) {
			return false
		}
		i += sz
	}
	return true
}

// renderString quotes s with the minimal escape set canonical form
// requires: \n \r \t \\ \" always, \u{...} only for disallowed
// codepoints.
func renderString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			if uniclass.IsDisallowed(r) {
				fmt.Fprintf(&b, `\u{%x}`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
