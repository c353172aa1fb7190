package build

import (
	"github.com/kdl-lang/kdl/document"
	"github.com/kdl-lang/kdl/internal/strnum"
	"github.com/kdl-lang/kdl/internal/token"
)

// maxDedentTrackedLines bounds the dedent algorithm's line buffer; only a
// single string of more than about a million lines reaches it.
const maxDedentTrackedLines = 1 << 20

func (d *driver) tokenToStringValue(tk token.Token) (string, error) {
	switch tk.Kind {
	case token.Identifier:
		return tk.Text, nil
	case token.QuotedString:
		return strnum.DecodeQuoted(tk.Text)
	case token.RawString:
		return tk.Text, nil
	case token.MultilineString:
		return strnum.DecodeMultiline(tk.Text, true, maxDedentTrackedLines)
	case token.RawMultilineString:
		return strnum.DecodeMultiline(tk.Text, false, maxDedentTrackedLines)
	}
	return "", d.errf(tk, "expected a name, got %s", tk.Kind)
}

func (d *driver) tokenToValue(tk token.Token) (document.Value, string, error) {
	switch tk.Kind {
	case token.Identifier, token.QuotedString, token.RawString, token.MultilineString, token.RawMultilineString:
		s, err := d.tokenToStringValue(tk)
		if err != nil {
			return document.Value{}, "", d.errf(tk, "%v", err)
		}
		return document.NewString(document.Empty), s, nil
	case token.Integer, token.HexInteger, token.OctalInteger, token.BinaryInteger:
		n, err := strnum.ParseInteger(tk.Text)
		if err != nil {
			return document.Value{}, "", d.errf(tk, "%v", err)
		}
		return document.NewInteger(n), tk.Text, nil
	case token.Float:
		f, err := strnum.ParseFloat(tk.Text)
		if err != nil {
			return document.Value{}, "", d.errf(tk, "%v", err)
		}
		return document.NewFloat(f.Value, document.Empty), f.Original, nil
	case token.KeywordTrue:
		return document.NewBool(true), tk.Text, nil
	case token.KeywordFalse:
		return document.NewBool(false), tk.Text, nil
	case token.KeywordNull:
		return document.NewNull(), tk.Text, nil
	case token.KeywordInf:
		return document.NewPositiveInfinity(), tk.Text, nil
	case token.KeywordNegInf:
		return document.NewNegativeInfinity(), tk.Text, nil
	case token.KeywordNaN:
		return document.NewNaN(), tk.Text, nil
	}
	return document.Value{}, "", d.errf(tk, "expected a value, got %s", tk.Kind)
}
