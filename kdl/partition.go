package kdl

import (
	"github.com/kdl-lang/kdl/document"
	"github.com/kdl-lang/kdl/internal/structscan"
)

// FindNodeBoundaries returns up to targetPartitions-1 byte offsets, each
// the start of a top-level node, suitable as split points for parallel
// parse: a newline or ';' at brace depth 0, outside any string or
// comment. Candidates are read off the structural index directly, since
// structscan never indexes a byte inside string or
// comment content — every candidate it sees is already known-safe.
func FindNodeBoundaries(source []byte, targetPartitions int) ([]int, error) {
	if targetPartitions < 2 {
		return nil, nil
	}
	idx, err := structscan.ScanAll(source, 0)
	if err != nil {
		return nil, wrapParseError(err)
	}

	var candidates []int
	depth := 0
	for _, p := range idx {
		if p < 0 || p >= len(source) {
			continue
		}
		switch source[p] {
		case '{':
			depth++
		case '}':
			depth--
		case '\n', '\r':
			if depth == 0 {
				candidates = append(candidates, p+1)
			}
		case ';':
			if depth == 0 {
				candidates = append(candidates, p+1)
			}
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	want := targetPartitions - 1
	if want >= len(candidates) {
		return candidates, nil
	}
	out := make([]int, 0, want)
	for i := 1; i <= want; i++ {
		pos := i * len(candidates) / (want + 1)
		if pos >= len(candidates) {
			pos = len(candidates) - 1
		}
		out = append(out, candidates[pos])
	}
	return out, nil
}

// Merge coalesces documents produced by independently parsing adjacent
// source partitions into one Document in their original order: handles
// and pool ranges are shifted by the running totals, and
// every string reference is rehomed into the merged pool so the result
// does not retain any of the input documents' source buffers.
func Merge(docs []*document.Document) (*document.Document, error) {
	merged := document.New()
	var nodeOffset document.NodeHandle

	for _, d := range docs {
		argOffset := uint32(len(merged.Arguments))
		propOffset := uint32(len(merged.Properties))

		for h := range d.Names {
			handle := document.NodeHandle(h)
			merged.Names = append(merged.Names, merged.Strings.Rehome(d.Names[handle], d.Strings, d.Source))
			merged.TypeAnnotations = append(merged.TypeAnnotations, merged.Strings.Rehome(d.TypeAnnotations[handle], d.Strings, d.Source))
			merged.Parents = append(merged.Parents, shiftHandle(d.Parents[handle], nodeOffset))
			merged.FirstChild = append(merged.FirstChild, shiftHandle(d.FirstChild[handle], nodeOffset))
			merged.NextSibling = append(merged.NextSibling, shiftHandle(d.NextSibling[handle], nodeOffset))
			merged.Args = append(merged.Args, document.Range{Start: d.Args[handle].Start + argOffset, Count: d.Args[handle].Count})
			merged.Props = append(merged.Props, document.Range{Start: d.Props[handle].Start + propOffset, Count: d.Props[handle].Count})
		}

		for _, a := range d.Arguments {
			merged.Arguments = append(merged.Arguments, document.Argument{
				Value:          rehomeValue(merged.Strings, a.Value, d.Strings, d.Source),
				TypeAnnotation: merged.Strings.Rehome(a.TypeAnnotation, d.Strings, d.Source),
			})
		}
		for _, p := range d.Properties {
			merged.Properties = append(merged.Properties, document.Property{
				Name:           merged.Strings.Rehome(p.Name, d.Strings, d.Source),
				Value:          rehomeValue(merged.Strings, p.Value, d.Strings, d.Source),
				TypeAnnotation: merged.Strings.Rehome(p.TypeAnnotation, d.Strings, d.Source),
			})
		}
		for _, root := range d.Roots {
			merged.Roots = append(merged.Roots, shiftHandle(root, nodeOffset))
		}

		nodeOffset += document.NodeHandle(len(d.Names))
	}
	return merged, nil
}

func shiftHandle(h, offset document.NodeHandle) document.NodeHandle {
	if h == document.InvalidHandle {
		return document.InvalidHandle
	}
	return h + offset
}

func rehomeValue(pool *document.StringPool, v document.Value, originPool *document.StringPool, source []byte) document.Value {
	switch v.Kind {
	case document.KindString:
		v.Str = pool.Rehome(v.Str, originPool, source)
	case document.KindFloat:
		v.FloatOriginal = pool.Rehome(v.FloatOriginal, originPool, source)
	}
	return v
}
