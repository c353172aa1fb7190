// Package document implements the KDL document intermediate representation:
// a structure-of-arrays node store keyed by monotonic NodeHandle values, a
// string pool distinguishing owned from source-borrowed references, and
// the argument/property pools nodes index into.
package document

// NodeHandle identifies a node within a Document's structure-of-arrays
// storage. Handles are assigned in construction order and never reused.
type NodeHandle uint64

// InvalidHandle is returned for "no such node" (e.g. the parent of a root).
const InvalidHandle NodeHandle = ^NodeHandle(0)

// Range is a contiguous, non-overlapping span into a pool.
type Range struct {
	Start uint32
	Count uint32
}

// Argument is a positional value on a node, optionally type-annotated.
type Argument struct {
	Value          Value
	TypeAnnotation StringRef
}

// Property is a key=value pair on a node, optionally type-annotated on the
// value. Property key order is preserved as parsed; duplicate-key
// resolution happens at serialization time, not here.
type Property struct {
	Name           StringRef
	Value          Value
	TypeAnnotation StringRef
}

// Document is the structure-of-arrays node store. All per-node fields are
// parallel slices indexed by NodeHandle; pools hold argument/property data
// nodes reference by Range.
type Document struct {
	Names           []StringRef
	TypeAnnotations []StringRef
	Parents         []NodeHandle
	FirstChild      []NodeHandle
	NextSibling     []NodeHandle
	Args            []Range
	Props           []Range

	// Roots lists the top-level nodes in document order.
	Roots []NodeHandle

	Strings    *StringPool
	Arguments  []Argument
	Properties []Property

	// Source is retained only when the document holds borrowed string
	// references into it; nil for documents built entirely from owned
	// (pool) strings.
	Source []byte
}

// New returns an empty document with an initialized string pool.
func New() *Document {
	return &Document{Strings: NewStringPool()}
}

// NewNode allocates a fresh node with no name/annotation/args/props yet and
// returns its handle. Callers fill in fields via the Set* helpers below.
func (d *Document) NewNode() NodeHandle {
	h := NodeHandle(len(d.Names))
	d.Names = append(d.Names, StringRef{})
	d.TypeAnnotations = append(d.TypeAnnotations, StringRef{})
	d.Parents = append(d.Parents, InvalidHandle)
	d.FirstChild = append(d.FirstChild, InvalidHandle)
	d.NextSibling = append(d.NextSibling, InvalidHandle)
	d.Args = append(d.Args, Range{})
	d.Props = append(d.Props, Range{})
	return h
}

// AppendChild links child as the last child of parent, maintaining the
// first-child/next-sibling chain invariant.
func (d *Document) AppendChild(parent, child NodeHandle) {
	d.Parents[child] = parent
	if d.FirstChild[parent] == InvalidHandle {
		d.FirstChild[parent] = child
		return
	}
	sib := d.FirstChild[parent]
	for d.NextSibling[sib] != InvalidHandle {
		sib = d.NextSibling[sib]
	}
	d.NextSibling[sib] = child
}

// AppendRoot adds handle to the top-level root list.
func (d *Document) AppendRoot(h NodeHandle) { d.Roots = append(d.Roots, h) }

// SetArguments records the argument pool range for node h.
func (d *Document) SetArguments(h NodeHandle, args []Argument) {
	r := Range{Start: uint32(len(d.Arguments)), Count: uint32(len(args))}
	d.Arguments = append(d.Arguments, args...)
	d.Args[h] = r
}

// SetProperties records the property pool range for node h.
func (d *Document) SetProperties(h NodeHandle, props []Property) {
	r := Range{Start: uint32(len(d.Properties)), Count: uint32(len(props))}
	d.Properties = append(d.Properties, props...)
	d.Props[h] = r
}

// Children returns the child handles of h in document order, walking the
// first-child/next-sibling chain.
func (d *Document) Children(h NodeHandle) []NodeHandle {
	var out []NodeHandle
	for c := d.FirstChild[h]; c != InvalidHandle; c = d.NextSibling[c] {
		out = append(out, c)
	}
	return out
}

// ArgumentsOf returns the arguments belonging to node h.
func (d *Document) ArgumentsOf(h NodeHandle) []Argument {
	r := d.Args[h]
	return d.Arguments[r.Start : r.Start+r.Count]
}

// PropertiesOf returns the properties belonging to node h, in source order
// (duplicates not yet resolved; see EffectivePropertiesOf).
func (d *Document) PropertiesOf(h NodeHandle) []Property {
	r := d.Props[h]
	return d.Properties[r.Start : r.Start+r.Count]
}

// EffectivePropertiesOf returns one Property per distinct name, keeping the
// rightmost occurrence, in the order each name first appeared. This is
// the rightmost-wins resolution the serializer applies.
func (d *Document) EffectivePropertiesOf(h NodeHandle) []Property {
	props := d.PropertiesOf(h)
	order := make([]string, 0, len(props))
	last := make(map[string]Property, len(props))
	for _, p := range props {
		key := string(d.Strings.Bytes(p.Name, d.Source))
		if _, seen := last[key]; !seen {
			order = append(order, key)
		}
		last[key] = p
	}
	out := make([]Property, 0, len(order))
	for _, key := range order {
		out = append(out, last[key])
	}
	return out
}

// NodeName returns the decoded name of node h.
func (d *Document) NodeName(h NodeHandle) string {
	return string(d.Strings.Bytes(d.Names[h], d.Source))
}

// NodeTypeAnnotation returns the decoded type annotation of node h, or ""
// if it has none.
func (d *Document) NodeTypeAnnotation(h NodeHandle) string {
	return string(d.Strings.Bytes(d.TypeAnnotations[h], d.Source))
}
