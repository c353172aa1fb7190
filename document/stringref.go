package document

// ownedBit marks a StringRef.Offset as pointing into the document's owned
// string pool rather than the caller's source buffer.
const ownedBit = uint64(1) << 63

// StringRef is a lightweight reference to a string's bytes: either into the
// document's owned pool or, with the high bit of Offset clear, directly
// into the original source buffer (a borrowed reference).
type StringRef struct {
	Offset uint64
	Len    uint64
}

// Empty is the canonical "no string" reference, distinguishable from a
// pool-interned empty string (whose Offset is non-zero; see StringPool).
var Empty = StringRef{}

// IsOwned reports whether the reference points into the document's pool.
func (r StringRef) IsOwned() bool { return r.Offset&ownedBit != 0 }

// IsEmpty reports whether r is the sentinel "no string" reference.
func (r StringRef) IsEmpty() bool { return r.Offset == 0 && r.Len == 0 }

func (r StringRef) poolOffset() uint64 { return r.Offset &^ ownedBit }

// StringPool is an append-only byte buffer backing owned StringRefs. Offset
// 0 is reserved with a sentinel byte so a deliberately interned empty
// string (Offset != 0, Len == 0) is distinguishable from the Empty ref.
type StringPool struct {
	buf []byte
}

// NewStringPool returns a pool with its offset-0 sentinel already reserved.
func NewStringPool() *StringPool {
	return &StringPool{buf: []byte{0}}
}

// RawBytes exposes the pool's backing buffer verbatim, for callers that
// persist a document (kdlcache) and need to round-trip every owned
// StringRef's bytes without re-interning them one at a time.
func (p *StringPool) RawBytes() []byte { return p.buf }

// RestoreStringPool rebuilds a StringPool from bytes previously obtained
// via RawBytes, for kdlcache's load path. buf is used directly, not
// copied; callers must not mutate it afterward.
func RestoreStringPool(buf []byte) *StringPool {
	return &StringPool{buf: buf}
}

// Intern copies s into the pool and returns an owned reference to it.
func (p *StringPool) Intern(s string) StringRef {
	off := uint64(len(p.buf))
	p.buf = append(p.buf, s...)
	return StringRef{Offset: off | ownedBit, Len: uint64(len(s))}
}

// InternBytes is Intern for a []byte, avoiding a string copy when the
// caller already has the bytes materialized.
func (p *StringPool) InternBytes(b []byte) StringRef {
	off := uint64(len(p.buf))
	p.buf = append(p.buf, b...)
	return StringRef{Offset: off | ownedBit, Len: uint64(len(b))}
}

// Borrow builds a borrowed reference into source at [offset, offset+length).
// The caller is responsible for source outliving any use of the reference;
// Document.Source is where a parse-time caller stashes that buffer.
func Borrow(offset, length uint64) StringRef {
	return StringRef{Offset: offset, Len: length}
}

// Rehome copies ref's bytes — resolved against originPool/source exactly
// as Bytes would — into p as a fresh owned reference. Used when merging
// documents built by independent parses: every ref in the merged result
// ends up owned by the merged document's single pool, whether the source
// ref was itself owned (by a different pool) or borrowed (into a source
// buffer the merged document does not retain).
func (p *StringPool) Rehome(ref StringRef, originPool *StringPool, source []byte) StringRef {
	if ref.IsEmpty() {
		return Empty
	}
	return p.InternBytes(originPool.Bytes(ref, source))
}

// Bytes resolves ref against the pool (for owned refs) or source (for
// borrowed refs). source may be nil if ref is known to be owned.
func (p *StringPool) Bytes(ref StringRef, source []byte) []byte {
	if ref.IsEmpty() {
		return nil
	}
	if ref.IsOwned() {
		off := ref.poolOffset()
		return p.buf[off : off+ref.Len]
	}
	return source[ref.Offset : ref.Offset+ref.Len]
}
