// Package scan implements the byte-scanner primitives: 64-bit
// character-class bitmasks over up-to-64-byte blocks, built either by a
// capability-gated SWAR ("SIMD within a register") tier operating eight
// bytes at a time, or by a scalar byte-at-a-time fallback. Both tiers are
// required to produce bit-identical masks and are exercised side by side
// in mask_test.go.
package scan

import "golang.org/x/sys/cpu"

// HasVectorHint reports whether the process detected a CPU capable of
// real SIMD compares (AVX2 on amd64, ASIMD on arm64). It gates nothing
// about correctness — both tiers agree — only which one mask.go picks for
// speed. Exported so callers/tests can force a tier deterministically.
var HasVectorHint = cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD

// Masks holds the 64-bit per-class bitmasks for one scanned block (up to 64
// bytes). Bit i of each mask corresponds to block byte i.
type Masks struct {
	Quotes      uint64
	Backslashes uint64
	Structural  uint64 // { } ( ) ; = /
	Hashes      uint64
	Newlines    uint64
	Whitespace  uint64
	Asterisks   uint64 // '*', needed to pair with '/' for block comment delimiters
}

// BuildMasks computes Masks for block (len(block) <= 64). It dispatches to
// the SWAR tier when HasVectorHint is set and the block is at least 8
// bytes, otherwise the scalar tier; both are exact.
func BuildMasks(block []byte) Masks {
	if HasVectorHint && len(block) >= 8 {
		return buildMasksSWAR(block)
	}
	return buildMasksScalar(block)
}

func buildMasksScalar(block []byte) Masks {
	var m Masks
	for i, b := range block {
		bit := uint64(1) << uint(i)
		switch b {
		case '"':
			m.Quotes |= bit
		case '\\':
			m.Backslashes |= bit
		case '{', '}', '(', ')', ';', '=', '/':
			m.Structural |= bit
		case '#':
			m.Hashes |= bit
		case '*':
			m.Asterisks |= bit
		case '\n', '\r', '\v', '\f':
			m.Newlines |= bit
		case ' ', '\t':
			m.Whitespace |= bit
		}
	}
	return m
}

// buildMasksSWAR computes the same masks eight bytes at a time using the
// classic "has this byte" broadcast-compare trick: for target byte c,
// xor each lane with c so that matching lanes become 0x00, then a
// haszero test flags which lanes were equal.
func buildMasksSWAR(block []byte) Masks {
	var m Masks
	n := len(block)
	i := 0
	for ; i+8 <= n; i += 8 {
		word := le64(block[i : i+8])
		m.Quotes |= haszero(word^repeat('"')) << uint(i)
		m.Backslashes |= haszero(word^repeat('\\')) << uint(i)
		m.Hashes |= haszero(word^repeat('#')) << uint(i)
		m.Asterisks |= haszero(word^repeat('*')) << uint(i)
		var structural uint64
		for _, c := range [...]byte{'{', '}', '(', ')', ';', '=', '/'} {
			structural |= haszero(word ^ repeat(c))
		}
		m.Structural |= structural << uint(i)
		var newline uint64
		for _, c := range [...]byte{'\n', '\r', '\v', '\f'} {
			newline |= haszero(word ^ repeat(c))
		}
		m.Newlines |= newline << uint(i)
		var ws uint64
		for _, c := range [...]byte{' ', '\t'} {
			ws |= haszero(word ^ repeat(c))
		}
		m.Whitespace |= ws << uint(i)
	}
	if i < n {
		tail := buildMasksScalar(block[i:])
		m.Quotes |= tail.Quotes << uint(i)
		m.Backslashes |= tail.Backslashes << uint(i)
		m.Structural |= tail.Structural << uint(i)
		m.Hashes |= tail.Hashes << uint(i)
		m.Newlines |= tail.Newlines << uint(i)
		m.Whitespace |= tail.Whitespace << uint(i)
		m.Asterisks |= tail.Asterisks << uint(i)
	}
	return m
}

func le64(b []byte) uint64 {
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

func repeat(c byte) uint64 {
	v := uint64(c)
	return v | v<<8 | v<<16 | v<<24 | v<<32 | v<<40 | v<<48 | v<<56
}

// haszero returns, per byte lane of v, 0x01 in bit 0 of that lane if the
// lane is zero (after the caller's xor-against-target step), else 0.
// Result bit i (0..7) is lane i's flag, matching BuildMasks' per-byte bit
// layout once shifted into position by the caller.
func haszero(v uint64) uint64 {
	const lo7 = 0x7F7F7F7F7F7F7F7F
	const hi = 0x8080808080808080
	// Per lane, (x&0x7F)+0x7F never carries into the next lane, so a lane's
	// high bit ends up set exactly when the lane is nonzero.
	nonzero := ((v&lo7)+lo7 | v) & hi
	has := ^nonzero & hi
	// Extract one bit per lane (the lane's high bit after the haszero
	// trick) into a packed low-order mask.
	var out uint64
	for lane := 0; lane < 8; lane++ {
		if has&(uint64(0x80)<<(uint(lane)*8)) != 0 {
			out |= 1 << uint(lane)
		}
	}
	return out
}

// FindLeadingHorizontalWhitespace returns the number of leading ' '/'\t'
// bytes in s.
func FindLeadingHorizontalWhitespace(s []byte) int {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

// FindStringTerminator returns the offset of the first '"', '\\', '\n', or
// '\r' in s, or -1.
func FindStringTerminator(s []byte) int {
	for i, b := range s {
		if b == '"' || b == '\\' || b == '\n' || b == '\r' {
			return i
		}
	}
	return -1
}

// FindBackslash returns the offset of the first '\\' in s, or -1.
func FindBackslash(s []byte) int {
	for i, b := range s {
		if b == '\\' {
			return i
		}
	}
	return -1
}

// FindIdentifierEnd returns the offset of the first ASCII token terminator
// or non-ASCII byte in s (the caller UTF-8-decodes from there to check
// disallowed/whitespace classes), or len(s) if none is found.
func FindIdentifierEnd(s []byte, isTerminator func(byte) bool) int {
	for i, b := range s {
		if b >= 0x80 || isTerminator(b) {
			return i
		}
	}
	return len(s)
}
