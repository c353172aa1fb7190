package scan

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

// buildMasksSWARForced runs the SWAR tier unconditionally, so tests can
// compare both tiers on a machine that lacks AVX2/ASIMD.
func buildMasksSWARForced(block []byte) Masks {
	return buildMasksSWAR(block)
}

func TestSWARAndScalarTiersAgree(t *testing.T) {
	cases := [][]byte{
		[]byte(""),
		[]byte("a"),
		[]byte("node \"hi\" 1 2 3"),
		[]byte("{}();=/*"),
		[]byte("a\\\"b\n\r\v\f c\t#d"),
		[]byte("exactly8"),
		[]byte("exactly8exactly8exactly8exactly8"),
		[]byte("seven77"),
	}
	for _, block := range cases {
		want := buildMasksScalar(block)
		got := buildMasksSWARForced(block)
		assert.Equal(t, want, got, "block %q", block)
	}
}

func TestSWARAndScalarTiersAgreeOnRandomBlocks(t *testing.T) {
	alphabet := []byte(" \t\n\r\v\f\"\\{}();=/*#abcXYZ01")
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 200; trial++ {
		n := rng.Intn(65)
		block := make([]byte, n)
		for i := range block {
			block[i] = alphabet[rng.Intn(len(alphabet))]
		}
		want := buildMasksScalar(block)
		got := buildMasksSWARForced(block)
		assert.Equal(t, want, got, "block %q", block)
	}
}

func TestBuildMasksDispatchesToAValidTier(t *testing.T) {
	block := []byte("node \"value\" 1\n")
	got := BuildMasks(block)
	want := buildMasksScalar(block)
	assert.Equal(t, want, got)
}

func TestFindLeadingHorizontalWhitespace(t *testing.T) {
	assert.Equal(t, 0, FindLeadingHorizontalWhitespace([]byte("x")))
	assert.Equal(t, 3, FindLeadingHorizontalWhitespace([]byte("  \tx")))
	assert.Equal(t, 4, FindLeadingHorizontalWhitespace([]byte("    ")))
}

func TestFindStringTerminator(t *testing.T) {
	assert.Equal(t, -1, FindStringTerminator([]byte("abc")))
	assert.Equal(t, 3, FindStringTerminator([]byte(`abc"def`)))
	assert.Equal(t, 3, FindStringTerminator([]byte("abc\ndef")))
}

func TestFindBackslash(t *testing.T) {
	assert.Equal(t, -1, FindBackslash([]byte("abc")))
	assert.Equal(t, 2, FindBackslash([]byte(`ab\c`)))
}

func TestFindIdentifierEnd(t *testing.T) {
	isTerm := func(b byte) bool { return b == ' ' || b == '\t' || b == '\n' }
	assert.Equal(t, 4, FindIdentifierEnd([]byte("node foo"), isTerm))
	assert.Equal(t, 8, FindIdentifierEnd([]byte("nospaces"), isTerm))
}
