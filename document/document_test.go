package document

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringPoolEmptyVsDeliberateEmpty(t *testing.T) {
	p := NewStringPool()
	deliberate := p.Intern("")

	require.True(t, Empty.IsEmpty())
	require.False(t, deliberate.IsEmpty(), "an interned empty string must stay distinguishable from Empty")
	require.True(t, deliberate.IsOwned())
	require.Empty(t, p.Bytes(deliberate, nil))
}

func TestStringPoolInternRoundTrip(t *testing.T) {
	p := NewStringPool()
	ref := p.Intern("hello")
	require.Equal(t, "hello", string(p.Bytes(ref, nil)))
}

func TestBorrowedRef(t *testing.T) {
	source := []byte("node arg")
	ref := Borrow(5, 3)
	require.False(t, ref.IsOwned())
	p := NewStringPool()
	require.Equal(t, "arg", string(p.Bytes(ref, source)))
}

func TestStringPoolRawBytesRoundTripsThroughRestore(t *testing.T) {
	p := NewStringPool()
	ref := p.Intern("hello")

	restored := RestoreStringPool(p.RawBytes())
	require.Equal(t, "hello", string(restored.Bytes(ref, nil)))
}

func TestStringPoolRehomeCopiesOwnedAndBorrowedRefsIntoOneOwnedPool(t *testing.T) {
	source := []byte("node arg")
	origin := NewStringPool()
	owned := origin.Intern("owned-value")
	borrowed := Borrow(5, 3)

	merged := NewStringPool()
	rehomedOwned := merged.Rehome(owned, origin, source)
	rehomedBorrowed := merged.Rehome(borrowed, origin, source)

	require.True(t, rehomedOwned.IsOwned())
	require.True(t, rehomedBorrowed.IsOwned())
	require.Equal(t, "owned-value", string(merged.Bytes(rehomedOwned, nil)))
	require.Equal(t, "arg", string(merged.Bytes(rehomedBorrowed, nil)))
}

func TestStringPoolRehomeOfEmptyRefStaysEmpty(t *testing.T) {
	origin := NewStringPool()
	merged := NewStringPool()
	require.True(t, merged.Rehome(Empty, origin, nil).IsEmpty())
}

func TestAppendChildMaintainsSiblingChain(t *testing.T) {
	d := New()
	parent := d.NewNode()
	c1 := d.NewNode()
	c2 := d.NewNode()
	c3 := d.NewNode()
	d.AppendChild(parent, c1)
	d.AppendChild(parent, c2)
	d.AppendChild(parent, c3)

	require.Equal(t, []NodeHandle{c1, c2, c3}, d.Children(parent))
	require.Equal(t, parent, d.Parents[c2])
}

func TestEffectivePropertiesRightmostWins(t *testing.T) {
	d := New()
	n := d.NewNode()
	keyRef := d.Strings.Intern("key")
	d.SetProperties(n, []Property{
		{Name: keyRef, Value: NewInteger(big.NewInt(1))},
		{Name: keyRef, Value: NewInteger(big.NewInt(2))},
	})

	eff := d.EffectivePropertiesOf(n)
	require.Len(t, eff, 1)
	require.Equal(t, big.NewInt(2), eff[0].Value.Integer)
}

func TestEffectivePropertiesPreservesFirstAppearanceOrder(t *testing.T) {
	d := New()
	n := d.NewNode()
	a := d.Strings.Intern("a")
	b := d.Strings.Intern("b")
	d.SetProperties(n, []Property{
		{Name: a, Value: NewBool(true)},
		{Name: b, Value: NewBool(true)},
		{Name: a, Value: NewBool(false)},
	})

	eff := d.EffectivePropertiesOf(n)
	require.Len(t, eff, 2)
	require.Equal(t, "a", string(d.Strings.Bytes(eff[0].Name, nil)))
	require.Equal(t, "b", string(d.Strings.Bytes(eff[1].Name, nil)))
	require.False(t, eff[0].Value.Bool)
}
