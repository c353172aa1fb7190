package strnum_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdl-lang/kdl/internal/strnum"
)

func TestParseIntegerDecimal(t *testing.T) {
	tests := []struct {
		text string
		want int64
	}{
		{"0", 0},
		{"42", 42},
		{"+42", 42},
		{"-42", -42},
		{"1_000_000", 1000000},
	}
	for _, tc := range tests {
		got, err := strnum.ParseInteger(tc.text)
		require.NoError(t, err, tc.text)
		assert.Equal(t, big.NewInt(tc.want), got, tc.text)
	}
}

func TestParseIntegerRadixPrefixes(t *testing.T) {
	tests := []struct {
		text string
		want int64
	}{
		{"0xff", 255},
		{"0XFF", 255},
		{"0o17", 15},
		{"0b101", 5},
		{"-0x10", -16},
	}
	for _, tc := range tests {
		got, err := strnum.ParseInteger(tc.text)
		require.NoError(t, err, tc.text)
		assert.Equal(t, big.NewInt(tc.want), got, tc.text)
	}
}

func TestParseIntegerRejectsMalformed(t *testing.T) {
	tests := []string{"", "+", "-", "_1", "1__2", "0xg", "0x"}
	for _, text := range tests {
		_, err := strnum.ParseInteger(text)
		assert.Error(t, err, text)
	}
}

func TestParseIntegerRejectsOutOfI128Range(t *testing.T) {
	tooBig := new(big.Int).Add(strnum.MaxI128(), big.NewInt(1)).String()
	_, err := strnum.ParseInteger(tooBig)
	require.Error(t, err)

	tooSmall := new(big.Int).Sub(strnum.MinI128(), big.NewInt(1)).String()
	_, err = strnum.ParseInteger(tooSmall)
	require.Error(t, err)
}

func TestParseIntegerBoundsAreInclusive(t *testing.T) {
	_, err := strnum.ParseInteger(strnum.MaxI128().String())
	assert.NoError(t, err)
	_, err = strnum.ParseInteger(strnum.MinI128().String())
	assert.NoError(t, err)
}

func TestParseFloatNormalFormNormalizesExponent(t *testing.T) {
	res, err := strnum.ParseFloat("1.5e10")
	require.NoError(t, err)
	assert.InDelta(t, 1.5e10, res.Value, 1)
	assert.Equal(t, "1.5E+10", res.Original)
}

func TestParseFloatUnderscoresAreStripped(t *testing.T) {
	res, err := strnum.ParseFloat("1_000.5")
	require.NoError(t, err)
	assert.Equal(t, 1000.5, res.Value)
}

func TestParseFloatOverflowPreservesOriginalText(t *testing.T) {
	text := "1e400"
	res, err := strnum.ParseFloat(text)
	require.NoError(t, err)
	assert.Equal(t, text, res.Original)
}

func TestParseFloatRejectsMalformed(t *testing.T) {
	_, err := strnum.ParseFloat("1.2.3")
	assert.Error(t, err)
}
