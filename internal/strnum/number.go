package strnum

import (
	"math/big"
	"strconv"
	"strings"
)

// NumberError reports a malformed or out-of-range numeric literal.
type NumberError struct {
	Message string
}

func (e *NumberError) Error() string { return e.Message }

var (
	maxI128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minI128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

// MaxI128 and MinI128 are the inclusive signed 128-bit bounds integer
// literals are checked against.
func MaxI128() *big.Int { return new(big.Int).Set(maxI128) }
func MinI128() *big.Int { return new(big.Int).Set(minI128) }

// ParseInteger parses a KDL integer literal: optional sign, optional radix
// prefix (0x/0o/0b), underscore-separated digits. The result is checked
// against the signed i128 range.
func ParseInteger(text string) (*big.Int, error) {
	s := text
	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	radix := 10
	switch {
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		radix, s = 16, s[2:]
	case strings.HasPrefix(s, "0o"), strings.HasPrefix(s, "0O"):
		radix, s = 8, s[2:]
	case strings.HasPrefix(s, "0b"), strings.HasPrefix(s, "0B"):
		radix, s = 2, s[2:]
	}

	digits, err := stripDigitUnderscores(s)
	if err != nil {
		return nil, err
	}
	if digits == "" {
		return nil, &NumberError{Message: "integer literal has no digits"}
	}

	v, ok := new(big.Int).SetString(digits, radix)
	if !ok {
		return nil, &NumberError{Message: "malformed integer literal"}
	}
	if neg {
		v.Neg(v)
	}
	if v.Cmp(maxI128) > 0 || v.Cmp(minI128) < 0 {
		return nil, &NumberError{Message: "integer literal out of i128 range"}
	}
	return v, nil
}

func stripDigitUnderscores(s string) (string, error) {
	if strings.HasPrefix(s, "_") {
		return "", &NumberError{Message: "digits cannot start with an underscore"}
	}
	if !strings.Contains(s, "_") {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '_' {
			if i == 0 || s[i-1] == '_' {
				return "", &NumberError{Message: "invalid underscore placement"}
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String(), nil
}

// FloatResult carries the parsed value and the normalized original text
// I6 requires be preserved for round-trip serialization.
type FloatResult struct {
	Value    float64
	Original string
}

// ParseFloat parses a KDL float literal. On overflow (strconv's ErrRange)
// or when a literal with a nonzero digit underflows to zero, Original is
// the unmodified source text; otherwise
// Original is the decimal form with the exponent marker normalized to
// uppercase "E" and an explicit sign.
func ParseFloat(text string) (FloatResult, error) {
	s, err := stripDigitUnderscores(text)
	if err != nil {
		return FloatResult{}, err
	}
	v, perr := strconv.ParseFloat(s, 64)
	if perr != nil {
		if ne, ok := perr.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return FloatResult{Value: v, Original: text}, nil
		}
		return FloatResult{}, &NumberError{Message: "malformed float literal"}
	}
	if v == 0 {
		mantissa := s
		if i := strings.IndexAny(s, "eE"); i >= 0 {
			mantissa = s[:i]
		}
		if strings.ContainsAny(mantissa, "123456789") {
			return FloatResult{Value: v, Original: text}, nil
		}
	}
	return FloatResult{Value: v, Original: normalizeFloat(s)}, nil
}

func normalizeFloat(s string) string {
	idx := strings.IndexAny(s, "eE")
	if idx < 0 {
		return s
	}
	mantissa, exp := s[:idx], s[idx+1:]
	sign := "+"
	if len(exp) > 0 && (exp[0] == '+' || exp[0] == '-') {
		if exp[0] == '-' {
			sign = "-"
		}
		exp = exp[1:]
	}
	return mantissa + "E" + sign + exp
}
