package amount

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"zeroswap/pkg/errs"
)

var decimalPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// ToBaseUnits converts a human decimal amount like "0.1" into an integer
// string in the token's smallest unit. The conversion is exact: digits are
// shifted, never multiplied through floating point.
func ToBaseUnits(decimal string, decimals int) (string, error) {
	if decimals < 0 {
		return "", errs.New(errs.KindUsage, "token decimals must be >= 0")
	}
	if !decimalPattern.MatchString(decimal) {
		return "", errs.New(errs.KindUsage, fmt.Sprintf("amount must be in decimal form like 0.1, got %q", decimal))
	}

	intPart, fracPart, _ := strings.Cut(decimal, ".")
	if len(fracPart) > decimals {
		return "", errs.New(errs.KindUsage, fmt.Sprintf("amount precision exceeds token decimals (%d)", decimals))
	}

	combined := intPart + fracPart + strings.Repeat("0", decimals-len(fracPart))
	combined = strings.TrimLeft(combined, "0")
	if combined == "" {
		return "0", nil
	}
	if _, ok := new(big.Int).SetString(combined, 10); !ok {
		return "", errs.New(errs.KindUsage, fmt.Sprintf("invalid amount %q", decimal))
	}
	return combined, nil
}

// FromBaseUnits renders an integer base-unit string as a decimal amount,
// trimming trailing zeros. Unparseable input is returned unchanged.
func FromBaseUnits(baseUnits string, decimals int) string {
	n, ok := new(big.Int).SetString(baseUnits, 10)
	if !ok {
		return baseUnits
	}
	if decimals == 0 {
		return n.String()
	}

	s := n.String()
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}
	intPart := s[:len(s)-decimals]
	fracPart := strings.TrimRight(s[len(s)-decimals:], "0")
	if fracPart == "" {
		return intPart
	}
	return intPart + "." + fracPart
}
