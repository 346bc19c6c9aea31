// Package coupon implements the discount engine.
//
// Coupons are transient string tokens, never stored. Two families are
// recognized: "OFF<N>" takes N percent off the total (N an integer between
// 0 and 100), and "VALOR<amount>" takes a fixed amount off, capped at the
// total. Prefixes are case-sensitive.
package coupon

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	percentPrefix = "OFF"
	fixedPrefix   = "VALOR"
)

var hundred = decimal.NewFromInt(100)

// InvalidCouponError indicates a token that matches no coupon family, has
// a non-numeric suffix, or carries a percentage outside [0,100].
type InvalidCouponError struct {
	Code string
}

func (e *InvalidCouponError) Error() string {
	return fmt.Sprintf("invalid coupon %q", e.Code)
}

// Compute returns the discount the token grants against total. It is a
// pure function: no lookups, no side effects. An empty token grants a zero
// discount. The returned discount never exceeds total for the fixed
// family, and the caller remains responsible for clamping total-discount
// at zero.
func Compute(total decimal.Decimal, code string) (decimal.Decimal, error) {
	switch {
	case code == "":
		return decimal.Zero, nil
	case strings.HasPrefix(code, fixedPrefix):
		return fixedDiscount(total, code)
	case strings.HasPrefix(code, percentPrefix):
		return percentDiscount(total, code)
	default:
		return decimal.Zero, &InvalidCouponError{Code: code}
	}
}

func percentDiscount(total decimal.Decimal, code string) (decimal.Decimal, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(code, percentPrefix))
	if err != nil || n < 0 || n > 100 {
		return decimal.Zero, &InvalidCouponError{Code: code}
	}
	return total.Mul(decimal.NewFromInt(int64(n))).Div(hundred), nil
}

func fixedDiscount(total decimal.Decimal, code string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimPrefix(code, fixedPrefix))
	if err != nil || amount.IsNegative() {
		return decimal.Zero, &InvalidCouponError{Code: code}
	}
	return decimal.Min(amount, total), nil
}
