// =============================
// File: internal/dex/pumpfun/math.go
// =============================
package pumpfun

import (
	"lukechampine.com/uint128"
)

// BasisPointsDenominator is the divisor for every basis-point quantity (100% = 10000).
const BasisPointsDenominator uint64 = 10_000

// MulDiv returns floor(a*b/c) using a 128-bit intermediate product.
// The product of two reserves routinely exceeds 64 bits, so it is never formed in uint64.
func MulDiv(a, b, c uint64) (uint64, error) {
	if c == 0 {
		return 0, ErrDivisionByZero
	}
	q, _ := uint128.From64(a).Mul64(b).QuoRem64(c)
	if q.Hi != 0 {
		return 0, ErrOverflow
	}
	return q.Lo, nil
}

// ApplyFeeBasisPoints returns floor(amount*bps/10000).
// Rounding down means the deducted fee never exceeds the exact proportional amount.
func ApplyFeeBasisPoints(amount, bps uint64) (uint64, error) {
	if bps > BasisPointsDenominator {
		return 0, ErrInvalidAmount
	}
	return MulDiv(amount, bps, BasisPointsDenominator)
}

func checkedAdd(a, b uint64) (uint64, error) {
	sum := uint128.From64(a).Add64(b)
	if sum.Hi != 0 {
		return 0, ErrOverflow
	}
	return sum.Lo, nil
}

// checkedSub treats a negative result as running past the reserves.
func checkedSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrInsufficientLiquidity
	}
	return a - b, nil
}

// mulDivPlusOne is MulDiv followed by the +1 the program adds so integer truncation never undercharges.
func mulDivPlusOne(a, b, c uint64) (uint64, error) {
	q, err := MulDiv(a, b, c)
	if err != nil {
		return 0, err
	}
	return checkedAdd(q, 1)
}
