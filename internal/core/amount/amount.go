// Package amount provides exact fixed-width arithmetic for marketplace
// values. Amounts are unsigned base units of whatever payment asset a
// listing settles in; all splits must conserve value exactly.
package amount

import "errors"

// Amount is a quantity of a payment asset in base units.
type Amount uint64

// FeeDenominator is the basis-point denominator used by every fee
// fraction in the engine.
const FeeDenominator = 10000

// ErrOverflow is returned when checked arithmetic would wrap.
var ErrOverflow = errors.New("amount overflow")

// Add returns a+b, failing on wrap-around.
func (a Amount) Add(b Amount) (Amount, error) {
	sum := a + b
	if sum < a {
		return 0, ErrOverflow
	}
	return sum, nil
}

// Sub returns a-b, failing if b exceeds a.
func (a Amount) Sub(b Amount) (Amount, error) {
	if b > a {
		return 0, ErrOverflow
	}
	return a - b, nil
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a == 0
}

// MulBps returns floor(a * bps / 10000) without intermediate overflow.
// Decomposing a as q*10000 + r keeps every term well inside uint64 for
// any bps <= 10000.
func MulBps(a Amount, bps uint32) Amount {
	q := a / FeeDenominator
	r := a % FeeDenominator
	return q*Amount(bps) + r*Amount(bps)/FeeDenominator
}
