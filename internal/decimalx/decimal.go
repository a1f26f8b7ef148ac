// Package decimalx adapts github.com/shopspring/decimal for the exact,
// non-binary-floating-point arithmetic the core requires so that two
// platforms computing the same input produce byte-identical output. The LP
// solve itself is the one step that runs in float64; everything else stays
// in this package's Decimal domain.
package decimalx

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/doublezerofoundation/network-shapley/internal/shapleyerr"
)

// Decimal is the exact decimal type used throughout the core.
type Decimal = decimal.Decimal

// DefaultPrecision is the number of decimal places the solver<->decimal
// boundary rounds to. Configurable; 28 matches the spec's banker's-rounding example.
const DefaultPrecision = 28

var (
	Zero       = decimal.Zero
	One        = decimal.NewFromInt(1)
	OneHundred = decimal.NewFromInt(100)
)

// FromFloat64 converts a solver-native float into a Decimal, rounded at
// precision digits using banker's rounding (round-half-to-even).
func FromFloat64(f float64, precision int32) (Decimal, error) {
	if isNaNOrInf(f) {
		return Decimal{}, fmt.Errorf("%w: non-finite solver value %v", shapleyerr.ErrNumericOverflow, f)
	}
	d := decimal.NewFromFloat(f)
	return d.RoundBank(precision), nil
}

// ToFloat64 converts a Decimal to the float64 the solver consumes.
func ToFloat64(d Decimal) (float64, error) {
	f, exact := d.Float64()
	if !exact && isNaNOrInf(f) {
		return 0, fmt.Errorf("%w: decimal %s has no finite float64 representation", shapleyerr.ErrNumericOverflow, d.String())
	}
	return f, nil
}

func isNaNOrInf(f float64) bool {
	return f != f || f > maxFinite || f < -maxFinite
}

const maxFinite = 1.7976931348623157e+308

// Div divides a by b, reporting ErrNumericOverflow instead of returning a
// decimal DivisionByZero panic on b == 0.
func Div(a, b Decimal) (Decimal, error) {
	if b.IsZero() {
		return Decimal{}, fmt.Errorf("%w: division by zero", shapleyerr.ErrNumericOverflow)
	}
	return a.Div(b), nil
}

// factorials is a memoized table of n! for n in [0, maxFactorial], computed
// once since n is capped at 20 by the coalition-enumeration contract.
const maxFactorial = 20

var factorials = buildFactorials()

func buildFactorials() [maxFactorial + 1]Decimal {
	var table [maxFactorial + 1]Decimal
	table[0] = One
	for i := 1; i <= maxFactorial; i++ {
		table[i] = table[i-1].Mul(decimal.NewFromInt(int64(i)))
	}
	return table
}

// Factorial returns n! as an exact Decimal. Panics if n is outside
// [0, 20] — the coalition-enumeration cap guarantees callers never exceed
// it, so this is a programmer error, not a user-input error.
func Factorial(n int) Decimal {
	if n < 0 || n > maxFactorial {
		panic(fmt.Sprintf("decimalx: Factorial(%d) outside supported range [0,%d]", n, maxFactorial))
	}
	return factorials[n]
}

// PowInt raises base to a non-negative integer exponent using exact
// decimal multiplication (no float pow() involved).
func PowInt(base Decimal, exp int) Decimal {
	if exp < 0 {
		panic("decimalx: PowInt requires a non-negative exponent")
	}
	result := One
	for i := 0; i < exp; i++ {
		result = result.Mul(base)
	}
	return result
}
