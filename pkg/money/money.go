// Package money holds the rounding rules shared by every tax computation.
package money

import "github.com/shopspring/decimal"

// Scale is the number of decimal places kept on stored amounts.
const Scale = 2

var hundred = decimal.NewFromInt(100)

// Round rounds amount to the nearest cent, half away from zero.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(Scale)
}

// Sum adds amounts without intermediate rounding.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// FromPercent converts a percentage such as 5.5 into the fraction 0.055.
func FromPercent(percent decimal.Decimal) decimal.Decimal {
	return percent.Div(hundred)
}

// ToPercent converts a fraction into a percentage.
func ToPercent(rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(hundred)
}

// Format renders amount with exactly two decimals, e.g. "1234.50".
func Format(amount decimal.Decimal) string {
	return Round(amount).StringFixed(Scale)
}

// WithinCent reports whether a and b differ by at most one cent.
func WithinCent(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(decimal.New(1, -Scale))
}
