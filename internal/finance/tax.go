package finance

import (
	"github.com/shopspring/decimal"

	"github.com/hattrick/sportsbook/pkg/types"
)

// CalculateTax applies a progressive bracket schedule to a gross amount.
// Each grade taxes only the slice of the amount falling inside its bounds;
// the grades are assumed to form a non-overlapping partition of [0, inf).
func CalculateTax(grades []*types.TaxGrade, amount decimal.Decimal) decimal.Decimal {
	tax := decimal.Zero

	for _, grade := range grades {
		if grade.LowerBound != nil && amount.LessThan(*grade.LowerBound) {
			continue
		}

		upper := amount
		if grade.UpperBound != nil && grade.UpperBound.LessThan(amount) {
			upper = *grade.UpperBound
		}
		lower := decimal.Zero
		if grade.LowerBound != nil {
			lower = *grade.LowerBound
		}

		tax = tax.Add(grade.Rate.Mul(upper.Sub(lower)))
	}

	return Round(tax)
}
