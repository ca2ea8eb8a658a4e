package finance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/hattrick/sportsbook/pkg/types"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decp(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// referenceGrades is the schedule seeded into the sample database:
// [0, 10000) at 10%, [10000, 30000) at 15%, [30000, inf) at 30%.
func referenceGrades() []*types.TaxGrade {
	return []*types.TaxGrade{
		{ID: 1, LowerBound: decp("0"), UpperBound: decp("10000"), Rate: dec("0.10")},
		{ID: 2, LowerBound: decp("10000"), UpperBound: decp("30000"), Rate: dec("0.15")},
		{ID: 3, LowerBound: decp("30000"), UpperBound: nil, Rate: dec("0.30")},
	}
}

func TestCalculateTax(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		expected string
	}{
		{
			name:     "zero-amount",
			amount:   "0",
			expected: "0.00",
		},
		{
			name:     "inside-first-bracket",
			amount:   "285.00",
			expected: "28.50",
		},
		{
			name:     "spans-two-brackets",
			amount:   "25000.00",
			expected: "3250.00", // 10% of 10000 + 15% of 15000
		},
		{
			name:     "first-bracket-upper-edge",
			amount:   "10000.00",
			expected: "1000.00",
		},
		{
			name:     "spans-all-brackets",
			amount:   "50000.00",
			expected: "10000.00", // 1000 + 3000 + 30% of 20000
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tax := CalculateTax(referenceGrades(), dec(tt.amount))
			assert.True(t, tax.Equal(dec(tt.expected)),
				"expected tax %s, got %s", tt.expected, tax)
		})
	}
}

func TestCalculateTax_OrderIndependent(t *testing.T) {
	grades := referenceGrades()
	reversed := []*types.TaxGrade{grades[2], grades[0], grades[1]}

	amount := dec("25000.00")
	assert.True(t, CalculateTax(grades, amount).Equal(CalculateTax(reversed, amount)))
}

func TestCalculateTax_NilBoundsTreatedAsOpenEnded(t *testing.T) {
	// A single unbounded grade taxes the whole amount.
	grades := []*types.TaxGrade{{ID: 1, Rate: dec("0.10")}}

	tax := CalculateTax(grades, dec("123.45"))
	assert.True(t, tax.Equal(dec("12.35")), "got %s", tax)
}
