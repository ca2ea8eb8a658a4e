// Package finance holds the pure monetary arithmetic of the sportsbook:
// stake deductions, potential win amounts and the progressive win tax.
// All amounts are rounded to two decimal places at the point of
// computation, not only at the end. Intermediate rounding shifts tax
// bracket edges, so the order of operations here is part of the contract.
package finance

import (
	"github.com/shopspring/decimal"

	"github.com/hattrick/sportsbook/pkg/types"
)

// ManipulativeCostRate is the house-margin deduction applied to the stake
// before odds are applied.
var ManipulativeCostRate = decimal.RequireFromString("0.05")

// TicketFinancialAmounts is the full financial breakdown of one ticket.
type TicketFinancialAmounts struct {
	PayInAmount             decimal.Decimal `json:"payInAmount"`
	ActiveAmount            decimal.Decimal `json:"activeAmount"`
	TotalOdds               decimal.Decimal `json:"totalOdds"`
	GrossPotentialWinAmount decimal.Decimal `json:"grossPotentialWinAmount"`
	Tax                     decimal.Decimal `json:"tax"`
	NetPotentialWinAmount   decimal.Decimal `json:"netPotentialWinAmount"`
}

// Round rounds a monetary or odds value to two decimal places.
func Round(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}

// ActiveAmount is the stake left in play after the manipulative cost
// deduction.
func ActiveAmount(payInAmount decimal.Decimal) decimal.Decimal {
	return Round(decimal.NewFromInt(1).Sub(ManipulativeCostRate).Mul(payInAmount))
}

// GrossPotentialWinAmount is the payout before tax: total odds applied to
// the active amount.
func GrossPotentialWinAmount(payInAmount, totalOdds decimal.Decimal) decimal.Decimal {
	return Round(totalOdds.Mul(ActiveAmount(payInAmount)))
}

// CalculateAmounts derives the full financial breakdown for a ticket from
// its pay-in amount, total odds and the tax schedule in force.
func CalculateAmounts(payInAmount, totalOdds decimal.Decimal, grades []*types.TaxGrade) TicketFinancialAmounts {
	active := ActiveAmount(payInAmount)
	gross := GrossPotentialWinAmount(payInAmount, totalOdds)
	tax := CalculateTax(grades, gross)

	return TicketFinancialAmounts{
		PayInAmount:             payInAmount,
		ActiveAmount:            active,
		TotalOdds:               totalOdds,
		GrossPotentialWinAmount: gross,
		Tax:                     tax,
		NetPotentialWinAmount:   gross.Sub(tax),
	}
}
