package betting

import (
	"github.com/shopspring/decimal"

	"github.com/hattrick/sportsbook/internal/finance"
	"github.com/hattrick/sportsbook/pkg/types"
)

// Betting limits forming part of the engine contract.
const (
	// MaxSelectionCount is the most outcomes one ticket may combine.
	MaxSelectionCount = 70

	// MinPromoCombos is how many qualifying non-promoted outcomes must
	// accompany a promoted fixture on one ticket.
	MinPromoCombos = 5
)

var (
	// MinBetAmount and MaxBetAmount bound the pay-in amount of one ticket.
	MinBetAmount = decimal.RequireFromString("0.25")
	MaxBetAmount = decimal.RequireFromString("250000.00")

	// PromoComboOddsThreshold is the minimum odds a non-promoted outcome
	// must carry to count towards the promotion combination rule.
	PromoComboOddsThreshold = decimal.RequireFromString("1.10")
)

// oddsAccumulator folds the selection list into the compounded odds and the
// promotion-eligibility signal.
type oddsAccumulator struct {
	totalOdds      decimal.Decimal
	promoted       bool
	promoCombos    int
	selectedEvents map[int64]struct{}
}

func newOddsAccumulator() *oddsAccumulator {
	return &oddsAccumulator{
		totalOdds:      decimal.NewFromInt(1),
		selectedEvents: make(map[int64]struct{}),
	}
}

// add folds one selection into the accumulator. Each ticket may contain at
// most one selection per event.
func (a *oddsAccumulator) add(selection *types.Outcome) error {
	if _, seen := a.selectedEvents[selection.EventID]; seen {
		return types.NewBadInput(
			"duplicate events are selected: each outcome must belong to a unique event")
	}
	a.selectedEvents[selection.EventID] = struct{}{}

	if selection.IsPromoted {
		a.promoted = true
	} else if selection.Odds.GreaterThanOrEqual(PromoComboOddsThreshold) {
		a.promoCombos++
	}

	a.totalOdds = a.totalOdds.Mul(*selection.Odds)

	return nil
}

// validPromotion enforces the promoted-fixture combination rule: a ticket
// holding any promoted fixture must also hold at least MinPromoCombos
// non-promoted outcomes at or above the odds threshold.
func (a *oddsAccumulator) validPromotion() bool {
	return !a.promoted || a.promoCombos >= MinPromoCombos
}

// EvaluateSelections validates the selection set against the resolved
// outcomes and returns the compounded total odds, rounded to two decimal
// places. It short-circuits on the first violation.
func EvaluateSelections(selectionIDs []int64, selections map[int64]*types.Outcome) (decimal.Decimal, error) {
	if len(selectionIDs) == 0 {
		return decimal.Zero, types.NewBadInput(
			"no outcome is selected: at least 1 outcome must be selected")
	}
	if len(selectionIDs) > MaxSelectionCount {
		return decimal.Zero, types.NewBadInput(
			"too many outcomes are selected: no more than %d outcomes may be selected", MaxSelectionCount)
	}

	acc := newOddsAccumulator()

	for _, id := range selectionIDs {
		selection, ok := selections[id]
		if !ok {
			return decimal.Zero, types.NewBadInput(
				"an unavailable or non-existent outcome is selected")
		}

		if err := acc.add(selection); err != nil {
			return decimal.Zero, err
		}
	}

	if !acc.validPromotion() {
		return decimal.Zero, types.NewBadInput(
			"invalid promotion combination selected: a promoted fixture requires at least %d non-promoted outcomes of odds %s or higher",
			MinPromoCombos, PromoComboOddsThreshold)
	}

	return finance.Round(acc.totalOdds), nil
}

// EnsureValidPayInAmount rounds and validates the stake against the betting
// limits and the user's current balance, returning the rounded amount.
func EnsureValidPayInAmount(balance, amount decimal.Decimal) (decimal.Decimal, error) {
	amount = finance.Round(amount)

	if amount.IsNegative() {
		return decimal.Zero, types.NewBadInput("pay-in amount is negative")
	}
	if amount.LessThan(MinBetAmount) || amount.GreaterThan(MaxBetAmount) {
		return decimal.Zero, types.NewBadInput(
			"pay-in amount is out of range: minimal allowed bet is %s, maximal allowed bet is %s",
			MinBetAmount.StringFixed(2), MaxBetAmount.StringFixed(2))
	}
	if amount.GreaterThan(balance) {
		return decimal.Zero, types.NewBadInput(
			"pay-in amount exceeds the current balance of %s", balance.StringFixed(2))
	}

	return amount, nil
}
