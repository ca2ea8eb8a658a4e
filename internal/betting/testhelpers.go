package betting

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hattrick/sportsbook/pkg/types"
)

// testWindow is the availability window used by engine tests;
// testPlacedAt falls inside it.
var (
	testPlacedAt = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	testFrom     = testPlacedAt.Add(-time.Hour)
	testUntil    = testPlacedAt.Add(time.Hour)
)

// CreateTestOutcome builds a priced, available outcome for tests.
func CreateTestOutcome(id, eventID int64, odds string, promoted bool) *types.Outcome {
	price := decimal.RequireFromString(odds)
	return &types.Outcome{
		ID:             id,
		MarketID:       id,
		FixtureID:      eventID,
		EventID:        eventID,
		Odds:           &price,
		AvailableFrom:  testFrom,
		AvailableUntil: testUntil,
		IsPromoted:     promoted,
	}
}

// outcomeSet indexes outcomes by id the way the selection resolver does.
func outcomeSet(outcomes ...*types.Outcome) map[int64]*types.Outcome {
	set := make(map[int64]*types.Outcome, len(outcomes))
	for _, o := range outcomes {
		set[o.ID] = o
	}
	return set
}
