package betting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hattrick/sportsbook/pkg/types"
)

func newTestStore() *MockStore {
	store := NewMockStore()
	store.Users[1] = &types.User{
		ID:       1,
		Username: "punter",
		Balance:  decimal.RequireFromString("1000.00"),
	}
	for _, o := range []*types.Outcome{
		CreateTestOutcome(1, 100, "2.00", false),
		CreateTestOutcome(2, 200, "1.50", false),
	} {
		store.Outcomes[o.ID] = o
	}
	store.TaxGrades = []*types.TaxGrade{
		{ID: 1, LowerBound: decp("0"), UpperBound: decp("10000"), Rate: dec("0.10")},
		{ID: 2, LowerBound: decp("10000"), UpperBound: decp("30000"), Rate: dec("0.15")},
		{ID: 3, LowerBound: decp("30000"), Rate: dec("0.30")},
	}
	return store
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decp(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestPlaceBet_HappyPath(t *testing.T) {
	store := newTestStore()
	placer := NewPlacer(store, zap.NewNop())

	ticket, err := placer.PlaceBet(context.Background(), testPlacedAt, 1, []int64{1, 2}, dec("50.00"))
	require.NoError(t, err)
	require.NotNil(t, ticket)

	assert.True(t, ticket.TotalOdds.Equal(dec("3.00")), "total odds: %s", ticket.TotalOdds)
	assert.Equal(t, types.TicketActive, ticket.Status)
	assert.False(t, ticket.IsResolved)
	assert.Equal(t, testPlacedAt, ticket.PayInTime)
	assert.Len(t, ticket.Selections, 2)

	// Balance debited and both records committed.
	assert.True(t, store.Users[1].Balance.Equal(dec("950.00")),
		"balance: %s", store.Users[1].Balance)
	require.Len(t, store.Transactions, 1)
	txn := store.Transactions[0]
	assert.Equal(t, types.TxPayIn, txn.Type)
	require.NotNil(t, txn.TicketID)
	assert.Equal(t, ticket.ID, *txn.TicketID)
	assert.True(t, txn.Amount.Equal(dec("50.00")))
	assert.Contains(t, store.Tickets, ticket.ID)
}

func TestPlaceBet_UserNotFound(t *testing.T) {
	store := newTestStore()
	placer := NewPlacer(store, zap.NewNop())

	_, err := placer.PlaceBet(context.Background(), testPlacedAt, 404, []int64{1}, dec("50.00"))
	require.Error(t, err)
	assert.Equal(t, types.KindNotFound, types.KindOf(err))

	// No partial writes.
	assert.Empty(t, store.Tickets)
	assert.Empty(t, store.Transactions)
}

func TestPlaceBet_AmountValidation(t *testing.T) {
	tests := []struct {
		name   string
		amount string
	}{
		{"below-minimum", "0.24"},
		{"negative", "-5.00"},
		{"above-maximum", "250000.01"},
		{"above-balance", "1000.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore()
			placer := NewPlacer(store, zap.NewNop())

			_, err := placer.PlaceBet(context.Background(), testPlacedAt, 1, []int64{1}, dec(tt.amount))
			require.Error(t, err)
			assert.Equal(t, types.KindBadInput, types.KindOf(err))
			assert.True(t, store.Users[1].Balance.Equal(dec("1000.00")))
			assert.Empty(t, store.Tickets)
		})
	}
}

func TestPlaceBet_UnavailableSelection(t *testing.T) {
	store := newTestStore()

	// Outcome 3 exists but its window closed before placement.
	stale := CreateTestOutcome(3, 300, "1.80", false)
	stale.AvailableUntil = testPlacedAt.Add(-time.Minute)
	store.Outcomes[3] = stale

	// Outcome 4 exists but carries no price.
	unpriced := CreateTestOutcome(4, 400, "1.80", false)
	unpriced.Odds = nil
	store.Outcomes[4] = unpriced

	placer := NewPlacer(store, zap.NewNop())

	for _, id := range []int64{3, 4, 99} {
		_, err := placer.PlaceBet(context.Background(), testPlacedAt, 1, []int64{1, id}, dec("50.00"))
		require.Error(t, err, "selection %d", id)
		assert.Equal(t, types.KindBadInput, types.KindOf(err))
	}
}

func TestPlaceBet_Cancelled(t *testing.T) {
	store := newTestStore()
	placer := NewPlacer(store, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := placer.PlaceBet(ctx, testPlacedAt, 1, []int64{1, 2}, dec("50.00"))
	require.Error(t, err)
	assert.Equal(t, types.KindCancelled, types.KindOf(err))

	// Abort happened before commit: nothing written, balance untouched.
	assert.True(t, store.Users[1].Balance.Equal(dec("1000.00")))
	assert.Empty(t, store.Tickets)
	assert.Empty(t, store.Transactions)
}

func TestPlaceBet_CommitFailureRollsBack(t *testing.T) {
	store := newTestStore()
	store.CommitErr = errors.New("connection reset")
	placer := NewPlacer(store, zap.NewNop())

	_, err := placer.PlaceBet(context.Background(), testPlacedAt, 1, []int64{1, 2}, dec("50.00"))
	require.Error(t, err)
	assert.Equal(t, types.KindServerError, types.KindOf(err))
	assert.NotContains(t, err.Error(), "connection reset", "cause must not leak")

	assert.True(t, store.Users[1].Balance.Equal(dec("1000.00")))
	assert.Empty(t, store.Tickets)
	assert.Empty(t, store.Transactions)
}

func TestCalculateTicketFinancialAmounts(t *testing.T) {
	store := newTestStore()
	placer := NewPlacer(store, zap.NewNop())

	ticket, err := placer.PlaceBet(context.Background(), testPlacedAt, 1, []int64{1, 2}, dec("100.00"))
	require.NoError(t, err)

	amounts, err := placer.CalculateTicketFinancialAmounts(context.Background(), ticket.ID, nil)
	require.NoError(t, err)

	assert.True(t, amounts.PayInAmount.Equal(dec("100.00")))
	assert.True(t, amounts.ActiveAmount.Equal(dec("95.00")), "active: %s", amounts.ActiveAmount)
	assert.True(t, amounts.TotalOdds.Equal(dec("3.00")))
	assert.True(t, amounts.GrossPotentialWinAmount.Equal(dec("285.00")))
	assert.True(t, amounts.Tax.Equal(dec("28.50")), "tax: %s", amounts.Tax)
	assert.True(t, amounts.NetPotentialWinAmount.Equal(dec("256.50")), "net: %s", amounts.NetPotentialWinAmount)
}

func TestCalculateTicketFinancialAmounts_NotFound(t *testing.T) {
	store := newTestStore()
	placer := NewPlacer(store, zap.NewNop())

	_, err := placer.CalculateTicketFinancialAmounts(context.Background(), 404, nil)
	require.Error(t, err)
	assert.Equal(t, types.KindNotFound, types.KindOf(err))
}

func TestCalculateTicketFinancialAmounts_StateAt(t *testing.T) {
	store := newTestStore()
	placer := NewPlacer(store, zap.NewNop())

	ticket, err := placer.PlaceBet(context.Background(), testPlacedAt, 1, []int64{1}, dec("50.00"))
	require.NoError(t, err)

	// Asking for the state before the ticket existed yields NotFound.
	before := testPlacedAt.Add(-time.Hour)
	_, err = placer.CalculateTicketFinancialAmounts(context.Background(), ticket.ID, &before)
	require.Error(t, err)
	assert.Equal(t, types.KindNotFound, types.KindOf(err))
}
