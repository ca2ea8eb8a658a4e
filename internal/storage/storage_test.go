package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hattrick/sportsbook/internal/betting"
	"github.com/hattrick/sportsbook/pkg/types"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewWithDB(db, zap.NewNop()), mock
}

var testAt = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func outcomeColumns() []string {
	return []string{
		"id", "market_id", "fixture_id", "event_id", "event_name", "sport",
		"name", "value", "odds", "available_from", "available_until", "is_promoted",
	}
}

func TestRunAtomic_CommitsOnSuccess(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET balance = balance -").
		WithArgs(decimal.RequireFromString("50.00"), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.RunAtomic(context.Background(), func(tx betting.Tx) error {
		return tx.DebitBalance(context.Background(), 1, decimal.RequireFromString("50.00"))
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunAtomic_RollsBackOnError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	wantErr := errors.New("evaluation failed")
	err := store.RunAtomic(context.Background(), func(tx betting.Tx) error {
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebitBalance_InsufficientFunds(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET balance = balance -").
		WithArgs(decimal.RequireFromString("50.00"), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.RunAtomic(context.Background(), func(tx betting.Tx) error {
		return tx.DebitBalance(context.Background(), 1, decimal.RequireFromString("50.00"))
	})
	require.Error(t, err)
	assert.Equal(t, types.KindBadInput, types.KindOf(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveAvailable(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows(outcomeColumns()).
		AddRow(int64(1), int64(10), int64(20), int64(30), "Alpha v Beta", "football",
			"1", "", "2.00", testAt.Add(-time.Hour), testAt.Add(time.Hour), false)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM outcomes o").
		WithArgs(testAt, sqlmock.AnyArg()).
		WillReturnRows(rows)
	mock.ExpectCommit()

	err := store.RunAtomic(context.Background(), func(tx betting.Tx) error {
		resolved, err := tx.ResolveAvailable(context.Background(), testAt, []int64{1, 2})
		require.NoError(t, err)

		// Only the returned row resolves; id 2 is simply absent.
		require.Len(t, resolved, 1)
		outcome := resolved[1]
		require.NotNil(t, outcome)
		assert.Equal(t, int64(30), outcome.EventID)
		require.NotNil(t, outcome.Odds)
		assert.True(t, outcome.Odds.Equal(decimal.RequireFromString("2.00")))
		assert.False(t, outcome.IsPromoted)

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertTicket_AssignsIDAndLinksSelections(t *testing.T) {
	store, mock := newMockStore(t)

	odds := decimal.RequireFromString("2.00")
	ticket := &types.Ticket{
		UserID:      1,
		Selections:  []*types.Outcome{{ID: 7, Odds: &odds}},
		PayInAmount: decimal.RequireFromString("50.00"),
		PayInTime:   testAt,
		TotalOdds:   odds,
		Status:      types.TicketActive,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO tickets").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
	mock.ExpectExec("INSERT INTO ticket_selections").
		WithArgs(int64(42), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.RunAtomic(context.Background(), func(tx betting.Tx) error {
		return tx.InsertTicket(context.Background(), ticket)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), ticket.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTicket_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("FROM tickets").
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetTicket(context.Background(), 404, nil)
	require.Error(t, err)
	assert.Equal(t, types.KindNotFound, types.KindOf(err))
}

func TestGetTaxGrades(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "lower_bound", "upper_bound", "rate"}).
		AddRow(int64(1), "0", "10000", "0.10").
		AddRow(int64(2), "10000", "30000", "0.15").
		AddRow(int64(3), "30000", nil, "0.30")

	mock.ExpectQuery("FROM tax_grades").WillReturnRows(rows)

	grades, err := store.GetTaxGrades(context.Background())
	require.NoError(t, err)
	require.Len(t, grades, 3)
	assert.Nil(t, grades[2].UpperBound)
	require.NotNil(t, grades[1].LowerBound)
	assert.True(t, grades[1].LowerBound.Equal(decimal.RequireFromString("10000")))
}

func TestApplyTransaction_WithdrawalInsufficientFunds(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET balance = balance -").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	txn := &types.Transaction{
		UserID: 1,
		Type:   types.TxWithdrawal,
		Time:   testAt,
		Amount: decimal.RequireFromString("100.00"),
	}

	err := store.ApplyTransaction(context.Background(), txn)
	require.Error(t, err)
	assert.Equal(t, types.KindBadInput, types.KindOf(err))
	require.NoError(t, mock.ExpectationsWereMet())
}
