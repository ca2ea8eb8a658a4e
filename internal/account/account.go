// Package account implements the user-facing wallet operations: deposits,
// withdrawals and account lookups with betting history.
package account

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hattrick/sportsbook/internal/finance"
	"github.com/hattrick/sportsbook/pkg/types"
)

// Limits on a single deposit or withdrawal.
var (
	MinTransactionAmount = decimal.RequireFromString("1.00")
	MaxTransactionAmount = decimal.RequireFromString("250000.00")
)

// Store is the persistence surface the account engine depends on.
type Store interface {
	GetUser(ctx context.Context, id int64, stateAt *time.Time, includeTickets bool) (*types.User, error)
	ApplyTransaction(ctx context.Context, txn *types.Transaction) error
}

// Service handles account money movements and lookups.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates an account service.
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// ensureValidTransactionAmount rounds and validates a deposit or withdrawal
// amount against the transaction limits and, for withdrawals, the balance.
func ensureValidTransactionAmount(deposit bool, balance, amount decimal.Decimal) (decimal.Decimal, error) {
	amount = finance.Round(amount)

	if amount.IsNegative() {
		return decimal.Zero, types.NewBadInput("transaction amount is negative")
	}
	if amount.LessThan(MinTransactionAmount) || amount.GreaterThan(MaxTransactionAmount) {
		return decimal.Zero, types.NewBadInput(
			"transaction amount is out of range: minimal allowed transaction is %s, maximal allowed single transaction is %s",
			MinTransactionAmount.StringFixed(2), MaxTransactionAmount.StringFixed(2))
	}
	if !deposit && amount.GreaterThan(balance) {
		return decimal.Zero, types.NewBadInput(
			"withdrawal amount exceeds the current balance of %s", balance.StringFixed(2))
	}

	return amount, nil
}

// MakeTransaction deposits into or withdraws from a user account,
// atomically updating the balance and recording the movement.
func (s *Service) MakeTransaction(
	ctx context.Context,
	at time.Time,
	userID int64,
	amount decimal.Decimal,
	deposit bool,
) (*types.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, types.NewCancelled(err)
	}

	user, err := s.store.GetUser(ctx, userID, nil, false)
	if err != nil {
		return nil, s.surface(err, "account-transaction-failed",
			zap.Int64("user-id", userID),
			zap.Bool("deposit", deposit))
	}

	amount, err = ensureValidTransactionAmount(deposit, user.Balance, amount)
	if err != nil {
		return nil, err
	}

	txnType := types.TxWithdrawal
	if deposit {
		txnType = types.TxDeposit
	}
	txn := &types.Transaction{
		ID:     uuid.New(),
		UserID: userID,
		Type:   txnType,
		Time:   at,
		Amount: amount,
	}

	if err = s.store.ApplyTransaction(ctx, txn); err != nil {
		return nil, s.surface(err, "account-transaction-failed",
			zap.Int64("user-id", userID),
			zap.Bool("deposit", deposit),
			zap.String("amount", amount.StringFixed(2)))
	}

	s.logger.Info("account-transaction-applied",
		zap.Int64("user-id", userID),
		zap.String("type", string(txnType)),
		zap.String("amount", amount.StringFixed(2)))

	return txn, nil
}

// GetUser returns a user, optionally with the tickets placed up to stateAt.
func (s *Service) GetUser(ctx context.Context, id int64, stateAt *time.Time, includeTickets bool) (*types.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, types.NewCancelled(err)
	}

	user, err := s.store.GetUser(ctx, id, stateAt, includeTickets)
	if err != nil {
		return nil, s.surface(err, "user-lookup-failed", zap.Int64("user-id", id))
	}

	return user, nil
}

func (s *Service) surface(err error, msg string, fields ...zap.Field) error {
	switch types.KindOf(err) {
	case types.KindBadInput, types.KindNotFound:
		return err
	case types.KindCancelled:
		return types.NewCancelled(err)
	default:
		s.logger.Error(msg, append(fields, zap.Error(err))...)
		return types.NewServerError(err)
	}
}
