// Package betting implements the bet placement and evaluation engine:
// selection validation, compounded odds, the promotional-combination rule
// and the atomic pay-in that funds a new ticket.
package betting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hattrick/sportsbook/internal/finance"
	"github.com/hattrick/sportsbook/pkg/types"
)

// Placer coordinates one bet placement attempt inside a single database
// transaction: either all of ticket insert, pay-in insert and balance debit
// happen, or none do.
type Placer struct {
	store  Store
	logger *zap.Logger
}

// NewPlacer creates a new bet placer.
func NewPlacer(store Store, logger *zap.Logger) *Placer {
	return &Placer{store: store, logger: logger}
}

// ctxAlive reports the context state as a typed error, so cancellation
// between steps aborts before commit without writing partial state.
func ctxAlive(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return types.NewCancelled(err)
	}
	return nil
}

// PlaceBet validates the pay-in amount and the selection set, evaluates the
// compounded odds, debits the user's balance and persists the ticket with
// its funding transaction, all atomically. It returns the constructed
// ticket on success.
func (p *Placer) PlaceBet(
	ctx context.Context,
	placedAt time.Time,
	userID int64,
	selectionIDs []int64,
	amount decimal.Decimal,
) (*types.Ticket, error) {
	start := time.Now()

	p.logger.Debug("placing-bet",
		zap.Time("placed-at", placedAt),
		zap.Int64("user-id", userID),
		zap.Int64s("selection-ids", selectionIDs),
		zap.String("amount", amount.StringFixed(2)))

	var ticket *types.Ticket

	err := p.store.RunAtomic(ctx, func(tx Tx) error {
		if err := ctxAlive(ctx); err != nil {
			return err
		}

		user, err := tx.GetUserByID(ctx, userID)
		if err != nil {
			return err
		}

		payIn, err := EnsureValidPayInAmount(user.Balance, amount)
		if err != nil {
			return err
		}

		if err = ctxAlive(ctx); err != nil {
			return err
		}

		selections, err := tx.ResolveAvailable(ctx, placedAt, selectionIDs)
		if err != nil {
			return err
		}

		totalOdds, err := EvaluateSelections(selectionIDs, selections)
		if err != nil {
			return err
		}

		if err = ctxAlive(ctx); err != nil {
			return err
		}

		ticket = &types.Ticket{
			UserID:      userID,
			Selections:  orderedSelections(selectionIDs, selections),
			PayInAmount: payIn,
			PayInTime:   placedAt,
			TotalOdds:   totalOdds,
			Status:      types.TicketActive,
			IsResolved:  false,
		}

		if err = tx.DebitBalance(ctx, userID, payIn); err != nil {
			return err
		}
		if err = tx.InsertTicket(ctx, ticket); err != nil {
			return err
		}

		txn := &types.Transaction{
			ID:       uuid.New(),
			UserID:   userID,
			Type:     types.TxPayIn,
			TicketID: &ticket.ID,
			Time:     placedAt,
			Amount:   payIn,
		}

		return tx.InsertTransaction(ctx, txn)
	})
	if err != nil {
		return nil, p.surface(err, "bet-placement-failed",
			zap.Time("placed-at", placedAt),
			zap.Int64("user-id", userID),
			zap.Int64s("selection-ids", selectionIDs),
			zap.String("amount", amount.StringFixed(2)))
	}

	BetsPlacedTotal.Inc()
	PlacementDurationSeconds.Observe(time.Since(start).Seconds())
	payIn, _ := ticket.PayInAmount.Float64()
	PayInAmount.Observe(payIn)

	p.logger.Info("bet-placed",
		zap.Int64("ticket-id", ticket.ID),
		zap.Int64("user-id", userID),
		zap.String("total-odds", ticket.TotalOdds.StringFixed(2)),
		zap.String("amount", ticket.PayInAmount.StringFixed(2)))

	return ticket, nil
}

// CalculateTicketFinancialAmounts derives the full financial breakdown of
// an existing ticket under the tax schedule in force.
func (p *Placer) CalculateTicketFinancialAmounts(
	ctx context.Context,
	ticketID int64,
	stateAt *time.Time,
) (*finance.TicketFinancialAmounts, error) {
	p.logger.Debug("calculating-ticket-amounts",
		zap.Int64("ticket-id", ticketID),
		zap.Timep("state-at", stateAt))

	if err := ctxAlive(ctx); err != nil {
		return nil, err
	}

	ticket, err := p.store.GetTicket(ctx, ticketID, stateAt)
	if err != nil {
		return nil, p.surface(err, "ticket-amounts-failed",
			zap.Int64("ticket-id", ticketID))
	}

	grades, err := p.store.GetTaxGrades(ctx)
	if err != nil {
		return nil, p.surface(err, "ticket-amounts-failed",
			zap.Int64("ticket-id", ticketID))
	}

	amounts := finance.CalculateAmounts(ticket.PayInAmount, ticket.TotalOdds, grades)

	return &amounts, nil
}

// surface maps a failure to the caller-facing error. Validation and lookup
// failures pass through untouched; cancellations short-circuit unlogged;
// anything else is logged with full context and replaced by an opaque
// server error.
func (p *Placer) surface(err error, msg string, fields ...zap.Field) error {
	switch types.KindOf(err) {
	case types.KindBadInput:
		BetsRejectedTotal.WithLabelValues("bad_input").Inc()
		return err
	case types.KindNotFound:
		BetsRejectedTotal.WithLabelValues("not_found").Inc()
		return err
	case types.KindCancelled:
		return types.NewCancelled(err)
	default:
		p.logger.Error(msg, append(fields, zap.Error(err))...)
		BetsRejectedTotal.WithLabelValues("server_error").Inc()
		return types.NewServerError(err)
	}
}

// orderedSelections lists the resolved outcomes in the caller's selection
// order.
func orderedSelections(ids []int64, selections map[int64]*types.Outcome) []*types.Outcome {
	out := make([]*types.Outcome, 0, len(ids))
	for _, id := range ids {
		out = append(out, selections[id])
	}
	return out
}
