package betting

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hattrick/sportsbook/pkg/types"
)

// Store is the persistence surface the betting engine depends on. The
// engine receives already-loaded aggregates and hands back constructed
// domain objects; it never builds queries itself.
type Store interface {
	// RunAtomic executes fn inside one database transaction, committing on
	// success and rolling back on any returned error or cancellation.
	RunAtomic(ctx context.Context, fn func(tx Tx) error) error

	// GetTicket loads a ticket by id, optionally as of a past instant.
	GetTicket(ctx context.Context, ticketID int64, stateAt *time.Time) (*types.Ticket, error)

	// GetTaxGrades loads the progressive tax schedule in force.
	GetTaxGrades(ctx context.Context) ([]*types.TaxGrade, error)
}

// Tx is the transactional view used inside one placement attempt.
type Tx interface {
	// GetUserByID loads a user for update within the transaction.
	GetUserByID(ctx context.Context, id int64) (*types.User, error)

	// ResolveAvailable maps selection ids to outcomes that are priced and
	// whose availability window contains the given instant. Missing ids are
	// simply absent from the result, not an error.
	ResolveAvailable(ctx context.Context, at time.Time, ids []int64) (map[int64]*types.Outcome, error)

	// InsertTicket persists a new ticket and assigns its id.
	InsertTicket(ctx context.Context, ticket *types.Ticket) error

	// InsertTransaction persists a funding transaction.
	InsertTransaction(ctx context.Context, txn *types.Transaction) error

	// DebitBalance conditionally subtracts amount from the user's balance.
	// The update only applies while the balance still covers the amount, so
	// concurrent placements cannot overdraw the account.
	DebitBalance(ctx context.Context, userID int64, amount decimal.Decimal) error
}
