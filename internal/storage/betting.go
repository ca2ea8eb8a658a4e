package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hattrick/sportsbook/internal/betting"
	"github.com/hattrick/sportsbook/pkg/types"
)

// RunAtomic executes fn inside one database transaction. The transaction is
// committed when fn returns nil and rolled back on any error, so the ticket
// insert, the pay-in insert and the balance debit are never observed
// independently.
func (s *Store) RunAtomic(ctx context.Context, fn func(tx betting.Tx) error) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	err = fn(&atomicTx{tx: dbTx})
	if err != nil {
		if rbErr := dbTx.Rollback(); rbErr != nil {
			s.logger.Warn("rollback-failed", zap.Error(rbErr))
		}
		return err
	}

	err = dbTx.Commit()
	if err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// atomicTx is the transactional view handed to the betting engine.
type atomicTx struct {
	tx *sql.Tx
}

// GetUserByID loads one user row within the transaction.
func (t *atomicTx) GetUserByID(ctx context.Context, id int64) (*types.User, error) {
	query := `
		SELECT id, username, balance, registered_on, deactivated_on
		FROM users
		WHERE id = $1
	`

	var user types.User
	err := t.tx.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.Balance,
		&user.RegisteredOn, &user.DeactivatedOn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NewNotFound("the user does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}

	return &user, nil
}

const resolveAvailableQuery = `
	SELECT o.id, o.market_id, m.fixture_id, f.event_id, e.name, e.sport,
	       o.name, o.value, o.odds, o.available_from, o.available_until,
	       f.is_promoted
	FROM outcomes o
	JOIN markets m ON m.id = o.market_id
	JOIN fixtures f ON f.id = m.fixture_id
	JOIN events e ON e.id = f.event_id
	WHERE o.available_from <= $1
	  AND o.available_until > $1
	  AND o.odds IS NOT NULL
	  AND o.id = ANY($2)
`

// ResolveAvailable maps selection ids to outcomes that are priced and whose
// availability window contains the given instant. Ids without a matching
// row are absent from the result; the evaluator turns absence into one
// uniform validation error.
func (t *atomicTx) ResolveAvailable(ctx context.Context, at time.Time, ids []int64) (map[int64]*types.Outcome, error) {
	rows, err := t.tx.QueryContext(ctx, resolveAvailableQuery, at, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("select outcomes: %w", err)
	}
	defer rows.Close()

	resolved := make(map[int64]*types.Outcome, len(ids))
	for rows.Next() {
		outcome, err := scanOutcome(rows)
		if err != nil {
			return nil, err
		}
		resolved[outcome.ID] = outcome
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}

	return resolved, nil
}

// InsertTicket persists the ticket and its selection links, assigning the
// generated id.
func (t *atomicTx) InsertTicket(ctx context.Context, ticket *types.Ticket) error {
	query := `
		INSERT INTO tickets (user_id, pay_in_amount, pay_in_time, total_odds, status, is_resolved)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := t.tx.QueryRowContext(ctx, query,
		ticket.UserID,
		ticket.PayInAmount,
		ticket.PayInTime,
		ticket.TotalOdds,
		string(ticket.Status),
		ticket.IsResolved,
	).Scan(&ticket.ID)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}

	for _, selection := range ticket.Selections {
		_, err = t.tx.ExecContext(ctx,
			`INSERT INTO ticket_selections (ticket_id, outcome_id) VALUES ($1, $2)`,
			ticket.ID, selection.ID,
		)
		if err != nil {
			return fmt.Errorf("insert ticket selection: %w", err)
		}
	}

	return nil
}

// InsertTransaction persists one money movement.
func (t *atomicTx) InsertTransaction(ctx context.Context, txn *types.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, type, ticket_id, time, amount)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := t.tx.ExecContext(ctx, query,
		txn.ID, txn.UserID, string(txn.Type), txn.TicketID, txn.Time, txn.Amount,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	return nil
}

// DebitBalance subtracts the amount only while the balance still covers it,
// so two concurrent placements cannot jointly overdraw the account.
func (t *atomicTx) DebitBalance(ctx context.Context, userID int64, amount decimal.Decimal) error {
	result, err := t.tx.ExecContext(ctx,
		`UPDATE users SET balance = balance - $1 WHERE id = $2 AND balance >= $1`,
		amount, userID,
	)
	if err != nil {
		return fmt.Errorf("debit balance: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("debit balance: %w", err)
	}
	if affected == 0 {
		return types.NewBadInput("pay-in amount exceeds the current balance")
	}

	return nil
}

// GetTicket loads a ticket by id, optionally as of a past instant.
func (s *Store) GetTicket(ctx context.Context, ticketID int64, stateAt *time.Time) (*types.Ticket, error) {
	query := `
		SELECT id, user_id, pay_in_amount, pay_in_time, total_odds, status,
		       is_resolved, resolved_time, cost_amount, win_amount, pay_out_time
		FROM tickets
		WHERE id = $1 AND ($2::timestamptz IS NULL OR pay_in_time <= $2)
	`

	var (
		ticket types.Ticket
		status string
	)
	err := s.db.QueryRowContext(ctx, query, ticketID, stateAt).Scan(
		&ticket.ID, &ticket.UserID, &ticket.PayInAmount, &ticket.PayInTime,
		&ticket.TotalOdds, &status, &ticket.IsResolved, &ticket.ResolvedTime,
		&ticket.CostAmount, &ticket.WinAmount, &ticket.PayOutTime,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NewNotFound("the ticket does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("select ticket: %w", err)
	}
	ticket.Status = types.TicketStatus(status)

	return &ticket, nil
}

// GetTaxGrades loads the tax schedule, lowest bracket first.
func (s *Store) GetTaxGrades(ctx context.Context) ([]*types.TaxGrade, error) {
	query := `
		SELECT id, lower_bound, upper_bound, rate
		FROM tax_grades
		ORDER BY lower_bound ASC NULLS FIRST
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select tax grades: %w", err)
	}
	defer rows.Close()

	var grades []*types.TaxGrade
	for rows.Next() {
		var (
			grade types.TaxGrade
			lower decimal.NullDecimal
			upper decimal.NullDecimal
		)
		if err = rows.Scan(&grade.ID, &lower, &upper, &grade.Rate); err != nil {
			return nil, fmt.Errorf("scan tax grade: %w", err)
		}
		if lower.Valid {
			grade.LowerBound = &lower.Decimal
		}
		if upper.Valid {
			grade.UpperBound = &upper.Decimal
		}
		grades = append(grades, &grade)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tax grades: %w", err)
	}

	return grades, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanOutcome reads one row of the flattened outcome join.
func scanOutcome(row rowScanner) (*types.Outcome, error) {
	var (
		outcome types.Outcome
		value   sql.NullString
		odds    decimal.NullDecimal
	)
	err := row.Scan(
		&outcome.ID, &outcome.MarketID, &outcome.FixtureID, &outcome.EventID,
		&outcome.EventName, &outcome.Sport, &outcome.Name, &value, &odds,
		&outcome.AvailableFrom, &outcome.AvailableUntil, &outcome.IsPromoted,
	)
	if err != nil {
		return nil, fmt.Errorf("scan outcome: %w", err)
	}
	outcome.Value = value.String
	if odds.Valid {
		outcome.Odds = &odds.Decimal
	}

	return &outcome, nil
}
