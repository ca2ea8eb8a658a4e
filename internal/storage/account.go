package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hattrick/sportsbook/pkg/types"
)

// GetUser loads a user, optionally with the tickets placed up to stateAt.
func (s *Store) GetUser(ctx context.Context, id int64, stateAt *time.Time, includeTickets bool) (*types.User, error) {
	query := `
		SELECT id, username, balance, registered_on, deactivated_on
		FROM users
		WHERE id = $1
		  AND ($2::timestamptz IS NULL OR
		       (registered_on <= $2 AND (deactivated_on IS NULL OR deactivated_on > $2)))
	`

	var user types.User
	err := s.db.QueryRowContext(ctx, query, id, stateAt).Scan(
		&user.ID, &user.Username, &user.Balance,
		&user.RegisteredOn, &user.DeactivatedOn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NewNotFound("the user does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}

	if includeTickets {
		user.Tickets, err = s.userTickets(ctx, id, stateAt)
		if err != nil {
			return nil, err
		}
	}

	return &user, nil
}

func (s *Store) userTickets(ctx context.Context, userID int64, stateAt *time.Time) ([]*types.Ticket, error) {
	query := `
		SELECT id, user_id, pay_in_amount, pay_in_time, total_odds, status,
		       is_resolved, resolved_time, cost_amount, win_amount, pay_out_time
		FROM tickets
		WHERE user_id = $1 AND ($2::timestamptz IS NULL OR pay_in_time <= $2)
		ORDER BY pay_in_time
	`

	rows, err := s.db.QueryContext(ctx, query, userID, stateAt)
	if err != nil {
		return nil, fmt.Errorf("select user tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*types.Ticket
	for rows.Next() {
		var (
			ticket types.Ticket
			status string
		)
		err = rows.Scan(
			&ticket.ID, &ticket.UserID, &ticket.PayInAmount, &ticket.PayInTime,
			&ticket.TotalOdds, &status, &ticket.IsResolved, &ticket.ResolvedTime,
			&ticket.CostAmount, &ticket.WinAmount, &ticket.PayOutTime,
		)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		ticket.Status = types.TicketStatus(status)
		tickets = append(tickets, &ticket)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tickets: %w", err)
	}

	return tickets, nil
}

// ApplyTransaction atomically moves money on a user account and records the
// transaction. Deposits credit unconditionally; withdrawals only apply
// while the balance covers the amount.
func (s *Store) ApplyTransaction(ctx context.Context, txn *types.Transaction) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := dbTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.Warn("rollback-failed", zap.Error(rbErr))
			}
		}
	}()

	var result sql.Result
	if txn.Type == types.TxDeposit {
		result, err = dbTx.ExecContext(ctx,
			`UPDATE users SET balance = balance + $1 WHERE id = $2`,
			txn.Amount, txn.UserID,
		)
	} else {
		result, err = dbTx.ExecContext(ctx,
			`UPDATE users SET balance = balance - $1 WHERE id = $2 AND balance >= $1`,
			txn.Amount, txn.UserID,
		)
	}
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	if affected == 0 {
		if txn.Type == types.TxDeposit {
			err = types.NewNotFound("the user does not exist")
		} else {
			err = types.NewBadInput("withdrawal amount exceeds the current balance")
		}
		return err
	}

	_, err = dbTx.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, type, ticket_id, time, amount)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		txn.ID, txn.UserID, string(txn.Type), txn.TicketID, txn.Time, txn.Amount,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	err = dbTx.Commit()
	if err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
