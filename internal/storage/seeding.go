package storage

import (
	"context"
	"fmt"

	"github.com/hattrick/sportsbook/pkg/types"
)

// Insert helpers used by sample-data seeding. Each assigns the generated id
// back onto the model so callers can wire up the parent chain.

func (s *Store) InsertUser(ctx context.Context, user *types.User) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (username, balance, registered_on) VALUES ($1, $2, $3) RETURNING id`,
		user.Username, user.Balance, user.RegisteredOn,
	).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) InsertEvent(ctx context.Context, event *types.Event) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO events (name, sport, starts_at, ends_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		event.Name, event.Sport, event.StartsAt, event.EndsAt,
	).Scan(&event.ID)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *Store) InsertFixture(ctx context.Context, fixture *types.Fixture) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO fixtures (event_id, type, is_promoted) VALUES ($1, $2, $3) RETURNING id`,
		fixture.EventID, fixture.Type, fixture.IsPromoted,
	).Scan(&fixture.ID)
	if err != nil {
		return fmt.Errorf("insert fixture: %w", err)
	}
	return nil
}

func (s *Store) InsertMarket(ctx context.Context, market *types.Market) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO markets (fixture_id, type) VALUES ($1, $2) RETURNING id`,
		market.FixtureID, market.Type,
	).Scan(&market.ID)
	if err != nil {
		return fmt.Errorf("insert market: %w", err)
	}
	return nil
}

func (s *Store) InsertOutcome(ctx context.Context, outcome *types.Outcome) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO outcomes (market_id, name, value, odds, available_from, available_until)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		outcome.MarketID, outcome.Name, outcome.Value, outcome.Odds,
		outcome.AvailableFrom, outcome.AvailableUntil,
	).Scan(&outcome.ID)
	if err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}
	return nil
}

func (s *Store) InsertTaxGrade(ctx context.Context, grade *types.TaxGrade) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO tax_grades (lower_bound, upper_bound, rate) VALUES ($1, $2, $3) RETURNING id`,
		grade.LowerBound, grade.UpperBound, grade.Rate,
	).Scan(&grade.ID)
	if err != nil {
		return fmt.Errorf("insert tax grade: %w", err)
	}
	return nil
}
