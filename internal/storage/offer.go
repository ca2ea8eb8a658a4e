package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hattrick/sportsbook/pkg/types"
)

const offerQuery = `
	SELECT o.id, o.market_id, m.fixture_id, f.event_id, e.name, e.sport,
	       o.name, o.value, o.odds, o.available_from, o.available_until,
	       f.is_promoted,
	       e.starts_at, e.ends_at, f.type, m.type
	FROM outcomes o
	JOIN markets m ON m.id = o.market_id
	JOIN fixtures f ON f.id = m.fixture_id
	JOIN events e ON e.id = f.event_id
	WHERE o.available_from <= $1
	  AND o.available_until > $1
	  AND o.odds IS NOT NULL
	ORDER BY e.starts_at, e.id, f.id, m.id, o.id
`

// GetOffer returns the betting offer visible at the given instant, grouped
// event -> fixture -> market -> outcome.
func (s *Store) GetOffer(ctx context.Context, at time.Time) ([]*types.Event, error) {
	rows, err := s.db.QueryContext(ctx, offerQuery, at)
	if err != nil {
		return nil, fmt.Errorf("select offer: %w", err)
	}
	defer rows.Close()

	var (
		events   []*types.Event
		eventIdx = make(map[int64]*types.Event)
		fixIdx   = make(map[int64]*types.Fixture)
		mktIdx   = make(map[int64]*types.Market)
	)

	for rows.Next() {
		var (
			outcome              types.Outcome
			value                sql.NullString
			odds                 decimal.NullDecimal
			startsAt, endsAt     time.Time
			fixtureType, mktType string
		)
		err = rows.Scan(
			&outcome.ID, &outcome.MarketID, &outcome.FixtureID, &outcome.EventID,
			&outcome.EventName, &outcome.Sport, &outcome.Name, &value, &odds,
			&outcome.AvailableFrom, &outcome.AvailableUntil, &outcome.IsPromoted,
			&startsAt, &endsAt, &fixtureType, &mktType,
		)
		if err != nil {
			return nil, fmt.Errorf("scan offer row: %w", err)
		}
		outcome.Value = value.String
		if odds.Valid {
			outcome.Odds = &odds.Decimal
		}

		event, ok := eventIdx[outcome.EventID]
		if !ok {
			event = &types.Event{
				ID:       outcome.EventID,
				Name:     outcome.EventName,
				Sport:    outcome.Sport,
				StartsAt: startsAt,
				EndsAt:   endsAt,
			}
			eventIdx[event.ID] = event
			events = append(events, event)
		}

		fixture, ok := fixIdx[outcome.FixtureID]
		if !ok {
			fixture = &types.Fixture{
				ID:         outcome.FixtureID,
				EventID:    outcome.EventID,
				Type:       fixtureType,
				IsPromoted: outcome.IsPromoted,
			}
			fixIdx[fixture.ID] = fixture
			event.Fixtures = append(event.Fixtures, fixture)
		}

		market, ok := mktIdx[outcome.MarketID]
		if !ok {
			market = &types.Market{
				ID:        outcome.MarketID,
				FixtureID: outcome.FixtureID,
				Type:      mktType,
			}
			mktIdx[market.ID] = market
			fixture.Markets = append(fixture.Markets, market)
		}

		market.Outcomes = append(market.Outcomes, &outcome)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate offer: %w", err)
	}

	return events, nil
}

const ticketSelectionsQuery = `
	SELECT o.id, o.market_id, m.fixture_id, f.event_id, e.name, e.sport,
	       o.name, o.value, o.odds, o.available_from, o.available_until,
	       f.is_promoted
	FROM ticket_selections ts
	JOIN outcomes o ON o.id = ts.outcome_id
	JOIN markets m ON m.id = o.market_id
	JOIN fixtures f ON f.id = m.fixture_id
	JOIN events e ON e.id = f.event_id
	WHERE ts.ticket_id = $1
	ORDER BY o.id
`

// GetTicketSelections returns the outcomes behind a ticket's selections.
// The caller is expected to have checked that the ticket exists.
func (s *Store) GetTicketSelections(ctx context.Context, ticketID int64) ([]*types.Outcome, error) {
	rows, err := s.db.QueryContext(ctx, ticketSelectionsQuery, ticketID)
	if err != nil {
		return nil, fmt.Errorf("select ticket selections: %w", err)
	}
	defer rows.Close()

	var selections []*types.Outcome
	for rows.Next() {
		outcome, err := scanOutcome(rows)
		if err != nil {
			return nil, err
		}
		selections = append(selections, outcome)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticket selections: %w", err)
	}

	return selections, nil
}
