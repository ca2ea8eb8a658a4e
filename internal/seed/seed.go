// Package seed loads a demo data set: the progressive tax schedule, demo
// user accounts and a small betting offer with priced outcomes. Availability
// windows are laid out relative to the seeding instant so the offer is
// immediately placeable.
package seed

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hattrick/sportsbook/pkg/types"
)

// Store is the persistence surface the seeder depends on.
type Store interface {
	InsertUser(ctx context.Context, user *types.User) error
	InsertEvent(ctx context.Context, event *types.Event) error
	InsertFixture(ctx context.Context, fixture *types.Fixture) error
	InsertMarket(ctx context.Context, market *types.Market) error
	InsertOutcome(ctx context.Context, outcome *types.Outcome) error
	InsertTaxGrade(ctx context.Context, grade *types.TaxGrade) error
}

// Seeder loads the demo data set.
type Seeder struct {
	store  Store
	logger *zap.Logger
}

// New creates a seeder.
func New(store Store, logger *zap.Logger) *Seeder {
	return &Seeder{store: store, logger: logger}
}

// outcomeSpec is one priced proposition in the demo offer. Empty odds mean
// the outcome exists but is not priced for betting.
type outcomeSpec struct {
	value string
	odds  string
}

// eventSpec describes one demo event with a single winner market.
type eventSpec struct {
	name     string
	sport    string
	startsIn time.Duration
	duration time.Duration
	fixture  string
	promoted bool
	outcomes []outcomeSpec
}

func demoEvents() []eventSpec {
	return []eventSpec{
		{
			name: "Ac. Viseu - FC Porto", sport: "football",
			startsIn: 4 * time.Hour, duration: 2 * time.Hour, fixture: "prematch",
			outcomes: []outcomeSpec{
				{"1", "11.00"}, {"X", "5.50"}, {"2", "1.25"},
				{"1X", "3.60"}, {"X2", "1.05"}, {"12", "1.10"},
			},
		},
		{
			name: "Marseille - Paris SG", sport: "football",
			startsIn: 3 * time.Hour, duration: 2 * time.Hour, fixture: "prematch",
			outcomes: []outcomeSpec{
				{"1", "3.10"}, {"X", "3.60"}, {"2", "2.50"},
				{"1X", "1.65"}, {"X2", "1.50"}, {"12", "1.40"},
			},
		},
		{
			name: "Wolf J.J. - Albot R.", sport: "tennis",
			startsIn: 3 * time.Hour, duration: 2 * time.Hour, fixture: "prematch",
			outcomes: []outcomeSpec{
				{"1", "1.20"}, {"2", "3.60"}, {"1X", ""}, {"X2", ""},
			},
		},
		{
			name: "Santos FC - Sao Bento", sport: "football",
			startsIn: 7 * time.Hour, duration: 2 * time.Hour, fixture: "promoted_prematch", promoted: true,
			outcomes: []outcomeSpec{
				{"1", "1.50"}, {"X", "3.50"}, {"2", "6.30"},
				{"1X", "1.05"}, {"X2", "2.30"}, {"12", "1.20"},
			},
		},
		{
			name: "Toronto Raptors - San Antonio Spurs", sport: "basketball",
			startsIn: 7 * time.Hour, duration: 2 * time.Hour, fixture: "prematch",
			outcomes: []outcomeSpec{
				{"1", "1.20"}, {"X", "17.00"}, {"2", "5.50"},
				{"1X", "1.10"}, {"X2", "4.15"}, {"12", ""},
			},
		},
		{
			name: "Cleveland Caval. - Detroit Pistons", sport: "basketball",
			startsIn: 6 * time.Hour, duration: 2 * time.Hour, fixture: "prematch",
			outcomes: []outcomeSpec{
				{"1", "1.15"}, {"X", "18.00"}, {"2", "6.70"},
				{"1X", "1.10"}, {"X2", "4.90"}, {"12", ""},
			},
		},
		{
			name: "N.Y. Rangers - Vancouver Canuc.", sport: "hockey",
			startsIn: 8 * time.Hour, duration: 2 * time.Hour, fixture: "prematch",
			outcomes: []outcomeSpec{
				{"1", "1.70"}, {"X", "4.40"}, {"2", "3.70"},
				{"1X", "1.20"}, {"X2", "2.00"}, {"12", "1.15"},
			},
		},
		{
			name: "Boston Celtics - Philadelphia 76ers", sport: "basketball",
			startsIn: 7 * time.Hour, duration: 2 * time.Hour, fixture: "prematch",
			outcomes: []outcomeSpec{
				{"1", "1.60"}, {"X", "14.00"}, {"2", "2.60"},
				{"1X", "1.45"}, {"X2", "2.20"}, {"12", ""},
			},
		},
		{
			name: "Baez S. - Darderi L.", sport: "tennis",
			startsIn: 30 * time.Hour, duration: 2 * time.Hour, fixture: "prematch",
			outcomes: []outcomeSpec{
				{"1", "1.50"}, {"2", "2.30"}, {"1X", ""}, {"X2", ""},
			},
		},
	}
}

func demoTaxGrades() []*types.TaxGrade {
	zero := decimal.Zero
	tenK := decimal.RequireFromString("10000.00")
	thirtyK := decimal.RequireFromString("30000.00")

	return []*types.TaxGrade{
		{LowerBound: &zero, UpperBound: &tenK, Rate: decimal.RequireFromString("0.10")},
		{LowerBound: &tenK, UpperBound: &thirtyK, Rate: decimal.RequireFromString("0.15")},
		{LowerBound: &thirtyK, UpperBound: nil, Rate: decimal.RequireFromString("0.30")},
	}
}

func demoUsers(now time.Time) []*types.User {
	return []*types.User{
		{
			Username:     "hat-trick",
			Balance:      decimal.RequireFromString("1000.00"),
			RegisteredOn: now,
		},
	}
}

// Run inserts the full demo data set. It is not idempotent; run it against
// an empty database.
func (s *Seeder) Run(ctx context.Context, now time.Time) error {
	for _, grade := range demoTaxGrades() {
		if err := s.store.InsertTaxGrade(ctx, grade); err != nil {
			return err
		}
	}

	for _, user := range demoUsers(now) {
		if err := s.store.InsertUser(ctx, user); err != nil {
			return err
		}
		s.logger.Info("seeded-user",
			zap.Int64("user-id", user.ID),
			zap.String("username", user.Username))
	}

	outcomeCount := 0
	for _, spec := range demoEvents() {
		n, err := s.seedEvent(ctx, now, spec)
		if err != nil {
			return err
		}
		outcomeCount += n
	}

	s.logger.Info("seeding-complete",
		zap.Int("events", len(demoEvents())),
		zap.Int("outcomes", outcomeCount))

	return nil
}

// seedEvent inserts one event with its fixture, winner market and outcomes.
// Selling stops two minutes before the event starts.
func (s *Seeder) seedEvent(ctx context.Context, now time.Time, spec eventSpec) (int, error) {
	startsAt := now.Add(spec.startsIn)
	availableFrom := now.Add(-1 * time.Hour)
	availableUntil := startsAt.Add(-2 * time.Minute)

	event := &types.Event{
		Name:     spec.name,
		Sport:    spec.sport,
		StartsAt: startsAt,
		EndsAt:   startsAt.Add(spec.duration),
	}
	if err := s.store.InsertEvent(ctx, event); err != nil {
		return 0, err
	}

	fixture := &types.Fixture{
		EventID:    event.ID,
		Type:       spec.fixture,
		IsPromoted: spec.promoted,
	}
	if err := s.store.InsertFixture(ctx, fixture); err != nil {
		return 0, err
	}

	market := &types.Market{
		FixtureID: fixture.ID,
		Type:      "winner_of_match",
	}
	if err := s.store.InsertMarket(ctx, market); err != nil {
		return 0, err
	}

	for _, o := range spec.outcomes {
		var odds *decimal.Decimal
		if o.odds != "" {
			parsed := decimal.RequireFromString(o.odds)
			odds = &parsed
		}

		outcome := &types.Outcome{
			MarketID:       market.ID,
			Name:           "winner_of_match",
			Value:          o.value,
			Odds:           odds,
			AvailableFrom:  availableFrom,
			AvailableUntil: availableUntil,
		}
		if err := s.store.InsertOutcome(ctx, outcome); err != nil {
			return 0, err
		}
	}

	return len(spec.outcomes), nil
}
