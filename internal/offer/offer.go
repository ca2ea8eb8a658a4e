// Package offer serves the time-windowed betting offer and the selections
// behind existing tickets. Offer reads go through a short-TTL cache since
// the offer only changes when outcomes are prestaged or expire.
package offer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hattrick/sportsbook/pkg/cache"
	"github.com/hattrick/sportsbook/pkg/types"
)

// defaultOfferCacheTTL bounds how stale a cached offer snapshot may get
// when no TTL is configured.
const defaultOfferCacheTTL = 5 * time.Second

// Store is the persistence surface the offer service depends on.
type Store interface {
	GetOffer(ctx context.Context, at time.Time) ([]*types.Event, error)
	GetTicket(ctx context.Context, ticketID int64, stateAt *time.Time) (*types.Ticket, error)
	GetTicketSelections(ctx context.Context, ticketID int64) ([]*types.Outcome, error)
}

// Service answers offer and ticket-selection queries.
type Service struct {
	store  Store
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewService creates an offer service. The cache may be nil, in which case
// every read goes to the store. A non-positive ttl falls back to the
// default cache window.
func NewService(store Store, c cache.Cache, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = defaultOfferCacheTTL
	}
	return &Service{store: store, cache: c, ttl: ttl, logger: logger}
}

// GetOffer returns the betting offer visible at the given instant. Lookups
// within the same cache window share one snapshot; the key truncates the
// instant to the TTL so windows roll over deterministically.
func (s *Service) GetOffer(ctx context.Context, at time.Time) ([]*types.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, types.NewCancelled(err)
	}

	key := "offer:" + at.Truncate(s.ttl).UTC().Format(time.RFC3339)
	if s.cache != nil {
		if cached, found := s.cache.Get(key); found {
			return cached.([]*types.Event), nil
		}
	}

	events, err := s.store.GetOffer(ctx, at)
	if err != nil {
		return nil, s.surface(err, "offer-lookup-failed", zap.Time("at", at))
	}

	if s.cache != nil {
		s.cache.Set(key, events, s.ttl)
	}

	return events, nil
}

// GetTicketSelections returns the outcomes a ticket combines, or NotFound
// when the ticket does not exist (or did not yet exist at stateAt).
func (s *Service) GetTicketSelections(ctx context.Context, ticketID int64, stateAt *time.Time) ([]*types.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, types.NewCancelled(err)
	}

	if _, err := s.store.GetTicket(ctx, ticketID, stateAt); err != nil {
		return nil, s.surface(err, "ticket-selections-failed", zap.Int64("ticket-id", ticketID))
	}

	selections, err := s.store.GetTicketSelections(ctx, ticketID)
	if err != nil {
		return nil, s.surface(err, "ticket-selections-failed", zap.Int64("ticket-id", ticketID))
	}

	return selections, nil
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
