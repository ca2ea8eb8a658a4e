package offer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hattrick/sportsbook/pkg/types"
)

type mockStore struct {
	events     []*types.Event
	offerCalls int
	tickets    map[int64]*types.Ticket
	selections map[int64][]*types.Outcome
}

func (m *mockStore) GetOffer(ctx context.Context, at time.Time) ([]*types.Event, error) {
	m.offerCalls++
	return m.events, nil
}

func (m *mockStore) GetTicket(ctx context.Context, ticketID int64, stateAt *time.Time) (*types.Ticket, error) {
	ticket, ok := m.tickets[ticketID]
	if !ok || (stateAt != nil && ticket.PayInTime.After(*stateAt)) {
		return nil, types.NewNotFound("the ticket does not exist")
	}
	return ticket, nil
}

func (m *mockStore) GetTicketSelections(ctx context.Context, ticketID int64) ([]*types.Outcome, error) {
	return m.selections[ticketID], nil
}

// fakeCache is a trivial map-backed cache.
type fakeCache struct {
	entries map[string]interface{}
}

func newFakeCache() *fakeCache { return &fakeCache{entries: make(map[string]interface{})} }

func (c *fakeCache) Get(key string) (interface{}, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *fakeCache) Set(key string, value interface{}, ttl time.Duration) bool {
	c.entries[key] = value
	return true
}

func (c *fakeCache) Delete(key string) { delete(c.entries, key) }
func (c *fakeCache) Clear()            { c.entries = make(map[string]interface{}) }
func (c *fakeCache) Close()            {}

var at = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestGetOffer_CachesSnapshot(t *testing.T) {
	store := &mockStore{events: []*types.Event{{ID: 1, Name: "Alpha v Beta"}}}
	svc := NewService(store, newFakeCache(), 0, zap.NewNop())

	first, err := svc.GetOffer(context.Background(), at)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.GetOffer(context.Background(), at)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.offerCalls, "second lookup must hit the cache")
}

func TestGetOffer_NilCache(t *testing.T) {
	store := &mockStore{}
	svc := NewService(store, nil, 0, zap.NewNop())

	_, err := svc.GetOffer(context.Background(), at)
	require.NoError(t, err)

	_, err = svc.GetOffer(context.Background(), at)
	require.NoError(t, err)
	assert.Equal(t, 2, store.offerCalls)
}

func TestGetTicketSelections(t *testing.T) {
	store := &mockStore{
		tickets: map[int64]*types.Ticket{
			7: {ID: 7, PayInTime: at},
		},
		selections: map[int64][]*types.Outcome{
			7: {{ID: 1, EventID: 100}, {ID: 2, EventID: 200}},
		},
	}
	svc := NewService(store, nil, 0, zap.NewNop())

	selections, err := svc.GetTicketSelections(context.Background(), 7, nil)
	require.NoError(t, err)
	assert.Len(t, selections, 2)
}

func TestGetTicketSelections_NotFound(t *testing.T) {
	store := &mockStore{tickets: map[int64]*types.Ticket{}}
	svc := NewService(store, nil, 0, zap.NewNop())

	_, err := svc.GetTicketSelections(context.Background(), 404, nil)
	require.Error(t, err)
	assert.Equal(t, types.KindNotFound, types.KindOf(err))
}

func TestGetTicketSelections_StateAtBeforePlacement(t *testing.T) {
	store := &mockStore{
		tickets: map[int64]*types.Ticket{
			7: {ID: 7, PayInTime: at},
		},
	}
	svc := NewService(store, nil, 0, zap.NewNop())

	before := at.Add(-time.Hour)
	_, err := svc.GetTicketSelections(context.Background(), 7, &before)
	require.Error(t, err)
	assert.Equal(t, types.KindNotFound, types.KindOf(err))
}
