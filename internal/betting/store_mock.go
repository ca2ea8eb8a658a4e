package betting

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hattrick/sportsbook/pkg/types"
)

// MockStore is an in-memory Store implementation for engine tests. It lives
// in the betting package to avoid import cycles. Writes issued inside
// RunAtomic are staged and only applied when fn returns nil, mirroring the
// commit/rollback behaviour of the real store.
type MockStore struct {
	mu           sync.Mutex
	Users        map[int64]*types.User
	Outcomes     map[int64]*types.Outcome
	Tickets      map[int64]*types.Ticket
	Transactions []*types.Transaction
	TaxGrades    []*types.TaxGrade

	// CommitErr, when set, makes RunAtomic fail after fn succeeds, as an
	// infrastructure failure at commit time would.
	CommitErr error

	nextTicketID int64
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{
		Users:    make(map[int64]*types.User),
		Outcomes: make(map[int64]*types.Outcome),
		Tickets:  make(map[int64]*types.Ticket),
	}
}

type mockTx struct {
	store *MockStore

	stagedTickets      []*types.Ticket
	stagedTransactions []*types.Transaction
	stagedDebits       map[int64]decimal.Decimal
}

// RunAtomic runs fn over a staged view and applies the staged writes only
// when fn succeeds.
func (m *MockStore) RunAtomic(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &mockTx{store: m, stagedDebits: make(map[int64]decimal.Decimal)}

	if err := fn(tx); err != nil {
		return err
	}
	if m.CommitErr != nil {
		return m.CommitErr
	}

	for userID, amount := range tx.stagedDebits {
		user := m.Users[userID]
		user.Balance = user.Balance.Sub(amount)
		if user.Balance.IsNegative() {
			user.Balance = decimal.Zero
		}
	}
	for _, ticket := range tx.stagedTickets {
		m.Tickets[ticket.ID] = ticket
	}
	m.Transactions = append(m.Transactions, tx.stagedTransactions...)

	return nil
}

// GetTicket returns a stored ticket, honouring the state-at filter.
func (m *MockStore) GetTicket(ctx context.Context, ticketID int64, stateAt *time.Time) (*types.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ticket, ok := m.Tickets[ticketID]
	if !ok || (stateAt != nil && ticket.PayInTime.After(*stateAt)) {
		return nil, types.NewNotFound("the ticket does not exist")
	}
	return ticket, nil
}

// GetTaxGrades returns the configured schedule.
func (m *MockStore) GetTaxGrades(ctx context.Context) ([]*types.TaxGrade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.TaxGrades, nil
}

func (t *mockTx) GetUserByID(ctx context.Context, id int64) (*types.User, error) {
	user, ok := t.store.Users[id]
	if !ok {
		return nil, types.NewNotFound("the user does not exist")
	}
	clone := *user
	return &clone, nil
}

func (t *mockTx) ResolveAvailable(ctx context.Context, at time.Time, ids []int64) (map[int64]*types.Outcome, error) {
	resolved := make(map[int64]*types.Outcome)
	for _, id := range ids {
		outcome, ok := t.store.Outcomes[id]
		if ok && outcome.Available(at) {
			resolved[id] = outcome
		}
	}
	return resolved, nil
}

func (t *mockTx) InsertTicket(ctx context.Context, ticket *types.Ticket) error {
	t.store.nextTicketID++
	ticket.ID = t.store.nextTicketID
	t.stagedTickets = append(t.stagedTickets, ticket)
	return nil
}

func (t *mockTx) InsertTransaction(ctx context.Context, txn *types.Transaction) error {
	t.stagedTransactions = append(t.stagedTransactions, txn)
	return nil
}

func (t *mockTx) DebitBalance(ctx context.Context, userID int64, amount decimal.Decimal) error {
	user, ok := t.store.Users[userID]
	if !ok {
		return types.NewNotFound("the user does not exist")
	}
	if user.Balance.LessThan(amount) {
		return types.NewBadInput("pay-in amount exceeds the current balance of %s", user.Balance.StringFixed(2))
	}
	t.stagedDebits[userID] = t.stagedDebits[userID].Add(amount)
	return nil
}
