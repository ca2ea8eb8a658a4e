package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TicketStatus is the lifecycle state of a placed ticket.
type TicketStatus string

const (
	TicketActive    TicketStatus = "active"
	TicketRejected  TicketStatus = "rejected"
	TicketCancelled TicketStatus = "cancelled"
	TicketCashedOut TicketStatus = "cashed_out"
	TicketWon       TicketStatus = "won"
	TicketLost      TicketStatus = "lost"
)

// TransactionType distinguishes the four money movements on a user account.
type TransactionType string

const (
	TxDeposit    TransactionType = "deposit"
	TxWithdrawal TransactionType = "withdrawal"
	TxPayIn      TransactionType = "pay_in"
	TxPayOut     TransactionType = "pay_out"
)

// Outcome is a single priced proposition a bettor can select. The parent
// market/fixture/event chain is flattened to the fields the engine needs.
type Outcome struct {
	ID             int64
	MarketID       int64
	FixtureID      int64
	EventID        int64
	EventName      string
	Sport          string
	Name           string
	Value          string
	Odds           *decimal.Decimal // nil means not currently priced for betting
	AvailableFrom  time.Time
	AvailableUntil time.Time
	IsPromoted     bool // inherited from the fixture type
}

// Available reports whether the outcome can be selected at the given instant.
// An outcome is usable only inside its availability window and while priced.
func (o *Outcome) Available(at time.Time) bool {
	if o.Odds == nil {
		return false
	}
	return !at.Before(o.AvailableFrom) && at.Before(o.AvailableUntil)
}

// Ticket is a bet slip: selections, a stake, and the resulting potential payout.
type Ticket struct {
	ID           int64
	UserID       int64
	Selections   []*Outcome
	PayInAmount  decimal.Decimal
	PayInTime    time.Time
	TotalOdds    decimal.Decimal
	Status       TicketStatus
	IsResolved   bool
	ResolvedTime *time.Time
	CostAmount   *decimal.Decimal
	WinAmount    *decimal.Decimal
	PayOutTime   *time.Time
}

// Transaction records one money movement on a user account. Pay-ins carry
// the ticket they fund.
type Transaction struct {
	ID       uuid.UUID
	UserID   int64
	Type     TransactionType
	TicketID *int64
	Time     time.Time
	Amount   decimal.Decimal
}

// TaxGrade is one bracket of the progressive tax schedule. A nil LowerBound
// means zero, a nil UpperBound means unbounded.
type TaxGrade struct {
	ID         int64
	LowerBound *decimal.Decimal
	UpperBound *decimal.Decimal
	Rate       decimal.Decimal
}

// User is a sportsbook account holder.
type User struct {
	ID            int64
	Username      string
	Balance       decimal.Decimal
	RegisteredOn  time.Time
	DeactivatedOn *time.Time
	Tickets       []*Ticket
}

// Event groups the fixtures, markets and outcomes shown in the betting offer.
type Event struct {
	ID       int64
	Name     string
	Sport    string
	StartsAt time.Time
	EndsAt   time.Time
	Fixtures []*Fixture
}

// Fixture is one offering mode of an event (prematch, live, promoted).
type Fixture struct {
	ID         int64
	EventID    int64
	Type       string
	IsPromoted bool
	Markets    []*Market
}

// Market is a group of mutually exclusive outcomes within a fixture.
type Market struct {
	ID        int64
	FixtureID int64
	Type      string
	Outcomes  []*Outcome
}
