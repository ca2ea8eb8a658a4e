package httpserver

import (
	"context"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hattrick/sportsbook/internal/finance"
	"github.com/hattrick/sportsbook/pkg/types"
)

// BetEngine places bets and derives ticket financials.
type BetEngine interface {
	PlaceBet(ctx context.Context, placedAt time.Time, userID int64, selectionIDs []int64, amount decimal.Decimal) (*types.Ticket, error)
	CalculateTicketFinancialAmounts(ctx context.Context, ticketID int64, stateAt *time.Time) (*finance.TicketFinancialAmounts, error)
}

// BetsHandler handles HTTP requests for bet placement and ticket financials.
type BetsHandler struct {
	bets   BetEngine
	logger *zap.Logger
}

// NewBetsHandler creates a new bets handler.
func NewBetsHandler(bets BetEngine, logger *zap.Logger) *BetsHandler {
	return &BetsHandler{
		bets:   bets,
		logger: logger,
	}
}

// PlaceBetRequest is the body of a bet placement call.
type PlaceBetRequest struct {
	UserID       int64           `json:"userId"`
	SelectionIDs []int64         `json:"selectionIds"`
	Amount       decimal.Decimal `json:"amount"`
}

// SelectionResponse represents one outcome on a ticket or in the offer.
type SelectionResponse struct {
	ID         int64            `json:"id"`
	EventID    int64            `json:"eventId"`
	EventName  string           `json:"eventName"`
	Sport      string           `json:"sport"`
	Name       string           `json:"name"`
	Value      string           `json:"value"`
	Odds       *decimal.Decimal `json:"odds,omitempty"`
	IsPromoted bool             `json:"isPromoted"`
}

// TicketResponse represents a placed ticket.
type TicketResponse struct {
	ID          int64               `json:"id"`
	UserID      int64               `json:"userId"`
	Selections  []SelectionResponse `json:"selections,omitempty"`
	PayInAmount decimal.Decimal     `json:"payInAmount"`
	PayInTime   time.Time           `json:"payInTime"`
	TotalOdds   decimal.Decimal     `json:"totalOdds"`
	Status      string              `json:"status"`
}

// HandlePlaceBet handles POST /api/bets requests.
func (h *BetsHandler) HandlePlaceBet(w http.ResponseWriter, r *http.Request) {
	var req PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, types.NewBadInput("malformed request body: %v", err))
		return
	}

	h.logger.Debug("place-bet-request-received",
		zap.Int64("user-id", req.UserID),
		zap.Int64s("selection-ids", req.SelectionIDs))

	ticket, err := h.bets.PlaceBet(r.Context(), time.Now().UTC(), req.UserID, req.SelectionIDs, req.Amount)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, newTicketResponse(ticket))
}

// HandleTicketAmounts handles GET /api/bets/{ticketID}/amounts requests.
// The optional stateAt query parameter evaluates the ticket as of a past
// instant.
func (h *BetsHandler) HandleTicketAmounts(w http.ResponseWriter, r *http.Request) {
	ticketID, err := pathID(r, "ticketID")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	stateAt, err := stateAtQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	amounts, err := h.bets.CalculateTicketFinancialAmounts(r.Context(), ticketID, stateAt)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, amounts)
}

func newTicketResponse(ticket *types.Ticket) TicketResponse {
	return TicketResponse{
		ID:          ticket.ID,
		UserID:      ticket.UserID,
		Selections:  newSelectionResponses(ticket.Selections),
		PayInAmount: ticket.PayInAmount,
		PayInTime:   ticket.PayInTime,
		TotalOdds:   ticket.TotalOdds,
		Status:      string(ticket.Status),
	}
}

func newSelectionResponses(outcomes []*types.Outcome) []SelectionResponse {
	selections := make([]SelectionResponse, 0, len(outcomes))

	for _, outcome := range outcomes {
		selections = append(selections, SelectionResponse{
			ID:         outcome.ID,
			EventID:    outcome.EventID,
			EventName:  outcome.EventName,
			Sport:      outcome.Sport,
			Name:       outcome.Name,
			Value:      outcome.Value,
			Odds:       outcome.Odds,
			IsPromoted: outcome.IsPromoted,
		})
	}

	return selections
}
