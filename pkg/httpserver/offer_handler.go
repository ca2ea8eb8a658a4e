package httpserver

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hattrick/sportsbook/pkg/types"
)

// OfferEngine serves the betting offer and ticket selections.
type OfferEngine interface {
	GetOffer(ctx context.Context, at time.Time) ([]*types.Event, error)
	GetTicketSelections(ctx context.Context, ticketID int64, stateAt *time.Time) ([]*types.Outcome, error)
}

// OfferHandler handles HTTP requests for the betting offer.
type OfferHandler struct {
	offer  OfferEngine
	logger *zap.Logger
}

// NewOfferHandler creates a new offer handler.
func NewOfferHandler(offer OfferEngine, logger *zap.Logger) *OfferHandler {
	return &OfferHandler{
		offer:  offer,
		logger: logger,
	}
}

// OfferEventResponse represents one event in the betting offer.
type OfferEventResponse struct {
	ID       int64                  `json:"id"`
	Name     string                 `json:"name"`
	Sport    string                 `json:"sport"`
	StartsAt time.Time              `json:"startsAt"`
	EndsAt   time.Time              `json:"endsAt"`
	Fixtures []OfferFixtureResponse `json:"fixtures"`
}

// OfferFixtureResponse represents one offering mode of an event.
type OfferFixtureResponse struct {
	ID         int64                 `json:"id"`
	Type       string                `json:"type"`
	IsPromoted bool                  `json:"isPromoted"`
	Markets    []OfferMarketResponse `json:"markets"`
}

// OfferMarketResponse represents one market within a fixture.
type OfferMarketResponse struct {
	ID       int64               `json:"id"`
	Type     string              `json:"type"`
	Outcomes []SelectionResponse `json:"outcomes"`
}

// HandleOffer handles GET /api/offer requests. The optional at query
// parameter views the offer as of a given instant; absence means now.
func (h *OfferHandler) HandleOffer(w http.ResponseWriter, r *http.Request) {
	at := time.Now().UTC()
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, h.logger, types.NewBadInput("invalid at: %q, expected RFC 3339", raw))
			return
		}
		at = parsed
	}

	events, err := h.offer.GetOffer(r.Context(), at)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response := make([]OfferEventResponse, 0, len(events))
	for _, event := range events {
		response = append(response, newOfferEventResponse(event))
	}

	writeJSON(w, h.logger, http.StatusOK, response)
}

// HandleTicketSelections handles GET /api/bets/{ticketID}/selections requests.
func (h *OfferHandler) HandleTicketSelections(w http.ResponseWriter, r *http.Request) {
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

	selections, err := h.offer.GetTicketSelections(r.Context(), ticketID, stateAt)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, newSelectionResponses(selections))
}

func newOfferEventResponse(event *types.Event) OfferEventResponse {
	fixtures := make([]OfferFixtureResponse, 0, len(event.Fixtures))

	for _, fixture := range event.Fixtures {
		markets := make([]OfferMarketResponse, 0, len(fixture.Markets))

		for _, market := range fixture.Markets {
			markets = append(markets, OfferMarketResponse{
				ID:       market.ID,
				Type:     market.Type,
				Outcomes: newSelectionResponses(market.Outcomes),
			})
		}

		fixtures = append(fixtures, OfferFixtureResponse{
			ID:         fixture.ID,
			Type:       fixture.Type,
			IsPromoted: fixture.IsPromoted,
			Markets:    markets,
		})
	}

	return OfferEventResponse{
		ID:       event.ID,
		Name:     event.Name,
		Sport:    event.Sport,
		StartsAt: event.StartsAt,
		EndsAt:   event.EndsAt,
		Fixtures: fixtures,
	}
}
