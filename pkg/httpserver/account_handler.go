package httpserver

import (
	"context"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hattrick/sportsbook/pkg/types"
)

// AccountEngine moves money on user accounts and answers account lookups.
type AccountEngine interface {
	MakeTransaction(ctx context.Context, at time.Time, userID int64, amount decimal.Decimal, deposit bool) (*types.Transaction, error)
	GetUser(ctx context.Context, id int64, stateAt *time.Time, includeTickets bool) (*types.User, error)
}

// AccountHandler handles HTTP requests for user accounts.
type AccountHandler struct {
	accounts AccountEngine
	logger   *zap.Logger
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(accounts AccountEngine, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		logger:   logger,
	}
}

// TransactionRequest is the body of a deposit or withdrawal call.
type TransactionRequest struct {
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
}

// TransactionResponse represents one money movement on a user account.
type TransactionResponse struct {
	ID       string          `json:"id"`
	UserID   int64           `json:"userId"`
	Type     string          `json:"type"`
	TicketID *int64          `json:"ticketId,omitempty"`
	Time     time.Time       `json:"time"`
	Amount   decimal.Decimal `json:"amount"`
}

// UserResponse represents a user account.
type UserResponse struct {
	ID           int64            `json:"id"`
	Username     string           `json:"username"`
	Balance      decimal.Decimal  `json:"balance"`
	RegisteredOn time.Time        `json:"registeredOn"`
	Tickets      []TicketResponse `json:"tickets,omitempty"`
}

// HandleGetUser handles GET /api/users/{userID} requests. The optional
// includeTickets query parameter attaches the user's betting history; the
// optional stateAt parameter views the account as of a past instant.
func (h *AccountHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	stateAt, err := stateAtQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	includeTickets := r.URL.Query().Get("includeTickets") == "true"

	user, err := h.accounts.GetUser(r.Context(), userID, stateAt, includeTickets)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, newUserResponse(user))
}

// HandleTransaction handles POST /api/users/{userID}/transactions requests:
// deposits into or withdrawals from the account.
func (h *AccountHandler) HandleTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req TransactionRequest
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, types.NewBadInput("malformed request body: %v", err))
		return
	}

	var deposit bool
	switch types.TransactionType(req.Type) {
	case types.TxDeposit:
		deposit = true
	case types.TxWithdrawal:
		deposit = false
	default:
		writeError(w, h.logger, types.NewBadInput(
			"invalid transaction type: %q, expected %q or %q",
			req.Type, types.TxDeposit, types.TxWithdrawal))
		return
	}

	h.logger.Debug("account-transaction-request-received",
		zap.Int64("user-id", userID),
		zap.String("type", req.Type))

	txn, err := h.accounts.MakeTransaction(r.Context(), time.Now().UTC(), userID, req.Amount, deposit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, newTransactionResponse(txn))
}

func newTransactionResponse(txn *types.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:       txn.ID.String(),
		UserID:   txn.UserID,
		Type:     string(txn.Type),
		TicketID: txn.TicketID,
		Time:     txn.Time,
		Amount:   txn.Amount,
	}
}

func newUserResponse(user *types.User) UserResponse {
	response := UserResponse{
		ID:           user.ID,
		Username:     user.Username,
		Balance:      user.Balance,
		RegisteredOn: user.RegisteredOn,
	}

	if len(user.Tickets) > 0 {
		response.Tickets = make([]TicketResponse, 0, len(user.Tickets))
		for _, ticket := range user.Tickets {
			response.Tickets = append(response.Tickets, newTicketResponse(ticket))
		}
	}

	return response
}
