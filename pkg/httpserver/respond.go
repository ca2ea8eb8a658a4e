package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/hattrick/sportsbook/pkg/types"
)

// statusClientClosedRequest is the nginx convention for a request whose
// client went away before a response could be written.
const statusClientClosedRequest = 499

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, logger *zap.Logger, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	err := json.NewEncoder(w).Encode(payload)
	if err != nil {
		logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

// writeError maps an engine error to the HTTP status its kind calls for
// and writes it as a JSON error body.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	statusCode := http.StatusInternalServerError

	switch types.KindOf(err) {
	case types.KindBadInput:
		statusCode = http.StatusBadRequest
	case types.KindNotFound:
		statusCode = http.StatusNotFound
	case types.KindCancelled:
		statusCode = statusClientClosedRequest
	}

	writeJSON(w, logger, statusCode, ErrorResponse{Error: err.Error()})
}

// pathID extracts a numeric path parameter from the request route.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, types.NewBadInput("invalid %s: %q", name, raw)
	}

	return id, nil
}

// stateAtQuery parses the optional stateAt query parameter as RFC 3339.
// Absence means the present state.
func stateAtQuery(r *http.Request) (*time.Time, error) {
	raw := r.URL.Query().Get("stateAt")
	if raw == "" {
		return nil, nil
	}

	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, types.NewBadInput("invalid stateAt: %q, expected RFC 3339", raw)
	}

	return &at, nil
}
