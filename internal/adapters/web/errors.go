package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"storeledger/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainError maps core errors to stable HTTP codes so API clients can
// branch on them: validation failures are 400, missing records 404, state
// conflicts 409, storage trouble 502.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var pe *core.PersistenceError
	switch {
	case errors.Is(err, core.ErrInvalidCart):
		writeError(w, r, err.Error(), "INVALID_CART", http.StatusBadRequest)
	case errors.Is(err, core.ErrInvalidRate):
		writeError(w, r, err.Error(), "INVALID_RATE", http.StatusBadRequest)
	case errors.Is(err, core.ErrOrderNotFound):
		writeError(w, r, err.Error(), "ORDER_NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrProductNotFound):
		writeError(w, r, err.Error(), "PRODUCT_NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrCustomerNotFound):
		writeError(w, r, err.Error(), "CUSTOMER_NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrPaymentNotFound):
		writeError(w, r, err.Error(), "PAYMENT_NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrPaymentAlreadyPaid):
		writeError(w, r, err.Error(), "ALREADY_PAID", http.StatusConflict)
	case errors.Is(err, core.ErrOrderClosed):
		writeError(w, r, err.Error(), "ORDER_CLOSED", http.StatusConflict)
	case errors.As(err, &pe):
		writeError(w, r, "storage unavailable, try again", "PERSISTENCE_ERROR", http.StatusBadGateway)
	default:
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
	}
}
