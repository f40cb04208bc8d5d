package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/srgjo27/railseat/internal/core/domain"
)

type errorBody struct {
	Error     string              `json:"error"`
	State     string              `json:"state,omitempty"`
	Confirmed []domain.Allocation `json:"confirmed,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// statusFor maps domain failures onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidSeatCount),
		errors.Is(err, domain.ErrInvalidHolder),
		errors.Is(err, domain.ErrInvalidCar):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTripNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCapacityExceeded),
		errors.Is(err, domain.ErrAllocationExhausted):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrStorage):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}
	if status == http.StatusInternalServerError {
		body.Error = "internal server error"
	}

	var perr *domain.PurchaseError
	if errors.As(err, &perr) {
		body.State = string(perr.State)
		body.Confirmed = perr.Confirmed
	}
	writeJSON(w, status, body)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}
