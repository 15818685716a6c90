package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/varcalc/internal/risk"
)

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// statusFor maps estimate errors to HTTP status codes.
// Input errors are 400, unusable data is 422, provider failures are 502.
func statusFor(err error) int {
	switch {
	case errors.Is(err, risk.ErrInvalidRequest), errors.Is(err, risk.ErrInvalidWeights):
		return http.StatusBadRequest
	case errors.Is(err, risk.ErrNoData),
		errors.Is(err, risk.ErrInsufficientData),
		errors.Is(err, risk.ErrNotPositiveDefinite),
		errors.Is(err, risk.ErrZeroVolatility):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
