package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/stockmarket/internal/market"
	"github.com/wonny/stockmarket/internal/session"
)

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

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, market.ErrNotFound), errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, market.ErrDuplicateSymbol), errors.Is(err, market.ErrNonMonotonicTime):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
