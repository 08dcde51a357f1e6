package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cardhaus/cardhaus/internal/store"
)

// errorResponse is the uniform error payload.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, errorResponse{Success: false, Message: message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// errorStatus maps a store error kind to an HTTP status code.
func errorStatus(err error) int {
	var capErr *store.CapacityError
	var qtyErr *store.InsufficientQuantityError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, store.ErrInvalidInput),
		errors.Is(err, store.ErrInvariant),
		errors.Is(err, store.ErrInvalidTransition),
		errors.As(err, &capErr),
		errors.As(err, &qtyErr):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// storeError writes a store-layer error with the status derived from its kind.
// Unclassified errors are logged and reported generically.
func storeError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("internal error", "error", err)
		jsonError(w, status, "internal error")
		return
	}
	jsonError(w, status, err.Error())
}
