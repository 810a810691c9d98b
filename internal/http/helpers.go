package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"floatdesk/internal/core"
	applog "floatdesk/internal/log"
)

const maxBodyBytes = 1 << 20

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondErrorMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondError maps domain errors onto the HTTP taxonomy. Validation
// failures expose their message; everything unexpected is a logged 500
// with a generic body.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case core.IsValidation(err):
		respondErrorMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrInvalidCredentials):
		respondErrorMessage(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, core.ErrUnauthorized):
		respondErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, core.ErrNotFound):
		respondErrorMessage(w, http.StatusNotFound, "Not found")
	case errors.Is(err, core.ErrDebtAlreadyPaid):
		respondErrorMessage(w, http.StatusConflict, "Debt already paid")
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err)
		respondErrorMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON reads a size-limited JSON body into dst. A false return means
// the error response was already written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func methodNotAllowed(w http.ResponseWriter) {
	respondErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
}
