package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"bookameal/internal/middleware"
	"bookameal/internal/models"

	"go.uber.org/zap"
)

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrInsufficientStock),
		errors.Is(err, models.ErrMenuExpired):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// respondWithServiceError writes err with the status its kind maps to. Domain
// messages go to the client verbatim; anything else is logged and hidden.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	code := statusFor(err)
	var domainErr *models.Error
	if code != http.StatusInternalServerError && errors.As(err, &domainErr) {
		respondWithError(w, code, domainErr.Message)
		return
	}
	logger.Error("request failed",
		zap.String("request_id", middleware.RequestID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	respondWithError(w, http.StatusInternalServerError, "internal server error")
}

// principal returns the authenticated caller or writes a 401.
func principal(w http.ResponseWriter, r *http.Request) (models.Principal, bool) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, models.ErrMissingPrincipal.Message)
		return models.Principal{}, false
	}
	return p, true
}

// pathID parses the {id} path value or writes a 400 with invalid.
func pathID(w http.ResponseWriter, r *http.Request, invalid *models.Error) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, invalid.Message)
		return 0, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}
