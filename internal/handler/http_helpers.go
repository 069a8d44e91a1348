package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"memoria-server/internal/domain"
	apperrors "memoria-server/pkg/errors"
)

type contextKey string

const (
	userContextKey  contextKey = "user"
	tokenContextKey contextKey = "token"
)

// GetUserFromContext extracts the authenticated user from request context
func GetUserFromContext(r *http.Request) (*domain.SupabaseUser, bool) {
	user, ok := r.Context().Value(userContextKey).(*domain.SupabaseUser)
	return user, ok
}

// GetTokenFromContext extracts the authentication token from request context
func GetTokenFromContext(r *http.Request) (string, bool) {
	token, ok := r.Context().Value(tokenContextKey).(string)
	return token, ok
}

// writeError writes an error response (helper function)
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError maps domain and storage errors onto HTTP status codes.
// Provider/compression details stay server-side; clients get the message only.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		appErr         *apperrors.AppError
		validationErr  *domain.ValidationError
		unsupportedErr *domain.UnsupportedTypeError
		compressionErr *domain.CompressionFailedError
		allFailedErr   *domain.AllProvidersFailedError
	)

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &unsupportedErr):
		writeError(w, http.StatusUnsupportedMediaType, unsupportedErr.Error())
	case errors.As(err, &compressionErr):
		writeError(w, http.StatusRequestEntityTooLarge, compressionErr.Error())
	case errors.As(err, &allFailedErr):
		writeError(w, http.StatusBadGateway, allFailedErr.Error())
	case errors.Is(err, domain.ErrFuneralNotFound),
		errors.Is(err, domain.ErrBrochureNotFound),
		errors.Is(err, domain.ErrCondolenceNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidFile):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrAccessDenied):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrServiceKeyMissing):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &appErr):
		writeError(w, apperrors.GetStatusCode(appErr), appErr.Message)
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
