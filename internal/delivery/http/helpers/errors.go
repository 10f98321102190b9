package helpers

import (
	"errors"
	"log/slog"
	"net/http"

	"virtualevents/internal/domain"
)

// WriteServiceError maps a service error to its HTTP status and error code. Unexpected errors are
// logged and reported as 500 without leaking their message.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var capErr *domain.CapacityError
	switch {
	case errors.As(err, &capErr):
		WriteJSONErrorDetails(w, http.StatusBadRequest, ErrCodeCapacityTooLow, capErr.Error(),
			map[string]any{"current_participants": capErr.Current})
	case errors.Is(err, domain.ErrInvalidInput):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, domain.ErrEventFull):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeEventFull, "event is full")
	case errors.Is(err, domain.ErrAlreadyRegistered):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeAlreadyRegistered, "already registered for this event")
	case errors.Is(err, domain.ErrNotRegistered):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeNotRegistered, "not registered for this event")
	case errors.Is(err, domain.ErrDuplicateEmail):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeDuplicateEmail, "email already registered")
	case errors.Is(err, domain.ErrInvalidCredentials):
		WriteJSONError(w, http.StatusUnauthorized, ErrCodeInvalidCredential, "invalid credentials")
	case errors.Is(err, domain.ErrForbidden):
		WriteJSONError(w, http.StatusForbidden, ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrUserNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "user not found")
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}
