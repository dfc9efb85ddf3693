package errs

import (
	"errors"
	"log/slog"
	"net/http"
)

// Classification is how an error is presented over HTTP and logged.
type Classification struct {
	Status   int
	Code     string
	Message  string
	Redirect string
	Level    slog.Level
}

const genericMessage = "An unexpected error occurred"

// Classify maps an error to its HTTP presentation. Internal failures never
// leak their cause to the client.
func Classify(err error) Classification {
	var (
		notFound     *NotFoundError
		exists       *AlreadyExistsError
		validation   *ValidationError
		unauthorized *UnauthorizedError
		forbidden    *ForbiddenError
		limited      *RateLimitedError
		database     *DatabaseError
		external     *ExternalServiceError
		encryption   *EncryptionError
		failed       *OperationFailedError
	)

	switch {
	case errors.As(err, &notFound):
		return Classification{http.StatusNotFound, "not_found", notFound.Message, "", slog.LevelWarn}
	case errors.As(err, &exists):
		return Classification{http.StatusConflict, "already_exists", exists.Message, "", slog.LevelWarn}
	case errors.As(err, &validation):
		return Classification{http.StatusBadRequest, "invalid_input", validation.Message, "", slog.LevelWarn}
	case errors.As(err, &unauthorized):
		return Classification{http.StatusUnauthorized, "unauthorized", unauthorized.Message, unauthorized.Redirect, slog.LevelWarn}
	case errors.As(err, &forbidden):
		return Classification{http.StatusForbidden, "forbidden", forbidden.Message, forbidden.Redirect, slog.LevelWarn}
	case errors.As(err, &limited):
		return Classification{http.StatusTooManyRequests, "rate_limited", limited.Message, "", slog.LevelWarn}
	case errors.As(err, &failed):
		return Classification{http.StatusInternalServerError, "operation_failed", failed.Message, "", slog.LevelError}
	case errors.As(err, &database):
		return Classification{http.StatusInternalServerError, "internal_error", "An error occurred", "", slog.LevelError}
	case errors.As(err, &external):
		if external.Transient {
			return Classification{http.StatusServiceUnavailable, "service_unavailable", "Service temporarily unavailable", "", slog.LevelWarn}
		}
		return Classification{http.StatusBadGateway, "service_unavailable", "Service temporarily unavailable", "", slog.LevelError}
	case errors.As(err, &encryption):
		return Classification{http.StatusInternalServerError, "internal_error", "An error occurred", "", slog.LevelError}
	default:
		return Classification{http.StatusInternalServerError, "internal_error", genericMessage, "", slog.LevelError}
	}
}
