package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/codeplatform/auth-service/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

// resolveError maps an error to its HTTP status and client-facing message.
// Account-not-found and wrong-password stay distinguishable in the message
// (matching what the platform's frontend shows) but share the 401 status.
func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrInvalidRole):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrAccountExists):
		return http.StatusConflict, "an account with this email already exists for this role"
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusUnauthorized, "no account found with this email address for this role"
	case errors.Is(err, domain.ErrBadCredentials):
		return http.StatusUnauthorized, "incorrect password"
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid or expired token"
	case errors.Is(err, domain.ErrStoreUnavailable):
		// log the wrapped cause; the client sees only the generic outcome
		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("identity store unavailable")
		return http.StatusServiceUnavailable, "service temporarily unavailable"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
