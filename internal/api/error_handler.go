package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/partsdesk/storefront/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Renders the user-facing message of the error, never its internals.
//   - Logs unexpected errors with the request method and path.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	msg := domain.UserMessage(err)
	switch {
	case errors.Is(err, domain.ErrAuthRequired), errors.Is(err, domain.ErrStaleSession):
		return http.StatusUnauthorized, msg
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, msg
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, msg
	case errors.Is(err, domain.ErrNoDraft), errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound, msg
	case errors.Is(err, domain.ErrSubmitFailed), errors.Is(err, domain.ErrRemote):
		log.Warn().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("backend call failed")
		return http.StatusBadGateway, msg
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
