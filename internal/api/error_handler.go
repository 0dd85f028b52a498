package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/billed/billed-app/internal/api/controller"
	"github.com/billed/billed-app/internal/api/handler"
	"github.com/billed/billed-app/internal/api/middleware"
	"github.com/billed/billed-app/internal/api/views"
	"github.com/billed/billed-app/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders {"error": "<message>"} for API clients and the error page,
//     headed "Erreur <code>", for browsers. A browser without a session is
//     sent back to the login page.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)

		if handler.WantsJSON(c) {
			_ = c.JSON(code, errorResponse{Error: msg})
			return
		}
		if code == http.StatusUnauthorized {
			_ = c.Redirect(http.StatusSeeOther, controller.RouteLogin)
			return
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}

		sess, _ := middleware.SessionFrom(c)
		page := views.Page{Title: fmt.Sprintf("Erreur %d", code), Session: sess, Code: code, Error: msg}
		if rerr := c.Render(code, views.PageError, page); rerr != nil {
			log.Error().Err(rerr).Msg("render error page")
			_ = c.String(code, fmt.Sprintf("Erreur %d", code))
		}
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var ve *handler.ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity, ve.Error()
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case controller.IsNotFound(err):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrUnsupportedFile), errors.Is(err, domain.ErrMissingReceipt):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, "invalid status transition"
	case errors.Is(err, domain.ErrDuplicateSubmission):
		return http.StatusConflict, "bill already submitted"
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrMissingSession):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
