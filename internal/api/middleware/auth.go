package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/billed/billed-app/internal/core/domain"
	"github.com/billed/billed-app/internal/core/service"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "user"

// SessionKey is the echo context key of the authenticated domain.Session.
const SessionKey = "session"

// Auth validates the session token and injects the session into context.
// The token is read from the session cookie, or from a bearer Authorization
// header for API clients.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := sessionToken(c)
			if err != nil {
				return err
			}

			sess, err := service.ParseSessionToken(token, jwtSecret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(SessionKey, sess)
			return next(c)
		}
	}
}

func sessionToken(c echo.Context) (string, error) {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}
	return parts[1], nil
}

// SessionFrom returns the session injected by Auth.
func SessionFrom(c echo.Context) (domain.Session, bool) {
	sess, ok := c.Get(SessionKey).(domain.Session)
	return sess, ok && sess.Email != ""
}
