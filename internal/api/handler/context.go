package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/billed/billed-app/internal/api/middleware"
	"github.com/billed/billed-app/internal/api/views"
	"github.com/billed/billed-app/internal/core/domain"
)

// ctxSession extracts the session injected by the Auth middleware. Its
// presence proves the middleware ran; handlers fail fast without it.
func ctxSession(c echo.Context) (domain.Session, error) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		return domain.Session{}, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return sess, nil
}

// WantsJSON reports whether the client asked for a JSON response rather than
// an HTML page.
func WantsJSON(c echo.Context) bool {
	if strings.HasPrefix(c.Path(), "/api/") {
		return true
	}
	accept := c.Request().Header.Get(echo.HeaderAccept)
	return strings.Contains(accept, echo.MIMEApplicationJSON) && !strings.Contains(accept, echo.MIMETextHTML)
}

// page builds the template data of an authenticated page.
func page(c echo.Context, title, active string, data any) views.Page {
	sess, _ := middleware.SessionFrom(c)
	return views.Page{Title: title, Active: active, Session: sess, Data: data}
}

// --- capabilities handed to the controllers ---

// redirectNavigator navigates with a 303 so a POST lands on a GET.
type redirectNavigator struct {
	c echo.Context
}

func (n redirectNavigator) Navigate(_ context.Context, path string) error {
	return n.c.Redirect(http.StatusSeeOther, path)
}

type echoSession struct {
	c echo.Context
}

func (s echoSession) Session() (domain.Session, error) {
	return ctxSession(s.c)
}

// fragmentWidget collects the preview body to be rendered as an HTML fragment.
type fragmentWidget struct {
	body  string
	shown bool
}

func (w *fragmentWidget) SetBody(html string) { w.body = html }
func (w *fragmentWidget) Show()               { w.shown = true }

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
