package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/billed/billed-app/internal/api/controller"
	"github.com/billed/billed-app/internal/api/middleware"
	"github.com/billed/billed-app/internal/api/views"
	"github.com/billed/billed-app/internal/core/domain"
	"github.com/billed/billed-app/internal/core/ports"
)

// CookieConfig controls the session cookie written on login.
type CookieConfig struct {
	TTL    time.Duration
	Secure bool
}

type AuthHandler struct {
	authService ports.AuthService
	cookie      CookieConfig
}

func NewAuthHandler(authService ports.AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie}
}

// LoginPage renders the employee and admin login forms.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, views.PageLogin, views.Page{Title: "Connexion"})
}

// Login authenticates a user and stores the session token in a cookie.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return h.loginFailed(c, http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return h.loginFailed(c, http.StatusBadRequest, err.Error())
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password, req.Type)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) || errors.Is(err, domain.ErrUserNotFound) {
			return h.loginFailed(c, http.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	if WantsJSON(c) {
		return c.JSON(http.StatusOK, loginResponse{Token: token, User: user})
	}
	return c.Redirect(http.StatusSeeOther, homeRoute(user.Type))
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusSeeOther, controller.RouteLogin)
}

func (h *AuthHandler) loginFailed(c echo.Context, status int, msg string) error {
	if WantsJSON(c) {
		return c.JSON(status, errorBody(msg))
	}
	return c.Render(status, views.PageLogin, views.Page{Title: "Connexion", Error: msg})
}

func homeRoute(userType string) string {
	if userType == domain.TypeAdmin {
		return controller.RouteDashboard
	}
	return controller.RouteBills
}
