package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/billed/billed-app/internal/api/middleware"
	"github.com/billed/billed-app/internal/core/domain"
)

// --- stub ---

type stubAuthService struct {
	loginFn func(ctx context.Context, email, password, userType string) (string, *domain.User, error)
}

func (s *stubAuthService) Register(_ context.Context, email, _, userType string) (*domain.User, error) {
	return &domain.User{ID: "u1", Email: email, Type: userType}, nil
}

func (s *stubAuthService) Login(ctx context.Context, email, password, userType string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password, userType)
}

func loginAs(userType string) *stubAuthService {
	return &stubAuthService{
		loginFn: func(_ context.Context, email, _, t string) (string, *domain.User, error) {
			return "signed-token", &domain.User{ID: "u1", Email: email, Type: t}, nil
		},
	}
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	t.Fatalf("expected %q cookie to be set", middleware.SessionCookie)
	return nil
}

// --- Login ---

func TestLogin_EmployeeFormRedirectsToBills(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(loginAs(domain.TypeEmployee), CookieConfig{})

	req := formRequest(http.MethodPost, "/login", map[string]string{
		"email": "a@a.io", "password": "secret", "type": domain.TypeEmployee,
	})
	c, rec := newContext(e, req, domain.Session{})

	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/employee/bills" {
		t.Fatalf("expected redirect to /employee/bills, got %q", loc)
	}
	cookie := sessionCookie(t, rec)
	if cookie.Value != "signed-token" || !cookie.HttpOnly {
		t.Fatalf("unexpected cookie: %+v", cookie)
	}
}

func TestLogin_AdminFormRedirectsToDashboard(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(loginAs(domain.TypeAdmin), CookieConfig{})

	req := formRequest(http.MethodPost, "/login", map[string]string{
		"email": "admin@a.io", "password": "secret", "type": domain.TypeAdmin,
	})
	c, rec := newContext(e, req, domain.Session{})

	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/admin/dashboard" {
		t.Fatalf("expected redirect to /admin/dashboard, got %q", loc)
	}
}

func TestLogin_JSONReturnsToken(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(loginAs(domain.TypeEmployee), CookieConfig{})

	body := `{"email":"a@a.io","password":"secret","type":"Employee"}`
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	c, rec := newContext(e, req, domain.Session{})

	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Token != "signed-token" {
		t.Fatalf("expected token, got %q", resp.Token)
	}
	if resp.User == nil || resp.User.Type != domain.TypeEmployee {
		t.Fatalf("unexpected user: %+v", resp.User)
	}
	sessionCookie(t, rec)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{
		loginFn: func(context.Context, string, string, string) (string, *domain.User, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}, CookieConfig{})

	req := formRequest(http.MethodPost, "/login", map[string]string{
		"email": "a@a.io", "password": "wrong", "type": domain.TypeEmployee,
	})
	c, rec := newContext(e, req, domain.Session{})

	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid credentials") {
		t.Fatal("expected the login page with an error")
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			t.Fatal("no session cookie expected on failure")
		}
	}
}

func TestLogin_InvalidPayload(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(loginAs(domain.TypeEmployee), CookieConfig{})

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"not-an-email","type":"Guest"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	c, rec := newContext(e, req, domain.Session{})

	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLogin_UnexpectedErrorPropagates(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{
		loginFn: func(context.Context, string, string, string) (string, *domain.User, error) {
			return "", nil, domain.ErrStoreUnavailable
		},
	}, CookieConfig{})

	req := formRequest(http.MethodPost, "/login", map[string]string{
		"email": "a@a.io", "password": "secret", "type": domain.TypeEmployee,
	})
	c, _ := newContext(e, req, domain.Session{})

	if err := h.Login(c); err == nil {
		t.Fatal("expected the store error to reach the error handler")
	}
}

// --- Logout ---

func TestLogout_ClearsCookie(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(loginAs(domain.TypeEmployee), CookieConfig{})

	c, rec := newContext(e, httptest.NewRequest(http.MethodPost, "/logout", nil), employeeSession())
	if err := h.Logout(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/" {
		t.Fatalf("expected 303 to /, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
	if cookie := sessionCookie(t, rec); cookie.MaxAge >= 0 || cookie.Value != "" {
		t.Fatalf("expected an expired cookie, got %+v", cookie)
	}
}

func TestLoginPage_RendersBothForms(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(loginAs(domain.TypeEmployee), CookieConfig{})

	c, rec := newContext(e, httptest.NewRequest(http.MethodGet, "/", nil), domain.Session{})
	if err := h.LoginPage(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `data-testid="employee-login-button"`) {
		t.Fatal("expected employee login form")
	}
}
