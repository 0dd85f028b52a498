package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/billed/billed-app/internal/api/middleware"
	"github.com/billed/billed-app/internal/api/views"
	"github.com/billed/billed-app/internal/core/domain"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Renderer = views.MustRenderer()
	e.Validator = NewValidator()
	return e
}

func employeeSession() domain.Session {
	return domain.Session{Type: domain.TypeEmployee, Email: "a@a"}
}

// newContext builds a context for req, authenticated as sess when its email
// is set.
func newContext(e *echo.Echo, req *http.Request, sess domain.Session) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if sess.Email != "" {
		c.Set(middleware.SessionKey, sess)
	}
	return c, rec
}

// multipartBody encodes fields and an optional file part named "file".
func multipartBody(t *testing.T, fields map[string]string, fileName, content string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if fileName != "" {
		part, err := w.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		_, _ = part.Write([]byte(content))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func formRequest(method, target string, fields map[string]string) *http.Request {
	form := url.Values{}
	for k, v := range fields {
		form.Set(k, v)
	}
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

// --- store stub ---

type stubStore struct {
	mu        sync.Mutex
	bills     []domain.Bill
	listErr   error
	createErr error
	updateErr error

	created []string
	updated []*domain.Bill
	ids     []string
}

func (s *stubStore) List(_ context.Context, _ string) ([]domain.Bill, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]domain.Bill, len(s.bills))
	copy(out, s.bills)
	return out, nil
}

func (s *stubStore) Create(_ context.Context, _ string, file domain.ReceiptFile) (*domain.ReceiptUpload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, file.Name)
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &domain.ReceiptUpload{Key: "draft1", FileURL: "/receipts/abc.png", FileName: domain.BaseFileName(file.Name)}, nil
}

func (s *stubStore) Update(_ context.Context, id string, b *domain.Bill) (*domain.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, id)
	s.updated = append(s.updated, b)
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	saved := *b
	saved.ID = id
	return &saved, nil
}

func fixtureBills() []domain.Bill {
	return []domain.Bill{
		{ID: "47qAXb6fIm2zOKkLzMro", Email: "a@a", Type: "Hôtel et logement", Name: "encore", Date: "2004-04-04", Amount: 400, Status: domain.StatusPending, FileURL: "/receipts/a.jpg"},
		{ID: "BeKy5Mo4jkmdfPGYpTxZ", Email: "a@a", Type: "Restaurants et bars", Name: "test1", Date: "2001-01-01", Amount: 100, Status: domain.StatusRefused, FileURL: "/receipts/b.jpeg"},
		{ID: "UIUZtnPQvnbFnB0ozvJh", Email: "a@a", Type: "Services en ligne", Name: "test3", Date: "2003-03-03", Amount: 300, Status: domain.StatusAccepted, FileURL: "/receipts/c.png"},
		{ID: "qcCK3SzECmaZAGRrHjaC", Email: "a@a", Type: "Restaurants et bars", Name: "test2", Date: "2002-02-02", Amount: 200, Status: domain.StatusRefused, FileURL: "/receipts/d.jpg"},
	}
}
