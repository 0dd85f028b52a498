// Package views renders the HTML pages of the application.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/billed/billed-app/internal/core/domain"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Page names.
const (
	PageLogin     = "login"
	PageBills     = "bills"
	PagePreview   = "preview"
	PageNewBill   = "new_bill"
	PageDashboard = "dashboard"
	PageError     = "error"
)

// Page contains values shared across templates.
type Page struct {
	Title   string
	Active  string
	Session domain.Session
	Code    int
	Error   string
	Data    any
}

// NewBillData is the Data of the new bill page.
type NewBillData struct {
	Types  []string
	Form   NewBillForm
	Upload *domain.ReceiptUpload
	Error  string
}

// NewBillForm echoes the submitted values back into the form.
type NewBillForm struct {
	Type       string
	Name       string
	Date       string
	Amount     int
	VAT        int
	Pct        int
	Commentary string
}

// DashboardData is the Data of the admin dashboard.
type DashboardData struct {
	Counts   map[string]int64
	Selected string
	Bills    []domain.Bill
}

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	funcMap := template.FuncMap{
		"formatDate": func(raw string) string {
			if s, err := domain.FormatDate(raw); err == nil {
				return s
			}
			return raw
		},
		"formatStatus": domain.FormatStatus,
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{templates: tpl}, nil
}

// MustRenderer is NewRenderer for program start and tests.
func MustRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// Render executes the named page. data is normally a Page.
func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}
