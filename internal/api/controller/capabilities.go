// Package controller binds user interactions of the bill pages to store
// operations. Controllers are request scoped and receive every side effect
// (navigation, session, preview) as an injected capability.
package controller

import (
	"context"

	"github.com/billed/billed-app/internal/core/domain"
)

// Logical routes of the application.
const (
	RouteLogin     = "/"
	RouteBills     = "/employee/bills"
	RouteNewBill   = "/employee/bill/new"
	RouteDashboard = "/admin/dashboard"
)

// BillURLAttr is the attribute carrying the receipt URL of a preview trigger.
const BillURLAttr = "data-bill-url"

// Navigator moves the user to another logical route.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// SessionReader exposes the authenticated user.
type SessionReader interface {
	Session() (domain.Session, error)
}

// PreviewWidget is the receipt preview surface.
type PreviewWidget interface {
	SetBody(html string)
	Show()
}

// AttributeReader is anything an attribute can be read from, typically the
// element that triggered the preview.
type AttributeReader interface {
	Attr(name string) string
}

// Attrs is an AttributeReader backed by a map.
type Attrs map[string]string

func (a Attrs) Attr(name string) string { return a[name] }
