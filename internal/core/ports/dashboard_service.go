package ports

import (
	"context"

	"github.com/billed/billed-app/internal/core/domain"
)

// DashboardOverview is the admin view of the bills awaiting or past review.
type DashboardOverview struct {
	Counts   map[domain.BillStatus]int64
	Selected domain.BillStatus
	Bills    []domain.Bill
}

// DecisionInput carries an admin review decision.
type DecisionInput struct {
	BillID  string
	Status  domain.BillStatus
	Comment string
}

// DashboardService defines the admin review use cases.
type DashboardService interface {
	Overview(ctx context.Context, status domain.BillStatus) (*DashboardOverview, error)
	Decide(ctx context.Context, in DecisionInput) (*domain.Bill, error)
}
