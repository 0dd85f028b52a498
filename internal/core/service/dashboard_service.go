package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/billed/billed-app/internal/api/metrics"
	"github.com/billed/billed-app/internal/core/domain"
	"github.com/billed/billed-app/internal/core/ports"
)

type dashboardService struct {
	repo  ports.BillRepository
	cache BillCache
	log   zerolog.Logger
}

// NewDashboardService returns the admin review service. cache may be nil.
func NewDashboardService(repo ports.BillRepository, cache BillCache, log zerolog.Logger) ports.DashboardService {
	return &dashboardService{repo: repo, cache: cache, log: log}
}

// Overview returns the per-status counters and the bills in status, latest first.
func (s *dashboardService) Overview(ctx context.Context, status domain.BillStatus) (*ports.DashboardOverview, error) {
	if status == "" {
		status = domain.StatusPending
	}
	if !status.Valid() {
		return nil, fmt.Errorf("dashboard overview: %w (unknown status %q)", domain.ErrInvalidTransition, status)
	}

	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard overview: count: %w", err)
	}

	all, err := s.repo.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("dashboard overview: list: %w", err)
	}

	selected := make([]domain.Bill, 0, len(all))
	for _, b := range all {
		if b.Status == status {
			selected = append(selected, b)
		}
	}
	domain.SortBillsByDateDesc(selected)

	return &ports.DashboardOverview{Counts: counts, Selected: status, Bills: selected}, nil
}

// Decide accepts or refuses a pending bill.
func (s *dashboardService) Decide(ctx context.Context, in ports.DecisionInput) (*domain.Bill, error) {
	bill, err := s.repo.FindByID(ctx, in.BillID)
	if err != nil {
		return nil, fmt.Errorf("decide bill: %w", err)
	}

	if !bill.Status.CanTransitionTo(in.Status) {
		return nil, fmt.Errorf("decide bill: %w (from %s to %s)", domain.ErrInvalidTransition, bill.Status, in.Status)
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, in.BillID, in.Status, in.Comment, now); err != nil {
		return nil, fmt.Errorf("decide bill: update status: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, bill.Email); err != nil {
			s.log.Warn().Err(err).Str("bill_id", in.BillID).Msg("bill cache invalidation failed")
		}
	}

	metrics.BillDecisionsTotal.WithLabelValues(string(in.Status)).Inc()
	s.log.Info().
		Str("bill_id", in.BillID).
		Str("from", string(bill.Status)).
		Str("to", string(in.Status)).
		Msg("bill reviewed")

	bill.Status = in.Status
	bill.CommentAdmin = in.Comment
	bill.StatusHistory = append(bill.StatusHistory, domain.StatusHistoryEntry{
		Status:    in.Status,
		Timestamp: now,
		Comment:   in.Comment,
	})
	return bill, nil
}
