package service

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/billed/billed-app/internal/api/metrics"
	"github.com/billed/billed-app/internal/core/domain"
	"github.com/billed/billed-app/internal/core/ports"
)

// ReceiptURLPrefix is the path receipts are served under.
const ReceiptURLPrefix = "/receipts/"

// listTimeout bounds a shared list read, which outlives the request that
// started it.
const listTimeout = 10 * time.Second

// BillCache abstracts the bill list read cache (Redis).
type BillCache interface {
	Get(ctx context.Context, email string) ([]domain.Bill, bool, error)
	Set(ctx context.Context, email string, bills []domain.Bill) error
	Invalidate(ctx context.Context, emails ...string) error
}

// SubmitGuard abstracts the double-submit protection store (Redis).
type SubmitGuard interface {
	// Claim atomically reserves billID for one submission. It reports false
	// when another submission already holds it.
	Claim(ctx context.Context, billID string) (bool, error)
	// Release drops a claim whose submission failed.
	Release(ctx context.Context, billID string) error
}

// BillStore implements ports.BillStore on top of the repository, the receipt
// storage and the Redis cache. Cache and guard failures degrade to a direct
// repository call; they never fail a request.
type BillStore struct {
	repo     ports.BillRepository
	receipts ports.ReceiptStorage
	cache    BillCache
	guard    SubmitGuard
	group    singleflight.Group
	log      zerolog.Logger
}

// NewBillStore returns a BillStore. cache and guard may be nil.
func NewBillStore(
	repo ports.BillRepository,
	receipts ports.ReceiptStorage,
	cache BillCache,
	guard SubmitGuard,
	log zerolog.Logger,
) *BillStore {
	return &BillStore{
		repo:     repo,
		receipts: receipts,
		cache:    cache,
		guard:    guard,
		log:      log,
	}
}

var _ ports.BillStore = (*BillStore)(nil)

// List returns the bills of email. Concurrent cache misses for the same owner
// share a single repository read, which runs detached from any one caller so
// a caller that goes away does not fail the others.
func (s *BillStore) List(ctx context.Context, email string) ([]domain.Bill, error) {
	timer := prometheus.NewTimer(metrics.StoreOperationDuration.WithLabelValues("list"))
	defer timer.ObserveDuration()

	if s.cache != nil {
		bills, hit, err := s.cache.Get(ctx, email)
		if err != nil {
			s.log.Warn().Err(err).Str("email", email).Msg("bill cache read failed, falling back to store")
		} else if hit {
			metrics.BillsListedTotal.WithLabelValues("cache").Inc()
			return bills, nil
		}
	}

	ch := s.group.DoChan(email, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), listTimeout)
		defer cancel()

		bills, err := s.repo.List(fetchCtx, email)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(fetchCtx, email, bills); err != nil {
				s.log.Warn().Err(err).Str("email", email).Msg("bill cache write failed")
			}
		}
		return bills, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("list bills: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("list bills: %w", res.Err)
		}
		metrics.BillsListedTotal.WithLabelValues("store").Inc()
		return cloneBills(res.Val.([]domain.Bill)), nil
	}
}

// Create stores the receipt and opens a pending draft bill pointing at it.
func (s *BillStore) Create(ctx context.Context, email string, file domain.ReceiptFile) (*domain.ReceiptUpload, error) {
	timer := prometheus.NewTimer(metrics.StoreOperationDuration.WithLabelValues("create"))
	defer timer.ObserveDuration()

	if !domain.IsAllowedReceipt(file.Name) {
		return nil, fmt.Errorf("create bill: %w", domain.ErrUnsupportedFile)
	}

	key, err := s.receipts.Save(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("create bill: save receipt: %w", err)
	}

	fileName := domain.BaseFileName(file.Name)
	draft := &domain.Bill{
		Email:     email,
		FileURL:   ReceiptURLPrefix + key,
		FileName:  fileName,
		Status:    domain.StatusPending,
		Pct:       domain.DefaultPct,
		CreatedAt: time.Now().UTC(),
	}

	id, err := s.repo.Insert(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("create bill: %w", err)
	}

	s.log.Info().Str("bill_id", id).Str("email", email).Str("file_name", fileName).Msg("receipt uploaded")

	return &domain.ReceiptUpload{Key: id, FileURL: draft.FileURL, FileName: fileName}, nil
}

// Update submits the draft bill id. Only a draft can be submitted: a bill
// already submitted, reviewed or not, yields ErrDuplicateSubmission. The guard
// rejects a concurrent double click before it reaches the repository.
func (s *BillStore) Update(ctx context.Context, id string, b *domain.Bill) (*domain.Bill, error) {
	timer := prometheus.NewTimer(metrics.StoreOperationDuration.WithLabelValues("update"))
	defer timer.ObserveDuration()

	claimed := false
	if s.guard != nil {
		ok, err := s.guard.Claim(ctx, id)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Str("bill_id", id).Msg("submit guard unavailable, relying on the repository")
		case !ok:
			return nil, fmt.Errorf("update bill %s: %w", id, domain.ErrDuplicateSubmission)
		default:
			claimed = true
		}
	}

	if err := s.repo.Update(ctx, id, b); err != nil {
		if claimed {
			if rerr := s.guard.Release(context.WithoutCancel(ctx), id); rerr != nil {
				s.log.Warn().Err(rerr).Str("bill_id", id).Msg("failed to release submit guard")
			}
		}
		return nil, fmt.Errorf("update bill %s: %w", id, err)
	}

	s.invalidate(ctx, b.Email)

	metrics.BillsSubmittedTotal.WithLabelValues(b.Type).Inc()
	s.log.Info().Str("bill_id", id).Str("email", b.Email).Str("type", b.Type).Msg("bill submitted")

	updated := *b
	updated.ID = id
	return &updated, nil
}

func (s *BillStore) invalidate(ctx context.Context, emails ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, emails...); err != nil {
		s.log.Warn().Err(err).Strs("emails", emails).Msg("bill cache invalidation failed")
	}
}

func cloneBills(in []domain.Bill) []domain.Bill {
	out := make([]domain.Bill, len(in))
	copy(out, in)
	return out
}
