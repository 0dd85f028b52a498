package ports

import (
	"context"
	"io"
	"time"

	"github.com/billed/billed-app/internal/core/domain"
)

// BillRepository defines persistence operations for bills.
type BillRepository interface {
	// List returns the submitted bills owned by email. An empty email lists
	// every submitted bill (admin dashboard). Drafts are never listed.
	List(ctx context.Context, email string) ([]domain.Bill, error)
	// Insert stores a new bill and returns the identifier assigned to it.
	Insert(ctx context.Context, b *domain.Bill) (string, error)
	// Update submits the draft id owned by b.Email. A bill owned by someone
	// else is reported as domain.ErrBillNotFound; a bill already submitted as
	// domain.ErrDuplicateSubmission.
	Update(ctx context.Context, id string, b *domain.Bill) error
	// FindByID returns a submitted bill. Drafts are domain.ErrBillNotFound.
	FindByID(ctx context.Context, id string) (*domain.Bill, error)
	// UpdateStatus atomically sets the review status of a submitted pending
	// bill and appends a history entry.
	UpdateStatus(ctx context.Context, id string, status domain.BillStatus, comment string, ts time.Time) error
	CountByStatus(ctx context.Context) (map[domain.BillStatus]int64, error)
}

// ReceiptStorage persists receipt files.
type ReceiptStorage interface {
	// Save stores the receipt and returns the key it can be fetched with.
	Save(ctx context.Context, file domain.ReceiptFile) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, *domain.ReceiptInfo, error)
}
