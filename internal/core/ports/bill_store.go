package ports

import (
	"context"

	"github.com/billed/billed-app/internal/core/domain"
)

// BillStore is the "bills" capability the UI controllers talk to.
type BillStore interface {
	List(ctx context.Context, email string) ([]domain.Bill, error)
	// Create uploads a receipt and opens a draft bill for it.
	Create(ctx context.Context, email string, file domain.ReceiptFile) (*domain.ReceiptUpload, error)
	// Update completes the draft bill id with the submitted form. Only a draft
	// can be submitted, and only once.
	Update(ctx context.Context, id string, b *domain.Bill) (*domain.Bill, error)
}
