package main

import (
	"context"
	"fmt"
	"time"

	"github.com/billed/billed-app/internal/core/domain"
	"github.com/billed/billed-app/internal/core/ports"
)

// demoBills are the bills of a fresh demo account, one per review status.
var demoBills = []domain.Bill{
	{Type: "Hôtel et logement", Name: "encore", Date: "2004-04-04", Amount: 400, VAT: 80, Pct: 20, FileName: "preview-facture-free-201801-pdf-1.jpg", Status: domain.StatusPending},
	{Type: "Restaurants et bars", Name: "test1", Date: "2001-01-01", Amount: 100, Pct: 20, Commentary: "plop", FileName: "1592770761.jpeg", Status: domain.StatusRefused, CommentAdmin: "en fait non"},
	{Type: "Services en ligne", Name: "test3", Date: "2003-03-03", Amount: 300, VAT: 60, Pct: 20, Commentary: "test3", FileName: "facture-client.png", Status: domain.StatusAccepted, CommentAdmin: "bon bah d'accord"},
	{Type: "Restaurants et bars", Name: "test2", Date: "2002-02-02", Amount: 200, VAT: 40, Pct: 20, Commentary: "test2", FileName: "preview-facture-free-201801-pdf-1.jpg", Status: domain.StatusRefused, CommentAdmin: "pas la bonne facture"},
}

// seedBills inserts the demo bills for email the way the application does:
// draft, submission, then review when the bill is no longer pending.
func seedBills(ctx context.Context, repo ports.BillRepository, email string) ([]string, error) {
	ids := make([]string, 0, len(demoBills))
	for _, tmpl := range demoBills {
		b := tmpl
		b.Email = email
		b.CreatedAt = time.Now().UTC()

		review := b.Status
		b.Status = domain.StatusPending

		id, err := repo.Insert(ctx, &b)
		if err != nil {
			return ids, fmt.Errorf("seed %s: %w", b.Name, err)
		}
		if err := repo.Update(ctx, id, &b); err != nil {
			return ids, fmt.Errorf("seed %s: %w", b.Name, err)
		}
		if review != domain.StatusPending {
			if err := repo.UpdateStatus(ctx, id, review, b.CommentAdmin, time.Now().UTC()); err != nil {
				return ids, fmt.Errorf("seed %s: %w", b.Name, err)
			}
		}
		ids = append(ids, id)
	}
	return ids, nil
}
