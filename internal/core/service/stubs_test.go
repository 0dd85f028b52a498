package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/billed/billed-app/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

// stubBillRepo mirrors the Mongo repository: drafts opened by Insert are
// hidden from reads until Update submits them, and a submitted bill cannot be
// submitted again.
type stubBillRepo struct {
	mu        sync.Mutex
	bills     map[string]*domain.Bill
	drafts    map[string]bool
	order     []string
	listCalls int
	listErr   error
	updateErr error
	nextID    int

	// listHook runs before List takes the lock; tests use it to hold a read
	// in flight.
	listHook func(ctx context.Context) error
}

// newStubBillRepo seeds submitted bills.
func newStubBillRepo(seed ...domain.Bill) *stubBillRepo {
	r := &stubBillRepo{bills: make(map[string]*domain.Bill), drafts: make(map[string]bool)}
	for _, b := range seed {
		clone := b
		r.bills[b.ID] = &clone
		r.order = append(r.order, b.ID)
	}
	return r
}

// addDraft opens an unsubmitted bill, as Create does.
func (r *stubBillRepo) addDraft(id, email string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bills[id] = &domain.Bill{ID: id, Email: email, Status: domain.StatusPending, Pct: domain.DefaultPct}
	r.drafts[id] = true
	r.order = append(r.order, id)
}

func (r *stubBillRepo) List(ctx context.Context, email string) ([]domain.Bill, error) {
	if r.listHook != nil {
		if err := r.listHook(ctx); err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := []domain.Bill{}
	for _, id := range r.order {
		b := r.bills[id]
		if r.drafts[id] {
			continue
		}
		if email == "" || b.Email == email {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *stubBillRepo) Insert(_ context.Context, b *domain.Bill) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := fmt.Sprintf("bill-%d", r.nextID)
	clone := *b
	clone.ID = id
	r.bills[id] = &clone
	r.drafts[id] = true
	r.order = append(r.order, id)
	return id, nil
}

func (r *stubBillRepo) Update(_ context.Context, id string, b *domain.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	existing, ok := r.bills[id]
	if !ok || existing.Email != b.Email {
		return domain.ErrBillNotFound
	}
	if !r.drafts[id] {
		return domain.ErrDuplicateSubmission
	}
	clone := *b
	clone.ID = id
	r.bills[id] = &clone
	delete(r.drafts, id)
	return nil
}

func (r *stubBillRepo) FindByID(_ context.Context, id string) (*domain.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bills[id]
	if !ok || r.drafts[id] {
		return nil, domain.ErrBillNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *stubBillRepo) UpdateStatus(_ context.Context, id string, status domain.BillStatus, comment string, ts time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bills[id]
	if !ok || r.drafts[id] {
		return domain.ErrBillNotFound
	}
	if b.Status != domain.StatusPending {
		return domain.ErrInvalidTransition
	}
	b.Status = status
	b.CommentAdmin = comment
	b.StatusHistory = append(b.StatusHistory, domain.StatusHistoryEntry{Status: status, Timestamp: ts, Comment: comment})
	return nil
}

func (r *stubBillRepo) CountByStatus(_ context.Context) (map[domain.BillStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[domain.BillStatus]int64)
	for id, b := range r.bills {
		if !r.drafts[id] {
			counts[b.Status]++
		}
	}
	return counts, nil
}

type stubReceipts struct {
	saved   map[string][]byte
	saveErr error
}

func newStubReceipts() *stubReceipts {
	return &stubReceipts{saved: make(map[string][]byte)}
}

func (s *stubReceipts) Save(_ context.Context, f domain.ReceiptFile) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	data, err := io.ReadAll(f.Content)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("key-%d.%s", len(s.saved)+1, domain.ReceiptExtension(f.Name))
	s.saved[key] = data
	return key, nil
}

func (s *stubReceipts) Open(_ context.Context, key string) (io.ReadCloser, *domain.ReceiptInfo, error) {
	data, ok := s.saved[key]
	if !ok {
		return nil, nil, domain.ErrReceiptNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), &domain.ReceiptInfo{Key: key, Size: int64(len(data))}, nil
}

type stubCache struct {
	mu          sync.Mutex
	entries     map[string][]domain.Bill
	getErr      error
	invalidated []string
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string][]domain.Bill)}
}

func (c *stubCache) Get(_ context.Context, email string) ([]domain.Bill, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	b, ok := c.entries[email]
	return b, ok, nil
}

func (c *stubCache) Set(_ context.Context, email string, bills []domain.Bill) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[email] = bills
	return nil
}

func (c *stubCache) Invalidate(_ context.Context, emails ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range emails {
		delete(c.entries, e)
		c.invalidated = append(c.invalidated, e)
	}
	return nil
}

type stubGuard struct {
	mu       sync.Mutex
	claimed  map[string]bool
	released []string
	err      error
}

func newStubGuard() *stubGuard {
	return &stubGuard{claimed: make(map[string]bool)}
}

func (g *stubGuard) Claim(_ context.Context, id string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return false, g.err
	}
	if g.claimed[id] {
		return false, nil
	}
	g.claimed[id] = true
	return true, nil
}

func (g *stubGuard) Release(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.claimed, id)
	g.released = append(g.released, id)
	return nil
}

var errStoreDown = errors.New("connection refused")

// fixtureBills mirrors the bills fixture used by the front-end suites.
func fixtureBills() []domain.Bill {
	return []domain.Bill{
		{ID: "47qAXb6fIm2zOKkLzMro", Email: "a@a", Type: "Hôtel et logement", Name: "encore", Date: "2004-04-04", Amount: 400, VAT: 80, Pct: 20, Commentary: "séminaire billed", Status: domain.StatusPending, FileName: "preview-facture-free-201801-pdf-1.jpg", FileURL: "/receipts/a.jpg"},
		{ID: "BeKy5Mo4jkmdfPGYpTxZ", Email: "a@a", Type: "Transports", Name: "test1", Date: "2001-01-01", Amount: 100, VAT: 70, Pct: 20, Commentary: "plop", Status: domain.StatusRefused, CommentAdmin: "en fait non", FileName: "1592770761.jpeg", FileURL: "/receipts/b.jpeg"},
		{ID: "UIUZtnPQvnbFnB0ozvJh", Email: "a@a", Type: "Services en ligne", Name: "test3", Date: "2003-03-03", Amount: 300, VAT: 60, Pct: 20, Commentary: "", Status: domain.StatusAccepted, CommentAdmin: "bon bah d'accord", FileName: "facture-client-php-exportee-dans-document-pdf-enregistre-sur-disque-dur.png", FileURL: "/receipts/c.png"},
		{ID: "qcCK3SzECmaZAGRrHjaC", Email: "a@a", Type: "Restaurants et bars", Name: "test2", Date: "2002-02-02", Amount: 200, VAT: 40, Pct: 20, Commentary: "test2", Status: domain.StatusRefused, CommentAdmin: "pas la bonne facture", FileName: "preview-facture-free-201801-pdf-1.jpg", FileURL: "/receipts/d.jpg"},
	}
}
