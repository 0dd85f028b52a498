package controller

import (
	"context"
	"errors"
	"sync"

	"github.com/billed/billed-app/internal/core/domain"
)

// --- store ---

type fakeStore struct {
	mu        sync.Mutex
	bills     []domain.Bill
	listErr   error
	createErr error
	updateErr error

	listEmails []string
	creates    []domain.ReceiptFile
	updates    []*domain.Bill
	updateIDs  []string
}

func (s *fakeStore) List(_ context.Context, email string) ([]domain.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listEmails = append(s.listEmails, email)
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]domain.Bill, len(s.bills))
	copy(out, s.bills)
	return out, nil
}

func (s *fakeStore) Create(_ context.Context, _ string, file domain.ReceiptFile) (*domain.ReceiptUpload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates = append(s.creates, file)
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &domain.ReceiptUpload{
		Key:      "1234",
		FileURL:  "https://localhost:3456/images/test.jpg",
		FileName: domain.BaseFileName(file.Name),
	}, nil
}

func (s *fakeStore) Update(_ context.Context, id string, b *domain.Bill) (*domain.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateIDs = append(s.updateIDs, id)
	s.updates = append(s.updates, b)
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	saved := *b
	saved.ID = id
	return &saved, nil
}

// --- capabilities ---

type recordingNavigator struct {
	paths []string
	err   error
}

func (n *recordingNavigator) Navigate(_ context.Context, path string) error {
	n.paths = append(n.paths, path)
	return n.err
}

type staticSession struct {
	sess domain.Session
	err  error
}

func (s staticSession) Session() (domain.Session, error) { return s.sess, s.err }

func employee() staticSession {
	return staticSession{sess: domain.Session{Type: domain.TypeEmployee, Email: "a@a"}}
}

type fakeWidget struct {
	body  string
	shown bool
}

func (w *fakeWidget) SetBody(html string) { w.body = html }
func (w *fakeWidget) Show()               { w.shown = true }

var errServer = errors.New("Erreur 500")

func fixtureBills() []domain.Bill {
	return []domain.Bill{
		{ID: "47qAXb6fIm2zOKkLzMro", Email: "a@a", Type: "Hôtel et logement", Name: "encore", Date: "2004-04-04", Amount: 400, VAT: 80, Pct: 20, Status: domain.StatusPending, FileURL: "https://test.storage.tld/v0/b/billable.jpg", FileName: "preview-facture-free-201801-pdf-1.jpg"},
		{ID: "BeKy5Mo4jkmdfPGYpTxZ", Email: "a@a", Type: "Restaurants et bars", Name: "test1", Date: "2001-01-01", Amount: 100, VAT: 0, Pct: 20, Status: domain.StatusRefused, CommentAdmin: "en fait non", FileURL: "https://test.storage.tld/v0/b/billable.jpg", FileName: "1592770761.jpeg"},
		{ID: "UIUZtnPQvnbFnB0ozvJh", Email: "a@a", Type: "Services en ligne", Name: "test3", Date: "2003-03-03", Amount: 300, VAT: 60, Pct: 20, Status: domain.StatusAccepted, CommentAdmin: "bon bah d'accord", FileURL: "https://test.storage.tld/v0/b/billable.jpg", FileName: "facture-client-php-exportee-dans-document-pdf-enregistre-sur-disque-dur.png"},
		{ID: "qcCK3SzECmaZAGRrHjaC", Email: "a@a", Type: "Restaurants et bars", Name: "test2", Date: "2002-02-02", Amount: 200, VAT: 40, Pct: 20, Status: domain.StatusRefused, CommentAdmin: "pas la bonne facture", FileURL: "https://test.storage.tld/v0/b/billable.jpg", FileName: "preview-facture-free-201801-pdf-1.jpg"},
	}
}
