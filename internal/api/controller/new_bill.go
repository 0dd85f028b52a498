package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/billed/billed-app/internal/api/metrics"
	"github.com/billed/billed-app/internal/core/domain"
	"github.com/billed/billed-app/internal/core/ports"
)

// FileState tracks the receipt selection of a new bill form.
type FileState string

const (
	FileIdle       FileState = "idle"
	FileValidating FileState = "validating"
	FileAccepted   FileState = "accepted"
	FileRejected   FileState = "rejected"
)

// SubmitState tracks one submission attempt of a new bill form.
type SubmitState string

const (
	FormReady    SubmitState = "ready"
	Submitting   SubmitState = "submitting"
	Submitted    SubmitState = "submitted"
	Navigated    SubmitState = "navigated"
	SubmitFailed SubmitState = "submit_failed"
)

// BillForm holds the fields of the new bill form.
type BillForm struct {
	Type       string
	Name       string
	Date       string
	Amount     int
	VAT        int
	Pct        int
	Commentary string
}

// NewBill drives the new bill form. The receipt is uploaded as soon as it is
// selected; submitting the form completes the draft bill opened by that upload.
type NewBill struct {
	store   ports.BillStore
	nav     Navigator
	session SessionReader
	log     zerolog.Logger

	fileState   FileState
	submitState SubmitState
	upload      *domain.ReceiptUpload
}

func NewNewBill(store ports.BillStore, nav Navigator, session SessionReader, log zerolog.Logger) *NewBill {
	return &NewBill{
		store:       store,
		nav:         nav,
		session:     session,
		log:         log,
		fileState:   FileIdle,
		submitState: FormReady,
	}
}

func (n *NewBill) FileState() FileState     { return n.fileState }
func (n *NewBill) SubmitState() SubmitState { return n.submitState }

// Upload returns the accepted receipt, or nil.
func (n *NewBill) Upload() *domain.ReceiptUpload { return n.upload }

// Restore resumes a form whose receipt was accepted by an earlier request.
func (n *NewBill) Restore(upload domain.ReceiptUpload) {
	if upload.Key == "" {
		return
	}
	n.upload = &upload
	n.fileState = FileAccepted
}

// OnFileSelected validates the receipt extension and uploads it. A rejected
// file clears the previous selection and returns domain.ErrUnsupportedFile.
func (n *NewBill) OnFileSelected(ctx context.Context, file domain.ReceiptFile) (*domain.ReceiptUpload, error) {
	n.fileState = FileValidating
	n.upload = nil

	if !domain.IsAllowedReceipt(file.Name) {
		n.fileState = FileRejected
		metrics.ReceiptsTotal.WithLabelValues("rejected").Inc()
		n.log.Info().Str("file", domain.BaseFileName(file.Name)).Msg("receipt rejected")
		return nil, domain.ErrUnsupportedFile
	}

	sess, err := n.session.Session()
	if err != nil {
		n.fileState = FileRejected
		return nil, err
	}

	upload, err := n.store.Create(ctx, sess.Email, file)
	if err != nil {
		n.fileState = FileRejected
		metrics.ReceiptsTotal.WithLabelValues("failed").Inc()
		n.log.Error().Err(err).Msg("receipt upload failed")
		return nil, fmt.Errorf("upload receipt: %w", err)
	}

	n.upload = upload
	n.fileState = FileAccepted
	metrics.ReceiptsTotal.WithLabelValues("accepted").Inc()
	return upload, nil
}

// OnFormSubmit sends the completed bill to the store and navigates back to
// the bill list. On failure the form stays in SubmitFailed and may be
// submitted again.
func (n *NewBill) OnFormSubmit(ctx context.Context, form BillForm) (*domain.Bill, error) {
	n.submitState = Submitting

	if n.upload == nil {
		n.submitState = SubmitFailed
		return nil, domain.ErrMissingReceipt
	}

	sess, err := n.session.Session()
	if err != nil {
		n.submitState = SubmitFailed
		return nil, err
	}

	pct := form.Pct
	if pct == 0 {
		pct = domain.DefaultPct
	}

	bill := &domain.Bill{
		Email:      sess.Email,
		Type:       form.Type,
		Name:       form.Name,
		Amount:     form.Amount,
		Date:       form.Date,
		VAT:        form.VAT,
		Pct:        pct,
		Commentary: form.Commentary,
		FileURL:    n.upload.FileURL,
		FileName:   n.upload.FileName,
		Status:     domain.StatusPending,
	}

	saved, err := n.store.Update(ctx, n.upload.Key, bill)
	if err != nil {
		n.submitState = SubmitFailed
		n.log.Error().Err(err).Str("bill_id", n.upload.Key).Msg("bill submission failed")
		return nil, fmt.Errorf("submit bill: %w", err)
	}
	n.submitState = Submitted

	if err := n.nav.Navigate(ctx, RouteBills); err != nil {
		return saved, err
	}
	n.submitState = Navigated
	return saved, nil
}

// OnDashboardClicked leaves the form for the bill list.
func (n *NewBill) OnDashboardClicked(ctx context.Context) error {
	return n.nav.Navigate(ctx, RouteBills)
}

// IsValidationError reports whether err is a form error the user can fix.
func IsValidationError(err error) bool {
	return errors.Is(err, domain.ErrUnsupportedFile) ||
		errors.Is(err, domain.ErrMissingReceipt) ||
		errors.Is(err, domain.ErrDuplicateSubmission)
}
