package controller

import (
	"context"
	"fmt"
	"html/template"

	"github.com/rs/zerolog"

	"github.com/billed/billed-app/internal/api/metrics"
	"github.com/billed/billed-app/internal/core/domain"
	"github.com/billed/billed-app/internal/core/ports"
)

// PreviewImageWidth is the width, in pixels, of the receipt preview image.
const PreviewImageWidth = 500

// BillView is a bill prepared for the list page.
type BillView struct {
	domain.Bill
	FormattedDate   string
	FormattedStatus string
	MalformedDate   bool
}

// BillsList drives the employee bill list page.
type BillsList struct {
	store   ports.BillStore
	nav     Navigator
	session SessionReader
	preview PreviewWidget
	log     zerolog.Logger
}

func NewBillsList(store ports.BillStore, nav Navigator, session SessionReader, preview PreviewWidget, log zerolog.Logger) *BillsList {
	return &BillsList{
		store:   store,
		nav:     nav,
		session: session,
		preview: preview,
		log:     log,
	}
}

// FetchBills returns the bills of the current user, latest first. A bill with
// a malformed date is kept, sorted last and shown with its raw date.
func (b *BillsList) FetchBills(ctx context.Context) ([]BillView, error) {
	sess, err := b.session.Session()
	if err != nil {
		return nil, err
	}

	bills, err := b.store.List(ctx, sess.Email)
	if err != nil {
		metrics.BillsFetchErrorsTotal.WithLabelValues(fetchErrorReason(err)).Inc()
		return nil, fmt.Errorf("fetch bills: %w", err)
	}
	// The client may have gone away while the store answered.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	domain.SortBillsByDateDesc(bills)

	views := make([]BillView, 0, len(bills))
	for _, bill := range bills {
		v := BillView{Bill: bill, FormattedStatus: domain.FormatStatus(bill.Status)}
		formatted, err := domain.FormatDate(bill.Date)
		if err != nil {
			b.log.Warn().Err(err).Str("bill_id", bill.ID).Msg("malformed bill date")
			metrics.MalformedDatesTotal.Inc()
			formatted = bill.Date
			v.MalformedDate = true
		}
		v.FormattedDate = formatted
		views = append(views, v)
	}
	return views, nil
}

// OnCreateClicked opens the new bill form.
func (b *BillsList) OnCreateClicked(ctx context.Context) error {
	return b.nav.Navigate(ctx, RouteNewBill)
}

// OnReceiptPreviewClicked shows the receipt referenced by the data-bill-url
// attribute of src.
func (b *BillsList) OnReceiptPreviewClicked(src AttributeReader) {
	b.preview.SetBody(PreviewHTML(src.Attr(BillURLAttr)))
	b.preview.Show()
}

// PreviewHTML renders the preview body for a receipt URL.
func PreviewHTML(url string) string {
	if url == "" || url == "null" {
		return `<div style='text-align: center;' class="bill-proof-container"><p>Aucun justificatif</p></div>`
	}
	return fmt.Sprintf(
		`<div style='text-align: center;' class="bill-proof-container"><img width=%d src="%s" alt="Bill" /></div>`,
		PreviewImageWidth, template.HTMLEscapeString(url),
	)
}

func fetchErrorReason(err error) string {
	switch {
	case IsNotFound(err):
		return "not_found"
	case ctxErr(err):
		return "canceled"
	default:
		return "server"
	}
}
