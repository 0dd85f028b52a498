package domain

import (
	"errors"
	"slices"
	"time"
)

// BillStatus represents the review state of an expense claim.
type BillStatus string

const (
	StatusPending  BillStatus = "pending"
	StatusAccepted BillStatus = "accepted"
	StatusRefused  BillStatus = "refused"
)

// DateLayout is the wire and storage format of Bill.Date.
const DateLayout = "2006-01-02"

// DefaultPct is applied when a submitted form leaves the percentage empty.
const DefaultPct = 20

// validTransitions defines the review state machine. Accepted and refused
// bills are final.
var validTransitions = map[BillStatus][]BillStatus{
	StatusPending: {StatusAccepted, StatusRefused},
}

var ErrBillNotFound = errors.New("bill not found")
var ErrStoreUnavailable = errors.New("bill store unavailable")
var ErrInvalidTransition = errors.New("invalid status transition")
var ErrDuplicateSubmission = errors.New("bill already submitted")
var ErrForbidden = errors.New("access forbidden")

// BillTypes lists the expense categories offered by the new bill form.
var BillTypes = []string{
	"Transports",
	"Restaurants et bars",
	"Hôtel et logement",
	"Services en ligne",
	"IT et électronique",
	"Equipement et matériel",
	"Fournitures de bureau",
}

// Valid reports whether s is one of the known statuses.
func (s BillStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRefused:
		return true
	}
	return false
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s BillStatus) CanTransitionTo(next BillStatus) bool {
	return slices.Contains(validTransitions[s], next)
}

// StatusHistoryEntry records a single review decision on a bill.
type StatusHistoryEntry struct {
	Status    BillStatus `json:"status"`
	Timestamp time.Time  `json:"timestamp"`
	Comment   string     `json:"comment,omitempty"`
}

// Bill is one expense claim. Date is kept as the raw stored string so that a
// malformed value survives a round trip instead of failing the whole list.
type Bill struct {
	ID            string               `json:"id"`
	Email         string               `json:"email"`
	Type          string               `json:"type"`
	Name          string               `json:"name"`
	Date          string               `json:"date"`
	Amount        int                  `json:"amount"`
	VAT           int                  `json:"vat,omitempty"`
	Pct           int                  `json:"pct"`
	Commentary    string               `json:"commentary,omitempty"`
	FileURL       string               `json:"fileUrl,omitempty"`
	FileName      string               `json:"fileName,omitempty"`
	Status        BillStatus           `json:"status"`
	CommentAdmin  string               `json:"commentAdmin,omitempty"`
	StatusHistory []StatusHistoryEntry `json:"statusHistory,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
}

// ParsedDate returns the bill date and whether it could be parsed.
func (b Bill) ParsedDate() (time.Time, bool) {
	t, err := time.Parse(DateLayout, b.Date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SortBillsByDateDesc orders bills from latest to earliest in place. Ties keep
// their insertion order and bills whose date cannot be parsed sink to the end.
func SortBillsByDateDesc(bills []Bill) {
	slices.SortStableFunc(bills, func(a, b Bill) int {
		da, okA := a.ParsedDate()
		db, okB := b.ParsedDate()
		switch {
		case !okA && !okB:
			return 0
		case !okA:
			return 1
		case !okB:
			return -1
		}
		return db.Compare(da)
	})
}
