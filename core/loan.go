package core

import (
	"time"

	"github.com/google/uuid"
)

// LoanState represents the lifecycle state of a loan.
type LoanState string

// Loan lifecycle: draft -> active -> (returned | fined), see the feature
// packages for the transition rules.
const (
	LoanStateDraft    LoanState = "draft"
	LoanStateActive   LoanState = "active"
	LoanStateFined    LoanState = "fined"
	LoanStateReturned LoanState = "returned"
)

// Loan represents one book borrowed by one borrower for a bounded period.
//
// DueAt is computed once at creation (loaned-at plus the configured loan
// period) and is immutable thereafter. Delinquency days are derived, not
// stored: use DelinquencyDaysAt so active loans always reflect "now".
type Loan struct {
	ID            uuid.UUID
	ReferenceCode ReferenceCodeString
	BookID        uuid.UUID
	BorrowerID    uuid.UUID
	LoanedAt      time.Time
	DueAt         time.Time
	ReturnedAt    *time.Time
	State         LoanState
	HasFine       bool
	FineAmount    float64
	Notified      bool
	NotifiedAt    *time.Time
}

// BuildLoan creates a new draft Loan. The due timestamp is fixed here, once,
// from the loaned-at timestamp and the configured loan period.
func BuildLoan(
	id uuid.UUID,
	referenceCode ReferenceCodeString,
	bookID uuid.UUID,
	borrowerID uuid.UUID,
	loanedAt time.Time,
	loanPeriodDays int,
) Loan {

	loanedAt = ToInstant(loanedAt)

	return Loan{
		ID:            id,
		ReferenceCode: referenceCode,
		BookID:        bookID,
		BorrowerID:    borrowerID,
		LoanedAt:      loanedAt,
		DueAt:         loanedAt.AddDate(0, 0, loanPeriodDays),
		State:         LoanStateDraft,
	}
}

// DelinquencyDaysAt returns the whole days this loan is past its due date
// at the moment of measurement, clamped to >= 0.
//
// For active and fined loans the measurement point is "now"; for returned
// loans it is the return timestamp; draft loans are never delinquent.
func (l Loan) DelinquencyDaysAt(now time.Time) int {
	switch l.State {
	case LoanStateActive, LoanStateFined:
		return WholeDaysBetween(l.DueAt, now)

	case LoanStateReturned:
		if l.ReturnedAt == nil {
			return 0
		}
		return WholeDaysBetween(l.DueAt, *l.ReturnedAt)

	default:
		return 0
	}
}

// OverdueAt reports whether an active loan is past its due date.
func (l Loan) OverdueAt(now time.Time) bool {
	return l.State == LoanStateActive && now.After(l.DueAt)
}
