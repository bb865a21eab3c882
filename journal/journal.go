// Package journal provides the circulation journal: an append-only audit
// trail of the state transitions the engine performs. Every successful
// command appends one entry inside the same transaction as the transition
// it describes, so the journal never disagrees with the record store.
package journal

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

// Entry type identifiers for everything the engine journals.
const (
	LoanOpenedEntryType          = "LoanOpened"
	LoanConfirmedEntryType       = "LoanConfirmed"
	LoanReturnedEntryType        = "LoanReturned"
	BookReportedDamagedEntryType = "BookReportedDamaged"
	BookReportedLostEntryType    = "BookReportedLost"
	FinePaidEntryType            = "FinePaid"
	FineCancelledEntryType       = "FineCancelled"
	OverdueLoanFinedEntryType    = "OverdueLoanFined"
	SweepCompletedEntryType      = "SweepCompleted"
)

// ErrInvalidPayload is returned when an entry payload does not marshal to valid JSON.
var ErrInvalidPayload = errors.New("journal payload is not valid json")

// Entry is one journal record: what happened, when, and a JSON payload
// with the identifiers and amounts involved.
//
// While its properties are exported, it should only be constructed with BuildEntry.
type Entry struct {
	ID          uuid.UUID
	EntryType   string
	OccurredAt  time.Time
	PayloadJSON []byte
}

// BuildEntry creates an Entry, marshalling the payload with jsoniter.
func BuildEntry(entryType string, occurredAt time.Time, payload any) (Entry, error) {
	payloadJSON, err := jsoniter.ConfigFastest.Marshal(payload)
	if err != nil {
		return Entry{}, errors.Join(ErrInvalidPayload, err)
	}

	if !json.Valid(payloadJSON) {
		return Entry{}, ErrInvalidPayload
	}

	return Entry{
		ID:          uuid.New(),
		EntryType:   entryType,
		OccurredAt:  occurredAt.UTC().Truncate(time.Microsecond),
		PayloadJSON: payloadJSON,
	}, nil
}

// LoanPayload is the payload for loan lifecycle entries.
type LoanPayload struct {
	LoanID        string  `json:"loan_id"`
	ReferenceCode string  `json:"reference_code"`
	BookID        string  `json:"book_id"`
	BorrowerID    string  `json:"borrower_id"`
	State         string  `json:"state"`
	FineAmount    float64 `json:"fine_amount,omitempty"`
}

// FinePayload is the payload for fine lifecycle entries.
type FinePayload struct {
	FineID          string  `json:"fine_id"`
	ReferenceCode   string  `json:"reference_code"`
	LoanID          string  `json:"loan_id"`
	Type            string  `json:"type"`
	State           string  `json:"state"`
	Amount          float64 `json:"amount"`
	DelinquencyDays int     `json:"delinquency_days"`
}

// SweepPayload is the payload for a completed overdue sweep.
type SweepPayload struct {
	LoansExamined  int `json:"loans_examined"`
	LoansFined     int `json:"loans_fined"`
	LoansSkipped   int `json:"loans_skipped"`
	NotifyFailures int `json:"notify_failures"`
}
