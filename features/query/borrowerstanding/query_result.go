package borrowerstanding

import (
	"time"

	"github.com/bibkit/library-circulation-go/core"
)

// FineInfo represents one fine in the standing projection.
type FineInfo struct {
	FineID          string
	ReferenceCode   core.ReferenceCodeString
	LoanID          string
	Type            core.FineType
	State           core.FineState
	Amount          float64
	DelinquencyDays int
	ExpiresAt       time.Time
}

// Standing represents the query result for one borrower: their fines and
// the derived block status.
type Standing struct {
	BorrowerID       string
	BorrowerName     string
	Fines            []FineInfo
	PendingFineCount int
	PendingTotal     float64
	BlockedForLoans  bool
}
