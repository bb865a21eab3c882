package overdueloans

import (
	"time"

	"github.com/bibkit/library-circulation-go/core"
)

// OverdueLoanInfo represents one overdue loan in the projection.
type OverdueLoanInfo struct {
	LoanID          string
	ReferenceCode   core.ReferenceCodeString
	BookID          string
	BorrowerID      string
	DueAt           time.Time
	DelinquencyDays int
	Notified        bool
}

// OverdueLoans represents the query result: all active loans past due,
// most delinquent first.
type OverdueLoans struct {
	Loans []OverdueLoanInfo
	Count int
}
