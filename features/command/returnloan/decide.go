package returnloan

import (
	"fmt"
	"time"

	"github.com/bibkit/library-circulation-go/core"
)

// Outcome is the pure decision for a return: whether it is late and by how
// many whole days.
type Outcome struct {
	Late            bool
	DelinquencyDays int
}

// Decide implements the business logic for returning a loan. Pure function.
//
// Business Rules:
//
//	GIVEN: A loan in active state
//	WHEN: ReturnLoan command is received
//	THEN (on time): the loan will be returned with no fine
//	THEN (late): delinquency = whole days past due, clamped to >= 0;
//	             a delay fine of delinquency x per-day rate is owed
//	ERROR: ValidationError "invalid transition" if the loan is not active
func Decide(loan core.Loan, now time.Time) (Outcome, error) {
	if loan.State != core.LoanStateActive {
		return Outcome{}, core.NewValidationError(fmt.Sprintf(
			"invalid transition: cannot return loan %s in state %s", loan.ReferenceCode, loan.State))
	}

	if !now.After(loan.DueAt) {
		return Outcome{}, nil
	}

	return Outcome{
		Late:            true,
		DelinquencyDays: core.WholeDaysBetween(loan.DueAt, now),
	}, nil
}

// ApplyOnTimeReturn transitions the loan to returned with the fine flag
// cleared and the fine amount zeroed.
func ApplyOnTimeReturn(loan core.Loan, now time.Time) core.Loan {
	returnedAt := core.ToInstant(now)

	loan.ReturnedAt = &returnedAt
	loan.State = core.LoanStateReturned
	loan.HasFine = false
	loan.FineAmount = 0

	return loan
}

// ApplyLateReturn transitions the loan to fined, mirroring the delay fine's
// amount onto the loan record.
func ApplyLateReturn(loan core.Loan, fine core.Fine, now time.Time) core.Loan {
	returnedAt := core.ToInstant(now)

	loan.ReturnedAt = &returnedAt
	loan.State = core.LoanStateFined
	loan.HasFine = true
	loan.FineAmount = fine.Amount

	return loan
}
