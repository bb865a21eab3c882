package reportbooklost

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bibkit/library-circulation-go/core"
)

// Decision is the outcome of reporting a lost book: the closed loan and
// the new blocking fine.
type Decision struct {
	Loan core.Loan
	Fine core.Fine
}

// Decide implements the business logic for reporting a lost book.
// Identical to the damaged report except for the fine type.
//
//	GIVEN: A loan in active or fined state
//	WHEN: ReportBookLost command is received
//	THEN: A lost-type fine is created for the book's cost (or the fixed
//	      fallback), expiring 60 days out; the loan is marked returned now
//	      and transitions to fined; the book is to be blocked by the fine
//	ERROR: ValidationError "invalid transition" if the loan is draft or returned
//	ERROR: PreconditionError if the book already has an active blocking fine
func Decide(
	loan core.Loan,
	book core.Book,
	fineID uuid.UUID,
	fineReferenceCode core.ReferenceCodeString,
	now time.Time,
) (Decision, error) {

	if loan.State != core.LoanStateActive && loan.State != core.LoanStateFined {
		return Decision{}, core.NewValidationError(fmt.Sprintf(
			"invalid transition: cannot report loss on loan %s in state %s", loan.ReferenceCode, loan.State))
	}

	if book.Blocked() {
		return Decision{}, core.NewPreconditionError(fmt.Sprintf(
			"book %q is already blocked by another fine", book.Title))
	}

	fine := core.BuildManualFine(fineID, fineReferenceCode, loan, book, core.FineTypeLost, now)

	returnedAt := core.ToInstant(now)
	loan.ReturnedAt = &returnedAt
	loan.State = core.LoanStateFined
	loan.HasFine = true
	loan.FineAmount = fine.Amount

	return Decision{Loan: loan, Fine: fine}, nil
}
