package payfine

import (
	"fmt"

	"github.com/bibkit/library-circulation-go/core"
)

// Decision is the outcome of paying a fine: the settled fine, the loan
// (forced into returned when the rules say so), and whether the book's
// blocking fine reference must be cleared.
type Decision struct {
	Fine            core.Fine
	Loan            core.Loan
	LoanForcedClose bool
	UnblockBook     bool
}

// Decide implements the business logic for paying a fine. Pure function
// over the fine, its originating loan, and the loan's book.
//
// Business Rules:
//
//	GIVEN: A fine in pending state
//	WHEN: PayFine command is received
//	THEN: The fine becomes paid
//	AND: if the fine is damaged/lost and is the one currently blocking its
//	     book, the book's blocking reference is cleared
//	AND: if the originating loan has a return timestamp OR the fine is
//	     damaged/lost, the loan is forced into returned state
//	ERROR: PreconditionError if the fine is not pending (already paid or
//	       cancelled - rejected, not a silent no-op)
func Decide(fine core.Fine, loan core.Loan, book core.Book) (Decision, error) {
	if !fine.Pending() {
		return Decision{}, core.NewPreconditionError(fmt.Sprintf(
			"cannot pay fine %s in state %s", fine.ReferenceCode, fine.State))
	}

	fine.State = core.FineStatePaid

	decision := Decision{
		Fine: fine,
		Loan: loan,
	}

	if fine.Blocking() && book.BlockedBy(fine.ID) {
		decision.UnblockBook = true
	}

	if (loan.ReturnedAt != nil || fine.Blocking()) && loan.State != core.LoanStateReturned {
		decision.Loan.State = core.LoanStateReturned
		decision.LoanForcedClose = true
	}

	return decision, nil
}
