package confirmloan

import (
	"fmt"
	"time"

	"github.com/bibkit/library-circulation-go/core"
)

// Decide implements the business logic for confirming a loan. Pure function:
// it takes the loaded state and returns the activated loan, or an error.
//
// Business Rules:
//
//	GIVEN: A loan in draft state
//	WHEN: ConfirmLoan command is received
//	THEN: The loan becomes active; the loan timestamp is set if absent
//	ERROR: ValidationError "invalid transition" if the loan is not in draft
//	ERROR: ValidationError if the eligibility guard fails (blocked
//	       borrower, blocked book, no copies available)
func Decide(
	loan core.Loan,
	borrower core.Borrower,
	book core.Book,
	pendingFineCount int,
	activeOrFinedLoanCount int,
	now time.Time,
) (core.Loan, error) {

	if loan.State != core.LoanStateDraft {
		return core.Loan{}, core.NewValidationError(fmt.Sprintf(
			"invalid transition: cannot confirm loan %s in state %s", loan.ReferenceCode, loan.State))
	}

	if err := core.CheckLoanEligibility(borrower, book, pendingFineCount, activeOrFinedLoanCount); err != nil {
		return core.Loan{}, err
	}

	if loan.LoanedAt.IsZero() {
		loan.LoanedAt = core.ToInstant(now)
	}

	loan.State = core.LoanStateActive

	return loan, nil
}
