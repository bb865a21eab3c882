package openloan

import (
	"time"

	"github.com/google/uuid"

	"github.com/bibkit/library-circulation-go/core"
)

// Decide implements the business logic for opening a loan. This is a pure
// function with no side effects - it takes the loaded state and a command
// and returns the draft loan to insert, or an error.
//
// Business Rules:
//
//	GIVEN: A borrower and a book, with the borrower's pending fine count
//	       and the book's active-or-fined loan count
//	WHEN: OpenLoan command is received
//	THEN: A draft Loan is created with a fixed due timestamp
//	ERROR: ValidationError if the borrower has pending fines
//	ERROR: ValidationError if the book is blocked by a damaged/lost fine
//	ERROR: ValidationError if active-or-fined loans >= the book's copy count
func Decide(
	command Command,
	borrower core.Borrower,
	book core.Book,
	pendingFineCount int,
	activeOrFinedLoanCount int,
	config core.Configuration,
	loanID uuid.UUID,
	referenceCode core.ReferenceCodeString,
	now time.Time,
) (core.Loan, error) {

	if err := core.CheckLoanEligibility(borrower, book, pendingFineCount, activeOrFinedLoanCount); err != nil {
		return core.Loan{}, err
	}

	loanedAt := command.LoanedAt
	if loanedAt.IsZero() {
		loanedAt = now
	}

	return core.BuildLoan(loanID, referenceCode, book.ID, borrower.ID, loanedAt, config.LoanPeriodDays), nil
}
