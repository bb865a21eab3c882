package core

import (
	"fmt"
)

// Blocking policy: pure rules computing whether a borrower or book may be
// committed to a new loan. Re-evaluated from the store's truth on every
// check; the derived flags are never mutated directly by callers.

// BorrowerBlocked reports whether a borrower with the given number of
// pending fines is blocked for new loans.
func BorrowerBlocked(pendingFineCount int) bool {
	return pendingFineCount > 0
}

// CopiesExhausted reports whether all circulating copies of the book are
// tied up in active or fined loans.
func CopiesExhausted(book Book, activeOrFinedLoanCount int) bool {
	return activeOrFinedLoanCount >= book.CopyCount
}

// CheckLoanEligibility runs the validation guard for every transition into
// draft or active: the borrower must have no pending fines, the book must
// not be blocked by a damaged/lost fine, and a copy must be available.
// Returns a ValidationError describing the first violated rule, or nil.
func CheckLoanEligibility(
	borrower Borrower,
	book Book,
	pendingFineCount int,
	activeOrFinedLoanCount int,
) error {

	if BorrowerBlocked(pendingFineCount) {
		return NewValidationError(fmt.Sprintf(
			"borrower %s has pending fines and is blocked for new loans", borrower.DisplayName()))
	}

	if book.Blocked() {
		return NewValidationError(fmt.Sprintf(
			"book %q is blocked by a damaged/lost fine", book.Title))
	}

	if CopiesExhausted(book, activeOrFinedLoanCount) {
		return NewValidationError(fmt.Sprintf(
			"no copies available of %q", book.Title))
	}

	return nil
}
