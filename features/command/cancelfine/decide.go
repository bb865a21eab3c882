package cancelfine

import (
	"fmt"

	"github.com/bibkit/library-circulation-go/core"
)

// Decision is the outcome of cancelling a fine: the cancelled fine and
// whether the book's blocking fine reference must be cleared.
type Decision struct {
	Fine        core.Fine
	UnblockBook bool
}

// Decide implements the business logic for cancelling a fine. Pure function
// over the fine and its loan's book.
//
//	GIVEN: A fine in pending state
//	WHEN: CancelFine command is received
//	THEN: The fine becomes cancelled
//	AND: if the fine is damaged/lost and is the one currently blocking its
//	     book, the book's blocking reference is cleared - a cancelled fine
//	     must not keep its book out of circulation
//	ERROR: PreconditionError if the fine is not pending
func Decide(fine core.Fine, book core.Book) (Decision, error) {
	if !fine.Pending() {
		return Decision{}, core.NewPreconditionError(fmt.Sprintf(
			"cannot cancel fine %s in state %s", fine.ReferenceCode, fine.State))
	}

	fine.State = core.FineStateCancelled

	decision := Decision{Fine: fine}

	if fine.Blocking() && book.BlockedBy(fine.ID) {
		decision.UnblockBook = true
	}

	return decision, nil
}
