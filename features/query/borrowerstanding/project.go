package borrowerstanding

import (
	"github.com/bibkit/library-circulation-go/core"
)

// Project implements the query logic for a borrower's standing. Pure
// function: the blocked flag is derived from the fine set right here,
// never read from storage.
func Project(borrower core.Borrower, fines []core.Fine, _ Query) Standing {
	infos := make([]FineInfo, 0, len(fines))
	pendingCount := 0
	pendingTotal := 0.0

	for _, fine := range fines {
		if fine.Pending() {
			pendingCount++
			pendingTotal += fine.Amount
		}

		infos = append(infos, FineInfo{
			FineID:          fine.ID.String(),
			ReferenceCode:   fine.ReferenceCode,
			LoanID:          fine.LoanID.String(),
			Type:            fine.Type,
			State:           fine.State,
			Amount:          fine.Amount,
			DelinquencyDays: fine.DelinquencyDays,
			ExpiresAt:       fine.ExpiresAt,
		})
	}

	return Standing{
		BorrowerID:       borrower.ID.String(),
		BorrowerName:     borrower.DisplayName(),
		Fines:            infos,
		PendingFineCount: pendingCount,
		PendingTotal:     pendingTotal,
		BlockedForLoans:  core.BorrowerBlocked(pendingCount),
	}
}
