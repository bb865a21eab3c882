package overdueloans

import (
	"slices"
	"time"

	"github.com/bibkit/library-circulation-go/core"
)

// Project implements the query logic for overdue loans. This is a pure
// function with no side effects - it takes the selected loans and the
// measurement time and returns the projected state.
//
// Query Logic:
//
//	GIVEN: The active loans past their due date
//	WHEN: OverdueLoans query is executed
//	THEN: OverdueLoans struct is returned, delinquency recomputed at "now",
//	      sorted most delinquent first
func Project(loans []core.Loan, _ Query, now time.Time) OverdueLoans {
	infos := make([]OverdueLoanInfo, 0, len(loans))

	for _, loan := range loans {
		infos = append(infos, OverdueLoanInfo{
			LoanID:          loan.ID.String(),
			ReferenceCode:   loan.ReferenceCode,
			BookID:          loan.BookID.String(),
			BorrowerID:      loan.BorrowerID.String(),
			DueAt:           loan.DueAt,
			DelinquencyDays: loan.DelinquencyDaysAt(now),
			Notified:        loan.Notified,
		})
	}

	slices.SortFunc(infos, func(a, b OverdueLoanInfo) int {
		return b.DelinquencyDays - a.DelinquencyDays
	})

	return OverdueLoans{
		Loans: infos,
		Count: len(infos),
	}
}
