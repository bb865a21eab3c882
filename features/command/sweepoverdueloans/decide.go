package sweepoverdueloans

import (
	"time"

	"github.com/bibkit/library-circulation-go/core"
)

// Assessment is the pure per-loan decision of one sweep pass.
type Assessment struct {
	// Eligible is false when the loan is no longer a sweep candidate
	// (not active, not overdue, or already notified by a previous run).
	Eligible bool

	// WithinGrace is true when the loan is overdue but still inside the
	// configured grace period; such loans are left untouched.
	WithinGrace bool

	DelinquencyDays int
}

// Assess implements the per-loan business logic of the sweep. Pure function.
//
// Business Rules:
//
//	GIVEN: A loan selected as active, past due, and not yet notified
//	WHEN: The sweep processes it
//	THEN: delinquency = whole days past due; loans under the grace period
//	      are skipped untouched; the rest are fined and notified
//
// The loan is re-assessed against freshly loaded state inside the sweep's
// transaction to stay correct if a return or an overlapping sweep won the race.
func Assess(loan core.Loan, config core.Configuration, now time.Time) Assessment {
	if loan.State != core.LoanStateActive || loan.Notified || !now.After(loan.DueAt) {
		return Assessment{}
	}

	days := core.WholeDaysBetween(loan.DueAt, now)
	if days < config.NotificationGraceDays {
		return Assessment{Eligible: true, WithinGrace: true, DelinquencyDays: days}
	}

	return Assessment{Eligible: true, DelinquencyDays: days}
}

// ApplyFined transitions an overdue loan to the fined state, mirroring the
// delay fine's amount onto the loan. The book stays out, so no return
// timestamp is set.
func ApplyFined(loan core.Loan, fine core.Fine) core.Loan {
	loan.State = core.LoanStateFined
	loan.HasFine = true
	loan.FineAmount = fine.Amount

	return loan
}
