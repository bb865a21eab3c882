package sweepoverdueloans

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/bibkit/library-circulation-go/core"
	"github.com/bibkit/library-circulation-go/journal"
	"github.com/bibkit/library-circulation-go/recordstore"
	"github.com/bibkit/library-circulation-go/shell"
)

const fineSequenceCode = "fine"

// Result summarizes one sweep run.
type Result struct {
	LoansExamined  int
	LoansFined     int
	LoansSkipped   int
	NotifyFailures int
}

// CommandHandler runs the overdue sweep. It is intended to run as a single
// serialized batch; should runs ever overlap, the per-loan check-and-set of
// the notified flag keeps notifications from being duplicated.
//
// Each eligible loan is processed in its own transaction, so one contended
// loan cannot roll back the whole batch. A loan that loses a race with a
// concurrent return is skipped and left to the next run; nothing in the
// sweep is retried inline.
type CommandHandler struct {
	store     recordstore.Store
	clock     shell.Clock
	sequences shell.SequenceGenerator
	notifier  shell.NotificationSender
	logger    shell.Logger
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(
	store recordstore.Store,
	clock shell.Clock,
	sequences shell.SequenceGenerator,
	notifier shell.NotificationSender,
	logger shell.Logger,
) CommandHandler {

	return CommandHandler{
		store:     store,
		clock:     clock,
		sequences: sequences,
		notifier:  notifier,
		logger:    logger,
	}
}

// Handle executes one sweep over all active, past-due, not-yet-notified loans.
func (h CommandHandler) Handle(ctx context.Context, _ Command) (Result, error) {
	now := h.clock.Now()

	config, candidates, err := h.selectCandidates(ctx, now)
	if err != nil {
		return Result{}, err
	}

	result := Result{LoansExamined: len(candidates)}

	for _, candidate := range candidates {
		outcome, processErr := h.processLoan(ctx, candidate.ID, config, now)

		switch {
		case processErr == nil && outcome.fined:
			result.LoansFined++

			// Dispatch after the transition committed: the notified flag is
			// already set, so this is the loan's one notification attempt.
			if outcome.notification != nil {
				if sendErr := h.notifier.Send(ctx, *outcome.notification); sendErr != nil {
					result.NotifyFailures++
					h.logWarn("overdue notification failed",
						"loan", outcome.notification.LoanReferenceCode,
						"error", shell.NewExternalFetchError("notification", sendErr).Error())
				}
			}

		case processErr == nil:
			result.LoansSkipped++

		case errors.Is(processErr, recordstore.ErrConcurrencyConflict):
			// Lost a race with a concurrent return; the next run sees the truth.
			result.LoansSkipped++
			h.logWarn("sweep skipped contended loan", "loan_id", candidate.ID.String())

		default:
			return result, processErr
		}
	}

	if err = h.journalRun(ctx, result, now); err != nil {
		// The fines and notifications above are already committed; a lost
		// run-summary entry must not make the whole sweep look failed.
		h.logWarn("sweep run summary journal entry failed", "error", err.Error())
	}

	return result, nil
}

// selectCandidates loads the configuration and the sweep candidates in one
// read transaction.
func (h CommandHandler) selectCandidates(ctx context.Context, now time.Time) (
	core.Configuration,
	[]core.Loan,
	error,
) {

	var config core.Configuration
	var candidates []core.Loan

	err := h.store.WithinTx(ctx, func(txCtx context.Context, access recordstore.Access) error {
		var txErr error

		if config, txErr = access.LoadConfiguration(txCtx); txErr != nil {
			return txErr
		}

		candidates, txErr = access.SelectLoansForSweep(txCtx, now)

		return txErr
	})
	if err != nil {
		return core.Configuration{}, nil, err
	}

	return config, candidates, nil
}

// loanOutcome reports what one per-loan transaction did: whether the loan
// was fined, and the notification to dispatch (nil when the borrower has
// no contact address, or when the loan was skipped).
type loanOutcome struct {
	fined        bool
	notification *shell.Notification
}

// processLoan handles one candidate in its own transaction.
func (h CommandHandler) processLoan(
	ctx context.Context,
	loanID uuid.UUID,
	config core.Configuration,
	now time.Time,
) (loanOutcome, error) {

	var outcome loanOutcome

	err := h.store.WithinTx(ctx, func(txCtx context.Context, access recordstore.Access) error {
		loan, txErr := access.GetLoan(txCtx, loanID)
		if txErr != nil {
			return txErr
		}

		assessment := Assess(loan, config, now)
		if !assessment.Eligible || assessment.WithinGrace {
			return nil
		}

		fine, txErr := h.createOrUpdateDelayFine(txCtx, access, loan, assessment.DelinquencyDays, config.FinePerDay, now)
		if txErr != nil {
			return txErr
		}

		fined := ApplyFined(loan, fine)

		if txErr = access.UpdateLoan(txCtx, fined, core.LoanStateActive); txErr != nil {
			return txErr
		}

		set, txErr := access.MarkLoanNotified(txCtx, loan.ID, now)
		if txErr != nil {
			return txErr
		}
		if !set {
			// An overlapping sweep got here first; leave its work alone.
			return recordstore.ErrConcurrencyConflict
		}

		entry, txErr := journal.BuildEntry(journal.OverdueLoanFinedEntryType, now, journal.FinePayload{
			FineID:          fine.ID.String(),
			ReferenceCode:   fine.ReferenceCode,
			LoanID:          loan.ID.String(),
			Type:            string(fine.Type),
			State:           string(fine.State),
			Amount:          fine.Amount,
			DelinquencyDays: fine.DelinquencyDays,
		})
		if txErr != nil {
			return txErr
		}

		if txErr = access.AppendJournal(txCtx, entry); txErr != nil {
			return txErr
		}

		outcome.fined = true

		borrower, txErr := access.GetBorrower(txCtx, loan.BorrowerID)
		if txErr != nil {
			return txErr
		}

		if !borrower.HasContactAddress() {
			h.logWarn("borrower has no contact address", "loan", loan.ReferenceCode)
			return nil
		}

		outcome.notification = &shell.Notification{
			LoanReferenceCode: loan.ReferenceCode,
			FineReferenceCode: fine.ReferenceCode,
			BorrowerName:      borrower.DisplayName(),
			BorrowerEmail:     borrower.Email,
			SenderAddress:     config.SenderAddress,
			FineAmount:        fine.Amount,
			DelinquencyDays:   fine.DelinquencyDays,
		}

		return nil
	})
	if err != nil {
		return loanOutcome{}, err
	}

	return outcome, nil
}

func (h CommandHandler) createOrUpdateDelayFine(
	ctx context.Context,
	access recordstore.Access,
	loan core.Loan,
	delinquencyDays int,
	perDayRate float64,
	now time.Time,
) (core.Fine, error) {

	existing, err := access.FindPendingDelayFineByLoan(ctx, loan.ID)

	switch {
	case err == nil:
		updated := core.UpdateDelayFine(existing, delinquencyDays, perDayRate)

		if updateErr := access.UpdateFine(ctx, updated, core.FineStatePending); updateErr != nil {
			return core.Fine{}, updateErr
		}

		return updated, nil

	case errors.Is(err, recordstore.ErrNotFound):
		referenceCode, seqErr := h.sequences.Next(ctx, fineSequenceCode)
		if seqErr != nil {
			return core.Fine{}, seqErr
		}

		created := core.BuildDelayFine(uuid.New(), referenceCode, loan, delinquencyDays, perDayRate, now)

		if insertErr := access.InsertFine(ctx, created); insertErr != nil {
			return core.Fine{}, insertErr
		}

		return created, nil

	default:
		return core.Fine{}, err
	}
}

func (h CommandHandler) journalRun(ctx context.Context, result Result, now time.Time) error {
	return h.store.WithinTx(ctx, func(txCtx context.Context, access recordstore.Access) error {
		entry, err := journal.BuildEntry(journal.SweepCompletedEntryType, now, journal.SweepPayload{
			LoansExamined:  result.LoansExamined,
			LoansFined:     result.LoansFined,
			LoansSkipped:   result.LoansSkipped,
			NotifyFailures: result.NotifyFailures,
		})
		if err != nil {
			return err
		}

		return access.AppendJournal(txCtx, entry)
	})
}

func (h CommandHandler) logWarn(msg string, args ...any) {
	if h.logger != nil {
		h.logger.Warn(msg, args...)
	}
}
