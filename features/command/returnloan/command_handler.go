package returnloan

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

// fineSequenceCode selects the reference code sequence for fines.
const fineSequenceCode = "fine"

// Result carries the returned loan and, for a late return, the delay fine
// that was created or updated.
type Result struct {
	Loan core.Loan
	Fine *core.Fine
}

// CommandHandler orchestrates the complete command processing workflow:
// Load -> Decide -> fine ledger -> guarded Update, inside one transaction,
// with conflict retry.
type CommandHandler struct {
	store        recordstore.Store
	clock        shell.Clock
	sequences    shell.SequenceGenerator
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(
	store recordstore.Store,
	clock shell.Clock,
	sequences shell.SequenceGenerator,
	opts ...Option,
) CommandHandler {

	handler := CommandHandler{
		store:     store,
		clock:     clock,
		sequences: sequences,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle returns a loan, fining it when the return is late.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	var result Result

	err := shell.RetryOnConflict(ctx, func(retryCtx context.Context) error {
		return h.store.WithinTx(retryCtx, func(txCtx context.Context, access recordstore.Access) error {
			res, execErr := h.executeCommand(txCtx, access, command)
			if execErr != nil {
				return execErr
			}

			result = res

			return nil
		})
	}, h.retryOptions...)

	if err != nil {
		return Result{}, err
	}

	return result, nil
}

func (h CommandHandler) executeCommand(
	ctx context.Context,
	access recordstore.Access,
	command Command,
) (Result, error) {

	now := h.clock.Now()

	loan, err := access.GetLoan(ctx, command.LoanID)
	if err != nil {
		return Result{}, err
	}

	outcome, err := Decide(loan, now)
	if err != nil {
		return Result{}, err
	}

	if !outcome.Late {
		returned := ApplyOnTimeReturn(loan, now)

		if err = access.UpdateLoan(ctx, returned, core.LoanStateActive); err != nil {
			return Result{}, err
		}

		if err = h.appendLoanJournal(ctx, access, returned, now); err != nil {
			return Result{}, err
		}

		return Result{Loan: returned}, nil
	}

	config, err := access.LoadConfiguration(ctx)
	if err != nil {
		return Result{}, err
	}

	fine, err := h.createOrUpdateDelayFine(ctx, access, loan, outcome.DelinquencyDays, config.FinePerDay, now)
	if err != nil {
		return Result{}, err
	}

	fined := ApplyLateReturn(loan, fine, now)

	if err = access.UpdateLoan(ctx, fined, core.LoanStateActive); err != nil {
		return Result{}, err
	}

	if err = h.appendLoanJournal(ctx, access, fined, now); err != nil {
		return Result{}, err
	}

	return Result{Loan: fined, Fine: &fine}, nil
}

// createOrUpdateDelayFine folds the latest delinquency into the loan's
// single pending delay fine, creating it on first offense.
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

func (h CommandHandler) appendLoanJournal(
	ctx context.Context,
	access recordstore.Access,
	loan core.Loan,
	now time.Time,
) error {

	entry, err := journal.BuildEntry(journal.LoanReturnedEntryType, now, journal.LoanPayload{
		LoanID:        loan.ID.String(),
		ReferenceCode: loan.ReferenceCode,
		BookID:        loan.BookID.String(),
		BorrowerID:    loan.BorrowerID.String(),
		State:         string(loan.State),
		FineAmount:    loan.FineAmount,
	})
	if err != nil {
		return err
	}

	return access.AppendJournal(ctx, entry)
}
