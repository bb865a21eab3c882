package confirmloan

import (
	"context"

	"github.com/bibkit/library-circulation-go/core"
	"github.com/bibkit/library-circulation-go/journal"
	"github.com/bibkit/library-circulation-go/recordstore"
	"github.com/bibkit/library-circulation-go/shell"
)

// CommandHandler orchestrates the complete command processing workflow:
// Load -> Decide -> guarded Update, inside one transaction, with conflict retry.
type CommandHandler struct {
	store        recordstore.Store
	clock        shell.Clock
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
func NewCommandHandler(store recordstore.Store, clock shell.Clock, opts ...Option) CommandHandler {
	handler := CommandHandler{
		store: store,
		clock: clock,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle confirms a draft loan and returns the activated loan.
func (h CommandHandler) Handle(ctx context.Context, command Command) (core.Loan, error) {
	var confirmed core.Loan

	err := shell.RetryOnConflict(ctx, func(retryCtx context.Context) error {
		return h.store.WithinTx(retryCtx, func(txCtx context.Context, access recordstore.Access) error {
			loan, execErr := h.executeCommand(txCtx, access, command)
			if execErr != nil {
				return execErr
			}

			confirmed = loan

			return nil
		})
	}, h.retryOptions...)

	if err != nil {
		return core.Loan{}, err
	}

	return confirmed, nil
}

func (h CommandHandler) executeCommand(
	ctx context.Context,
	access recordstore.Access,
	command Command,
) (core.Loan, error) {

	loan, err := access.GetLoan(ctx, command.LoanID)
	if err != nil {
		return core.Loan{}, err
	}

	borrower, err := access.GetBorrower(ctx, loan.BorrowerID)
	if err != nil {
		return core.Loan{}, err
	}

	book, err := access.GetBook(ctx, loan.BookID)
	if err != nil {
		return core.Loan{}, err
	}

	pendingFines, err := access.CountPendingFinesByBorrower(ctx, borrower.ID)
	if err != nil {
		return core.Loan{}, err
	}

	activeLoans, err := access.CountActiveOrFinedLoansByBook(ctx, book.ID)
	if err != nil {
		return core.Loan{}, err
	}

	confirmed, err := Decide(loan, borrower, book, pendingFines, activeLoans, h.clock.Now())
	if err != nil {
		return core.Loan{}, err
	}

	// The guard on the previous state is the commit-time re-verification:
	// a concurrent transition on the same loan surfaces ErrConcurrencyConflict.
	if err = access.UpdateLoan(ctx, confirmed, core.LoanStateDraft); err != nil {
		return core.Loan{}, err
	}

	entry, err := journal.BuildEntry(journal.LoanConfirmedEntryType, h.clock.Now(), journal.LoanPayload{
		LoanID:        confirmed.ID.String(),
		ReferenceCode: confirmed.ReferenceCode,
		BookID:        confirmed.BookID.String(),
		BorrowerID:    confirmed.BorrowerID.String(),
		State:         string(confirmed.State),
	})
	if err != nil {
		return core.Loan{}, err
	}

	if err = access.AppendJournal(ctx, entry); err != nil {
		return core.Loan{}, err
	}

	return confirmed, nil
}
