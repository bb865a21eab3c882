package openloan

import (
	"context"

	"github.com/google/uuid"

	"github.com/bibkit/library-circulation-go/core"
	"github.com/bibkit/library-circulation-go/journal"
	"github.com/bibkit/library-circulation-go/recordstore"
	"github.com/bibkit/library-circulation-go/shell"
)

// loanSequenceCode selects the reference code sequence for loans.
const loanSequenceCode = "loan"

// CommandHandler orchestrates the complete command processing workflow:
// Load -> Decide -> Insert, inside one transaction, with conflict retry.
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

// Handle opens a new draft loan and returns it.
func (h CommandHandler) Handle(ctx context.Context, command Command) (core.Loan, error) {
	var opened core.Loan

	err := shell.RetryOnConflict(ctx, func(retryCtx context.Context) error {
		return h.store.WithinTx(retryCtx, func(txCtx context.Context, access recordstore.Access) error {
			loan, execErr := h.executeCommand(txCtx, access, command)
			if execErr != nil {
				return execErr
			}

			opened = loan

			return nil
		})
	}, h.retryOptions...)

	if err != nil {
		return core.Loan{}, err
	}

	return opened, nil
}

func (h CommandHandler) executeCommand(
	ctx context.Context,
	access recordstore.Access,
	command Command,
) (core.Loan, error) {

	config, err := access.LoadConfiguration(ctx)
	if err != nil {
		return core.Loan{}, err
	}

	borrower, err := access.GetBorrower(ctx, command.BorrowerID)
	if err != nil {
		return core.Loan{}, err
	}

	book, err := access.GetBook(ctx, command.BookID)
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

	referenceCode, err := h.sequences.Next(ctx, loanSequenceCode)
	if err != nil {
		return core.Loan{}, err
	}

	loan, err := Decide(command, borrower, book, pendingFines, activeLoans, config, uuid.New(), referenceCode, h.clock.Now())
	if err != nil {
		return core.Loan{}, err
	}

	if err = access.InsertLoan(ctx, loan); err != nil {
		return core.Loan{}, err
	}

	entry, err := journal.BuildEntry(journal.LoanOpenedEntryType, h.clock.Now(), journal.LoanPayload{
		LoanID:        loan.ID.String(),
		ReferenceCode: loan.ReferenceCode,
		BookID:        loan.BookID.String(),
		BorrowerID:    loan.BorrowerID.String(),
		State:         string(loan.State),
	})
	if err != nil {
		return core.Loan{}, err
	}

	if err = access.AppendJournal(ctx, entry); err != nil {
		return core.Loan{}, err
	}

	return loan, nil
}
