package reportbooklost

import (
	"context"

	"github.com/google/uuid"

	"github.com/bibkit/library-circulation-go/journal"
	"github.com/bibkit/library-circulation-go/recordstore"
	"github.com/bibkit/library-circulation-go/shell"
)

const fineSequenceCode = "fine"

// CommandHandler orchestrates the complete command processing workflow:
// Load -> Decide -> fine insert + book block + guarded loan update, inside
// one transaction, with conflict retry.
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

// Handle reports the loan's book as lost and returns the decision taken.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Decision, error) {
	var decision Decision

	err := shell.RetryOnConflict(ctx, func(retryCtx context.Context) error {
		return h.store.WithinTx(retryCtx, func(txCtx context.Context, access recordstore.Access) error {
			dec, execErr := h.executeCommand(txCtx, access, command)
			if execErr != nil {
				return execErr
			}

			decision = dec

			return nil
		})
	}, h.retryOptions...)

	if err != nil {
		return Decision{}, err
	}

	return decision, nil
}

func (h CommandHandler) executeCommand(
	ctx context.Context,
	access recordstore.Access,
	command Command,
) (Decision, error) {

	now := h.clock.Now()

	loan, err := access.GetLoan(ctx, command.LoanID)
	if err != nil {
		return Decision{}, err
	}

	book, err := access.GetBook(ctx, loan.BookID)
	if err != nil {
		return Decision{}, err
	}

	referenceCode, err := h.sequences.Next(ctx, fineSequenceCode)
	if err != nil {
		return Decision{}, err
	}

	decision, err := Decide(loan, book, uuid.New(), referenceCode, now)
	if err != nil {
		return Decision{}, err
	}

	if err = access.InsertFine(ctx, decision.Fine); err != nil {
		return Decision{}, err
	}

	if err = access.SetBookBlockingFine(ctx, book.ID, &decision.Fine.ID); err != nil {
		return Decision{}, err
	}

	if err = access.UpdateLoan(ctx, decision.Loan, loan.State); err != nil {
		return Decision{}, err
	}

	entry, err := journal.BuildEntry(journal.BookReportedLostEntryType, now, journal.FinePayload{
		FineID:        decision.Fine.ID.String(),
		ReferenceCode: decision.Fine.ReferenceCode,
		LoanID:        loan.ID.String(),
		Type:          string(decision.Fine.Type),
		State:         string(decision.Fine.State),
		Amount:        decision.Fine.Amount,
	})
	if err != nil {
		return Decision{}, err
	}

	if err = access.AppendJournal(ctx, entry); err != nil {
		return Decision{}, err
	}

	return decision, nil
}
