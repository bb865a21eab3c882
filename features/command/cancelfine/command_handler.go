package cancelfine

import (
	"context"

	"github.com/bibkit/library-circulation-go/core"
	"github.com/bibkit/library-circulation-go/journal"
	"github.com/bibkit/library-circulation-go/recordstore"
	"github.com/bibkit/library-circulation-go/shell"
)

// CommandHandler orchestrates the complete command processing workflow:
// Load -> Decide -> guarded fine update, inside one transaction, with
// conflict retry.
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

// Handle cancels a pending fine and returns it.
func (h CommandHandler) Handle(ctx context.Context, command Command) (core.Fine, error) {
	var cancelled core.Fine

	err := shell.RetryOnConflict(ctx, func(retryCtx context.Context) error {
		return h.store.WithinTx(retryCtx, func(txCtx context.Context, access recordstore.Access) error {
			fine, execErr := h.executeCommand(txCtx, access, command)
			if execErr != nil {
				return execErr
			}

			cancelled = fine

			return nil
		})
	}, h.retryOptions...)

	if err != nil {
		return core.Fine{}, err
	}

	return cancelled, nil
}

func (h CommandHandler) executeCommand(
	ctx context.Context,
	access recordstore.Access,
	command Command,
) (core.Fine, error) {

	fine, err := access.GetFine(ctx, command.FineID)
	if err != nil {
		return core.Fine{}, err
	}

	loan, err := access.GetLoan(ctx, fine.LoanID)
	if err != nil {
		return core.Fine{}, err
	}

	book, err := access.GetBook(ctx, loan.BookID)
	if err != nil {
		return core.Fine{}, err
	}

	decision, err := Decide(fine, book)
	if err != nil {
		return core.Fine{}, err
	}

	cancelled := decision.Fine

	if err = access.UpdateFine(ctx, cancelled, core.FineStatePending); err != nil {
		return core.Fine{}, err
	}

	if decision.UnblockBook {
		if err = access.SetBookBlockingFine(ctx, book.ID, nil); err != nil {
			return core.Fine{}, err
		}
	}

	entry, err := journal.BuildEntry(journal.FineCancelledEntryType, h.clock.Now(), journal.FinePayload{
		FineID:          cancelled.ID.String(),
		ReferenceCode:   cancelled.ReferenceCode,
		LoanID:          cancelled.LoanID.String(),
		Type:            string(cancelled.Type),
		State:           string(cancelled.State),
		Amount:          cancelled.Amount,
		DelinquencyDays: cancelled.DelinquencyDays,
	})
	if err != nil {
		return core.Fine{}, err
	}

	if err = access.AppendJournal(ctx, entry); err != nil {
		return core.Fine{}, err
	}

	return cancelled, nil
}
