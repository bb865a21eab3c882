package overdueloans

import (
	"context"

	"github.com/bibkit/library-circulation-go/core"
	"github.com/bibkit/library-circulation-go/recordstore"
	"github.com/bibkit/library-circulation-go/shell"
)

// QueryHandler orchestrates the query workflow: Select -> Project.
type QueryHandler struct {
	store recordstore.Store
	clock shell.Clock
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(store recordstore.Store, clock shell.Clock) QueryHandler {
	return QueryHandler{
		store: store,
		clock: clock,
	}
}

// Handle returns the projection of all overdue active loans.
func (h QueryHandler) Handle(ctx context.Context, query Query) (OverdueLoans, error) {
	now := h.clock.Now()

	var loans []core.Loan

	err := h.store.WithinTx(ctx, func(txCtx context.Context, access recordstore.Access) error {
		var txErr error
		loans, txErr = access.SelectOverdueLoans(txCtx, now)

		return txErr
	})
	if err != nil {
		return OverdueLoans{}, err
	}

	return Project(loans, query, now), nil
}
