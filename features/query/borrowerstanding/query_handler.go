package borrowerstanding

import (
	"context"

	"github.com/bibkit/library-circulation-go/core"
	"github.com/bibkit/library-circulation-go/recordstore"
)

// QueryHandler orchestrates the query workflow: Load -> Project.
type QueryHandler struct {
	store recordstore.Store
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(store recordstore.Store) QueryHandler {
	return QueryHandler{
		store: store,
	}
}

// Handle returns the standing projection for one borrower.
func (h QueryHandler) Handle(ctx context.Context, query Query) (Standing, error) {
	var borrower core.Borrower
	var fines []core.Fine

	err := h.store.WithinTx(ctx, func(txCtx context.Context, access recordstore.Access) error {
		var txErr error

		if borrower, txErr = access.GetBorrower(txCtx, query.BorrowerID); txErr != nil {
			return txErr
		}

		fines, txErr = access.ListFinesByBorrower(txCtx, borrower.ID)

		return txErr
	})
	if err != nil {
		return Standing{}, err
	}

	return Project(borrower, fines, query), nil
}
