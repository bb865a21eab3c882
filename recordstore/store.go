package recordstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/bibkit/library-circulation-go/core"
	"github.com/bibkit/library-circulation-go/journal"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConcurrencyConflict is returned when a guarded update matched no
	// row, meaning the record was concurrently modified after it was read.
	ErrConcurrencyConflict = errors.New("concurrency conflict detected")

	// ErrNilDatabaseConnection is returned by engine constructors when the
	// supplied connection is nil.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyTablePrefixSupplied is returned when a table prefix option is
	// given an empty string.
	ErrEmptyTablePrefixSupplied = errors.New("empty table prefix supplied")

	// ErrEmptySequenceCodeSupplied is returned when a reference code is
	// requested for an empty sequence code.
	ErrEmptySequenceCodeSupplied = errors.New("empty sequence code supplied")

	ErrBuildingQueryFailed       = errors.New("building sql query failed")
	ErrQueryingRecordsFailed     = errors.New("querying records failed")
	ErrExecutingStatementFailed  = errors.New("executing sql statement failed")
	ErrScanningDBRowFailed       = errors.New("scanning database row failed")
	ErrGettingRowsAffectedFailed = errors.New("getting rows affected count failed")
	ErrBeginningTxFailed         = errors.New("beginning transaction failed")
	ErrCommittingTxFailed        = errors.New("committing transaction failed")
)

// Store is the transactional entry point to the record store. All
// state-transition operations run inside a single atomic unit of work so
// that "check blocking, then commit loan state" is not observably
// interleaved with a concurrent mutation on the same book or borrower.
type Store interface {
	// WithinTx runs fn inside one transaction, committing when fn returns
	// nil and rolling back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, access Access) error) error
}

// Access exposes the row operations available inside one transaction.
type Access interface {
	// LoadConfiguration returns the configuration singleton, lazily
	// inserting the defaults on first access.
	LoadConfiguration(ctx context.Context) (core.Configuration, error)

	GetBook(ctx context.Context, id uuid.UUID) (core.Book, error)
	// SetBookBlockingFine sets or clears (nil) the book's blocking fine reference.
	SetBookBlockingFine(ctx context.Context, bookID uuid.UUID, fineID *uuid.UUID) error

	GetBorrower(ctx context.Context, id uuid.UUID) (core.Borrower, error)
	InsertBorrower(ctx context.Context, borrower core.Borrower) error

	GetLoan(ctx context.Context, id uuid.UUID) (core.Loan, error)
	InsertLoan(ctx context.Context, loan core.Loan) error
	// UpdateLoan writes the loan guarded by its expected current state;
	// a guard miss returns ErrConcurrencyConflict.
	UpdateLoan(ctx context.Context, loan core.Loan, expectedState core.LoanState) error
	// CountActiveOrFinedLoansByBook counts loans currently tying up a copy of the book.
	CountActiveOrFinedLoansByBook(ctx context.Context, bookID uuid.UUID) (int, error)
	// SelectLoansForSweep returns active loans past due and not yet notified.
	SelectLoansForSweep(ctx context.Context, now time.Time) ([]core.Loan, error)
	// SelectOverdueLoans returns all active loans past due, notified or not.
	SelectOverdueLoans(ctx context.Context, now time.Time) ([]core.Loan, error)
	// MarkLoanNotified check-and-sets the notified flag; it reports false
	// when the flag was already set, so overlapping sweeps cannot
	// double-notify.
	MarkLoanNotified(ctx context.Context, loanID uuid.UUID, at time.Time) (bool, error)

	GetFine(ctx context.Context, id uuid.UUID) (core.Fine, error)
	InsertFine(ctx context.Context, fine core.Fine) error
	// UpdateFine writes the fine guarded by its expected current state;
	// a guard miss returns ErrConcurrencyConflict.
	UpdateFine(ctx context.Context, fine core.Fine, expectedState core.FineState) error
	// FindPendingDelayFineByLoan returns the loan's single pending delay
	// fine, or ErrNotFound.
	FindPendingDelayFineByLoan(ctx context.Context, loanID uuid.UUID) (core.Fine, error)
	CountPendingFinesByBorrower(ctx context.Context, borrowerID uuid.UUID) (int, error)
	ListFinesByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]core.Fine, error)

	// AppendJournal records one journal entry inside the same transaction
	// as the state transition it describes.
	AppendJournal(ctx context.Context, entry journal.Entry) error
}
