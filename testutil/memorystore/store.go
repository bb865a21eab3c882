// Package memorystore provides an in-memory recordstore.Store for handler
// tests. It mirrors the Postgres engine's semantics where they matter to
// callers: guarded updates return recordstore.ErrConcurrencyConflict, missing
// rows return recordstore.ErrNotFound, and a failed transaction leaves no
// trace behind.
package memorystore

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bibkit/library-circulation-go/core"
	"github.com/bibkit/library-circulation-go/journal"
	"github.com/bibkit/library-circulation-go/recordstore"
)

// Store implements recordstore.Store in memory.
type Store struct {
	mu            sync.Mutex
	configuration core.Configuration
	books         map[uuid.UUID]core.Book
	borrowers     map[uuid.UUID]core.Borrower
	loans         map[uuid.UUID]core.Loan
	fines         map[uuid.UUID]core.Fine
	journal       []journal.Entry
}

// New creates an empty Store preloaded with the default configuration.
func New() *Store {
	return &Store{
		configuration: core.DefaultConfiguration(),
		books:         make(map[uuid.UUID]core.Book),
		borrowers:     make(map[uuid.UUID]core.Borrower),
		loans:         make(map[uuid.UUID]core.Loan),
		fines:         make(map[uuid.UUID]core.Fine),
	}
}

// WithinTx runs fn against the store state. When fn errors, all of its
// writes are discarded, like a rolled-back database transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, a recordstore.Access) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshot()

	if fnErr := fn(ctx, access{store: s}); fnErr != nil {
		s.restore(snapshot)
		return fnErr
	}

	return nil
}

type storeState struct {
	configuration core.Configuration
	books         map[uuid.UUID]core.Book
	borrowers     map[uuid.UUID]core.Borrower
	loans         map[uuid.UUID]core.Loan
	fines         map[uuid.UUID]core.Fine
	journal       []journal.Entry
}

func (s *Store) snapshot() storeState {
	return storeState{
		configuration: s.configuration,
		books:         copyMap(s.books),
		borrowers:     copyMap(s.borrowers),
		loans:         copyMap(s.loans),
		fines:         copyMap(s.fines),
		journal:       slices.Clone(s.journal),
	}
}

func (s *Store) restore(state storeState) {
	s.configuration = state.configuration
	s.books = state.books
	s.borrowers = state.borrowers
	s.loans = state.loans
	s.fines = state.fines
	s.journal = state.journal
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}

	return out
}

// SetConfiguration replaces the configuration singleton.
func (s *Store) SetConfiguration(config core.Configuration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.configuration = config
}

// SeedBook stores the book, overwriting any previous version.
func (s *Store) SeedBook(book core.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.books[book.ID] = book
}

// SeedBorrower stores the borrower, overwriting any previous version.
func (s *Store) SeedBorrower(borrower core.Borrower) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.borrowers[borrower.ID] = borrower
}

// SeedLoan stores the loan, overwriting any previous version.
func (s *Store) SeedLoan(loan core.Loan) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loans[loan.ID] = loan
}

// SeedFine stores the fine, overwriting any previous version.
func (s *Store) SeedFine(fine core.Fine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fines[fine.ID] = fine
}

// Book returns the stored book and whether it exists.
func (s *Store) Book(id uuid.UUID) (core.Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[id]

	return book, ok
}

// Loan returns the stored loan and whether it exists.
func (s *Store) Loan(id uuid.UUID) (core.Loan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loan, ok := s.loans[id]

	return loan, ok
}

// Fine returns the stored fine and whether it exists.
func (s *Store) Fine(id uuid.UUID) (core.Fine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fine, ok := s.fines[id]

	return fine, ok
}

// Fines returns all stored fines, in no particular order.
func (s *Store) Fines() []core.Fine {
	s.mu.Lock()
	defer s.mu.Unlock()

	fines := make([]core.Fine, 0, len(s.fines))
	for _, fine := range s.fines {
		fines = append(fines, fine)
	}

	return fines
}

// JournalEntries returns all appended journal entries in append order.
func (s *Store) JournalEntries() []journal.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.journal)
}

// JournalEntryTypes returns the entry types of all appended entries in append order.
func (s *Store) JournalEntryTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	types := make([]string, 0, len(s.journal))
	for _, entry := range s.journal {
		types = append(types, entry.EntryType)
	}

	return types
}

// access implements recordstore.Access on the live maps, called only while
// the store mutex is held by WithinTx.
type access struct {
	store *Store
}

func (a access) LoadConfiguration(_ context.Context) (core.Configuration, error) {
	return a.store.configuration, nil
}

func (a access) GetBook(_ context.Context, id uuid.UUID) (core.Book, error) {
	book, ok := a.store.books[id]
	if !ok {
		return core.Book{}, recordstore.ErrNotFound
	}

	return book, nil
}

func (a access) SetBookBlockingFine(_ context.Context, bookID uuid.UUID, fineID *uuid.UUID) error {
	book, ok := a.store.books[bookID]
	if !ok {
		return recordstore.ErrNotFound
	}

	book.BlockingFineID = fineID
	a.store.books[bookID] = book

	return nil
}

func (a access) GetBorrower(_ context.Context, id uuid.UUID) (core.Borrower, error) {
	borrower, ok := a.store.borrowers[id]
	if !ok {
		return core.Borrower{}, recordstore.ErrNotFound
	}

	return borrower, nil
}

func (a access) InsertBorrower(_ context.Context, borrower core.Borrower) error {
	a.store.borrowers[borrower.ID] = borrower
	return nil
}

func (a access) GetLoan(_ context.Context, id uuid.UUID) (core.Loan, error) {
	loan, ok := a.store.loans[id]
	if !ok {
		return core.Loan{}, recordstore.ErrNotFound
	}

	return loan, nil
}

func (a access) InsertLoan(_ context.Context, loan core.Loan) error {
	a.store.loans[loan.ID] = loan
	return nil
}

func (a access) UpdateLoan(_ context.Context, loan core.Loan, expectedState core.LoanState) error {
	current, ok := a.store.loans[loan.ID]
	if !ok || current.State != expectedState {
		return recordstore.ErrConcurrencyConflict
	}

	a.store.loans[loan.ID] = loan

	return nil
}

func (a access) CountActiveOrFinedLoansByBook(_ context.Context, bookID uuid.UUID) (int, error) {
	count := 0

	for _, loan := range a.store.loans {
		if loan.BookID == bookID && (loan.State == core.LoanStateActive || loan.State == core.LoanStateFined) {
			count++
		}
	}

	return count, nil
}

func (a access) SelectLoansForSweep(_ context.Context, now time.Time) ([]core.Loan, error) {
	return a.selectLoansWhere(func(loan core.Loan) bool {
		return loan.State == core.LoanStateActive && !loan.Notified && now.After(loan.DueAt)
	}), nil
}

func (a access) SelectOverdueLoans(_ context.Context, now time.Time) ([]core.Loan, error) {
	return a.selectLoansWhere(func(loan core.Loan) bool {
		return loan.State == core.LoanStateActive && now.After(loan.DueAt)
	}), nil
}

func (a access) selectLoansWhere(match func(loan core.Loan) bool) []core.Loan {
	loans := make([]core.Loan, 0)

	for _, loan := range a.store.loans {
		if match(loan) {
			loans = append(loans, loan)
		}
	}

	slices.SortFunc(loans, func(a, b core.Loan) int {
		return a.DueAt.Compare(b.DueAt)
	})

	return loans
}

func (a access) MarkLoanNotified(_ context.Context, loanID uuid.UUID, at time.Time) (bool, error) {
	loan, ok := a.store.loans[loanID]
	if !ok || loan.Notified {
		return false, nil
	}

	notifiedAt := core.ToInstant(at)
	loan.Notified = true
	loan.NotifiedAt = &notifiedAt
	a.store.loans[loanID] = loan

	return true, nil
}

func (a access) GetFine(_ context.Context, id uuid.UUID) (core.Fine, error) {
	fine, ok := a.store.fines[id]
	if !ok {
		return core.Fine{}, recordstore.ErrNotFound
	}

	return fine, nil
}

func (a access) InsertFine(_ context.Context, fine core.Fine) error {
	a.store.fines[fine.ID] = fine
	return nil
}

func (a access) UpdateFine(_ context.Context, fine core.Fine, expectedState core.FineState) error {
	current, ok := a.store.fines[fine.ID]
	if !ok || current.State != expectedState {
		return recordstore.ErrConcurrencyConflict
	}

	a.store.fines[fine.ID] = fine

	return nil
}

func (a access) FindPendingDelayFineByLoan(_ context.Context, loanID uuid.UUID) (core.Fine, error) {
	for _, fine := range a.store.fines {
		if fine.LoanID == loanID && fine.Type == core.FineTypeDelay && fine.State == core.FineStatePending {
			return fine, nil
		}
	}

	return core.Fine{}, recordstore.ErrNotFound
}

func (a access) CountPendingFinesByBorrower(_ context.Context, borrowerID uuid.UUID) (int, error) {
	count := 0

	for _, fine := range a.store.fines {
		if fine.BorrowerID == borrowerID && fine.State == core.FineStatePending {
			count++
		}
	}

	return count, nil
}

func (a access) ListFinesByBorrower(_ context.Context, borrowerID uuid.UUID) ([]core.Fine, error) {
	fines := make([]core.Fine, 0)

	for _, fine := range a.store.fines {
		if fine.BorrowerID == borrowerID {
			fines = append(fines, fine)
		}
	}

	slices.SortFunc(fines, func(a, b core.Fine) int {
		return a.ExpiresAt.Compare(b.ExpiresAt)
	})

	return fines, nil
}

func (a access) AppendJournal(_ context.Context, entry journal.Entry) error {
	a.store.journal = append(a.store.journal, entry)
	return nil
}
