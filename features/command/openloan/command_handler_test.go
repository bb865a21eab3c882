package openloan_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/bibkit/library-circulation-go/core"
	"github.com/bibkit/library-circulation-go/features/command/openloan"
	"github.com/bibkit/library-circulation-go/journal"
	"github.com/bibkit/library-circulation-go/recordstore"
	"github.com/bibkit/library-circulation-go/testutil/doubles"
	"github.com/bibkit/library-circulation-go/testutil/memorystore"
)

func Test_CommandHandler_OpensDraftLoanAndJournalsIt(t *testing.T) {
	// arrange
	store := memorystore.New()
	clock := doubles.NewFixedClock(time.Now())
	handler := openloan.NewCommandHandler(store, clock, doubles.NewSequenceGeneratorStub())

	borrower := givenBorrower(t)
	book := givenBook(t, 2, 25.0)
	store.SeedBorrower(borrower)
	store.SeedBook(book)

	// act
	loan, err := handler.Handle(context.Background(), openloan.BuildCommand(book.ID, borrower.ID, clock.Now()))

	// assert
	assert.NoError(t, err)
	assert.Equal(t, core.LoanStateDraft, loan.State)
	assert.Equal(t, "LOAN-000001", loan.ReferenceCode)

	stored, ok := store.Loan(loan.ID)
	assert.True(t, ok)
	assert.Equal(t, core.LoanStateDraft, stored.State)

	assert.Equal(t, []string{journal.LoanOpenedEntryType}, store.JournalEntryTypes())
}

func Test_CommandHandler_ErrorWhenBorrowerUnknown(t *testing.T) {
	// arrange
	store := memorystore.New()
	handler := openloan.NewCommandHandler(store, doubles.NewFixedClock(time.Now()), doubles.NewSequenceGeneratorStub())

	book := givenBook(t, 2, 25.0)
	store.SeedBook(book)

	// act
	_, err := handler.Handle(context.Background(), openloan.BuildCommand(book.ID, uuid.New(), time.Now()))

	// assert
	assert.ErrorIs(t, err, recordstore.ErrNotFound)
}

func Test_CommandHandler_BlockedBorrowerLeavesNoTrace(t *testing.T) {
	// arrange
	store := memorystore.New()
	clock := doubles.NewFixedClock(time.Now())
	handler := openloan.NewCommandHandler(store, clock, doubles.NewSequenceGeneratorStub())

	borrower := givenBorrower(t)
	book := givenBook(t, 2, 25.0)
	store.SeedBorrower(borrower)
	store.SeedBook(book)

	pendingFine := core.Fine{
		ID:         uuid.New(),
		BorrowerID: borrower.ID,
		LoanID:     uuid.New(),
		Type:       core.FineTypeDelay,
		Amount:     3.0,
		State:      core.FineStatePending,
	}
	store.SeedFine(pendingFine)

	// act
	_, err := handler.Handle(context.Background(), openloan.BuildCommand(book.ID, borrower.ID, clock.Now()))

	// assert - the rejected command must not have journalled anything
	assert.Error(t, err)
	assert.True(t, core.IsValidationError(err))
	assert.Empty(t, store.JournalEntryTypes())
}
