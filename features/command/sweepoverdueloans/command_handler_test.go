package sweepoverdueloans_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/bibkit/library-circulation-go/core"
	"github.com/bibkit/library-circulation-go/features/command/sweepoverdueloans"
	"github.com/bibkit/library-circulation-go/journal"
	"github.com/bibkit/library-circulation-go/recordstore"
	"github.com/bibkit/library-circulation-go/testutil/doubles"
	"github.com/bibkit/library-circulation-go/testutil/memorystore"
)

func Test_CommandHandler_FinesAndNotifiesOverdueLoans(t *testing.T) {
	// arrange
	store := memorystore.New()
	clock := doubles.NewFixedClock(time.Now())
	notifier := doubles.NewNotificationSenderSpy()
	handler := sweepoverdueloans.NewCommandHandler(
		store, clock, doubles.NewSequenceGeneratorStub(), notifier, doubles.NewLoggerSpy())

	borrower := givenContactableBorrower(t)
	store.SeedBorrower(borrower)

	loan := givenOverdueLoanForBorrower(t, borrower.ID, clock.Now(), 3)
	store.SeedLoan(loan)

	// act
	result, err := handler.Handle(context.Background(), sweepoverdueloans.BuildCommand())

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 1, result.LoansExamined)
	assert.Equal(t, 1, result.LoansFined)
	assert.Equal(t, 0, result.LoansSkipped)
	assert.Equal(t, 0, result.NotifyFailures)

	fined, _ := store.Loan(loan.ID)
	assert.Equal(t, core.LoanStateFined, fined.State)
	assert.True(t, fined.Notified)
	assert.NotNil(t, fined.NotifiedAt)
	assert.InDelta(t, 3.0, fined.FineAmount, 0.0001)

	assert.Equal(t, 1, notifier.SentCount())
	notification := notifier.Sent()[0]
	assert.Equal(t, loan.ReferenceCode, notification.LoanReferenceCode)
	assert.Equal(t, borrower.Email, notification.BorrowerEmail)
	assert.InDelta(t, 3.0, notification.FineAmount, 0.0001)

	assert.Equal(t,
		[]string{journal.OverdueLoanFinedEntryType, journal.SweepCompletedEntryType},
		store.JournalEntryTypes())
}

func Test_CommandHandler_SecondRunFindsNothing(t *testing.T) {
	// arrange - the notified flag makes the sweep idempotent across runs
	store := memorystore.New()
	clock := doubles.NewFixedClock(time.Now())
	notifier := doubles.NewNotificationSenderSpy()
	handler := sweepoverdueloans.NewCommandHandler(
		store, clock, doubles.NewSequenceGeneratorStub(), notifier, doubles.NewLoggerSpy())

	borrower := givenContactableBorrower(t)
	store.SeedBorrower(borrower)
	store.SeedLoan(givenOverdueLoanForBorrower(t, borrower.ID, clock.Now(), 3))

	first, err := handler.Handle(context.Background(), sweepoverdueloans.BuildCommand())
	assert.NoError(t, err)
	assert.Equal(t, 1, first.LoansFined)

	// act
	second, err := handler.Handle(context.Background(), sweepoverdueloans.BuildCommand())

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 0, second.LoansExamined)
	assert.Equal(t, 0, second.LoansFined)
	assert.Equal(t, 1, notifier.SentCount())
}

func Test_CommandHandler_SkipsLoansWithinGrace(t *testing.T) {
	// arrange - half a day past due is under the one-day grace period
	store := memorystore.New()
	clock := doubles.NewFixedClock(time.Now())
	handler := sweepoverdueloans.NewCommandHandler(
		store, clock, doubles.NewSequenceGeneratorStub(), doubles.NewNotificationSenderSpy(), doubles.NewLoggerSpy())

	borrower := givenContactableBorrower(t)
	store.SeedBorrower(borrower)

	loan := givenActiveLoanForBorrower(t, borrower.ID, clock.Now().Add(-7*24*time.Hour).Add(-12*time.Hour), 7)
	store.SeedLoan(loan)

	// act
	result, err := handler.Handle(context.Background(), sweepoverdueloans.BuildCommand())

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 1, result.LoansExamined)
	assert.Equal(t, 0, result.LoansFined)
	assert.Equal(t, 1, result.LoansSkipped)

	untouched, _ := store.Loan(loan.ID)
	assert.Equal(t, core.LoanStateActive, untouched.State)
	assert.False(t, untouched.Notified)
}

func Test_CommandHandler_CountsNotifyFailuresWithoutFailingTheSweep(t *testing.T) {
	// arrange
	store := memorystore.New()
	clock := doubles.NewFixedClock(time.Now())
	notifier := doubles.NewNotificationSenderSpy()
	notifier.FailWith(errors.New("smtp connection refused"))
	logger := doubles.NewLoggerSpy()
	handler := sweepoverdueloans.NewCommandHandler(
		store, clock, doubles.NewSequenceGeneratorStub(), notifier, logger)

	borrower := givenContactableBorrower(t)
	store.SeedBorrower(borrower)

	loan := givenOverdueLoanForBorrower(t, borrower.ID, clock.Now(), 3)
	store.SeedLoan(loan)

	// act
	result, err := handler.Handle(context.Background(), sweepoverdueloans.BuildCommand())

	// assert - the transition sticks even though the mail did not go out
	assert.NoError(t, err)
	assert.Equal(t, 1, result.LoansFined)
	assert.Equal(t, 1, result.NotifyFailures)
	assert.True(t, logger.HasEntry("WARN", "overdue notification failed"))

	fined, _ := store.Loan(loan.ID)
	assert.Equal(t, core.LoanStateFined, fined.State)
	assert.True(t, fined.Notified)
}

func Test_CommandHandler_FinesBorrowerWithoutContactAddress(t *testing.T) {
	// arrange
	store := memorystore.New()
	clock := doubles.NewFixedClock(time.Now())
	notifier := doubles.NewNotificationSenderSpy()
	logger := doubles.NewLoggerSpy()
	handler := sweepoverdueloans.NewCommandHandler(
		store, clock, doubles.NewSequenceGeneratorStub(), notifier, logger)

	borrower := givenContactableBorrower(t)
	borrower.Email = ""
	store.SeedBorrower(borrower)

	loan := givenOverdueLoanForBorrower(t, borrower.ID, clock.Now(), 3)
	store.SeedLoan(loan)

	// act
	result, err := handler.Handle(context.Background(), sweepoverdueloans.BuildCommand())

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 1, result.LoansFined)
	assert.Equal(t, 0, notifier.SentCount())
	assert.True(t, logger.HasEntry("WARN", "borrower has no contact address"))
}

func Test_CommandHandler_UpdatesExistingDelayFineInsteadOfDuplicating(t *testing.T) {
	// arrange - a late return already created a pending delay fine
	store := memorystore.New()
	clock := doubles.NewFixedClock(time.Now())
	handler := sweepoverdueloans.NewCommandHandler(
		store, clock, doubles.NewSequenceGeneratorStub(), doubles.NewNotificationSenderSpy(), doubles.NewLoggerSpy())

	borrower := givenContactableBorrower(t)
	store.SeedBorrower(borrower)

	loan := givenOverdueLoanForBorrower(t, borrower.ID, clock.Now(), 5)
	store.SeedLoan(loan)

	existing := core.BuildDelayFine(uuid.New(), "FINE-000042", loan, 2, 1.0, clock.Now().Add(-3*24*time.Hour))
	store.SeedFine(existing)

	// act
	result, err := handler.Handle(context.Background(), sweepoverdueloans.BuildCommand())

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 1, result.LoansFined)
	assert.Len(t, store.Fines(), 1)

	updated, _ := store.Fine(existing.ID)
	assert.Equal(t, 5, updated.DelinquencyDays)
	assert.InDelta(t, 5.0, updated.Amount, 0.0001)
}

func Test_CommandHandler_RunSummaryJournalFailureDoesNotFailTheSweep(t *testing.T) {
	// arrange - fining and notifying succeed, only the run summary entry fails
	inner := memorystore.New()
	store := summaryJournalFailingStore{inner: inner}
	clock := doubles.NewFixedClock(time.Now())
	notifier := doubles.NewNotificationSenderSpy()
	logger := doubles.NewLoggerSpy()
	handler := sweepoverdueloans.NewCommandHandler(
		store, clock, doubles.NewSequenceGeneratorStub(), notifier, logger)

	borrower := givenContactableBorrower(t)
	inner.SeedBorrower(borrower)

	loan := givenOverdueLoanForBorrower(t, borrower.ID, clock.Now(), 3)
	inner.SeedLoan(loan)

	// act
	result, err := handler.Handle(context.Background(), sweepoverdueloans.BuildCommand())

	// assert - the committed per-loan work is reported, not discarded
	assert.NoError(t, err)
	assert.Equal(t, 1, result.LoansFined)
	assert.Equal(t, 1, notifier.SentCount())

	fined, _ := inner.Loan(loan.ID)
	assert.Equal(t, core.LoanStateFined, fined.State)

	assert.Equal(t, []string{journal.OverdueLoanFinedEntryType}, inner.JournalEntryTypes())
	assert.True(t, logger.HasEntry("WARN", "sweep run summary journal entry failed"))
}

// summaryJournalFailingStore wraps a memory store and fails only the append
// of the sweep run summary entry.
type summaryJournalFailingStore struct {
	inner *memorystore.Store
}

func (s summaryJournalFailingStore) WithinTx(
	ctx context.Context,
	fn func(ctx context.Context, access recordstore.Access) error,
) error {

	return s.inner.WithinTx(ctx, func(txCtx context.Context, access recordstore.Access) error {
		return fn(txCtx, summaryJournalFailingAccess{Access: access})
	})
}

type summaryJournalFailingAccess struct {
	recordstore.Access
}

func (a summaryJournalFailingAccess) AppendJournal(ctx context.Context, entry journal.Entry) error {
	if entry.EntryType == journal.SweepCompletedEntryType {
		return errors.New("journal table unavailable")
	}

	return a.Access.AppendJournal(ctx, entry)
}

// Test helper functions with t.Helper() for better error reporting

func givenContactableBorrower(t *testing.T) core.Borrower {
	t.Helper()

	return core.Borrower{
		ID:        uuid.New(),
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
	}
}

func givenActiveLoanForBorrower(t *testing.T, borrowerID uuid.UUID, loanedAt time.Time, loanPeriodDays int) core.Loan {
	t.Helper()

	loan := core.BuildLoan(uuid.New(), "LOAN-000001", uuid.New(), borrowerID, loanedAt, loanPeriodDays)
	loan.State = core.LoanStateActive

	return loan
}

func givenOverdueLoanForBorrower(t *testing.T, borrowerID uuid.UUID, now time.Time, daysPastDue int) core.Loan {
	t.Helper()

	loanedAt := now.Add(-time.Duration(7+daysPastDue) * 24 * time.Hour)

	return givenActiveLoanForBorrower(t, borrowerID, loanedAt, 7)
}
