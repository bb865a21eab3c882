package confirmloan_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/bibkit/library-circulation-go/core"
	"github.com/bibkit/library-circulation-go/features/command/confirmloan"
)

func Test_Decide_Success_WhenLoanIsDraft(t *testing.T) {
	// arrange
	borrower := givenBorrower(t)
	book := givenBook(t, 2)
	now := time.Now()
	loan := givenDraftLoan(t, book.ID, borrower.ID, now.Add(-1*time.Hour))

	// act
	activated, err := confirmloan.Decide(loan, borrower, book, 0, 0, now)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, core.LoanStateActive, activated.State)
	assert.Equal(t, loan.LoanedAt, activated.LoanedAt)
	assert.Equal(t, loan.DueAt, activated.DueAt)
}

func Test_Decide_Success_ZeroLoanedAtSetFromNow(t *testing.T) {
	// arrange
	borrower := givenBorrower(t)
	book := givenBook(t, 1)
	now := time.Now()

	loan := givenDraftLoan(t, book.ID, borrower.ID, now)
	loan.LoanedAt = time.Time{}

	// act
	activated, err := confirmloan.Decide(loan, borrower, book, 0, 0, now)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, core.ToInstant(now), activated.LoanedAt)
}

func Test_Decide_BusinessErrors(t *testing.T) {
	borrower := givenBorrower(t)
	now := time.Now()

	testCases := []struct {
		name                   string
		book                   core.Book
		loanState              core.LoanState
		pendingFineCount       int
		activeOrFinedLoanCount int
		expectedReason         string
	}{
		{
			name:           "loan already active",
			book:           givenBook(t, 2),
			loanState:      core.LoanStateActive,
			expectedReason: "invalid transition",
		},
		{
			name:           "loan already returned",
			book:           givenBook(t, 2),
			loanState:      core.LoanStateReturned,
			expectedReason: "invalid transition",
		},
		{
			name:           "loan already fined",
			book:           givenBook(t, 2),
			loanState:      core.LoanStateFined,
			expectedReason: "invalid transition",
		},
		{
			name:             "borrower picked up a fine since the draft was opened",
			book:             givenBook(t, 2),
			loanState:        core.LoanStateDraft,
			pendingFineCount: 1,
			expectedReason:   "pending fines",
		},
		{
			name:           "book blocked since the draft was opened",
			book:           givenBlockedBook(t, 2),
			loanState:      core.LoanStateDraft,
			expectedReason: "blocked by a damaged/lost fine",
		},
		{
			name:                   "single copy already confirmed for another loan",
			book:                   givenBook(t, 1),
			loanState:              core.LoanStateDraft,
			activeOrFinedLoanCount: 1,
			expectedReason:         "no copies available",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			loan := givenDraftLoan(t, tc.book.ID, borrower.ID, now.Add(-1*time.Hour))
			loan.State = tc.loanState

			// act
			_, err := confirmloan.Decide(
				loan, borrower, tc.book, tc.pendingFineCount, tc.activeOrFinedLoanCount, now)

			// assert
			assert.Error(t, err)
			assert.True(t, core.IsValidationError(err))
			assert.ErrorContains(t, err, tc.expectedReason)
		})
	}
}

// Test helper functions with t.Helper() for better error reporting

func givenBorrower(t *testing.T) core.Borrower {
	t.Helper()

	return core.Borrower{
		ID:        uuid.New(),
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace@example.com",
	}
}

func givenBook(t *testing.T, copyCount int) core.Book {
	t.Helper()

	return core.Book{
		ID:        uuid.New(),
		Title:     "Structure and Interpretation",
		AuthorID:  uuid.New(),
		CopyCount: copyCount,
		Cost:      30.0,
	}
}

func givenBlockedBook(t *testing.T, copyCount int) core.Book {
	t.Helper()

	blockingFineID := uuid.New()
	book := givenBook(t, copyCount)
	book.BlockingFineID = &blockingFineID

	return book
}

func givenDraftLoan(t *testing.T, bookID, borrowerID uuid.UUID, loanedAt time.Time) core.Loan {
	t.Helper()

	return core.BuildLoan(uuid.New(), "LOAN-000001", bookID, borrowerID, loanedAt, 7)
}
