package reportbookdamaged_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/bibkit/library-circulation-go/core"
	"github.com/bibkit/library-circulation-go/features/command/reportbookdamaged"
)

func Test_Decide_Success_OnActiveLoan(t *testing.T) {
	// arrange
	now := time.Now()
	book := givenBook(t, 25.0)
	loan := givenActiveLoan(t, book.ID, now.Add(-2*24*time.Hour))
	fineID := uuid.New()

	// act
	decision, err := reportbookdamaged.Decide(loan, book, fineID, "FINE-000001", now)

	// assert
	assert.NoError(t, err)

	assert.Equal(t, fineID, decision.Fine.ID)
	assert.Equal(t, core.FineTypeDamaged, decision.Fine.Type)
	assert.Equal(t, core.FineStatePending, decision.Fine.State)
	assert.InDelta(t, 25.0, decision.Fine.Amount, 0.0001)
	assert.Equal(t, loan.ID, decision.Fine.LoanID)
	assert.Equal(t, loan.BorrowerID, decision.Fine.BorrowerID)
	assert.Equal(t, core.ToInstant(now).AddDate(0, 0, 60), decision.Fine.ExpiresAt)

	assert.Equal(t, core.LoanStateFined, decision.Loan.State)
	assert.NotNil(t, decision.Loan.ReturnedAt)
	assert.True(t, decision.Loan.HasFine)
	assert.InDelta(t, 25.0, decision.Loan.FineAmount, 0.0001)
}

func Test_Decide_Success_OnFinedLoan(t *testing.T) {
	// arrange - a loan already fined for delay can still be reported damaged
	now := time.Now()
	book := givenBook(t, 25.0)
	loan := givenActiveLoan(t, book.ID, now.Add(-10*24*time.Hour))
	loan.State = core.LoanStateFined
	loan.HasFine = true
	loan.FineAmount = 3.0

	// act
	decision, err := reportbookdamaged.Decide(loan, book, uuid.New(), "FINE-000002", now)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, core.FineTypeDamaged, decision.Fine.Type)
	assert.InDelta(t, 25.0, decision.Loan.FineAmount, 0.0001)
}

func Test_Decide_Success_FallbackAmountWhenBookCostUnset(t *testing.T) {
	// arrange
	now := time.Now()
	book := givenBook(t, 0)
	loan := givenActiveLoan(t, book.ID, now.Add(-2*24*time.Hour))

	// act
	decision, err := reportbookdamaged.Decide(loan, book, uuid.New(), "FINE-000003", now)

	// assert
	assert.NoError(t, err)
	assert.InDelta(t, core.ManualFineFallbackAmount, decision.Fine.Amount, 0.0001)
}

func Test_Decide_BusinessErrors(t *testing.T) {
	now := time.Now()

	testCases := []struct {
		name             string
		loanState        core.LoanState
		bookBlocked      bool
		expectedReason   string
		wantValidation   bool
		wantPrecondition bool
	}{
		{
			name:           "loan still draft",
			loanState:      core.LoanStateDraft,
			expectedReason: "invalid transition",
			wantValidation: true,
		},
		{
			name:           "loan already returned",
			loanState:      core.LoanStateReturned,
			expectedReason: "invalid transition",
			wantValidation: true,
		},
		{
			name:             "book already blocked by another fine",
			loanState:        core.LoanStateActive,
			bookBlocked:      true,
			expectedReason:   "already blocked",
			wantPrecondition: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			book := givenBook(t, 25.0)
			if tc.bookBlocked {
				blockingFineID := uuid.New()
				book.BlockingFineID = &blockingFineID
			}

			loan := givenActiveLoan(t, book.ID, now.Add(-2*24*time.Hour))
			loan.State = tc.loanState

			// act
			_, err := reportbookdamaged.Decide(loan, book, uuid.New(), "FINE-000009", now)

			// assert
			assert.Error(t, err)
			assert.Equal(t, tc.wantValidation, core.IsValidationError(err))
			assert.Equal(t, tc.wantPrecondition, core.IsPreconditionError(err))
			assert.ErrorContains(t, err, tc.expectedReason)
		})
	}
}

// Test helper functions with t.Helper() for better error reporting

func givenBook(t *testing.T, cost float64) core.Book {
	t.Helper()

	return core.Book{
		ID:        uuid.New(),
		Title:     "Gödel, Escher, Bach",
		AuthorID:  uuid.New(),
		CopyCount: 2,
		Cost:      cost,
	}
}

func givenActiveLoan(t *testing.T, bookID uuid.UUID, loanedAt time.Time) core.Loan {
	t.Helper()

	loan := core.BuildLoan(uuid.New(), "LOAN-000001", bookID, uuid.New(), loanedAt, 7)
	loan.State = core.LoanStateActive

	return loan
}
