package returnloan_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/bibkit/library-circulation-go/core"
	"github.com/bibkit/library-circulation-go/features/command/returnloan"
)

func Test_Decide_OnTime_WhenReturnedBeforeDueDate(t *testing.T) {
	// arrange
	now := time.Now()
	loan := givenActiveLoan(t, now.Add(-3*24*time.Hour), 7)

	// act
	outcome, err := returnloan.Decide(loan, now)

	// assert
	assert.NoError(t, err)
	assert.False(t, outcome.Late)
	assert.Equal(t, 0, outcome.DelinquencyDays)
}

func Test_Decide_OnTime_WhenReturnedExactlyAtDueDate(t *testing.T) {
	// arrange
	now := time.Now()
	loan := givenActiveLoan(t, now.Add(-7*24*time.Hour), 7)

	// act
	outcome, err := returnloan.Decide(loan, loan.DueAt)

	// assert
	assert.NoError(t, err)
	assert.False(t, outcome.Late)
}

func Test_Decide_Late_SevenDayLoanReturnedOnDayTen(t *testing.T) {
	// arrange
	now := time.Now()
	loan := givenActiveLoan(t, now.Add(-10*24*time.Hour), 7)

	// act
	outcome, err := returnloan.Decide(loan, now)

	// assert
	assert.NoError(t, err)
	assert.True(t, outcome.Late)
	assert.Equal(t, 3, outcome.DelinquencyDays)
}

func Test_Decide_Late_PartialDaysRoundDown(t *testing.T) {
	// arrange
	now := time.Now()
	loan := givenActiveLoan(t, now.Add(-7*24*time.Hour).Add(-36*time.Hour), 7)

	// act - one and a half days past due counts as one whole day
	outcome, err := returnloan.Decide(loan, now)

	// assert
	assert.NoError(t, err)
	assert.True(t, outcome.Late)
	assert.Equal(t, 1, outcome.DelinquencyDays)
}

func Test_Decide_BusinessErrors(t *testing.T) {
	now := time.Now()

	testCases := []struct {
		name      string
		loanState core.LoanState
	}{
		{name: "loan still draft", loanState: core.LoanStateDraft},
		{name: "loan already returned", loanState: core.LoanStateReturned},
		{name: "loan already fined", loanState: core.LoanStateFined},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			loan := givenActiveLoan(t, now.Add(-3*24*time.Hour), 7)
			loan.State = tc.loanState

			// act
			_, err := returnloan.Decide(loan, now)

			// assert
			assert.Error(t, err)
			assert.True(t, core.IsValidationError(err))
			assert.ErrorContains(t, err, "invalid transition")
		})
	}
}

func Test_ApplyOnTimeReturn_ClosesLoanWithoutFine(t *testing.T) {
	// arrange
	now := time.Now()
	loan := givenActiveLoan(t, now.Add(-3*24*time.Hour), 7)

	// act
	returned := returnloan.ApplyOnTimeReturn(loan, now)

	// assert
	assert.Equal(t, core.LoanStateReturned, returned.State)
	assert.NotNil(t, returned.ReturnedAt)
	assert.Equal(t, core.ToInstant(now), *returned.ReturnedAt)
	assert.False(t, returned.HasFine)
	assert.Zero(t, returned.FineAmount)
}

func Test_ApplyLateReturn_MirrorsFineOntoLoan(t *testing.T) {
	// arrange
	now := time.Now()
	loan := givenActiveLoan(t, now.Add(-10*24*time.Hour), 7)
	fine := core.BuildDelayFine(uuid.New(), "FINE-000001", loan, 3, 1.0, now)

	// act
	fined := returnloan.ApplyLateReturn(loan, fine, now)

	// assert
	assert.Equal(t, core.LoanStateFined, fined.State)
	assert.NotNil(t, fined.ReturnedAt)
	assert.True(t, fined.HasFine)
	assert.InDelta(t, 3.0, fined.FineAmount, 0.0001)
	assert.InDelta(t, fine.Amount, fined.FineAmount, 0.0001)
}

// Test helper functions with t.Helper() for better error reporting

func givenActiveLoan(t *testing.T, loanedAt time.Time, loanPeriodDays int) core.Loan {
	t.Helper()

	loan := core.BuildLoan(uuid.New(), "LOAN-000001", uuid.New(), uuid.New(), loanedAt, loanPeriodDays)
	loan.State = core.LoanStateActive

	return loan
}
