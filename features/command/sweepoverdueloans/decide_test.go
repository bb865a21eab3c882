package sweepoverdueloans_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/bibkit/library-circulation-go/core"
	"github.com/bibkit/library-circulation-go/features/command/sweepoverdueloans"
)

func Test_Assess_Eligible_WhenOverduePastGrace(t *testing.T) {
	// arrange
	now := time.Now()
	config := core.DefaultConfiguration()
	loan := givenActiveLoan(t, now.Add(-10*24*time.Hour), 7)

	// act
	assessment := sweepoverdueloans.Assess(loan, config, now)

	// assert
	assert.True(t, assessment.Eligible)
	assert.False(t, assessment.WithinGrace)
	assert.Equal(t, 3, assessment.DelinquencyDays)
}

func Test_Assess_WithinGrace_WhenOverdueLessThanGraceDays(t *testing.T) {
	// arrange - twelve hours past due is zero whole days, under the one-day grace
	now := time.Now()
	config := core.DefaultConfiguration()
	loan := givenActiveLoan(t, now.Add(-7*24*time.Hour).Add(-12*time.Hour), 7)

	// act
	assessment := sweepoverdueloans.Assess(loan, config, now)

	// assert
	assert.True(t, assessment.Eligible)
	assert.True(t, assessment.WithinGrace)
	assert.Equal(t, 0, assessment.DelinquencyDays)
}

func Test_Assess_Eligible_ExactlyAtGraceBoundary(t *testing.T) {
	// arrange - one whole day past due meets the one-day grace threshold
	now := time.Now()
	config := core.DefaultConfiguration()
	loan := givenActiveLoan(t, now.Add(-8*24*time.Hour), 7)

	// act
	assessment := sweepoverdueloans.Assess(loan, config, now)

	// assert
	assert.True(t, assessment.Eligible)
	assert.False(t, assessment.WithinGrace)
	assert.Equal(t, 1, assessment.DelinquencyDays)
}

func Test_Assess_Ineligible(t *testing.T) {
	now := time.Now()
	config := core.DefaultConfiguration()

	testCases := []struct {
		name string
		loan core.Loan
	}{
		{
			name: "loan returned since selection",
			loan: func() core.Loan {
				loan := givenActiveLoan(t, now.Add(-10*24*time.Hour), 7)
				loan.State = core.LoanStateReturned
				return loan
			}(),
		},
		{
			name: "loan fined by an overlapping sweep",
			loan: func() core.Loan {
				loan := givenActiveLoan(t, now.Add(-10*24*time.Hour), 7)
				loan.State = core.LoanStateFined
				return loan
			}(),
		},
		{
			name: "loan already notified",
			loan: func() core.Loan {
				loan := givenActiveLoan(t, now.Add(-10*24*time.Hour), 7)
				loan.Notified = true
				return loan
			}(),
		},
		{
			name: "loan not yet due",
			loan: givenActiveLoan(t, now.Add(-3*24*time.Hour), 7),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			assessment := sweepoverdueloans.Assess(tc.loan, config, now)

			// assert
			assert.False(t, assessment.Eligible)
		})
	}
}

func Test_ApplyFined_TransitionsLoanWithoutReturnTimestamp(t *testing.T) {
	// arrange
	now := time.Now()
	loan := givenActiveLoan(t, now.Add(-10*24*time.Hour), 7)
	fine := core.BuildDelayFine(uuid.New(), "FINE-000001", loan, 3, 1.0, now)

	// act
	fined := sweepoverdueloans.ApplyFined(loan, fine)

	// assert
	assert.Equal(t, core.LoanStateFined, fined.State)
	assert.True(t, fined.HasFine)
	assert.InDelta(t, 3.0, fined.FineAmount, 0.0001)

	// the book is still out
	assert.Nil(t, fined.ReturnedAt)
}

// Test helper functions with t.Helper() for better error reporting

func givenActiveLoan(t *testing.T, loanedAt time.Time, loanPeriodDays int) core.Loan {
	t.Helper()

	loan := core.BuildLoan(uuid.New(), "LOAN-000001", uuid.New(), uuid.New(), loanedAt, loanPeriodDays)
	loan.State = core.LoanStateActive

	return loan
}
