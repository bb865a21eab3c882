package shell_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bibkit/library-circulation-go/recordstore"
	"github.com/bibkit/library-circulation-go/shell"
)

func Test_RetryOnConflict_SucceedsImmediately(t *testing.T) {
	// arrange
	attempts := 0

	// act
	err := shell.RetryOnConflict(context.Background(), func(_ context.Context) error {
		attempts++
		return nil
	})

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func Test_RetryOnConflict_RetriesConflictUntilSuccess(t *testing.T) {
	// arrange
	attempts := 0

	// act
	err := shell.RetryOnConflict(context.Background(), func(_ context.Context) error {
		attempts++
		if attempts < 3 {
			return recordstore.ErrConcurrencyConflict
		}
		return nil
	}, shell.WithBaseDelay(time.Millisecond))

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func Test_RetryOnConflict_GivesUpAfterMaxAttempts(t *testing.T) {
	// arrange
	attempts := 0

	// act
	err := shell.RetryOnConflict(context.Background(), func(_ context.Context) error {
		attempts++
		return recordstore.ErrConcurrencyConflict
	}, shell.WithMaxAttempts(3), shell.WithBaseDelay(time.Millisecond))

	// assert
	assert.ErrorIs(t, err, recordstore.ErrConcurrencyConflict)
	assert.Equal(t, 3, attempts)
}

func Test_RetryOnConflict_DoesNotRetryOtherErrors(t *testing.T) {
	// arrange
	permanentErr := errors.New("validation failed: borrower is blocked")
	attempts := 0

	// act
	err := shell.RetryOnConflict(context.Background(), func(_ context.Context) error {
		attempts++
		return permanentErr
	})

	// assert
	assert.ErrorIs(t, err, permanentErr)
	assert.Equal(t, 1, attempts)
}

func Test_RetryOnConflict_StopsOnContextCancellation(t *testing.T) {
	// arrange
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	// act
	err := shell.RetryOnConflict(ctx, func(_ context.Context) error {
		attempts++
		cancel()
		return recordstore.ErrConcurrencyConflict
	}, shell.WithBaseDelay(50*time.Millisecond))

	// assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func Test_RetryOnConflict_OptionValidationErrors(t *testing.T) {
	testCases := []struct {
		name        string
		option      shell.RetryOption
		expectedErr error
	}{
		{name: "zero max attempts", option: shell.WithMaxAttempts(0), expectedErr: shell.ErrInvalidMaxAttempts},
		{name: "negative base delay", option: shell.WithBaseDelay(-time.Millisecond), expectedErr: shell.ErrNegativeBaseDelay},
		{name: "jitter factor above one", option: shell.WithJitterFactor(1.5), expectedErr: shell.ErrInvalidJitterFactor},
		{name: "negative jitter factor", option: shell.WithJitterFactor(-0.1), expectedErr: shell.ErrInvalidJitterFactor},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			err := shell.RetryOnConflict(context.Background(), func(_ context.Context) error {
				return nil
			}, tc.option)

			// assert
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}
