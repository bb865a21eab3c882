package shell_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bibkit/library-circulation-go/core"
	"github.com/bibkit/library-circulation-go/shell"
)

func Test_ValidNationalID_AcceptsValidIDs(t *testing.T) {
	testCases := []struct {
		name string
		id   string
	}{
		{name: "mid-range province", id: "1712345675"},
		{name: "lowest province 01", id: "0102030400"},
		{name: "highest province 24", id: "2400000002"},
		{name: "checksum total divisible by ten", id: "0999999998"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act + assert
			assert.True(t, shell.ValidNationalID(tc.id))
		})
	}
}

func Test_ValidNationalID_RejectsInvalidIDs(t *testing.T) {
	testCases := []struct {
		name string
		id   string
	}{
		{name: "empty", id: ""},
		{name: "too short", id: "171234567"},
		{name: "too long", id: "17123456750"},
		{name: "non-digit character", id: "17123456a5"},
		{name: "province 00", id: "0012345675"},
		{name: "province above 24", id: "2512345675"},
		{name: "wrong check digit", id: "1712345676"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act + assert
			assert.False(t, shell.ValidNationalID(tc.id))
		})
	}
}

func Test_ValidateNationalID_ReturnsValidationError(t *testing.T) {
	// act
	err := shell.ValidateNationalID("1712345676")

	// assert
	assert.Error(t, err)
	assert.True(t, core.IsValidationError(err))
	assert.ErrorContains(t, err, "invalid national ID")
}

func Test_ValidateNationalID_NilOnValidID(t *testing.T) {
	// act + assert
	assert.NoError(t, shell.ValidateNationalID("1712345675"))
}
