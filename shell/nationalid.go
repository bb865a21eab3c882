package shell

import (
	"fmt"

	"github.com/bibkit/library-circulation-go/core"
)

const nationalIDLength = 10

// ValidNationalID reports whether id is a valid 10-digit national ID:
// all digits, province code between 01 and 24, and a matching weighted
// check digit in the last position.
func ValidNationalID(id string) bool {
	if len(id) != nationalIDLength {
		return false
	}

	digits := make([]int, nationalIDLength)
	for i, r := range id {
		if r < '0' || r > '9' {
			return false
		}
		digits[i] = int(r - '0')
	}

	province := digits[0]*10 + digits[1]
	if province < 1 || province > 24 {
		return false
	}

	// Weighted checksum over the first nine digits: odd positions double,
	// two-digit products fold back by subtracting nine.
	total := 0
	for i := 0; i < nationalIDLength-1; i++ {
		val := digits[i]
		if i%2 == 0 {
			val *= 2
			if val >= 10 {
				val -= 9
			}
		}
		total += val
	}

	checkDigit := 0
	if total%10 != 0 {
		checkDigit = 10 - total%10
	}

	return checkDigit == digits[nationalIDLength-1]
}

// ValidateNationalID returns a ValidationError when id fails the checksum.
func ValidateNationalID(id string) error {
	if !ValidNationalID(id) {
		return core.NewValidationError(fmt.Sprintf("invalid national ID: %s", id))
	}

	return nil
}
