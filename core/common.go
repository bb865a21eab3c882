package core

import (
	"time"
)

// Instead of implementing full value objects, I'm using some alias types and helper methods here ...

// ReferenceCodeString represents a human-readable, sequence-assigned reference code.
type ReferenceCodeString = string

// Instant represents a point in time as used by the domain.
type Instant = time.Time

// ToInstant converts a time to an Instant with UTC normalization and microsecond precision.
func ToInstant(t time.Time) Instant {
	return t.UTC().Truncate(time.Microsecond)
}

// WholeDaysBetween returns the number of whole days from "from" to "until",
// clamped to zero when "until" is not after "from".
func WholeDaysBetween(from time.Time, until time.Time) int {
	if !until.After(from) {
		return 0
	}

	return int(until.Sub(from) / (24 * time.Hour))
}
