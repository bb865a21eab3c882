package core

import (
	"strings"

	"github.com/google/uuid"
)

// Borrower represents a registered library user.
// Whether a borrower is blocked for new loans is a pure function of their
// fine set (see BorrowerBlocked) and is not stored on the record.
type Borrower struct {
	ID         uuid.UUID
	FirstName  string
	LastName   string
	NationalID string
	Email      string
	Phone      string
}

// DisplayName returns the borrower's full name for reference formatting.
func (b Borrower) DisplayName() string {
	return strings.TrimSpace(b.FirstName + " " + b.LastName)
}

// HasContactAddress reports whether a notification can be addressed to this borrower.
func (b Borrower) HasContactAddress() bool {
	return b.Email != ""
}
