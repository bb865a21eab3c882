package openloan

import (
	"time"

	"github.com/google/uuid"

	"github.com/bibkit/library-circulation-go/core"
)

const (
	commandType = "OpenLoan"
)

// Command represents the intent to open a new loan in draft state.
type Command struct {
	BookID     uuid.UUID
	BorrowerID uuid.UUID
	// LoanedAt is the loan timestamp; the zero value means "now".
	LoanedAt time.Time
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(bookID uuid.UUID, borrowerID uuid.UUID, loanedAt time.Time) Command {
	return Command{
		BookID:     bookID,
		BorrowerID: borrowerID,
		LoanedAt:   core.ToInstant(loanedAt),
	}
}
