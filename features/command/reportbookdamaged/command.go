package reportbookdamaged

import (
	"github.com/google/uuid"
)

const (
	commandType = "ReportBookDamaged"
)

// Command represents the intent to report the book of one loan as damaged.
// The semantics are "operate on a single loan at a time".
type Command struct {
	LoanID uuid.UUID
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(loanID uuid.UUID) Command {
	return Command{
		LoanID: loanID,
	}
}
