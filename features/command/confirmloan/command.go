package confirmloan

import (
	"github.com/google/uuid"
)

const (
	commandType = "ConfirmLoan"
)

// Command represents the intent to confirm a draft loan, activating it.
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
