package payfine

import (
	"github.com/google/uuid"
)

const (
	commandType = "PayFine"
)

// Command represents the intent to pay a pending fine.
type Command struct {
	FineID uuid.UUID
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(fineID uuid.UUID) Command {
	return Command{
		FineID: fineID,
	}
}
