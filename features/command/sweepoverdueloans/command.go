package sweepoverdueloans

const (
	commandType = "SweepOverdueLoans"
)

// Command represents the intent to run one overdue sweep over all eligible loans.
type Command struct{}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command.
func BuildCommand() Command {
	return Command{}
}
