package core

// Configuration holds the timing and amount constants that drive the loan
// and fine lifecycle. It is a singleton row in the store, lazily created
// with these defaults on first access, and passed explicitly to every
// computation that needs it - never read from ambient global state.
type Configuration struct {
	LoanPeriodDays        int
	NotificationGraceDays int
	FinePerDay            float64
	SenderAddress         string
}

// DefaultConfiguration returns the configuration inserted on first access.
func DefaultConfiguration() Configuration {
	return Configuration{
		LoanPeriodDays:        7,
		NotificationGraceDays: 1,
		FinePerDay:            1.0,
		SenderAddress:         "library@example.com",
	}
}
