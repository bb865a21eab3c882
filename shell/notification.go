package shell

import (
	"context"
	"fmt"
)

// Notification carries everything a sender needs to address one overdue
// notice: the loan, the fine it announces, and the configured sender address.
type Notification struct {
	LoanReferenceCode string
	FineReferenceCode string
	BorrowerName      string
	BorrowerEmail     string
	SenderAddress     string
	FineAmount        float64
	DelinquencyDays   int
}

// LogNotificationSender "delivers" notifications by writing them to the
// operational log. Useful for development and as the default wiring when no
// real mail transport is configured; a production deployment swaps in its
// own NotificationSender.
type LogNotificationSender struct {
	Logger Logger
}

// Send logs the notification and always succeeds.
func (s LogNotificationSender) Send(_ context.Context, n Notification) error {
	if s.Logger != nil {
		s.Logger.Info("overdue notification dispatched",
			"loan", n.LoanReferenceCode,
			"fine", n.FineReferenceCode,
			"to", n.BorrowerEmail,
			"from", n.SenderAddress,
			"amount", fmt.Sprintf("%.2f", n.FineAmount),
			"delinquency_days", n.DelinquencyDays,
		)
	}

	return nil
}
