package core

import (
	"time"

	"github.com/google/uuid"
)

// FineType distinguishes automatic delay fines from manually reported damage/loss.
type FineType string

// FineState represents the lifecycle state of a fine.
type FineState string

const (
	FineTypeDelay   FineType = "delay"
	FineTypeDamaged FineType = "damaged"
	FineTypeLost    FineType = "lost"

	FineStatePending   FineState = "pending"
	FineStatePaid      FineState = "paid"
	FineStateCancelled FineState = "cancelled"
)

const (
	// ManualFineFallbackAmount is charged for a damaged or lost book whose cost is unset or zero.
	ManualFineFallbackAmount = 50.0

	delayFineExpiryDays  = 30
	manualFineExpiryDays = 60
)

// Fine represents a monetary penalty tied to a specific loan, for delay,
// damage, or loss. A fine is exclusively owned by its originating loan;
// there is at most one pending delay fine per loan at any time (delay
// fines are updated in place as delinquency grows, never duplicated).
type Fine struct {
	ID              uuid.UUID
	ReferenceCode   ReferenceCodeString
	BorrowerID      uuid.UUID
	LoanID          uuid.UUID
	Type            FineType
	Amount          float64
	DelinquencyDays int
	ExpiresAt       time.Time
	State           FineState
}

// Pending reports whether the fine still counts against its borrower.
func (f Fine) Pending() bool {
	return f.State == FineStatePending
}

// Blocking reports whether this fine is of a type that blocks its book.
func (f Fine) Blocking() bool {
	return f.Type == FineTypeDamaged || f.Type == FineTypeLost
}

// BuildDelayFine creates a new pending delay fine for the given loan,
// charging delinquencyDays times the per-day rate, expiring 30 days out.
func BuildDelayFine(
	id uuid.UUID,
	referenceCode ReferenceCodeString,
	loan Loan,
	delinquencyDays int,
	perDayRate float64,
	now time.Time,
) Fine {

	return Fine{
		ID:              id,
		ReferenceCode:   referenceCode,
		BorrowerID:      loan.BorrowerID,
		LoanID:          loan.ID,
		Type:            FineTypeDelay,
		Amount:          float64(delinquencyDays) * perDayRate,
		DelinquencyDays: delinquencyDays,
		ExpiresAt:       ToInstant(now).AddDate(0, 0, delayFineExpiryDays),
		State:           FineStatePending,
	}
}

// UpdateDelayFine folds the latest delinquency into an existing pending
// delay fine, recomputing the amount in place instead of creating a duplicate.
func UpdateDelayFine(fine Fine, delinquencyDays int, perDayRate float64) Fine {
	fine.DelinquencyDays = delinquencyDays
	fine.Amount = float64(delinquencyDays) * perDayRate

	return fine
}

// BuildManualFine creates a new pending damaged/lost fine for the given loan.
// The amount is the book's cost, or ManualFineFallbackAmount when the cost
// is unset or zero; manual fines carry no delinquency and expire 60 days out.
func BuildManualFine(
	id uuid.UUID,
	referenceCode ReferenceCodeString,
	loan Loan,
	book Book,
	fineType FineType,
	now time.Time,
) Fine {

	amount := book.Cost
	if amount <= 0 {
		amount = ManualFineFallbackAmount
	}

	return Fine{
		ID:            id,
		ReferenceCode: referenceCode,
		BorrowerID:    loan.BorrowerID,
		LoanID:        loan.ID,
		Type:          fineType,
		Amount:        amount,
		ExpiresAt:     ToInstant(now).AddDate(0, 0, manualFineExpiryDays),
		State:         FineStatePending,
	}
}
