package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrPaymentAmountInvalid    = fmt.Errorf("%w: payment amount must be positive", ErrValidation)
	ErrPaymentBreakdownInvalid = fmt.Errorf("%w: breakdown components must sum to the payment amount", ErrValidation)
	ErrPaymentPeriodInvalid    = fmt.Errorf("%w: target period must be at least 1", ErrValidation)
)

// breakdownTolerance is the allowed absolute difference between a supplied
// breakdown sum and the payment amount (cumulative 2dp rounding slack).
var breakdownTolerance = decimal.NewFromFloat(0.01)

// PaymentBreakdown is an optional explicit split of a payment amount.
type PaymentBreakdown struct {
	Interest  decimal.Decimal `json:"interest"`
	Principal decimal.Decimal `json:"principal"`
	Penalty   decimal.Decimal `json:"penalty"`
	Bonus     decimal.Decimal `json:"bonus"`
}

// Sum returns the total of all breakdown components.
func (b PaymentBreakdown) Sum() decimal.Decimal {
	return b.Interest.Add(b.Principal).Add(b.Penalty).Add(b.Bonus)
}

// PaymentApplication is the reconciliation input: a recorded amount applied
// against one schedule period.
type PaymentApplication struct {
	TargetPeriod int32             `json:"targetPeriod"`
	Amount       decimal.Decimal   `json:"amount"`
	Breakdown    *PaymentBreakdown `json:"breakdown,omitempty"`
	PaidDate     time.Time         `json:"paidDate"`
	Reference    *string           `json:"reference,omitempty"`
}

// Validate checks the application invariants before reconciliation.
func (a *PaymentApplication) Validate() error {
	if a.TargetPeriod < 1 {
		return ErrPaymentPeriodInvalid
	}
	if a.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrPaymentAmountInvalid
	}
	if a.Breakdown != nil {
		diff := a.Breakdown.Sum().Sub(a.Amount).Abs()
		if diff.GreaterThan(breakdownTolerance) {
			return ErrPaymentBreakdownInvalid
		}
	}
	return nil
}

// Payment is the persisted record of a reconciled payment.
type Payment struct {
	ID         uuid.UUID `json:"id"`
	ContractID uuid.UUID `json:"contractId"`
	Period     int32     `json:"period"`

	Amount           decimal.Decimal `json:"amount"`
	InterestPortion  decimal.Decimal `json:"interestPortion"`
	PrincipalPortion decimal.Decimal `json:"principalPortion"`
	PenaltyPortion   decimal.Decimal `json:"penaltyPortion"`
	BonusPortion     decimal.Decimal `json:"bonusPortion"`

	PaidDate  time.Time `json:"paidDate"`
	Reference *string   `json:"reference,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// PaymentStats summarizes a contract's recorded payments.
type PaymentStats struct {
	Count       int32           `json:"count"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// PaymentRepository defines the interface for payment persistence. Payment
// rows are inserted through ContractRepository.ApplyReconciliation so the
// schedule, aggregates and payment land in one transaction.
type PaymentRepository interface {
	GetByContractID(ctx context.Context, contractID uuid.UUID) ([]*Payment, error)
	GetStats(ctx context.Context, contractID uuid.UUID) (*PaymentStats, error)
}
