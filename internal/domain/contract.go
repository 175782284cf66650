package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrContractNotFound         = fmt.Errorf("%w: contract not found", ErrNotFound)
	ErrContractPrincipalInvalid = fmt.Errorf("%w: principal must be positive", ErrValidation)
	ErrContractInvestorRequired = fmt.Errorf("%w: investor ID is required", ErrValidation)
	ErrContractNotActive        = fmt.Errorf("%w: contract is not active", ErrValidation)
	ErrContractStatusInvalid    = fmt.Errorf("%w: invalid contract status transition", ErrValidation)
)

// ContractStatus is the lifecycle state of a contract. The engine only ever
// derives active -> completed; closed and defaulted are administrative.
type ContractStatus string

const (
	ContractStatusActive    ContractStatus = "active"
	ContractStatusCompleted ContractStatus = "completed"
	ContractStatusClosed    ContractStatus = "closed"
	ContractStatusDefaulted ContractStatus = "defaulted"
)

// ContractAggregates holds the derived contract-level totals. They are
// re-derived from the schedule on every reconciliation, never incremented.
type ContractAggregates struct {
	TotalExpectedReturns  decimal.Decimal `json:"totalExpectedReturns"`
	TotalInterestExpected decimal.Decimal `json:"totalInterestExpected"`
	TotalPaidAmount       decimal.Decimal `json:"totalPaidAmount"`
	TotalInterestPaid     decimal.Decimal `json:"totalInterestPaid"`
	TotalPrincipalPaid    decimal.Decimal `json:"totalPrincipalPaid"`
	RemainingAmount       decimal.Decimal `json:"remainingAmount"`
}

// Contract is a fixed-term investment agreement between an investor and a
// plan. The investor identity itself is owned by an external system.
type Contract struct {
	ID         uuid.UUID  `json:"id"`
	PlanID     uuid.UUID  `json:"planId"`
	VariantID  *uuid.UUID `json:"variantId,omitempty"`
	InvestorID uuid.UUID  `json:"investorId"`

	Principal    decimal.Decimal `json:"principal"`
	StartDate    time.Time       `json:"startDate"`
	TenureMonths int32           `json:"tenureMonths"`

	Aggregates ContractAggregates `json:"aggregates"`
	Status     ContractStatus     `json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Contract) Validate() error {
	if c.InvestorID == uuid.Nil {
		return ErrContractInvestorRequired
	}
	if c.Principal.LessThanOrEqual(decimal.Zero) {
		return ErrContractPrincipalInvalid
	}
	return nil
}

// ContractRepository defines the interface for contract persistence.
// CreateWithSchedule and ApplyReconciliation are atomic: either every row is
// written or none is.
type ContractRepository interface {
	CreateWithSchedule(ctx context.Context, contract *Contract, entries []*ScheduleEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Contract, error)
	GetByInvestor(ctx context.Context, investorID uuid.UUID) ([]*Contract, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status ContractStatus) error
	ApplyReconciliation(ctx context.Context, contract *Contract, entries []*ScheduleEntry, payment *Payment) error
}
