package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrScheduleEntryNotFound = fmt.Errorf("%w: schedule entry not found for period", ErrNotFound)

// EntryStatus is the payment state of a single schedule period.
type EntryStatus string

const (
	EntryStatusPending EntryStatus = "pending"
	EntryStatusPartial EntryStatus = "partial"
	EntryStatusPaid    EntryStatus = "paid"
	EntryStatusOverdue EntryStatus = "overdue"
)

// ScheduleEntry is one period's obligation in a contract's schedule.
// Created once at contract inception; mutated only by reconciliation.
type ScheduleEntry struct {
	ID         uuid.UUID `json:"id"`
	ContractID uuid.UUID `json:"contractId"`
	Period     int32     `json:"period"`
	DueDate    time.Time `json:"dueDate"`

	InterestAmount          decimal.Decimal `json:"interestAmount"`
	PrincipalAmount         decimal.Decimal `json:"principalAmount"`
	TotalAmount             decimal.Decimal `json:"totalAmount"`
	RemainingPrincipalAfter decimal.Decimal `json:"remainingPrincipalAfter"`

	Status     EntryStatus     `json:"status"`
	PaidAmount decimal.Decimal `json:"paidAmount"`
	PaidDate   *time.Time      `json:"paidDate,omitempty"`
}

// ScheduleRepository defines the interface for schedule persistence.
type ScheduleRepository interface {
	GetByContractID(ctx context.Context, contractID uuid.UUID) ([]*ScheduleEntry, error)
	UpdateStatuses(ctx context.Context, entries []*ScheduleEntry) error
}
