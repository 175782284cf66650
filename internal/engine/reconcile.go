package engine

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/veloxfin/velox-backend/internal/domain"
)

// ReconcileResult is the outcome of applying one payment to a schedule.
type ReconcileResult struct {
	Entry            *domain.ScheduleEntry   // the mutated target entry
	SweptOverdue     []*domain.ScheduleEntry // entries flipped pending -> overdue
	InterestPortion  decimal.Decimal
	PrincipalPortion decimal.Decimal
	Aggregates       domain.ContractAggregates
	Status           domain.ContractStatus
}

// ApplyPayment reconciles a recorded payment against the schedule: it locates
// the target period, splits the amount into interest and principal portions,
// updates the entry status, sweeps overdue periods, and re-derives every
// contract aggregate from the schedule. Schedule entries are mutated in
// place; the caller owns write-back.
func ApplyPayment(schedule []*domain.ScheduleEntry, aggregates domain.ContractAggregates, status domain.ContractStatus, app *domain.PaymentApplication, now time.Time) (*ReconcileResult, error) {
	if err := app.Validate(); err != nil {
		return nil, err
	}

	entry := entryForPeriod(schedule, app.TargetPeriod)
	if entry == nil {
		return nil, domain.ErrScheduleEntryNotFound
	}

	var interestPortion, principalPortion decimal.Decimal
	if app.Breakdown != nil {
		interestPortion = app.Breakdown.Interest
		principalPortion = app.Breakdown.Principal
	} else {
		// Auto-split: interest first, capped at the entry's unpaid interest.
		interestOutstanding := entry.InterestAmount.Sub(decimal.Min(entry.PaidAmount, entry.InterestAmount))
		interestPortion = decimal.Min(app.Amount, interestOutstanding)
		principalPortion = decimal.Max(decimal.Zero, app.Amount.Sub(interestPortion))
	}

	entry.PaidAmount = entry.PaidAmount.Add(app.Amount)
	if entry.PaidAmount.GreaterThanOrEqual(entry.TotalAmount) {
		entry.Status = domain.EntryStatusPaid
		paidDate := app.PaidDate
		entry.PaidDate = &paidDate
	} else {
		entry.Status = domain.EntryStatusPartial
	}

	swept := SweepOverdue(schedule, now)

	updated := RecomputeAggregates(schedule, aggregates)

	return &ReconcileResult{
		Entry:            entry,
		SweptOverdue:     swept,
		InterestPortion:  interestPortion,
		PrincipalPortion: principalPortion,
		Aggregates:       updated,
		Status:           DeriveStatus(status, updated),
	}, nil
}

// SweepOverdue marks every pending entry whose due date has passed as
// overdue and returns the entries it changed. It is time-dependent rather
// than event-dependent, so it also runs whenever a contract is read.
func SweepOverdue(schedule []*domain.ScheduleEntry, now time.Time) []*domain.ScheduleEntry {
	var swept []*domain.ScheduleEntry
	for _, e := range schedule {
		if e.Status == domain.EntryStatusPending && e.DueDate.Before(now) {
			e.Status = domain.EntryStatusOverdue
			swept = append(swept, e)
		}
	}
	return swept
}

// RecomputeAggregates re-derives the contract totals by summing across all
// schedule entries. Deriving instead of incrementing keeps the stored totals
// from drifting away from the schedule they summarize and makes repeated
// reconciliation of an already-paid entry a no-op on the totals.
func RecomputeAggregates(schedule []*domain.ScheduleEntry, aggregates domain.ContractAggregates) domain.ContractAggregates {
	totalPaid := decimal.Zero
	interestPaid := decimal.Zero
	principalPaid := decimal.Zero

	for _, e := range schedule {
		totalPaid = totalPaid.Add(e.PaidAmount)
		interestPaid = interestPaid.Add(decimal.Min(e.PaidAmount, e.InterestAmount))
		principalPaid = principalPaid.Add(decimal.Max(decimal.Zero, e.PaidAmount.Sub(e.InterestAmount)))
	}

	remaining := aggregates.TotalExpectedReturns.Sub(totalPaid)
	if remaining.IsNegative() {
		// Overpayment: clamp so remainingAmount stays non-negative.
		remaining = decimal.Zero
	}

	return domain.ContractAggregates{
		TotalExpectedReturns:  aggregates.TotalExpectedReturns,
		TotalInterestExpected: aggregates.TotalInterestExpected,
		TotalPaidAmount:       totalPaid,
		TotalInterestPaid:     interestPaid,
		TotalPrincipalPaid:    principalPaid,
		RemainingAmount:       remaining,
	}
}

// DeriveStatus derives the contract status from its aggregates. The engine
// only ever moves active to completed; overdue periods are a property of the
// schedule, not a contract transition, and closed/defaulted are
// administrative states it never touches.
func DeriveStatus(current domain.ContractStatus, aggregates domain.ContractAggregates) domain.ContractStatus {
	if current == domain.ContractStatusActive &&
		aggregates.TotalPaidAmount.GreaterThanOrEqual(aggregates.TotalExpectedReturns) {
		return domain.ContractStatusCompleted
	}
	return current
}

func entryForPeriod(schedule []*domain.ScheduleEntry, period int32) *domain.ScheduleEntry {
	for _, e := range schedule {
		if e.Period == period {
			return e
		}
	}
	return nil
}
