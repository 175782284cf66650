package engine

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/veloxfin/velox-backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Selection picks which repayment configuration of a plan to calculate with.
// VariantID references one of the plan's stored variants; Custom supplies an
// ad-hoc variant payload. When both are nil the plan's default variant is
// used, falling back to the plan's top-level legacy fields.
type Selection struct {
	VariantID *uuid.UUID
	Custom    *domain.RepaymentPlanVariant
}

// policyKind is the closed set of principal repayment shapes the stepping
// loop branches on.
type policyKind int

const (
	// policyFinalPeriod: principal is due entirely in the final period.
	policyFinalPeriod policyKind = iota
	// policySpread: a fixed amount is amortized evenly over a window of
	// consecutive periods; the window's last period absorbs the rounding
	// remainder.
	policySpread
	// policyInstallment: a fixed installment is due at every period that is
	// a multiple of the payout frequency.
	policyInstallment
)

// PrincipalPolicy maps a period number to the principal due in that period.
// It is fully determined at resolution time.
type PrincipalPolicy struct {
	kind policyKind

	// policySpread
	startMonth int32
	termLength int32
	perPeriod  decimal.Decimal
	lastPeriodAmount decimal.Decimal

	// policyInstallment
	frequencyMonths int32
	installment     decimal.Decimal
}

// Due returns the principal due in the given period under this policy. The
// schedule loop separately force-closes the balance in the final tenure
// period, so Due never needs to know the tenure.
func (p PrincipalPolicy) Due(period int32) decimal.Decimal {
	switch p.kind {
	case policySpread:
		if period < p.startMonth || period >= p.startMonth+p.termLength {
			return decimal.Zero
		}
		if period == p.startMonth+p.termLength-1 {
			return p.lastPeriodAmount
		}
		return p.perPeriod
	case policyInstallment:
		if p.frequencyMonths > 0 && period%p.frequencyMonths == 0 {
			return p.installment
		}
		return decimal.Zero
	default:
		return decimal.Zero
	}
}

// ResolvedConfig is the flattened parameter set the schedule and returns
// loops consume. Built once per calculation; never mutated.
type ResolvedConfig struct {
	Principal    decimal.Decimal
	TenureMonths int32
	MonthlyRate  decimal.Decimal // percentage, 0-100
	InterestType domain.InterestType
	Policy       PrincipalPolicy
}

// ResolveConfig flattens a plan plus an optional variant selection into the
// concrete numeric parameters for one calculation.
func ResolveConfig(plan *domain.Plan, principal decimal.Decimal, sel *Selection) (*ResolvedConfig, error) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: principal must be positive", domain.ErrValidation)
	}
	if plan.TenureMonths < 1 {
		return nil, domain.ErrPlanTenureInvalid
	}

	var variant *domain.RepaymentPlanVariant
	switch {
	case sel != nil && sel.VariantID != nil:
		variant = plan.VariantByID(*sel.VariantID)
		if variant == nil {
			return nil, domain.ErrVariantNotFound
		}
	case sel != nil && sel.Custom != nil:
		variant = sel.Custom
	default:
		variant = plan.DefaultVariant()
	}

	if variant == nil {
		// Legacy path: the plan's top-level fields describe an even spread of
		// principal*percentage/100 from the start month through the tenure.
		return resolveLegacy(plan, principal)
	}

	if err := variant.Validate(); err != nil {
		return nil, err
	}

	cfg := &ResolvedConfig{
		Principal:    principal,
		TenureMonths: plan.TenureMonths,
		MonthlyRate:  variant.InterestRateMonthly,
		InterestType: plan.InterestType,
	}

	switch variant.PaymentType {
	case domain.PaymentTypeInterest:
		if *variant.PrincipalRepaymentOption == domain.PrincipalRepaymentFixed {
			cfg.Policy = PrincipalPolicy{kind: policyFinalPeriod}
			return cfg, nil
		}
		cfg.Policy = flexiblePolicy(principal, plan.TenureMonths, *variant.WithdrawalAfterPercentage, *variant.PrincipalSettlementTerm)
		return cfg, nil
	case domain.PaymentTypeInterestWithPrincipal:
		cfg.Policy = installmentPolicy(principal, plan.TenureMonths, *variant.PrincipalRepaymentPercentage, variant.PayoutFrequency.Months())
		return cfg, nil
	}

	return nil, domain.ErrVariantIncomplete
}

func resolveLegacy(plan *domain.Plan, principal decimal.Decimal) (*ResolvedConfig, error) {
	start := plan.PrincipalRepaymentStartMonth
	if start < 1 {
		start = 1
	}
	if start > plan.TenureMonths {
		start = plan.TenureMonths
	}
	term := plan.TenureMonths - start + 1
	repayTotal := principal.Mul(plan.PrincipalRepaymentPercentage).Div(hundred).Round(2)

	return &ResolvedConfig{
		Principal:    principal,
		TenureMonths: plan.TenureMonths,
		MonthlyRate:  plan.InterestRateMonthly,
		InterestType: plan.InterestType,
		Policy:       spreadPolicy(repayTotal, start, term),
	}, nil
}

// flexiblePolicy amortizes the full principal over the settlement term once
// the withdrawal lock expires: settlement starts at
// ceil(tenure * withdrawalAfterPercentage / 100).
func flexiblePolicy(principal decimal.Decimal, tenure int32, withdrawalAfterPct decimal.Decimal, settlementTerm int32) PrincipalPolicy {
	start := int32(withdrawalAfterPct.Mul(decimal.NewFromInt32(tenure)).Div(hundred).Ceil().IntPart())
	if start < 1 {
		start = 1
	}
	if start > tenure {
		start = tenure
	}
	if settlementTerm < 1 {
		settlementTerm = 1
	}
	return spreadPolicy(principal, start, settlementTerm)
}

// spreadPolicy spreads total evenly over term periods starting at start; the
// last period of the window absorbs the rounding remainder.
func spreadPolicy(total decimal.Decimal, start, term int32) PrincipalPolicy {
	perPeriod := total.Div(decimal.NewFromInt32(term)).Round(2)
	last := total.Sub(perPeriod.Mul(decimal.NewFromInt32(term - 1)))
	return PrincipalPolicy{
		kind:             policySpread,
		startMonth:       start,
		termLength:       term,
		perPeriod:        perPeriod,
		lastPeriodAmount: last,
	}
}

// installmentPolicy reduces principal by a fixed installment at every period
// that is a multiple of the payout frequency, with
// totalPayments = ceil(tenure / frequencyMonths).
func installmentPolicy(principal decimal.Decimal, tenure int32, repaymentPct decimal.Decimal, frequencyMonths int) PrincipalPolicy {
	if frequencyMonths < 1 {
		frequencyMonths = 1
	}
	totalPayments := (int64(tenure) + int64(frequencyMonths) - 1) / int64(frequencyMonths)
	installment := principal.Mul(repaymentPct).Div(hundred).
		Div(decimal.NewFromInt(totalPayments)).Round(2)
	return PrincipalPolicy{
		kind:            policyInstallment,
		frequencyMonths: int32(frequencyMonths),
		installment:     installment,
	}
}
