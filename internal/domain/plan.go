package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrPlanNotFound            = fmt.Errorf("%w: plan not found", ErrNotFound)
	ErrVariantNotFound         = fmt.Errorf("%w: repayment plan variant not found", ErrNotFound)
	ErrPlanNameEmpty           = fmt.Errorf("%w: plan name is required", ErrValidation)
	ErrPlanNameTooLong         = fmt.Errorf("%w: plan name must be 200 characters or less", ErrValidation)
	ErrPlanTenureInvalid       = fmt.Errorf("%w: tenure must be at least 1 month", ErrConfiguration)
	ErrPlanRateInvalid         = fmt.Errorf("%w: monthly interest rate must be between 0 and 100", ErrConfiguration)
	ErrPlanInterestTypeInvalid = fmt.Errorf("%w: interest type must be flat or reducing", ErrConfiguration)
	ErrPlanRepaymentInvalid    = fmt.Errorf("%w: principal repayment percentage must be between 0 and 100", ErrConfiguration)
	ErrPlanStartMonthInvalid   = fmt.Errorf("%w: principal repayment start month must be within the tenure", ErrConfiguration)
	ErrVariantIncomplete       = fmt.Errorf("%w: variant is missing required fields for its payment type", ErrConfiguration)
	ErrVariantDefaultDuplicate = fmt.Errorf("%w: a plan may have at most one default variant", ErrConfiguration)
)

// InterestType selects how per-period interest is computed.
type InterestType string

const (
	InterestTypeFlat     InterestType = "flat"     // on the original principal every period
	InterestTypeReducing InterestType = "reducing" // on the pre-repayment balance of the period
)

// PaymentType tags a repayment plan variant.
type PaymentType string

const (
	PaymentTypeInterest              PaymentType = "interest"
	PaymentTypeInterestWithPrincipal PaymentType = "interestWithPrincipal"
)

// PrincipalRepaymentOption applies to interest-only variants.
type PrincipalRepaymentOption string

const (
	PrincipalRepaymentFixed    PrincipalRepaymentOption = "fixed"    // principal due in full in the final period
	PrincipalRepaymentFlexible PrincipalRepaymentOption = "flexible" // amortized once the withdrawal lock expires
)

// PayoutFrequency applies to interest-with-principal variants.
type PayoutFrequency string

const (
	PayoutFrequencyMonthly    PayoutFrequency = "monthly"
	PayoutFrequencyQuarterly  PayoutFrequency = "quarterly"
	PayoutFrequencyHalfYearly PayoutFrequency = "halfYearly"
	PayoutFrequencyYearly     PayoutFrequency = "yearly"
	PayoutFrequencyOthers     PayoutFrequency = "others"
)

// Months returns the period step for the frequency. "others" defers to
// caller-managed payout dates, so the stepping loop treats it as monthly.
func (f PayoutFrequency) Months() int {
	switch f {
	case PayoutFrequencyQuarterly:
		return 3
	case PayoutFrequencyHalfYearly:
		return 6
	case PayoutFrequencyYearly:
		return 12
	default:
		return 1
	}
}

// Valid reports whether the frequency is one of the known values.
func (f PayoutFrequency) Valid() bool {
	switch f {
	case PayoutFrequencyMonthly, PayoutFrequencyQuarterly, PayoutFrequencyHalfYearly,
		PayoutFrequencyYearly, PayoutFrequencyOthers:
		return true
	}
	return false
}

// RepaymentPlanVariant is one concrete repayment configuration offered by a
// plan. Fields beyond PaymentType are payload for that payment type only.
type RepaymentPlanVariant struct {
	ID                           uuid.UUID                 `json:"id"`
	PlanID                       uuid.UUID                 `json:"planId"`
	PaymentType                  PaymentType               `json:"paymentType"`
	InterestRateMonthly          decimal.Decimal           `json:"interestRateMonthly"`
	PrincipalRepaymentOption     *PrincipalRepaymentOption `json:"principalRepaymentOption,omitempty"`
	WithdrawalAfterPercentage    *decimal.Decimal          `json:"withdrawalAfterPercentage,omitempty"`
	PrincipalSettlementTerm      *int32                    `json:"principalSettlementTerm,omitempty"`
	PayoutFrequency              *PayoutFrequency          `json:"payoutFrequency,omitempty"`
	PrincipalRepaymentPercentage *decimal.Decimal          `json:"principalRepaymentPercentage,omitempty"`
	IsDefault                    bool                      `json:"isDefault"`
	Active                       bool                      `json:"active"`
	CreatedAt                    time.Time                 `json:"createdAt"`
	UpdatedAt                    time.Time                 `json:"updatedAt"`
}

// Validate checks that the variant carries the nested fields its payment
// type requires.
func (v *RepaymentPlanVariant) Validate() error {
	if v.InterestRateMonthly.IsNegative() || v.InterestRateMonthly.GreaterThan(decimal.NewFromInt(100)) {
		return ErrPlanRateInvalid
	}
	switch v.PaymentType {
	case PaymentTypeInterest:
		if v.PrincipalRepaymentOption == nil {
			return ErrVariantIncomplete
		}
		if *v.PrincipalRepaymentOption == PrincipalRepaymentFlexible {
			if v.WithdrawalAfterPercentage == nil || v.PrincipalSettlementTerm == nil || *v.PrincipalSettlementTerm < 1 {
				return ErrVariantIncomplete
			}
			if v.WithdrawalAfterPercentage.IsNegative() || v.WithdrawalAfterPercentage.GreaterThan(decimal.NewFromInt(100)) {
				return ErrVariantIncomplete
			}
		}
	case PaymentTypeInterestWithPrincipal:
		if v.PayoutFrequency == nil || !v.PayoutFrequency.Valid() {
			return ErrVariantIncomplete
		}
		if v.PrincipalRepaymentPercentage == nil ||
			v.PrincipalRepaymentPercentage.IsNegative() ||
			v.PrincipalRepaymentPercentage.GreaterThan(decimal.NewFromInt(100)) {
			return ErrVariantIncomplete
		}
	default:
		return ErrVariantIncomplete
	}
	return nil
}

// Plan is the immutable template an investment contract is created from.
// The top-level interest and principal repayment fields are the legacy
// configuration, used when a plan carries no variants.
type Plan struct {
	ID                           uuid.UUID               `json:"id"`
	Name                         string                  `json:"name"`
	Description                  *string                 `json:"description,omitempty"`
	InterestType                 InterestType            `json:"interestType"`
	InterestRateMonthly          decimal.Decimal         `json:"interestRateMonthly"`
	TenureMonths                 int32                   `json:"tenureMonths"`
	PrincipalRepaymentPercentage decimal.Decimal         `json:"principalRepaymentPercentage"`
	PrincipalRepaymentStartMonth int32                   `json:"principalRepaymentStartMonth"`
	Variants                     []*RepaymentPlanVariant `json:"variants,omitempty"`
	Active                       bool                    `json:"active"`
	CreatedAt                    time.Time               `json:"createdAt"`
	UpdatedAt                    time.Time               `json:"updatedAt"`
}

func (p *Plan) Validate() error {
	if p.Name == "" {
		return ErrPlanNameEmpty
	}
	if len(p.Name) > 200 {
		return ErrPlanNameTooLong
	}
	if p.InterestType != InterestTypeFlat && p.InterestType != InterestTypeReducing {
		return ErrPlanInterestTypeInvalid
	}
	if p.TenureMonths < 1 {
		return ErrPlanTenureInvalid
	}
	hundred := decimal.NewFromInt(100)
	if p.InterestRateMonthly.IsNegative() || p.InterestRateMonthly.GreaterThan(hundred) {
		return ErrPlanRateInvalid
	}
	if p.PrincipalRepaymentPercentage.IsNegative() || p.PrincipalRepaymentPercentage.GreaterThan(hundred) {
		return ErrPlanRepaymentInvalid
	}
	if p.PrincipalRepaymentStartMonth < 1 || p.PrincipalRepaymentStartMonth > p.TenureMonths {
		return ErrPlanStartMonthInvalid
	}
	defaults := 0
	for _, v := range p.Variants {
		if err := v.Validate(); err != nil {
			return err
		}
		if v.IsDefault {
			defaults++
		}
	}
	if defaults > 1 {
		return ErrVariantDefaultDuplicate
	}
	return nil
}

// DefaultVariant returns the plan's active default variant, or nil.
func (p *Plan) DefaultVariant() *RepaymentPlanVariant {
	for _, v := range p.Variants {
		if v.IsDefault && v.Active {
			return v
		}
	}
	return nil
}

// VariantByID returns the active variant with the given ID, or nil.
func (p *Plan) VariantByID(id uuid.UUID) *RepaymentPlanVariant {
	for _, v := range p.Variants {
		if v.ID == id && v.Active {
			return v
		}
	}
	return nil
}

// PlanRepository defines the interface for plan persistence.
type PlanRepository interface {
	Create(ctx context.Context, plan *Plan) (*Plan, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Plan, error)
	GetAll(ctx context.Context, includeInactive bool) ([]*Plan, error)
	AddVariant(ctx context.Context, variant *RepaymentPlanVariant) (*RepaymentPlanVariant, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}
