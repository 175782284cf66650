package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/veloxfin/velox-backend/internal/domain"
)

// PlanService handles investment plan business logic
type PlanService struct {
	planRepo domain.PlanRepository
}

// NewPlanService creates a new PlanService
func NewPlanService(planRepo domain.PlanRepository) *PlanService {
	return &PlanService{planRepo: planRepo}
}

// VariantInput contains input for one repayment plan variant
type VariantInput struct {
	PaymentType                  domain.PaymentType
	InterestRateMonthly          decimal.Decimal
	PrincipalRepaymentOption     *domain.PrincipalRepaymentOption
	WithdrawalAfterPercentage    *decimal.Decimal
	PrincipalSettlementTerm      *int32
	PayoutFrequency              *domain.PayoutFrequency
	PrincipalRepaymentPercentage *decimal.Decimal
	IsDefault                    bool
}

// CreatePlanInput contains input for creating a plan
type CreatePlanInput struct {
	Name                         string
	Description                  *string
	InterestType                 domain.InterestType
	InterestRateMonthly          decimal.Decimal
	TenureMonths                 int32
	PrincipalRepaymentPercentage decimal.Decimal
	PrincipalRepaymentStartMonth int32
	Variants                     []VariantInput
}

// CreatePlan validates and persists a new plan with its variants
func (s *PlanService) CreatePlan(ctx context.Context, input CreatePlanInput) (*domain.Plan, error) {
	plan := &domain.Plan{
		Name:                         strings.TrimSpace(input.Name),
		Description:                  input.Description,
		InterestType:                 input.InterestType,
		InterestRateMonthly:          input.InterestRateMonthly,
		TenureMonths:                 input.TenureMonths,
		PrincipalRepaymentPercentage: input.PrincipalRepaymentPercentage,
		PrincipalRepaymentStartMonth: input.PrincipalRepaymentStartMonth,
		Active:                       true,
	}

	for _, v := range input.Variants {
		plan.Variants = append(plan.Variants, &domain.RepaymentPlanVariant{
			PaymentType:                  v.PaymentType,
			InterestRateMonthly:          v.InterestRateMonthly,
			PrincipalRepaymentOption:     v.PrincipalRepaymentOption,
			WithdrawalAfterPercentage:    v.WithdrawalAfterPercentage,
			PrincipalSettlementTerm:      v.PrincipalSettlementTerm,
			PayoutFrequency:              v.PayoutFrequency,
			PrincipalRepaymentPercentage: v.PrincipalRepaymentPercentage,
			IsDefault:                    v.IsDefault,
			Active:                       true,
		})
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}

	created, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		log.Error().Err(err).Str("name", plan.Name).Msg("Failed to create plan")
		return nil, err
	}

	log.Info().
		Str("plan_id", created.ID.String()).
		Str("name", created.Name).
		Int("variants", len(created.Variants)).
		Msg("Plan created")

	return created, nil
}

// GetPlan retrieves a plan by ID
func (s *PlanService) GetPlan(ctx context.Context, id uuid.UUID) (*domain.Plan, error) {
	return s.planRepo.GetByID(ctx, id)
}

// GetPlans retrieves all plans, optionally including deactivated ones
func (s *PlanService) GetPlans(ctx context.Context, includeInactive bool) ([]*domain.Plan, error) {
	return s.planRepo.GetAll(ctx, includeInactive)
}

// AddVariant validates and appends a variant to an existing plan
func (s *PlanService) AddVariant(ctx context.Context, planID uuid.UUID, input VariantInput) (*domain.RepaymentPlanVariant, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	variant := &domain.RepaymentPlanVariant{
		PlanID:                       plan.ID,
		PaymentType:                  input.PaymentType,
		InterestRateMonthly:          input.InterestRateMonthly,
		PrincipalRepaymentOption:     input.PrincipalRepaymentOption,
		WithdrawalAfterPercentage:    input.WithdrawalAfterPercentage,
		PrincipalSettlementTerm:      input.PrincipalSettlementTerm,
		PayoutFrequency:              input.PayoutFrequency,
		PrincipalRepaymentPercentage: input.PrincipalRepaymentPercentage,
		IsDefault:                    input.IsDefault,
		Active:                       true,
	}

	if err := variant.Validate(); err != nil {
		return nil, err
	}
	if variant.IsDefault && plan.DefaultVariant() != nil {
		return nil, domain.ErrVariantDefaultDuplicate
	}

	created, err := s.planRepo.AddVariant(ctx, variant)
	if err != nil {
		log.Error().Err(err).Str("plan_id", planID.String()).Msg("Failed to add plan variant")
		return nil, err
	}

	log.Info().
		Str("plan_id", planID.String()).
		Str("variant_id", created.ID.String()).
		Str("payment_type", string(created.PaymentType)).
		Msg("Plan variant added")

	return created, nil
}

// DeactivatePlan marks a plan inactive. Existing contracts keep their frozen
// schedules; only new contract creation is blocked.
func (s *PlanService) DeactivatePlan(ctx context.Context, id uuid.UUID) error {
	if err := s.planRepo.Deactivate(ctx, id); err != nil {
		return err
	}
	log.Info().Str("plan_id", id.String()).Msg("Plan deactivated")
	return nil
}
