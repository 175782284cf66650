package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/veloxfin/velox-backend/internal/domain"
	"github.com/veloxfin/velox-backend/internal/engine"
	"github.com/veloxfin/velox-backend/internal/metrics"
)

// QuoteService computes expected returns for a plan configuration before any
// contract exists.
type QuoteService struct {
	planRepo domain.PlanRepository
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(planRepo domain.PlanRepository) *QuoteService {
	return &QuoteService{planRepo: planRepo}
}

// QuoteInput contains input for a returns quote
type QuoteInput struct {
	PlanID          uuid.UUID
	VariantID       *uuid.UUID
	Principal       decimal.Decimal
	StartDate       *time.Time // required when IncludeSchedule is set
	IncludeSchedule bool
}

// QuoteResult is a returns quote, optionally with a preview schedule
type QuoteResult struct {
	PlanID        uuid.UUID               `json:"planId"`
	VariantID     *uuid.UUID              `json:"variantId,omitempty"`
	Principal     decimal.Decimal         `json:"principal"`
	TenureMonths  int32                   `json:"tenureMonths"`
	InterestType  domain.InterestType     `json:"interestType"`
	TotalInterest decimal.Decimal         `json:"totalInterest"`
	TotalReturns  decimal.Decimal         `json:"totalReturns"`
	EffectiveRate decimal.Decimal         `json:"effectiveRate"`
	Schedule      []*domain.ScheduleEntry `json:"schedule,omitempty"`
}

// Quote resolves the plan configuration and computes expected returns. The
// quote runs the same loop that schedule generation runs, so the figures
// shown here match the contract created afterward exactly.
func (s *QuoteService) Quote(ctx context.Context, input QuoteInput) (*QuoteResult, error) {
	plan, err := s.planRepo.GetByID(ctx, input.PlanID)
	if err != nil {
		return nil, err
	}

	var sel *engine.Selection
	if input.VariantID != nil {
		sel = &engine.Selection{VariantID: input.VariantID}
	}

	cfg, err := engine.ResolveConfig(plan, input.Principal, sel)
	if err != nil {
		return nil, err
	}

	returns, err := engine.CalculateReturns(cfg)
	if err != nil {
		return nil, err
	}

	result := &QuoteResult{
		PlanID:        plan.ID,
		VariantID:     input.VariantID,
		Principal:     input.Principal,
		TenureMonths:  cfg.TenureMonths,
		InterestType:  cfg.InterestType,
		TotalInterest: returns.TotalInterest,
		TotalReturns:  returns.TotalReturns,
		EffectiveRate: returns.EffectiveRate,
	}

	if input.IncludeSchedule {
		start := time.Now().UTC()
		if input.StartDate != nil {
			start = *input.StartDate
		}
		entries, err := engine.GenerateSchedule(cfg, start)
		if err != nil {
			return nil, err
		}
		result.Schedule = entries
	}

	metrics.QuotesCalculated.Inc()
	return result, nil
}
