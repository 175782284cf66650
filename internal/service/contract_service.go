package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/veloxfin/velox-backend/internal/domain"
	"github.com/veloxfin/velox-backend/internal/engine"
	"github.com/veloxfin/velox-backend/internal/metrics"
	"github.com/veloxfin/velox-backend/internal/websocket"
)

// ContractService handles contract lifecycle business logic
type ContractService struct {
	contractRepo domain.ContractRepository
	scheduleRepo domain.ScheduleRepository
	planRepo     domain.PlanRepository
	publisher    websocket.EventPublisher
}

// NewContractService creates a new ContractService
func NewContractService(
	contractRepo domain.ContractRepository,
	scheduleRepo domain.ScheduleRepository,
	planRepo domain.PlanRepository,
	publisher websocket.EventPublisher,
) *ContractService {
	return &ContractService{
		contractRepo: contractRepo,
		scheduleRepo: scheduleRepo,
		planRepo:     planRepo,
		publisher:    publisher,
	}
}

// CreateContractInput contains input for creating a contract
type CreateContractInput struct {
	PlanID     uuid.UUID
	VariantID  *uuid.UUID
	InvestorID uuid.UUID
	Principal  decimal.Decimal
	StartDate  time.Time
}

// ContractDetail is a contract with its full schedule
type ContractDetail struct {
	Contract *domain.Contract        `json:"contract"`
	Schedule []*domain.ScheduleEntry `json:"schedule"`
}

// CreateContract resolves the plan configuration, generates the full
// repayment schedule, and persists both atomically. The schedule is frozen
// at this point: later plan changes never touch existing contracts.
func (s *ContractService) CreateContract(ctx context.Context, input CreateContractInput) (*ContractDetail, error) {
	contract := &domain.Contract{
		PlanID:     input.PlanID,
		VariantID:  input.VariantID,
		InvestorID: input.InvestorID,
		Principal:  input.Principal,
		StartDate:  input.StartDate,
		Status:     domain.ContractStatusActive,
	}
	if err := contract.Validate(); err != nil {
		return nil, err
	}

	plan, err := s.planRepo.GetByID(ctx, input.PlanID)
	if err != nil {
		return nil, err
	}
	if !plan.Active {
		return nil, fmt.Errorf("%w: plan is deactivated", domain.ErrValidation)
	}

	var sel *engine.Selection
	if input.VariantID != nil {
		sel = &engine.Selection{VariantID: input.VariantID}
	}
	cfg, err := engine.ResolveConfig(plan, input.Principal, sel)
	if err != nil {
		return nil, err
	}

	entries, err := engine.GenerateSchedule(cfg, input.StartDate)
	if err != nil {
		return nil, err
	}
	returns, err := engine.CalculateReturns(cfg)
	if err != nil {
		return nil, err
	}

	contract.TenureMonths = cfg.TenureMonths
	contract.Aggregates = domain.ContractAggregates{
		TotalExpectedReturns:  returns.TotalReturns,
		TotalInterestExpected: returns.TotalInterest,
		TotalPaidAmount:       decimal.Zero,
		TotalInterestPaid:     decimal.Zero,
		TotalPrincipalPaid:    decimal.Zero,
		RemainingAmount:       returns.TotalReturns,
	}

	if err := s.contractRepo.CreateWithSchedule(ctx, contract, entries); err != nil {
		log.Error().Err(err).Str("plan_id", input.PlanID.String()).Msg("Failed to create contract")
		return nil, err
	}

	metrics.ContractsCreated.WithLabelValues(string(cfg.InterestType)).Inc()
	s.publisher.Publish(contract.InvestorID, websocket.ContractCreated(contract))

	log.Info().
		Str("contract_id", contract.ID.String()).
		Str("plan_id", input.PlanID.String()).
		Str("investor_id", input.InvestorID.String()).
		Str("principal", input.Principal.String()).
		Int32("tenure_months", cfg.TenureMonths).
		Msg("Contract created")

	return &ContractDetail{Contract: contract, Schedule: entries}, nil
}

// GetContract retrieves a contract with its schedule. Reading is
// time-dependent: pending entries past their due date are swept to overdue
// and the sweep is persisted before the contract is returned.
func (s *ContractService) GetContract(ctx context.Context, id uuid.UUID) (*ContractDetail, error) {
	contract, err := s.contractRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	schedule, err := s.scheduleRepo.GetByContractID(ctx, id)
	if err != nil {
		return nil, err
	}

	if swept := engine.SweepOverdue(schedule, time.Now().UTC()); len(swept) > 0 {
		if err := s.scheduleRepo.UpdateStatuses(ctx, swept); err != nil {
			return nil, err
		}
		metrics.EntriesSweptOverdue.Add(float64(len(swept)))
		s.publisher.Publish(contract.InvestorID, websocket.ScheduleOverdue(overduePayload(contract.ID, swept)))

		log.Info().
			Str("contract_id", id.String()).
			Int("entries", len(swept)).
			Msg("Swept overdue schedule entries")
	}

	return &ContractDetail{Contract: contract, Schedule: schedule}, nil
}

// GetContractsByInvestor retrieves all contracts held by an investor
func (s *ContractService) GetContractsByInvestor(ctx context.Context, investorID uuid.UUID) ([]*domain.Contract, error) {
	return s.contractRepo.GetByInvestor(ctx, investorID)
}

// CloseContract administratively closes an active contract (early exit)
func (s *ContractService) CloseContract(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	return s.transition(ctx, id, domain.ContractStatusClosed)
}

// DefaultContract administratively marks an active contract as defaulted
func (s *ContractService) DefaultContract(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	return s.transition(ctx, id, domain.ContractStatusDefaulted)
}

// transition applies an administrative status change. Only active contracts
// can be closed or defaulted.
func (s *ContractService) transition(ctx context.Context, id uuid.UUID, status domain.ContractStatus) (*domain.Contract, error) {
	contract, err := s.contractRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if contract.Status != domain.ContractStatusActive {
		return nil, domain.ErrContractStatusInvalid
	}

	if err := s.contractRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	contract.Status = status

	switch status {
	case domain.ContractStatusClosed:
		s.publisher.Publish(contract.InvestorID, websocket.ContractClosed(contract))
	case domain.ContractStatusDefaulted:
		s.publisher.Publish(contract.InvestorID, websocket.ContractDefaulted(contract))
	}

	log.Info().
		Str("contract_id", id.String()).
		Str("status", string(status)).
		Msg("Contract status changed")

	return contract, nil
}

func overduePayload(contractID uuid.UUID, swept []*domain.ScheduleEntry) map[string]interface{} {
	periods := make([]int32, len(swept))
	for i, e := range swept {
		periods[i] = e.Period
	}
	return map[string]interface{}{
		"contractId": contractID,
		"periods":    periods,
	}
}
