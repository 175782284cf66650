package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/veloxfin/velox-backend/internal/domain"
	"github.com/veloxfin/velox-backend/internal/engine"
	"github.com/veloxfin/velox-backend/internal/metrics"
	"github.com/veloxfin/velox-backend/internal/websocket"
)

// PaymentService handles payment recording and reconciliation
type PaymentService struct {
	contractRepo domain.ContractRepository
	scheduleRepo domain.ScheduleRepository
	paymentRepo  domain.PaymentRepository
	publisher    websocket.EventPublisher

	// locks serializes reconciliation per contract so concurrent payments
	// against the same schedule cannot interleave.
	locks   map[uuid.UUID]*sync.Mutex
	locksMu sync.Mutex
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	contractRepo domain.ContractRepository,
	scheduleRepo domain.ScheduleRepository,
	paymentRepo domain.PaymentRepository,
	publisher websocket.EventPublisher,
) *PaymentService {
	return &PaymentService{
		contractRepo: contractRepo,
		scheduleRepo: scheduleRepo,
		paymentRepo:  paymentRepo,
		publisher:    publisher,
		locks:        make(map[uuid.UUID]*sync.Mutex),
	}
}

// RecordPayment applies a payment against one schedule period of a contract
// and persists the reconciled state atomically.
func (s *PaymentService) RecordPayment(ctx context.Context, contractID uuid.UUID, app *domain.PaymentApplication) (*domain.Payment, error) {
	lock := s.contractLock(contractID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()

	contract, err := s.contractRepo.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract.Status == domain.ContractStatusClosed || contract.Status == domain.ContractStatusCompleted {
		return nil, domain.ErrContractNotActive
	}

	schedule, err := s.scheduleRepo.GetByContractID(ctx, contractID)
	if err != nil {
		return nil, err
	}

	res, err := engine.ApplyPayment(schedule, contract.Aggregates, contract.Status, app, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	previousStatus := contract.Status
	contract.Aggregates = res.Aggregates
	contract.Status = res.Status

	payment := &domain.Payment{
		ContractID:       contractID,
		Period:           app.TargetPeriod,
		Amount:           app.Amount,
		InterestPortion:  res.InterestPortion,
		PrincipalPortion: res.PrincipalPortion,
		PaidDate:         app.PaidDate,
		Reference:        app.Reference,
	}
	if app.Breakdown != nil {
		payment.PenaltyPortion = app.Breakdown.Penalty
		payment.BonusPortion = app.Breakdown.Bonus
	} else {
		payment.PenaltyPortion = decimal.Zero
		payment.BonusPortion = decimal.Zero
	}

	// Write back the target entry plus everything the sweep touched.
	touched := append([]*domain.ScheduleEntry{res.Entry}, res.SweptOverdue...)
	if err := s.contractRepo.ApplyReconciliation(ctx, contract, touched, payment); err != nil {
		log.Error().Err(err).Str("contract_id", contractID.String()).Msg("Failed to persist reconciliation")
		return nil, err
	}

	metrics.PaymentsRecorded.WithLabelValues(string(res.Entry.Status)).Inc()
	metrics.ReconcileDuration.Observe(time.Since(start).Seconds())
	if len(res.SweptOverdue) > 0 {
		metrics.EntriesSweptOverdue.Add(float64(len(res.SweptOverdue)))
	}

	s.publisher.Publish(contract.InvestorID, websocket.PaymentRecorded(payment))
	if previousStatus == domain.ContractStatusActive && contract.Status == domain.ContractStatusCompleted {
		metrics.ContractsCompleted.Inc()
		s.publisher.Publish(contract.InvestorID, websocket.ContractCompleted(contract))
	}

	log.Info().
		Str("contract_id", contractID.String()).
		Int32("period", app.TargetPeriod).
		Str("amount", app.Amount.String()).
		Str("interest_portion", res.InterestPortion.String()).
		Str("principal_portion", res.PrincipalPortion.String()).
		Str("entry_status", string(res.Entry.Status)).
		Msg("Payment recorded")

	return payment, nil
}

// GetPayments retrieves a contract's recorded payments
func (s *PaymentService) GetPayments(ctx context.Context, contractID uuid.UUID) ([]*domain.Payment, error) {
	if _, err := s.contractRepo.GetByID(ctx, contractID); err != nil {
		return nil, err
	}
	return s.paymentRepo.GetByContractID(ctx, contractID)
}

// GetStats summarizes a contract's recorded payments
func (s *PaymentService) GetStats(ctx context.Context, contractID uuid.UUID) (*domain.PaymentStats, error) {
	if _, err := s.contractRepo.GetByID(ctx, contractID); err != nil {
		return nil, err
	}
	return s.paymentRepo.GetStats(ctx, contractID)
}

func (s *PaymentService) contractLock(contractID uuid.UUID) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	lock, ok := s.locks[contractID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[contractID] = lock
	}
	return lock
}
