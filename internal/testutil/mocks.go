package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/veloxfin/velox-backend/internal/domain"
	"github.com/veloxfin/velox-backend/internal/websocket"
)

// MockPlanRepository is an in-memory implementation of domain.PlanRepository
type MockPlanRepository struct {
	Plans    map[uuid.UUID]*domain.Plan
	CreateFn func(ctx context.Context, plan *domain.Plan) (*domain.Plan, error)
}

// NewMockPlanRepository creates a new MockPlanRepository
func NewMockPlanRepository() *MockPlanRepository {
	return &MockPlanRepository{
		Plans: make(map[uuid.UUID]*domain.Plan),
	}
}

// Create stores a plan
func (m *MockPlanRepository) Create(ctx context.Context, plan *domain.Plan) (*domain.Plan, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, plan)
	}
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	for _, v := range plan.Variants {
		if v.ID == uuid.Nil {
			v.ID = uuid.New()
		}
		v.PlanID = plan.ID
	}
	m.Plans[plan.ID] = plan
	return plan, nil
}

// GetByID retrieves a plan by ID
func (m *MockPlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Plan, error) {
	if plan, ok := m.Plans[id]; ok {
		return plan, nil
	}
	return nil, domain.ErrPlanNotFound
}

// GetAll retrieves all plans
func (m *MockPlanRepository) GetAll(ctx context.Context, includeInactive bool) ([]*domain.Plan, error) {
	var plans []*domain.Plan
	for _, p := range m.Plans {
		if p.Active || includeInactive {
			plans = append(plans, p)
		}
	}
	return plans, nil
}

// AddVariant appends a variant to a stored plan
func (m *MockPlanRepository) AddVariant(ctx context.Context, variant *domain.RepaymentPlanVariant) (*domain.RepaymentPlanVariant, error) {
	plan, ok := m.Plans[variant.PlanID]
	if !ok {
		return nil, domain.ErrPlanNotFound
	}
	if variant.ID == uuid.Nil {
		variant.ID = uuid.New()
	}
	plan.Variants = append(plan.Variants, variant)
	return variant, nil
}

// Deactivate marks a plan as inactive
func (m *MockPlanRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	plan, ok := m.Plans[id]
	if !ok {
		return domain.ErrPlanNotFound
	}
	plan.Active = false
	return nil
}

// AddPlan adds a plan to the mock repository (helper for tests)
func (m *MockPlanRepository) AddPlan(plan *domain.Plan) {
	m.Plans[plan.ID] = plan
}

// MockContractRepository is an in-memory implementation of domain.ContractRepository
type MockContractRepository struct {
	Contracts map[uuid.UUID]*domain.Contract
	Schedules map[uuid.UUID][]*domain.ScheduleEntry
	Payments  map[uuid.UUID][]*domain.Payment

	CreateErr    error
	ReconcileErr error
}

// NewMockContractRepository creates a new MockContractRepository
func NewMockContractRepository() *MockContractRepository {
	return &MockContractRepository{
		Contracts: make(map[uuid.UUID]*domain.Contract),
		Schedules: make(map[uuid.UUID][]*domain.ScheduleEntry),
		Payments:  make(map[uuid.UUID][]*domain.Payment),
	}
}

// CreateWithSchedule stores a contract and its schedule
func (m *MockContractRepository) CreateWithSchedule(ctx context.Context, contract *domain.Contract, entries []*domain.ScheduleEntry) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if contract.ID == uuid.Nil {
		contract.ID = uuid.New()
	}
	for _, e := range entries {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		e.ContractID = contract.ID
	}
	m.Contracts[contract.ID] = contract
	m.Schedules[contract.ID] = entries
	return nil
}

// GetByID retrieves a contract by ID
func (m *MockContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	if contract, ok := m.Contracts[id]; ok {
		return contract, nil
	}
	return nil, domain.ErrContractNotFound
}

// GetByInvestor retrieves all contracts for an investor
func (m *MockContractRepository) GetByInvestor(ctx context.Context, investorID uuid.UUID) ([]*domain.Contract, error) {
	var contracts []*domain.Contract
	for _, c := range m.Contracts {
		if c.InvestorID == investorID {
			contracts = append(contracts, c)
		}
	}
	return contracts, nil
}

// UpdateStatus sets a contract's status
func (m *MockContractRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ContractStatus) error {
	contract, ok := m.Contracts[id]
	if !ok {
		return domain.ErrContractNotFound
	}
	contract.Status = status
	return nil
}

// ApplyReconciliation stores the reconciled contract, entries and payment
func (m *MockContractRepository) ApplyReconciliation(ctx context.Context, contract *domain.Contract, entries []*domain.ScheduleEntry, payment *domain.Payment) error {
	if m.ReconcileErr != nil {
		return m.ReconcileErr
	}
	if _, ok := m.Contracts[contract.ID]; !ok {
		return domain.ErrContractNotFound
	}
	m.Contracts[contract.ID] = contract
	if payment != nil {
		if payment.ID == uuid.Nil {
			payment.ID = uuid.New()
		}
		payment.ContractID = contract.ID
		m.Payments[contract.ID] = append(m.Payments[contract.ID], payment)
	}
	return nil
}

// AddContract adds a contract and its schedule (helper for tests)
func (m *MockContractRepository) AddContract(contract *domain.Contract, entries []*domain.ScheduleEntry) {
	m.Contracts[contract.ID] = contract
	m.Schedules[contract.ID] = entries
}

// MockScheduleRepository is an in-memory implementation of domain.ScheduleRepository
// backed by the same maps as MockContractRepository.
type MockScheduleRepository struct {
	Contracts *MockContractRepository
	Updated   [][]*domain.ScheduleEntry
}

// NewMockScheduleRepository creates a schedule repository over a contract mock
func NewMockScheduleRepository(contracts *MockContractRepository) *MockScheduleRepository {
	return &MockScheduleRepository{Contracts: contracts}
}

// GetByContractID retrieves a contract's schedule
func (m *MockScheduleRepository) GetByContractID(ctx context.Context, contractID uuid.UUID) ([]*domain.ScheduleEntry, error) {
	return m.Contracts.Schedules[contractID], nil
}

// UpdateStatuses records the entries written back
func (m *MockScheduleRepository) UpdateStatuses(ctx context.Context, entries []*domain.ScheduleEntry) error {
	m.Updated = append(m.Updated, entries)
	return nil
}

// MockPaymentRepository is an in-memory implementation of domain.PaymentRepository
type MockPaymentRepository struct {
	Contracts *MockContractRepository
}

// NewMockPaymentRepository creates a payment repository over a contract mock
func NewMockPaymentRepository(contracts *MockContractRepository) *MockPaymentRepository {
	return &MockPaymentRepository{Contracts: contracts}
}

// GetByContractID retrieves a contract's payments
func (m *MockPaymentRepository) GetByContractID(ctx context.Context, contractID uuid.UUID) ([]*domain.Payment, error) {
	return m.Contracts.Payments[contractID], nil
}

// GetStats summarizes a contract's payments
func (m *MockPaymentRepository) GetStats(ctx context.Context, contractID uuid.UUID) (*domain.PaymentStats, error) {
	stats := &domain.PaymentStats{}
	for _, p := range m.Contracts.Payments[contractID] {
		stats.Count++
		stats.TotalAmount = stats.TotalAmount.Add(p.Amount)
	}
	return stats, nil
}

// MockAPITokenRepository is an in-memory implementation of domain.APITokenRepository
type MockAPITokenRepository struct {
	Tokens map[uuid.UUID]*domain.APIToken
	ByHash map[string]*domain.APIToken
}

// NewMockAPITokenRepository creates a new MockAPITokenRepository
func NewMockAPITokenRepository() *MockAPITokenRepository {
	return &MockAPITokenRepository{
		Tokens: make(map[uuid.UUID]*domain.APIToken),
		ByHash: make(map[string]*domain.APIToken),
	}
}

// Create stores a token
func (m *MockAPITokenRepository) Create(ctx context.Context, token *domain.APIToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	m.Tokens[token.ID] = token
	m.ByHash[token.TokenHash] = token
	return nil
}

// GetAll retrieves all non-revoked tokens
func (m *MockAPITokenRepository) GetAll(ctx context.Context) ([]*domain.APIToken, error) {
	var tokens []*domain.APIToken
	for _, t := range m.Tokens {
		if t.RevokedAt == nil {
			tokens = append(tokens, t)
		}
	}
	return tokens, nil
}

// GetByHash retrieves a non-revoked token by its hash
func (m *MockAPITokenRepository) GetByHash(ctx context.Context, hash string) (*domain.APIToken, error) {
	if token, ok := m.ByHash[hash]; ok && token.RevokedAt == nil {
		return token, nil
	}
	return nil, domain.ErrAPITokenNotFound
}

// Revoke marks a token as revoked
func (m *MockAPITokenRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	token, ok := m.Tokens[id]
	if !ok || token.RevokedAt != nil {
		return domain.ErrAPITokenNotFound
	}
	now := tokenNow()
	token.RevokedAt = &now
	return nil
}

// UpdateLastUsed updates the last-used timestamp
func (m *MockAPITokenRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID) error {
	token, ok := m.Tokens[id]
	if !ok {
		return domain.ErrAPITokenNotFound
	}
	now := tokenNow()
	token.LastUsedAt = &now
	return nil
}

func tokenNow() time.Time {
	return time.Now().UTC()
}

// MockEventPublisher captures published WebSocket events for assertions
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// PublishedEvent pairs an event with the investor it was published to
type PublishedEvent struct {
	InvestorID uuid.UUID
	Event      websocket.Event
}

// Publish records the event
func (m *MockEventPublisher) Publish(investorID uuid.UUID, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{InvestorID: investorID, Event: event})
}

// EventTypes returns the published event type strings in order
func (m *MockEventPublisher) EventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.Event.Type
	}
	return types
}
