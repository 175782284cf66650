package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/veloxfin/velox-backend/internal/domain"
)

// ContractRepository implements domain.ContractRepository using PostgreSQL
type ContractRepository struct {
	pool *pgxpool.Pool
}

// NewContractRepository creates a new ContractRepository
func NewContractRepository(pool *pgxpool.Pool) *ContractRepository {
	return &ContractRepository{pool: pool}
}

// CreateWithSchedule persists a contract and its full schedule in one
// transaction. The schedule is immutable after this point except for
// payment state.
func (r *ContractRepository) CreateWithSchedule(ctx context.Context, contract *domain.Contract, entries []*domain.ScheduleEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	if contract.ID == uuid.Nil {
		contract.ID = uuid.New()
	}
	contract.CreatedAt = now
	contract.UpdatedAt = now

	contractQuery := `
		INSERT INTO contracts (
			id, plan_id, variant_id, investor_id,
			principal, start_date, tenure_months, status,
			total_expected_returns, total_interest_expected,
			total_paid_amount, total_interest_paid, total_principal_paid, remaining_amount,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`
	_, err = tx.Exec(ctx, contractQuery,
		contract.ID, contract.PlanID, contract.VariantID, contract.InvestorID,
		contract.Principal, contract.StartDate, contract.TenureMonths, string(contract.Status),
		contract.Aggregates.TotalExpectedReturns, contract.Aggregates.TotalInterestExpected,
		contract.Aggregates.TotalPaidAmount, contract.Aggregates.TotalInterestPaid,
		contract.Aggregates.TotalPrincipalPaid, contract.Aggregates.RemainingAmount,
		contract.CreatedAt, contract.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert contract: %w", err)
	}

	entryQuery := `
		INSERT INTO schedule_entries (
			id, contract_id, period, due_date,
			interest_amount, principal_amount, total_amount, remaining_principal_after,
			status, paid_amount, paid_date
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`
	for _, e := range entries {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		e.ContractID = contract.ID
		_, err := tx.Exec(ctx, entryQuery,
			e.ID, e.ContractID, e.Period, e.DueDate,
			e.InterestAmount, e.PrincipalAmount, e.TotalAmount, e.RemainingPrincipalAfter,
			string(e.Status), e.PaidAmount, e.PaidDate,
		)
		if err != nil {
			return fmt.Errorf("insert schedule entry %d: %w", e.Period, err)
		}
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a contract by its ID
func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	query := contractSelect + ` WHERE id = $1`
	contract, err := scanContractRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrContractNotFound
		}
		return nil, err
	}
	return contract, nil
}

// GetByInvestor retrieves all contracts held by an investor
func (r *ContractRepository) GetByInvestor(ctx context.Context, investorID uuid.UUID) ([]*domain.Contract, error) {
	query := contractSelect + ` WHERE investor_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, investorID)
	if err != nil {
		return nil, fmt.Errorf("query contracts: %w", err)
	}
	defer rows.Close()

	var contracts []*domain.Contract
	for rows.Next() {
		contract, err := scanContractRow(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, contract)
	}
	return contracts, rows.Err()
}

// UpdateStatus sets a contract's status (administrative transitions)
func (r *ContractRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ContractStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE contracts SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update contract status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrContractNotFound
	}
	return nil
}

// ApplyReconciliation persists the result of a payment reconciliation: the
// contract aggregates and status, every touched schedule entry, and the
// payment record, all in one transaction.
func (r *ContractRepository) ApplyReconciliation(ctx context.Context, contract *domain.Contract, entries []*domain.ScheduleEntry, payment *domain.Payment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	contract.UpdatedAt = now

	contractQuery := `
		UPDATE contracts SET
			status = $2,
			total_paid_amount = $3,
			total_interest_paid = $4,
			total_principal_paid = $5,
			remaining_amount = $6,
			updated_at = $7
		WHERE id = $1
	`
	tag, err := tx.Exec(ctx, contractQuery,
		contract.ID, string(contract.Status),
		contract.Aggregates.TotalPaidAmount, contract.Aggregates.TotalInterestPaid,
		contract.Aggregates.TotalPrincipalPaid, contract.Aggregates.RemainingAmount,
		contract.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update contract aggregates: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrContractNotFound
	}

	entryQuery := `
		UPDATE schedule_entries SET
			status = $3,
			paid_amount = $4,
			paid_date = $5
		WHERE contract_id = $1 AND period = $2
	`
	for _, e := range entries {
		_, err := tx.Exec(ctx, entryQuery,
			contract.ID, e.Period, string(e.Status), e.PaidAmount, e.PaidDate,
		)
		if err != nil {
			return fmt.Errorf("update schedule entry %d: %w", e.Period, err)
		}
	}

	if payment != nil {
		if payment.ID == uuid.Nil {
			payment.ID = uuid.New()
		}
		payment.ContractID = contract.ID
		payment.CreatedAt = now

		paymentQuery := `
			INSERT INTO payments (
				id, contract_id, period, amount,
				interest_portion, principal_portion, penalty_portion, bonus_portion,
				paid_date, reference, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		`
		_, err := tx.Exec(ctx, paymentQuery,
			payment.ID, payment.ContractID, payment.Period, payment.Amount,
			payment.InterestPortion, payment.PrincipalPortion, payment.PenaltyPortion, payment.BonusPortion,
			payment.PaidDate, payment.Reference, payment.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
	}

	return tx.Commit(ctx)
}

const contractSelect = `
	SELECT id, plan_id, variant_id, investor_id,
	       principal, start_date, tenure_months, status,
	       total_expected_returns, total_interest_expected,
	       total_paid_amount, total_interest_paid, total_principal_paid, remaining_amount,
	       created_at, updated_at
	FROM contracts
`

func scanContractRow(s scannable) (*domain.Contract, error) {
	var c domain.Contract
	var status string
	err := s.Scan(
		&c.ID, &c.PlanID, &c.VariantID, &c.InvestorID,
		&c.Principal, &c.StartDate, &c.TenureMonths, &status,
		&c.Aggregates.TotalExpectedReturns, &c.Aggregates.TotalInterestExpected,
		&c.Aggregates.TotalPaidAmount, &c.Aggregates.TotalInterestPaid,
		&c.Aggregates.TotalPrincipalPaid, &c.Aggregates.RemainingAmount,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan contract: %w", err)
	}
	c.Status = domain.ContractStatus(status)
	return &c, nil
}
