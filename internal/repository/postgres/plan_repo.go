package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/veloxfin/velox-backend/internal/domain"
)

// PlanRepository implements domain.PlanRepository using PostgreSQL
type PlanRepository struct {
	pool *pgxpool.Pool
}

// NewPlanRepository creates a new PlanRepository
func NewPlanRepository(pool *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{pool: pool}
}

// Create persists a plan and its variants atomically
func (r *PlanRepository) Create(ctx context.Context, plan *domain.Plan) (*domain.Plan, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	plan.CreatedAt = now
	plan.UpdatedAt = now

	planQuery := `
		INSERT INTO plans (
			id, name, description, interest_type, interest_rate_monthly,
			tenure_months, principal_repayment_percentage, principal_repayment_start_month,
			active, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`
	_, err = tx.Exec(ctx, planQuery,
		plan.ID, plan.Name, plan.Description, string(plan.InterestType), plan.InterestRateMonthly,
		plan.TenureMonths, plan.PrincipalRepaymentPercentage, plan.PrincipalRepaymentStartMonth,
		plan.Active, plan.CreatedAt, plan.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert plan: %w", err)
	}

	for _, v := range plan.Variants {
		if v.ID == uuid.Nil {
			v.ID = uuid.New()
		}
		v.PlanID = plan.ID
		v.CreatedAt = now
		v.UpdatedAt = now
		if err := insertVariant(ctx, tx, v); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit plan: %w", err)
	}
	return plan, nil
}

// GetByID retrieves a plan with its variants
func (r *PlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Plan, error) {
	query := `
		SELECT id, name, description, interest_type, interest_rate_monthly,
		       tenure_months, principal_repayment_percentage, principal_repayment_start_month,
		       active, created_at, updated_at
		FROM plans
		WHERE id = $1
	`
	plan, err := scanPlanRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, err
	}

	variants, err := r.loadVariants(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	plan.Variants = variants
	return plan, nil
}

// GetAll retrieves all plans, optionally including deactivated ones
func (r *PlanRepository) GetAll(ctx context.Context, includeInactive bool) ([]*domain.Plan, error) {
	query := `
		SELECT id, name, description, interest_type, interest_rate_monthly,
		       tenure_months, principal_repayment_percentage, principal_repayment_start_month,
		       active, created_at, updated_at
		FROM plans
		WHERE active OR $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer rows.Close()

	var plans []*domain.Plan
	for rows.Next() {
		plan, err := scanPlanRow(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, plan := range plans {
		variants, err := r.loadVariants(ctx, plan.ID)
		if err != nil {
			return nil, err
		}
		plan.Variants = variants
	}
	return plans, nil
}

// AddVariant appends a variant to an existing plan
func (r *PlanRepository) AddVariant(ctx context.Context, variant *domain.RepaymentPlanVariant) (*domain.RepaymentPlanVariant, error) {
	now := time.Now().UTC()
	if variant.ID == uuid.Nil {
		variant.ID = uuid.New()
	}
	variant.CreatedAt = now
	variant.UpdatedAt = now

	if err := insertVariant(ctx, r.pool, variant); err != nil {
		return nil, err
	}
	return variant, nil
}

// Deactivate marks a plan as inactive so no new contracts can use it
func (r *PlanRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE plans SET active = FALSE, updated_at = $2 WHERE id = $1`,
		id, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("deactivate plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlanNotFound
	}
	return nil
}

// execer abstracts pgx.Tx and *pgxpool.Pool for inserts
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertVariant(ctx context.Context, db execer, v *domain.RepaymentPlanVariant) error {
	query := `
		INSERT INTO plan_variants (
			id, plan_id, payment_type, interest_rate_monthly,
			principal_repayment_option, withdrawal_after_percentage, principal_settlement_term,
			payout_frequency, principal_repayment_percentage,
			is_default, active, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`
	var option, frequency *string
	if v.PrincipalRepaymentOption != nil {
		s := string(*v.PrincipalRepaymentOption)
		option = &s
	}
	if v.PayoutFrequency != nil {
		s := string(*v.PayoutFrequency)
		frequency = &s
	}

	_, err := db.Exec(ctx, query,
		v.ID, v.PlanID, string(v.PaymentType), v.InterestRateMonthly,
		option, v.WithdrawalAfterPercentage, v.PrincipalSettlementTerm,
		frequency, v.PrincipalRepaymentPercentage,
		v.IsDefault, v.Active, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert plan variant: %w", err)
	}
	return nil
}

func (r *PlanRepository) loadVariants(ctx context.Context, planID uuid.UUID) ([]*domain.RepaymentPlanVariant, error) {
	query := `
		SELECT id, plan_id, payment_type, interest_rate_monthly,
		       principal_repayment_option, withdrawal_after_percentage, principal_settlement_term,
		       payout_frequency, principal_repayment_percentage,
		       is_default, active, created_at, updated_at
		FROM plan_variants
		WHERE plan_id = $1
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, planID)
	if err != nil {
		return nil, fmt.Errorf("query plan variants: %w", err)
	}
	defer rows.Close()

	var variants []*domain.RepaymentPlanVariant
	for rows.Next() {
		var v domain.RepaymentPlanVariant
		var paymentType string
		var option *string
		var frequency *string
		err := rows.Scan(
			&v.ID, &v.PlanID, &paymentType, &v.InterestRateMonthly,
			&option, &v.WithdrawalAfterPercentage, &v.PrincipalSettlementTerm,
			&frequency, &v.PrincipalRepaymentPercentage,
			&v.IsDefault, &v.Active, &v.CreatedAt, &v.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan plan variant: %w", err)
		}
		v.PaymentType = domain.PaymentType(paymentType)
		if option != nil {
			o := domain.PrincipalRepaymentOption(*option)
			v.PrincipalRepaymentOption = &o
		}
		if frequency != nil {
			f := domain.PayoutFrequency(*frequency)
			v.PayoutFrequency = &f
		}
		variants = append(variants, &v)
	}
	return variants, rows.Err()
}

func scanPlanRow(s scannable) (*domain.Plan, error) {
	var p domain.Plan
	var interestType string
	err := s.Scan(
		&p.ID, &p.Name, &p.Description, &interestType, &p.InterestRateMonthly,
		&p.TenureMonths, &p.PrincipalRepaymentPercentage, &p.PrincipalRepaymentStartMonth,
		&p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan plan: %w", err)
	}
	p.InterestType = domain.InterestType(interestType)
	return &p, nil
}
