package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/veloxfin/velox-backend/internal/domain"
)

// PaymentRepository implements domain.PaymentRepository using PostgreSQL.
// Payment rows are inserted by ContractRepository.ApplyReconciliation; this
// repository only reads them.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// GetByContractID retrieves a contract's payments, most recent first
func (r *PaymentRepository) GetByContractID(ctx context.Context, contractID uuid.UUID) ([]*domain.Payment, error) {
	query := `
		SELECT id, contract_id, period, amount,
		       interest_portion, principal_portion, penalty_portion, bonus_portion,
		       paid_date, reference, created_at
		FROM payments
		WHERE contract_id = $1
		ORDER BY paid_date DESC, created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, contractID)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		var p domain.Payment
		err := rows.Scan(
			&p.ID, &p.ContractID, &p.Period, &p.Amount,
			&p.InterestPortion, &p.PrincipalPortion, &p.PenaltyPortion, &p.BonusPortion,
			&p.PaidDate, &p.Reference, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}

// GetStats returns the payment count and total recorded for a contract
func (r *PaymentRepository) GetStats(ctx context.Context, contractID uuid.UUID) (*domain.PaymentStats, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(amount), 0)
		FROM payments
		WHERE contract_id = $1
	`
	var stats domain.PaymentStats
	err := r.pool.QueryRow(ctx, query, contractID).Scan(&stats.Count, &stats.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("query payment stats: %w", err)
	}
	return &stats, nil
}
