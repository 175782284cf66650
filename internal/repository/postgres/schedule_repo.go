package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/veloxfin/velox-backend/internal/domain"
)

// ScheduleRepository implements domain.ScheduleRepository using PostgreSQL
type ScheduleRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleRepository creates a new ScheduleRepository
func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

// GetByContractID retrieves a contract's schedule ordered by period
func (r *ScheduleRepository) GetByContractID(ctx context.Context, contractID uuid.UUID) ([]*domain.ScheduleEntry, error) {
	query := `
		SELECT id, contract_id, period, due_date,
		       interest_amount, principal_amount, total_amount, remaining_principal_after,
		       status, paid_amount, paid_date
		FROM schedule_entries
		WHERE contract_id = $1
		ORDER BY period
	`
	rows, err := r.pool.Query(ctx, query, contractID)
	if err != nil {
		return nil, fmt.Errorf("query schedule: %w", err)
	}
	defer rows.Close()

	var entries []*domain.ScheduleEntry
	for rows.Next() {
		var e domain.ScheduleEntry
		var status string
		err := rows.Scan(
			&e.ID, &e.ContractID, &e.Period, &e.DueDate,
			&e.InterestAmount, &e.PrincipalAmount, &e.TotalAmount, &e.RemainingPrincipalAfter,
			&status, &e.PaidAmount, &e.PaidDate,
		)
		if err != nil {
			return nil, fmt.Errorf("scan schedule entry: %w", err)
		}
		e.Status = domain.EntryStatus(status)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// UpdateStatuses writes back payment state for the given entries. Used by
// the overdue sweep, which touches status without an accompanying payment.
func (r *ScheduleRepository) UpdateStatuses(ctx context.Context, entries []*domain.ScheduleEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE schedule_entries SET
			status = $2,
			paid_amount = $3,
			paid_date = $4
		WHERE id = $1
	`
	for _, e := range entries {
		_, err := tx.Exec(ctx, query, e.ID, string(e.Status), e.PaidAmount, e.PaidDate)
		if err != nil {
			return fmt.Errorf("update schedule entry %d: %w", e.Period, err)
		}
	}

	return tx.Commit(ctx)
}
