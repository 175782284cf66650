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

// APITokenRepository implements domain.APITokenRepository using PostgreSQL
type APITokenRepository struct {
	pool *pgxpool.Pool
}

// NewAPITokenRepository creates a new APITokenRepository
func NewAPITokenRepository(pool *pgxpool.Pool) *APITokenRepository {
	return &APITokenRepository{pool: pool}
}

// Create creates a new API token
func (r *APITokenRepository) Create(ctx context.Context, token *domain.APIToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	token.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO api_tokens (id, description, token_hash, token_prefix, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		token.ID, token.Description, token.TokenHash, token.TokenPrefix, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert api token: %w", err)
	}
	return nil
}

// GetAll retrieves all non-revoked API tokens
func (r *APITokenRepository) GetAll(ctx context.Context) ([]*domain.APIToken, error) {
	query := `
		SELECT id, description, token_hash, token_prefix, last_used_at, created_at, revoked_at
		FROM api_tokens
		WHERE revoked_at IS NULL
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query api tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*domain.APIToken
	for rows.Next() {
		token, err := scanAPITokenRow(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

// GetByHash retrieves an active API token by its hash (for authentication)
func (r *APITokenRepository) GetByHash(ctx context.Context, hash string) (*domain.APIToken, error) {
	query := `
		SELECT id, description, token_hash, token_prefix, last_used_at, created_at, revoked_at
		FROM api_tokens
		WHERE token_hash = $1 AND revoked_at IS NULL
	`
	token, err := scanAPITokenRow(r.pool.QueryRow(ctx, query, hash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAPITokenNotFound
		}
		return nil, err
	}
	return token, nil
}

// Revoke marks an API token as revoked
func (r *APITokenRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE api_tokens SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`,
		id, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("revoke api token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAPITokenNotFound
	}
	return nil
}

// UpdateLastUsed updates the last_used_at timestamp for a token
func (r *APITokenRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE api_tokens SET last_used_at = $2 WHERE id = $1`,
		id, time.Now().UTC(),
	)
	return err
}

func scanAPITokenRow(s scannable) (*domain.APIToken, error) {
	var t domain.APIToken
	err := s.Scan(
		&t.ID, &t.Description, &t.TokenHash, &t.TokenPrefix,
		&t.LastUsedAt, &t.CreatedAt, &t.RevokedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan api token: %w", err)
	}
	return &t, nil
}
