package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veloxfin/velox-backend/internal/domain"
	"github.com/veloxfin/velox-backend/internal/testutil"
)

func TestAPITokenService_Create(t *testing.T) {
	repo := testutil.NewMockAPITokenRepository()
	svc := NewAPITokenService(repo)

	resp, err := svc.Create(context.Background(), "  CI pipeline  ")
	require.NoError(t, err)

	assert.Equal(t, "CI pipeline", resp.Description)
	assert.True(t, strings.HasPrefix(resp.Token, "vlx_"))
	assert.True(t, strings.HasPrefix(resp.TokenPrefix, "vlx_"))
	assert.True(t, strings.HasSuffix(resp.TokenPrefix, "..."))
	assert.NotEmpty(t, resp.Warning)

	// Only the hash is stored, never the raw token.
	stored := repo.Tokens[resp.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, resp.Token, stored.TokenHash)
	assert.NotContains(t, stored.TokenHash, resp.Token)
}

func TestAPITokenService_Create_TokenLimit(t *testing.T) {
	repo := testutil.NewMockAPITokenRepository()
	svc := NewAPITokenService(repo)

	for i := 0; i < 10; i++ {
		_, err := svc.Create(context.Background(), fmt.Sprintf("token %d", i))
		require.NoError(t, err)
	}

	_, err := svc.Create(context.Background(), "one too many")
	assert.ErrorIs(t, err, domain.ErrTooManyAPITokens)
}

func TestAPITokenService_Create_LimitCountsOnlyActive(t *testing.T) {
	repo := testutil.NewMockAPITokenRepository()
	svc := NewAPITokenService(repo)

	var first uuid.UUID
	for i := 0; i < 10; i++ {
		resp, err := svc.Create(context.Background(), fmt.Sprintf("token %d", i))
		require.NoError(t, err)
		if i == 0 {
			first = resp.ID
		}
	}

	require.NoError(t, svc.Revoke(context.Background(), first))

	_, err := svc.Create(context.Background(), "replacement")
	assert.NoError(t, err)
}

func TestAPITokenService_ValidateToken(t *testing.T) {
	repo := testutil.NewMockAPITokenRepository()
	svc := NewAPITokenService(repo)

	resp, err := svc.Create(context.Background(), "integration")
	require.NoError(t, err)

	token, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, token.ID)
}

func TestAPITokenService_ValidateToken_Rejections(t *testing.T) {
	repo := testutil.NewMockAPITokenRepository()
	svc := NewAPITokenService(repo)

	resp, err := svc.Create(context.Background(), "integration")
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), "sk_"+strings.TrimPrefix(resp.Token, "vlx_"))
	assert.ErrorIs(t, err, domain.ErrAPITokenNotFound)

	_, err = svc.ValidateToken(context.Background(), "vlx_definitely-not-issued")
	assert.ErrorIs(t, err, domain.ErrAPITokenNotFound)

	require.NoError(t, svc.Revoke(context.Background(), resp.ID))
	_, err = svc.ValidateToken(context.Background(), resp.Token)
	assert.ErrorIs(t, err, domain.ErrAPITokenNotFound)
}

func TestAPITokenService_ValidateToken_UpdatesLastUsed(t *testing.T) {
	repo := testutil.NewMockAPITokenRepository()
	svc := NewAPITokenService(repo)

	resp, err := svc.Create(context.Background(), "integration")
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)

	// The last-used write happens on a separate goroutine.
	assert.Eventually(t, func() bool {
		return repo.Tokens[resp.ID].LastUsedAt != nil
	}, time.Second, 10*time.Millisecond)
}

func TestAPITokenService_Revoke(t *testing.T) {
	repo := testutil.NewMockAPITokenRepository()
	svc := NewAPITokenService(repo)

	resp, err := svc.Create(context.Background(), "to revoke")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(context.Background(), resp.ID))

	tokens, err := svc.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tokens)

	// Revoking twice surfaces not found.
	err = svc.Revoke(context.Background(), resp.ID)
	assert.ErrorIs(t, err, domain.ErrAPITokenNotFound)
}

func TestAPITokenService_GetAll_OmitsSensitiveData(t *testing.T) {
	repo := testutil.NewMockAPITokenRepository()
	svc := NewAPITokenService(repo)

	_, err := svc.Create(context.Background(), "first")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "second")
	require.NoError(t, err)

	tokens, err := svc.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	for _, tok := range tokens {
		assert.True(t, strings.HasSuffix(tok.TokenPrefix, "..."))
	}
}
