package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speechpath/speechpath-server/internal/domain"
	"github.com/speechpath/speechpath-server/internal/repository/postgres"
	"github.com/speechpath/speechpath-server/internal/testutil"
)

func TestAuthTokenRepository_Lifecycle(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, repos)

	token := &domain.AuthToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: "refresh-hash",
		Kind:      domain.TokenKindRefresh,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
	require.NoError(t, repos.AuthToken.Create(ctx, token))

	got, err := repos.AuthToken.GetByHash(ctx, "refresh-hash", domain.TokenKindRefresh)
	require.NoError(t, err)
	assert.Equal(t, token.ID, got.ID)

	// A refresh hash is not visible as a reset token.
	_, err = repos.AuthToken.GetByHash(ctx, "refresh-hash", domain.TokenKindPasswordReset)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Used tokens drop out of lookups.
	require.NoError(t, repos.AuthToken.MarkUsed(ctx, token.ID))
	_, err = repos.AuthToken.GetByHash(ctx, "refresh-hash", domain.TokenKindRefresh)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, repos.AuthToken.MarkUsed(ctx, uuid.New()), domain.ErrNotFound)
}

func TestAuthTokenRepository_DeleteByUserID(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, repos)

	refresh := &domain.AuthToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: "refresh-hash",
		Kind:      domain.TokenKindRefresh,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	reset := &domain.AuthToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: "reset-hash",
		Kind:      domain.TokenKindPasswordReset,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, repos.AuthToken.Create(ctx, refresh))
	require.NoError(t, repos.AuthToken.Create(ctx, reset))

	require.NoError(t, repos.AuthToken.DeleteByUserID(ctx, user.ID, domain.TokenKindRefresh))

	_, err := repos.AuthToken.GetByHash(ctx, "refresh-hash", domain.TokenKindRefresh)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// The reset token of the same user survives.
	_, err = repos.AuthToken.GetByHash(ctx, "reset-hash", domain.TokenKindPasswordReset)
	assert.NoError(t, err)
}

func TestAuthTokenRepository_DeleteExpired(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, repos)

	expired := &domain.AuthToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: "expired-hash",
		Kind:      domain.TokenKindRefresh,
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	valid := &domain.AuthToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: "valid-hash",
		Kind:      domain.TokenKindRefresh,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, repos.AuthToken.Create(ctx, expired))
	require.NoError(t, repos.AuthToken.Create(ctx, valid))

	require.NoError(t, repos.AuthToken.DeleteExpired(ctx))

	_, err := repos.AuthToken.GetByHash(ctx, "expired-hash", domain.TokenKindRefresh)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repos.AuthToken.GetByHash(ctx, "valid-hash", domain.TokenKindRefresh)
	assert.NoError(t, err)
}
