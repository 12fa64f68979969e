package account_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	account "github.com/ondo-app/account"
)

func TestSessionAuthorityAuthenticate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	store := newMemStore()
	user, err := store.Users().CreateTx(ctx, nil, &account.User{})
	require.NoError(t, err)

	codec := account.NewTokenCodec([]byte("test-signing-key")).WithClock(fixedClock(now))
	sessions := account.NewSessionAuthority(codec, store.Users()).WithClock(fixedClock(now))

	t.Run("missing token", func(t *testing.T) {
		_, err := sessions.Authenticate(ctx, "")
		assert.ErrorIs(t, err, account.ErrTokenNotFound)
	})

	t.Run("invalid token", func(t *testing.T) {
		_, err := sessions.Authenticate(ctx, "garbage")
		assert.ErrorIs(t, err, account.ErrTokenInvalid)
	})

	t.Run("live access token authenticates", func(t *testing.T) {
		raw, err := codec.Issue(user.ID.String(), account.TokenKindAccess, account.AccessTokenTTL)
		require.NoError(t, err)

		result, err := sessions.Authenticate(ctx, raw)
		require.NoError(t, err)

		assert.Equal(t, account.StateAuthenticated, result.State)
		require.NotNil(t, result.Identity)
		assert.Equal(t, user.ID, result.Identity.ID)
		assert.Empty(t, result.AccessToken)
	})

	t.Run("expired access token is terminal", func(t *testing.T) {
		earlier := account.NewTokenCodec([]byte("test-signing-key")).
			WithClock(fixedClock(now.Add(-25 * time.Hour)))

		raw, err := earlier.Issue(user.ID.String(), account.TokenKindAccess, account.AccessTokenTTL)
		require.NoError(t, err)

		_, err = sessions.Authenticate(ctx, raw)
		assert.ErrorIs(t, err, account.ErrAccessTokenExpired)
	})

	t.Run("live refresh token mints a new access token", func(t *testing.T) {
		raw, err := codec.Issue(user.ID.String(), account.TokenKindRefresh, account.RefreshTokenTTL)
		require.NoError(t, err)

		result, err := sessions.Authenticate(ctx, raw)
		require.NoError(t, err)

		assert.Equal(t, account.StateRefreshed, result.State)
		assert.Nil(t, result.Identity)
		require.NotEmpty(t, result.AccessToken)

		claims, err := codec.Decode(result.AccessToken)
		require.NoError(t, err)

		kind, err := claims.Kind()
		require.NoError(t, err)
		assert.Equal(t, account.TokenKindAccess, kind)

		exp, err := claims.Expiry()
		require.NoError(t, err)
		assert.True(t, exp.Equal(now.Add(24*time.Hour)), "replacement access token expires 24h from now")
	})

	t.Run("expired refresh token is terminal", func(t *testing.T) {
		earlier := account.NewTokenCodec([]byte("test-signing-key")).
			WithClock(fixedClock(now.Add(-61 * 24 * time.Hour)))

		raw, err := earlier.Issue(user.ID.String(), account.TokenKindRefresh, account.RefreshTokenTTL)
		require.NoError(t, err)

		_, err = sessions.Authenticate(ctx, raw)
		assert.ErrorIs(t, err, account.ErrRefreshTokenExpired)
	})
}

func TestSessionAuthorityIdentityChecks(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	store := newMemStore()
	codec := account.NewTokenCodec([]byte("test-signing-key")).WithClock(fixedClock(now))
	sessions := account.NewSessionAuthority(codec, store.Users()).WithClock(fixedClock(now))

	t.Run("unknown identity", func(t *testing.T) {
		raw, err := codec.Issue("0b9bd4a9-5be1-4b4c-a2f4-2114dd2eb979", account.TokenKindAccess, time.Hour)
		require.NoError(t, err)

		_, err = sessions.Authenticate(ctx, raw)
		assert.ErrorIs(t, err, account.ErrUserNotFound)
	})

	t.Run("withdrawn identity cannot authenticate", func(t *testing.T) {
		user, err := store.Users().CreateTx(ctx, nil, &account.User{})
		require.NoError(t, err)

		raw, err := codec.Issue(user.ID.String(), account.TokenKindAccess, time.Hour)
		require.NoError(t, err)

		require.NoError(t, store.Users().SoftDelete(ctx, user.ID))

		_, err = sessions.Authenticate(ctx, raw)
		assert.ErrorIs(t, err, account.ErrUserNotFound)
	})

	t.Run("withdrawn identity cannot refresh", func(t *testing.T) {
		user, err := store.Users().CreateTx(ctx, nil, &account.User{})
		require.NoError(t, err)

		raw, err := codec.Issue(user.ID.String(), account.TokenKindRefresh, account.RefreshTokenTTL)
		require.NoError(t, err)

		require.NoError(t, store.Users().SoftDelete(ctx, user.ID))

		_, err = sessions.Authenticate(ctx, raw)
		assert.ErrorIs(t, err, account.ErrUserNotFound)
	})

	t.Run("non-uuid identity claim", func(t *testing.T) {
		raw, err := codec.Issue("user-42", account.TokenKindAccess, time.Hour)
		require.NoError(t, err)

		_, err = sessions.Authenticate(ctx, raw)
		assert.ErrorIs(t, err, account.ErrTokenInvalid)
	})
}

func TestSessionErrorStatusSplit(t *testing.T) {
	// Clients depend on the 403 vs 401 split to decide between the
	// refresh flow and a full re-login.
	assert.Equal(t, 403, account.ErrAccessTokenExpired.Code)
	assert.Equal(t, 401, account.ErrRefreshTokenExpired.Code)
	assert.Equal(t, 401, account.ErrTokenInvalid.Code)
	assert.Equal(t, 401, account.ErrTokenNotFound.Code)
	assert.Equal(t, 401, account.ErrUserNotFound.Code)
}
