package account_test

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	account "github.com/ondo-app/account"
)

func newTestService(store account.RepositoryManager) *account.AccountService {
	codec := account.NewTokenCodec([]byte("test-signing-key"))
	resets := account.NewResetTokenAuthority(store)
	return account.NewAccountService(store, codec, resets)
}

func signupInput(loginID string) account.SignupInput {
	return account.SignupInput{
		LoginID:  loginID,
		Password: "password123",
		Name:     "Hong Gildong",
		Gender:   "M",
		Birth:    "1990-01-01",
		Phone:    "01012345678",
	}
}

func TestSignupAndDupCheck(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)

	taken, err := svc.IsLoginIDTaken(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, taken)

	require.NoError(t, svc.Signup(ctx, signupInput("u1")))

	taken, err = svc.IsLoginIDTaken(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, taken)

	t.Run("duplicate login id", func(t *testing.T) {
		err := svc.Signup(ctx, signupInput("u1"))
		assert.ErrorIs(t, err, account.ErrDuplicateLoginID)
	})
}

// missesPrecheck simulates the signup race: the in-tx duplicate lookup
// sees nothing, leaving the unique constraint to catch the collision.
type missesPrecheck struct {
	account.Credentials
}

func (m *missesPrecheck) GetByLoginID(ctx context.Context, loginID string) (*account.LocalCredential, error) {
	return nil, notFound("credential not found")
}

type racingStore struct {
	*memStore
	creds account.Credentials
}

func (s *racingStore) Credentials() account.Credentials { return s.creds }

func TestSignupRaceAnswersConflict(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	wrapped := &racingStore{
		memStore: store,
		creds:    &missesPrecheck{Credentials: store.Credentials()},
	}
	svc := newTestService(wrapped)

	require.NoError(t, svc.Signup(ctx, signupInput("u1")))

	// The second signup slips past the lookup; the constraint violation
	// must still come back as a conflict, not an internal error.
	err := svc.Signup(ctx, signupInput("u1"))
	require.Error(t, err)

	var rich *goerrors.Error
	require.True(t, goerrors.As(err, &rich))
	assert.Equal(t, goerrors.CodeConflict, rich.Code)
	assert.Equal(t, account.TextCodeDuplicateLoginID, rich.TextCode)
}

type countingHasher struct {
	account.PasswordAuthenticator
	hashes   int
	compares int
}

func (h *countingHasher) HashPassword(password string) (string, error) {
	h.hashes++
	return h.PasswordAuthenticator.HashPassword(password)
}

func (h *countingHasher) ComparePasswordAndHash(password, hash string) error {
	h.compares++
	return h.PasswordAuthenticator.ComparePasswordAndHash(password, hash)
}

func TestInjectedPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	hasher := &countingHasher{PasswordAuthenticator: account.NewPasswordAuthenticator()}
	svc := newTestService(store).WithPasswordAuthenticator(hasher)

	require.NoError(t, svc.Signup(ctx, signupInput("u1")))

	_, err := svc.Login(ctx, "u1", "password123")
	require.NoError(t, err)

	assert.Equal(t, 1, hasher.hashes)
	assert.Equal(t, 1, hasher.compares)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)

	require.NoError(t, svc.Signup(ctx, signupInput("u1")))

	t.Run("correct credentials issue a token pair", func(t *testing.T) {
		tokens, err := svc.Login(ctx, "u1", "password123")
		require.NoError(t, err)

		assert.NotEmpty(t, tokens.AccessToken)
		assert.NotEmpty(t, tokens.RefreshToken)
		assert.NotEqual(t, tokens.AccessToken, tokens.RefreshToken)
		assert.Equal(t, "u1", tokens.UserID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "u1", "wrong-password")
		assert.ErrorIs(t, err, account.ErrBadCredentials)
	})

	t.Run("unknown login id", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody", "password123")
		assert.ErrorIs(t, err, account.ErrLoginIDNotFound)
	})

	t.Run("withdrawn account", func(t *testing.T) {
		require.NoError(t, svc.Signup(ctx, signupInput("u2")))

		cred, err := store.Credentials().GetByLoginID(ctx, "u2")
		require.NoError(t, err)
		require.NoError(t, svc.Withdraw(ctx, cred.UserID))

		_, err = svc.Login(ctx, "u2", "password123")
		assert.ErrorIs(t, err, account.ErrIdentityDeleted)
	})
}

func TestFindLoginID(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)

	require.NoError(t, svc.Signup(ctx, signupInput("u1")))

	loginID, err := svc.FindLoginID(ctx, "Hong Gildong", "01012345678")
	require.NoError(t, err)
	assert.Equal(t, "u1", loginID)

	_, err = svc.FindLoginID(ctx, "Hong Gildong", "01000000000")
	assert.ErrorIs(t, err, account.ErrProfileNotFound)
}

func TestRequestPasswordReset(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)

	require.NoError(t, svc.Signup(ctx, signupInput("u1")))

	t.Run("matching pair yields a token", func(t *testing.T) {
		token, ok, err := svc.RequestPasswordReset(ctx, "u1", "01012345678")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NotEmpty(t, token)
	})

	t.Run("mismatched phone is a non-error false", func(t *testing.T) {
		token, ok, err := svc.RequestPasswordReset(ctx, "u1", "01099999999")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, token)
	})

	t.Run("unknown login id is a non-error false", func(t *testing.T) {
		token, ok, err := svc.RequestPasswordReset(ctx, "nobody", "01012345678")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, token)
	})
}

func TestFindPasswordFlow(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)

	require.NoError(t, svc.Signup(ctx, signupInput("u1")))

	token, ok, err := svc.RequestPasswordReset(ctx, "u1", "01012345678")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, svc.FindPassword(ctx, token, "changed-password"))

	_, err = svc.Login(ctx, "u1", "password123")
	assert.ErrorIs(t, err, account.ErrBadCredentials, "old password stops working")

	tokens, err := svc.Login(ctx, "u1", "changed-password")
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
}

func TestAuthenticatedPasswordOps(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)

	require.NoError(t, svc.Signup(ctx, signupInput("u1")))

	cred, err := store.Credentials().GetByLoginID(ctx, "u1")
	require.NoError(t, err)

	t.Run("check password", func(t *testing.T) {
		match, err := svc.CheckPassword(ctx, cred.UserID, "password123")
		require.NoError(t, err)
		assert.True(t, match)

		match, err = svc.CheckPassword(ctx, cred.UserID, "nope")
		require.NoError(t, err)
		assert.False(t, match)
	})

	t.Run("update password", func(t *testing.T) {
		require.NoError(t, svc.UpdatePassword(ctx, cred.UserID, "rotated-password"))

		_, err := svc.Login(ctx, "u1", "rotated-password")
		assert.NoError(t, err)
	})
}

func TestProfileUpdates(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)

	require.NoError(t, svc.Signup(ctx, signupInput("u1")))

	cred, err := store.Credentials().GetByLoginID(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, svc.UpdatePhone(ctx, cred.UserID, "01098765432"))
	require.NoError(t, svc.UpdateDeviceToken(ctx, cred.UserID, "apns-device-token"))

	profile, err := store.Profiles().GetByUserID(ctx, cred.UserID)
	require.NoError(t, err)
	assert.Equal(t, "01098765432", profile.Phone)
	assert.Equal(t, "apns-device-token", profile.DeviceToken)
}

func TestNotificationToggles(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)

	require.NoError(t, svc.Signup(ctx, signupInput("u1")))

	cred, err := store.Credentials().GetByLoginID(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, svc.SetNotificationEnabled(ctx, cred.UserID, 1, true))
	require.NoError(t, svc.SetNotificationEnabled(ctx, cred.UserID, 2, false))
	require.NoError(t, svc.SetNotificationEnabled(ctx, cred.UserID, 1, false))

	settings, err := svc.ListNotificationSettings(ctx, cred.UserID)
	require.NoError(t, err)
	require.Len(t, settings, 2)

	byID := map[int]bool{}
	for _, setting := range settings {
		byID[setting.NotificationID] = setting.Enabled
	}
	assert.False(t, byID[1])
	assert.False(t, byID[2])
}
