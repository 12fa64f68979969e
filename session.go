package account

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// AuthState is the terminal state of a session check.
type AuthState string

const (
	// StateAuthenticated means the access token is live and the identity is bound.
	StateAuthenticated AuthState = "authenticated"
	// StateRefreshed means a live refresh token was presented and a fresh
	// access token was minted instead of executing the protected operation.
	StateRefreshed AuthState = "refreshed"
)

// AuthResult is the typed outcome of SessionAuthority.Authenticate.
// Identity is set for StateAuthenticated, AccessToken for StateRefreshed.
type AuthResult struct {
	State       AuthState
	Identity    *User
	AccessToken string
}

// IdentityFinder is the read-only view of the user store the session
// layer needs. Implementations must not return soft-deleted records.
type IdentityFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}

// SessionAuthority decides token validity for protected requests and
// triggers silent refresh. Validation is a pure function of the token,
// the wall clock, and the current identity record; there is no server-side
// revocation list, so a refresh token stays valid until its embedded
// expiry unless the identity is soft-deleted or missing.
type SessionAuthority struct {
	codec     *TokenCodec
	users     IdentityFinder
	accessTTL time.Duration
	now       func() time.Time
	logger    Logger
}

// NewSessionAuthority wires the authority over a codec and a user store.
func NewSessionAuthority(codec *TokenCodec, users IdentityFinder) *SessionAuthority {
	return &SessionAuthority{
		codec:     codec,
		users:     users,
		accessTTL: AccessTokenTTL,
		now:       time.Now,
		logger:    defLogger{},
	}
}

// WithClock injects a custom clock (useful for tests).
func (s *SessionAuthority) WithClock(clock func() time.Time) *SessionAuthority {
	if clock != nil {
		s.now = clock
	}
	return s
}

func (s *SessionAuthority) WithAccessTokenTTL(ttl time.Duration) *SessionAuthority {
	if ttl > 0 {
		s.accessTTL = ttl
	}
	return s
}

func (s *SessionAuthority) WithLogger(logger Logger) *SessionAuthority {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Authenticate runs the per-request state machine over the raw token
// string taken from the Authorization header. All failures are terminal
// for the current request; nothing is retried here.
func (s *SessionAuthority) Authenticate(ctx context.Context, raw string) (*AuthResult, error) {
	if raw == "" {
		return nil, ErrTokenNotFound
	}

	claims, err := s.codec.Decode(raw)
	if err != nil {
		return nil, err
	}

	kind, err := claims.Kind()
	if err != nil {
		return nil, err
	}

	exp, err := claims.Expiry()
	if err != nil {
		return nil, err
	}

	now := s.now()

	switch kind {
	case TokenKindAccess:
		if exp.Before(now) {
			return nil, ErrAccessTokenExpired
		}

		identity, err := s.lookupIdentity(ctx, claims)
		if err != nil {
			return nil, err
		}

		return &AuthResult{State: StateAuthenticated, Identity: identity}, nil

	case TokenKindRefresh:
		if exp.Before(now) {
			return nil, ErrRefreshTokenExpired
		}

		if _, err := s.lookupIdentity(ctx, claims); err != nil {
			return nil, err
		}

		access, err := s.codec.Issue(claims.UserID, TokenKindAccess, s.accessTTL)
		if err != nil {
			s.logger.Error("failed to mint replacement access token: %v", err)
			return nil, err
		}

		return &AuthResult{State: StateRefreshed, AccessToken: access}, nil
	}

	return nil, ErrTokenInvalid
}

func (s *SessionAuthority) lookupIdentity(ctx context.Context, claims *SessionClaims) (*User, error) {
	id, err := claims.UserUUID()
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load identity for session")
	}

	if user == nil || user.IsDeleted() {
		return nil, ErrUserNotFound
	}

	return user, nil
}
