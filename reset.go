package account

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

const resetTokenBytes = 32

// ResetTokenAuthority issues and consumes single-use password-reset
// tokens tied to a local credential. Issuing overwrites any prior token;
// consuming clears the token in the same transaction that rewrites the
// password, so a token authorizes exactly one change.
type ResetTokenAuthority struct {
	repo   RepositoryManager
	hasher PasswordAuthenticator
	ttl    time.Duration
	now    func() time.Time
	logger Logger
}

// NewResetTokenAuthority creates the authority with the default 24h TTL.
func NewResetTokenAuthority(repo RepositoryManager) *ResetTokenAuthority {
	return &ResetTokenAuthority{
		repo:   repo,
		hasher: NewPasswordAuthenticator(),
		ttl:    ResetTokenTTL,
		now:    time.Now,
		logger: defLogger{},
	}
}

// WithClock injects a custom clock (useful for tests).
func (r *ResetTokenAuthority) WithClock(clock func() time.Time) *ResetTokenAuthority {
	if clock != nil {
		r.now = clock
	}
	return r
}

func (r *ResetTokenAuthority) WithTTL(ttl time.Duration) *ResetTokenAuthority {
	if ttl > 0 {
		r.ttl = ttl
	}
	return r
}

func (r *ResetTokenAuthority) WithLogger(logger Logger) *ResetTokenAuthority {
	if logger != nil {
		r.logger = logger
	}
	return r
}

func (r *ResetTokenAuthority) WithPasswordAuthenticator(hasher PasswordAuthenticator) *ResetTokenAuthority {
	if hasher != nil {
		r.hasher = hasher
	}
	return r
}

// IssueResetToken generates an unguessable opaque token, persists it on
// the credential record (overwriting any prior value), and returns it.
// Delivery to the user happens out of band.
func (r *ResetTokenAuthority) IssueResetToken(ctx context.Context, cred *LocalCredential) (string, error) {
	if cred == nil {
		return "", goerrors.New("credential must not be nil", goerrors.CategoryInternal)
	}

	token, err := newResetToken()
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate reset token")
	}

	if err := r.repo.Credentials().SetResetToken(ctx, cred.ID, token, r.now()); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist reset token")
	}

	return token, nil
}

// FinalizeReset consumes a reset token and changes the password in one
// transaction. Fails with ErrResetTokenInvalid when no credential holds
// the token and ErrResetTokenExpired when it outlived its TTL. The read
// narrows the candidate; the write is conditional on the token still
// being in place, so concurrent consumers cannot both succeed.
func (r *ResetTokenAuthority) FinalizeReset(ctx context.Context, token, newPassword string) error {
	err := r.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		cred, err := r.repo.Credentials().GetByResetTokenTx(ctx, tx, token)
		if err != nil {
			if goerrors.IsNotFound(err) {
				return ErrResetTokenInvalid
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not look up reset token")
		}

		if cred.ResetTokenIssuedAt == nil || cred.ResetTokenIssuedAt.Before(r.now().Add(-r.ttl)) {
			return ErrResetTokenExpired
		}

		hash, err := r.hasher.HashPassword(newPassword)
		if err != nil {
			return err
		}

		if err := r.repo.Credentials().ConsumePasswordResetTx(ctx, tx, cred.ID, token, hash); err != nil {
			if goerrors.IsNotFound(err) {
				return ErrResetTokenInvalid
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update password")
		}

		return nil
	})
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to finalize password reset")
	}

	return nil
}

// ChangePassword hashes and overwrites the credential's password. Used by
// the authenticated reset flow, which relies on the session identity
// instead of a reset token.
func (r *ResetTokenAuthority) ChangePassword(ctx context.Context, cred *LocalCredential, newPassword string) error {
	hash, err := r.hasher.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return r.repo.Credentials().UpdatePassword(ctx, cred.ID, hash)
}

func newResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
