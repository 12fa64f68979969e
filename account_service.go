package account

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TokenPair is the session credential set returned by a successful login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
}

// SignupInput carries everything needed to register a local account.
type SignupInput struct {
	LoginID  string
	Password string
	Name     string
	Gender   string
	Birth    string
	Phone    string
}

// AccountService orchestrates the token codec, the session and reset
// authorities, and the stores behind the signup/login/recovery use cases.
type AccountService struct {
	repo       RepositoryManager
	codec      *TokenCodec
	resets     *ResetTokenAuthority
	hasher     PasswordAuthenticator
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     Logger
}

// NewAccountService wires the orchestration layer.
func NewAccountService(repo RepositoryManager, codec *TokenCodec, resets *ResetTokenAuthority) *AccountService {
	return &AccountService{
		repo:       repo,
		codec:      codec,
		resets:     resets,
		hasher:     NewPasswordAuthenticator(),
		accessTTL:  AccessTokenTTL,
		refreshTTL: RefreshTokenTTL,
		logger:     defLogger{},
	}
}

func (s *AccountService) WithLogger(logger Logger) *AccountService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *AccountService) WithPasswordAuthenticator(hasher PasswordAuthenticator) *AccountService {
	if hasher != nil {
		s.hasher = hasher
	}
	return s
}

func (s *AccountService) WithTokenTTLs(access, refresh time.Duration) *AccountService {
	if access > 0 {
		s.accessTTL = access
	}
	if refresh > 0 {
		s.refreshTTL = refresh
	}
	return s
}

// Signup creates the Identity, Profile, and LocalCredential in one
// transaction. The unique constraint on login_id is the final authority on
// duplicates; the in-tx lookup only produces the friendlier error.
func (s *AccountService) Signup(ctx context.Context, in SignupInput) error {
	hash, err := s.hasher.HashPassword(in.Password)
	if err != nil {
		return err
	}

	return s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := s.repo.Credentials().GetByLoginID(ctx, in.LoginID); err == nil {
			return ErrDuplicateLoginID
		} else if !goerrors.IsNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check login id")
		}

		user, err := s.repo.Users().CreateTx(ctx, tx, &User{})
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create user")
		}

		if _, err := s.repo.Profiles().CreateTx(ctx, tx, &Profile{
			UserID: user.ID,
			Name:   in.Name,
			Gender: in.Gender,
			Birth:  in.Birth,
			Phone:  in.Phone,
		}); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create profile")
		}

		if _, err := s.repo.Credentials().CreateTx(ctx, tx, &LocalCredential{
			LoginID:      in.LoginID,
			PasswordHash: hash,
			UserID:       user.ID,
		}); err != nil {
			// The unique constraint on login_id catches the race the
			// pre-check cannot; both paths answer 409.
			return goerrors.Wrap(err, goerrors.CategoryConflict, "login id is already taken").
				WithTextCode(TextCodeDuplicateLoginID).
				WithCode(goerrors.CodeConflict)
		}

		return nil
	})
}

// IsLoginIDTaken backs the dup-check endpoint.
func (s *AccountService) IsLoginIDTaken(ctx context.Context, loginID string) (bool, error) {
	_, err := s.repo.Credentials().GetByLoginID(ctx, loginID)
	if err == nil {
		return true, nil
	}
	if goerrors.IsNotFound(err) {
		return false, nil
	}
	return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check login id")
}

// Login verifies local credentials and issues an access/refresh pair.
func (s *AccountService) Login(ctx context.Context, loginID, password string) (*TokenPair, error) {
	cred, err := s.repo.Credentials().GetByLoginID(ctx, loginID)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrLoginIDNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load credential")
	}

	if _, err := s.activeUser(ctx, cred.UserID); err != nil {
		return nil, err
	}

	if err := s.hasher.ComparePasswordAndHash(password, cred.PasswordHash); err != nil {
		return nil, ErrBadCredentials
	}

	return s.issueTokenPair(cred.UserID, cred.LoginID)
}

// FindLoginID locates the login id for a (name, phone) pair.
func (s *AccountService) FindLoginID(ctx context.Context, name, phone string) (string, error) {
	profile, err := s.repo.Profiles().GetByNameAndPhone(ctx, name, phone)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return "", ErrProfileNotFound
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up profile")
	}

	cred, err := s.repo.Credentials().GetByUserID(ctx, profile.UserID)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return "", ErrProfileNotFound
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load credential")
	}

	return cred.LoginID, nil
}

// RequestPasswordReset verifies the (login id, phone) pair and, on a
// match, issues a reset token. A mismatch returns ok=false with no error
// so the response never reveals which field was wrong.
func (s *AccountService) RequestPasswordReset(ctx context.Context, loginID, phone string) (string, bool, error) {
	cred, err := s.repo.Credentials().GetByLoginID(ctx, loginID)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return "", false, nil
		}
		return "", false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load credential")
	}

	profile, err := s.repo.Profiles().GetByUserID(ctx, cred.UserID)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return "", false, nil
		}
		return "", false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load profile")
	}

	if profile.Phone != phone {
		return "", false, nil
	}

	token, err := s.resets.IssueResetToken(ctx, cred)
	if err != nil {
		return "", false, err
	}

	return token, true, nil
}

// FindPassword consumes a reset token and sets the new password.
func (s *AccountService) FindPassword(ctx context.Context, token, newPassword string) error {
	return s.resets.FinalizeReset(ctx, token, newPassword)
}

// UpdatePassword changes the password for an authenticated identity; no
// old-password confirmation, the live session is the authorization.
func (s *AccountService) UpdatePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	cred, err := s.credentialForUser(ctx, userID)
	if err != nil {
		return err
	}

	return s.resets.ChangePassword(ctx, cred, newPassword)
}

// CheckPassword reports whether the cleartext matches the stored hash.
func (s *AccountService) CheckPassword(ctx context.Context, userID uuid.UUID, password string) (bool, error) {
	cred, err := s.credentialForUser(ctx, userID)
	if err != nil {
		return false, err
	}

	if err := s.hasher.ComparePasswordAndHash(password, cred.PasswordHash); err != nil {
		return false, nil
	}

	return true, nil
}

// UpdatePhone replaces the profile phone number.
func (s *AccountService) UpdatePhone(ctx context.Context, userID uuid.UUID, phone string) error {
	return s.repo.Profiles().UpdatePhone(ctx, userID, phone)
}

// UpdateDeviceToken stores the push device token on the profile.
func (s *AccountService) UpdateDeviceToken(ctx context.Context, userID uuid.UUID, deviceToken string) error {
	return s.repo.Profiles().UpdateDeviceToken(ctx, userID, deviceToken)
}

// Withdraw soft-deletes the identity. Credentials stay in place but stop
// authenticating because every flow checks the owning User first.
func (s *AccountService) Withdraw(ctx context.Context, userID uuid.UUID) error {
	return s.repo.Users().SoftDelete(ctx, userID)
}

// SetNotificationEnabled toggles one notification channel for the user.
func (s *AccountService) SetNotificationEnabled(ctx context.Context, userID uuid.UUID, notificationID int, enabled bool) error {
	return s.repo.NotificationSettings().SetEnabled(ctx, userID, notificationID, enabled)
}

// ListNotificationSettings returns the user's notification toggles.
func (s *AccountService) ListNotificationSettings(ctx context.Context, userID uuid.UUID) ([]*NotificationSetting, error) {
	return s.repo.NotificationSettings().ListByUser(ctx, userID)
}

func (s *AccountService) issueTokenPair(userID uuid.UUID, publicID string) (*TokenPair, error) {
	access, err := s.codec.Issue(userID.String(), TokenKindAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}

	refresh, err := s.codec.Issue(userID.String(), TokenKindRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		UserID:       publicID,
	}, nil
}

func (s *AccountService) activeUser(ctx context.Context, userID uuid.UUID) (*User, error) {
	user, err := s.repo.Users().GetByID(ctx, userID)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrIdentityDeleted
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user")
	}

	if user.IsDeleted() {
		return nil, ErrIdentityDeleted
	}

	return user, nil
}

func (s *AccountService) credentialForUser(ctx context.Context, userID uuid.UUID) (*LocalCredential, error) {
	cred, err := s.repo.Credentials().GetByUserID(ctx, userID)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrLoginIDNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load credential")
	}
	return cred, nil
}
