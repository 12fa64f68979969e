package account

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the identity store. Reads exclude soft-deleted records.
type Users interface {
	IdentityFinder
	CreateTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// Credentials is the local (password) credential store.
type Credentials interface {
	CreateTx(ctx context.Context, tx bun.IDB, cred *LocalCredential) (*LocalCredential, error)
	GetByLoginID(ctx context.Context, loginID string) (*LocalCredential, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*LocalCredential, error)
	GetByResetTokenTx(ctx context.Context, tx bun.IDB, token string) (*LocalCredential, error)

	// SetResetToken overwrites any prior reset token on the credential
	// and stamps the issuance time, as one guarded write.
	SetResetToken(ctx context.Context, id uuid.UUID, token string, issuedAt time.Time) error

	// ConsumePasswordResetTx overwrites the password hash and clears the
	// stored reset token in one statement guarded on the token itself: the
	// write matches zero rows (not found) when another consumer got there
	// first. This conditional write is what makes reset tokens single use.
	ConsumePasswordResetTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token, passwordHash string) error

	// UpdatePassword overwrites the password hash for the authenticated
	// change flow, clearing any pending reset token.
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// SocialCredentials is the store of provider-linked credentials.
type SocialCredentials interface {
	CreateTx(ctx context.Context, tx bun.IDB, cred *SocialCredential) (*SocialCredential, error)
	GetByProviderID(ctx context.Context, provider, externalID string) (*SocialCredential, error)
}

// Profiles is the profile store.
type Profiles interface {
	CreateTx(ctx context.Context, tx bun.IDB, profile *Profile) (*Profile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	GetByNameAndPhone(ctx context.Context, name, phone string) (*Profile, error)
	UpdatePhone(ctx context.Context, userID uuid.UUID, phone string) error
	UpdateDeviceToken(ctx context.Context, userID uuid.UUID, deviceToken string) error
}

// NotificationSettings is the per-user notification toggle store.
type NotificationSettings interface {
	SetEnabled(ctx context.Context, userID uuid.UUID, notificationID int, enabled bool) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*NotificationSetting, error)
}

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Users() Users
	Credentials() Credentials
	SocialCredentials() SocialCredentials
	Profiles() Profiles
	NotificationSettings() NotificationSettings
}
