package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the canonical identity record, independent of which credential
// mechanism authenticates it. Withdrawal is a soft delete.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the identity has been withdrawn.
func (u *User) IsDeleted() bool {
	return u != nil && u.DeletedAt != nil
}

// LocalCredential is the password login record for an identity. Rows are
// never physically deleted; withdrawal soft-deletes the owning User. The
// reset token is mutated only by the ResetTokenAuthority.
type LocalCredential struct {
	bun.BaseModel      `bun:"table:local_credentials,alias:lc"`
	ID                 uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	LoginID            string     `bun:"login_id,notnull,unique" json:"login_id,omitempty"`
	PasswordHash       string     `bun:"password_hash,notnull" json:"-"`
	ResetToken         string     `bun:"reset_token,nullzero" json:"-"`
	ResetTokenIssuedAt *time.Time `bun:"reset_token_issued_at,nullzero" json:"-"`
	UserID             uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User               *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	CreatedAt          *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt          *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// SocialCredential links a provider-scoped external id to an identity.
// Created on first OAuth login.
type SocialCredential struct {
	bun.BaseModel `bun:"table:social_credentials,alias:sc"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Provider      string         `bun:"provider,notnull" json:"provider,omitempty"`
	ExternalID    string         `bun:"external_id,notnull" json:"external_id,omitempty"`
	UserID        uuid.UUID      `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User          `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Metadata      map[string]any `bun:"metadata" json:"metadata,omitempty"`
	CreatedAt     *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Profile carries the person-facing attributes of an identity.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:prf"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Gender        string     `bun:"gender" json:"gender,omitempty"`
	Birth         string     `bun:"birth" json:"birth,omitempty"`
	Phone         string     `bun:"phone" json:"phone,omitempty"`
	DeviceToken   string     `bun:"device_token,nullzero" json:"device_token,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// NotificationSetting is a per-user toggle for one notification channel.
type NotificationSetting struct {
	bun.BaseModel  `bun:"table:notification_settings,alias:ntf"`
	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID         uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	NotificationID int        `bun:"notification_id,notnull" json:"notification_id"`
	Enabled        bool       `bun:"enabled,notnull" json:"enabled"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}
