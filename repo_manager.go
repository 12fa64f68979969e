package account

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
)

type mngr struct {
	db            *bun.DB
	users         Users
	credentials   Credentials
	social        SocialCredentials
	profiles      Profiles
	notifications NotificationSettings
}

var _ RepositoryManager = (*mngr)(nil)

// NewRepositoryManager wires all bun-backed stores over one database handle.
func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:            db,
		users:         NewUsersRepository(db),
		credentials:   NewCredentialsRepository(db),
		social:        NewSocialCredentialsRepository(db),
		profiles:      NewProfilesRepository(db),
		notifications: NewNotificationSettingsRepository(db),
	}
}

func (m *mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m *mngr) Users() Users {
	return m.users
}

func (m *mngr) Credentials() Credentials {
	return m.credentials
}

func (m *mngr) SocialCredentials() SocialCredentials {
	return m.social
}

func (m *mngr) Profiles() Profiles {
	return m.profiles
}

func (m *mngr) NotificationSettings() NotificationSettings {
	return m.notifications
}
