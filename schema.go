package account

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// CreateSchema creates the service tables and the unique indexes that back
// the atomic conditional writes: duplicate login ids, one social credential
// per provider id, one notification toggle per (user, channel).
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*User)(nil),
		(*LocalCredential)(nil),
		(*SocialCredential)(nil),
		(*Profile)(nil),
		(*NotificationSetting)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create table")
		}
	}

	indexes := []struct {
		name    string
		model   any
		columns []string
	}{
		{"idx_social_credentials_provider_external", (*SocialCredential)(nil), []string{"provider", "external_id"}},
		{"idx_notification_settings_user_channel", (*NotificationSetting)(nil), []string{"user_id", "notification_id"}},
	}

	for _, idx := range indexes {
		if _, err := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.columns...).
			Unique().
			IfNotExists().
			Exec(ctx); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create index")
		}
	}

	return nil
}
