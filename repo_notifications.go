package account

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type notificationSettings struct {
	db *bun.DB
}

var _ NotificationSettings = (*notificationSettings)(nil)

// NewNotificationSettingsRepository creates the bun-backed notification
// toggle store.
func NewNotificationSettingsRepository(db *bun.DB) NotificationSettings {
	return &notificationSettings{db: db}
}

// SetEnabled upserts on (user_id, notification_id) so toggling is a single
// conditional write regardless of whether the row exists yet.
func (r *notificationSettings) SetEnabled(ctx context.Context, userID uuid.UUID, notificationID int, enabled bool) error {
	now := time.Now()
	setting := &NotificationSetting{
		ID:             uuid.New(),
		UserID:         userID,
		NotificationID: notificationID,
		Enabled:        enabled,
		UpdatedAt:      &now,
	}

	_, err := r.db.NewInsert().
		Model(setting).
		On("CONFLICT (user_id, notification_id) DO UPDATE").
		Set("enabled = EXCLUDED.enabled").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)

	return err
}

func (r *notificationSettings) ListByUser(ctx context.Context, userID uuid.UUID) ([]*NotificationSetting, error) {
	var settings []*NotificationSetting

	err := r.db.NewSelect().
		Model(&settings).
		Where("?TableAlias.user_id = ?", userID).
		Order("notification_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return settings, nil
}
