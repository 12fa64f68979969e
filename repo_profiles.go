package account

import (
	"context"
	"database/sql"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type profiles struct {
	repository.Repository[*Profile]
	db *bun.DB
}

var _ Profiles = (*profiles)(nil)

// NewProfilesRepository creates the bun-backed profile store.
func NewProfilesRepository(db *bun.DB) Profiles {
	repo := repository.NewRepository[*Profile](db, repository.ModelHandlers[*Profile]{
		NewRecord: func() *Profile { return &Profile{} },
		GetID: func(p *Profile) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Profile, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	return &profiles{Repository: repo, db: db}
}

func (r *profiles) CreateTx(ctx context.Context, tx bun.IDB, profile *Profile) (*Profile, error) {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	return r.Repository.CreateTx(ctx, tx, profile)
}

func (r *profiles) GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	record := &Profile{}

	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.user_id = ?", userID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) || err == sql.ErrNoRows {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"user_id": userID.String()})
		}
		return nil, err
	}

	return record, nil
}

// GetByNameAndPhone matches phone values verbatim, the same way the
// find-id flow captured them at signup.
func (r *profiles) GetByNameAndPhone(ctx context.Context, name, phone string) (*Profile, error) {
	record := &Profile{}

	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.name = ?", name).
		Where("?TableAlias.phone = ?", phone).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) || err == sql.ErrNoRows {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

func (r *profiles) UpdatePhone(ctx context.Context, userID uuid.UUID, phone string) error {
	return r.updateColumn(ctx, userID, "phone", phone)
}

func (r *profiles) UpdateDeviceToken(ctx context.Context, userID uuid.UUID, deviceToken string) error {
	return r.updateColumn(ctx, userID, "device_token", deviceToken)
}

func (r *profiles) updateColumn(ctx context.Context, userID uuid.UUID, column string, value string) error {
	res, err := r.db.NewUpdate().
		Model((*Profile)(nil)).
		Set("? = ?", bun.Ident(column), value).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("?TableAlias.user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"user_id": userID.String()})
	}

	return nil
}
