package account

import (
	"context"
	"database/sql"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var _ Users = (*users)(nil)

// NewUsersRepository creates the bun-backed identity store. Soft-deleted
// rows are excluded from reads by the model's soft-delete column.
func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
	})

	return &users{Repository: repo, db: db}
}

func (r *users) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	record := &User{}

	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) || err == sql.ErrNoRows {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}

	return record, nil
}

func (r *users) CreateTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return r.Repository.CreateTx(ctx, tx, user)
}

func (r *users) SoftDelete(ctx context.Context, id uuid.UUID) error {
	// bun translates deletes on soft-delete models into deleted_at updates.
	res, err := r.db.NewDelete().
		Model((*User)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}
