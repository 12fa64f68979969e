package account

import (
	"context"
	"database/sql"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// consumePasswordResetSQL rewrites the hash and clears the reset token
// in one statement guarded on the token value. A concurrent consumer of
// the same token matches zero rows, so exactly one change goes through.
var consumePasswordResetSQL = `UPDATE "local_credentials" AS "lc"
SET
	"password_hash" = ?,
	"reset_token" = NULL,
	"reset_token_issued_at" = NULL,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"lc"."id" = ?
	AND "lc"."reset_token" = ?;`

// updateCredentialPasswordSQL is the authenticated change flow: the live
// session authorizes the write, any pending reset token is discarded.
var updateCredentialPasswordSQL = `UPDATE "local_credentials" AS "lc"
SET
	"password_hash" = ?,
	"reset_token" = NULL,
	"reset_token_issued_at" = NULL,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"lc"."id" = ?;`

type credentials struct {
	repository.Repository[*LocalCredential]
	db *bun.DB
}

var _ Credentials = (*credentials)(nil)

// NewCredentialsRepository creates the bun-backed local credential store.
// The unique constraint on login_id is the duplicate-signup authority.
func NewCredentialsRepository(db *bun.DB) Credentials {
	repo := repository.NewRepository[*LocalCredential](db, repository.ModelHandlers[*LocalCredential]{
		NewRecord: func() *LocalCredential { return &LocalCredential{} },
		GetID: func(c *LocalCredential) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID: func(c *LocalCredential, id uuid.UUID) {
			if c != nil {
				c.ID = id
			}
		},
		GetIdentifier: func() string {
			return "login_id"
		},
	})

	return &credentials{Repository: repo, db: db}
}

func (r *credentials) CreateTx(ctx context.Context, tx bun.IDB, cred *LocalCredential) (*LocalCredential, error) {
	if cred.ID == uuid.Nil {
		cred.ID = uuid.New()
	}
	return r.Repository.CreateTx(ctx, tx, cred)
}

func (r *credentials) GetByLoginID(ctx context.Context, loginID string) (*LocalCredential, error) {
	return r.getOne(ctx, r.db, "?TableAlias.login_id = ?", loginID)
}

func (r *credentials) GetByUserID(ctx context.Context, userID uuid.UUID) (*LocalCredential, error) {
	return r.getOne(ctx, r.db, "?TableAlias.user_id = ?", userID)
}

func (r *credentials) GetByResetTokenTx(ctx context.Context, tx bun.IDB, token string) (*LocalCredential, error) {
	if token == "" {
		return nil, repository.NewRecordNotFound()
	}
	return r.getOne(ctx, tx, "?TableAlias.reset_token = ?", token)
}

func (r *credentials) getOne(ctx context.Context, idb bun.IDB, where string, arg any) (*LocalCredential, error) {
	record := &LocalCredential{}

	err := idb.NewSelect().
		Model(record).
		Where(where, arg).
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

func (r *credentials) SetResetToken(ctx context.Context, id uuid.UUID, token string, issuedAt time.Time) error {
	res, err := r.db.NewUpdate().
		Model((*LocalCredential)(nil)).
		Set("reset_token = ?", token).
		Set("reset_token_issued_at = ?", issuedAt).
		Set("updated_at = CURRENT_TIMESTAMP").
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

func (r *credentials) ConsumePasswordResetTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token, passwordHash string) error {
	res, err := tx.NewRaw(consumePasswordResetSQL, passwordHash, id.String(), token).Exec(ctx)
	if err != nil {
		return err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}

func (r *credentials) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	_, err := r.db.NewRaw(updateCredentialPasswordSQL, passwordHash, id.String()).Exec(ctx)
	return err
}
