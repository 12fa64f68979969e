package account

import (
	"context"
	"database/sql"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type socialCredentials struct {
	repository.Repository[*SocialCredential]
	db *bun.DB
}

var _ SocialCredentials = (*socialCredentials)(nil)

// NewSocialCredentialsRepository creates the bun-backed store of
// provider-linked credentials.
func NewSocialCredentialsRepository(db *bun.DB) SocialCredentials {
	repo := repository.NewRepository[*SocialCredential](db, repository.ModelHandlers[*SocialCredential]{
		NewRecord: func() *SocialCredential { return &SocialCredential{} },
		GetID: func(c *SocialCredential) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID: func(c *SocialCredential, id uuid.UUID) {
			if c != nil {
				c.ID = id
			}
		},
		GetIdentifier: func() string {
			return "external_id"
		},
	})

	return &socialCredentials{Repository: repo, db: db}
}

func (r *socialCredentials) CreateTx(ctx context.Context, tx bun.IDB, cred *SocialCredential) (*SocialCredential, error) {
	if cred.ID == uuid.Nil {
		cred.ID = uuid.New()
	}
	return r.Repository.CreateTx(ctx, tx, cred)
}

func (r *socialCredentials) GetByProviderID(ctx context.Context, provider, externalID string) (*SocialCredential, error) {
	record := &SocialCredential{}

	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.provider = ?", provider).
		Where("?TableAlias.external_id = ?", externalID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) || err == sql.ErrNoRows {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"provider":    provider,
					"external_id": externalID,
				})
		}
		return nil, err
	}

	return record, nil
}
