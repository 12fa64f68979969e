package account_test

import (
	"context"
	"database/sql"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	account "github.com/ondo-app/account"
)

func notFound(msg string) error {
	return goerrors.New(msg, goerrors.CategoryNotFound).WithCode(goerrors.CodeNotFound)
}

// memStore is an in-memory RepositoryManager used by the service and
// session tests. Transactions are a passthrough; the maps are the store.
type memStore struct {
	mu            sync.Mutex
	users         map[uuid.UUID]*account.User
	credentials   map[uuid.UUID]*account.LocalCredential
	social        map[uuid.UUID]*account.SocialCredential
	profiles      map[uuid.UUID]*account.Profile
	notifications map[uuid.UUID]map[int]*account.NotificationSetting
}

func newMemStore() *memStore {
	return &memStore{
		users:         map[uuid.UUID]*account.User{},
		credentials:   map[uuid.UUID]*account.LocalCredential{},
		social:        map[uuid.UUID]*account.SocialCredential{},
		profiles:      map[uuid.UUID]*account.Profile{},
		notifications: map[uuid.UUID]map[int]*account.NotificationSetting{},
	}
}

var _ account.RepositoryManager = (*memStore)(nil)

func (m *memStore) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (m *memStore) Users() account.Users                                 { return (*memUsers)(m) }
func (m *memStore) Credentials() account.Credentials                     { return (*memCredentials)(m) }
func (m *memStore) SocialCredentials() account.SocialCredentials         { return (*memSocial)(m) }
func (m *memStore) Profiles() account.Profiles                           { return (*memProfiles)(m) }
func (m *memStore) NotificationSettings() account.NotificationSettings   { return (*memNotifications)(m) }

type memUsers memStore

func (m *memUsers) GetByID(ctx context.Context, id uuid.UUID) (*account.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok || user.DeletedAt != nil {
		return nil, notFound("user not found")
	}
	cp := *user
	return &cp, nil
}

func (m *memUsers) CreateTx(ctx context.Context, tx bun.IDB, user *account.User) (*account.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = &now
	m.users[user.ID] = user
	return user, nil
}

func (m *memUsers) SoftDelete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok || user.DeletedAt != nil {
		return notFound("user not found")
	}
	now := time.Now()
	user.DeletedAt = &now
	return nil
}

type memCredentials memStore

func (m *memCredentials) CreateTx(ctx context.Context, tx bun.IDB, cred *account.LocalCredential) (*account.LocalCredential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.credentials {
		if existing.LoginID == cred.LoginID {
			return nil, goerrors.New("login id already exists", goerrors.CategoryConflict).
				WithCode(goerrors.CodeConflict)
		}
	}
	if cred.ID == uuid.Nil {
		cred.ID = uuid.New()
	}
	m.credentials[cred.ID] = cred
	return cred, nil
}

func (m *memCredentials) GetByLoginID(ctx context.Context, loginID string) (*account.LocalCredential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cred := range m.credentials {
		if cred.LoginID == loginID {
			cp := *cred
			return &cp, nil
		}
	}
	return nil, notFound("credential not found")
}

func (m *memCredentials) GetByUserID(ctx context.Context, userID uuid.UUID) (*account.LocalCredential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cred := range m.credentials {
		if cred.UserID == userID {
			cp := *cred
			return &cp, nil
		}
	}
	return nil, notFound("credential not found")
}

func (m *memCredentials) GetByResetTokenTx(ctx context.Context, tx bun.IDB, token string) (*account.LocalCredential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token == "" {
		return nil, notFound("credential not found")
	}
	for _, cred := range m.credentials {
		if cred.ResetToken == token {
			cp := *cred
			return &cp, nil
		}
	}
	return nil, notFound("credential not found")
}

func (m *memCredentials) SetResetToken(ctx context.Context, id uuid.UUID, token string, issuedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cred, ok := m.credentials[id]
	if !ok {
		return notFound("credential not found")
	}
	cred.ResetToken = token
	cred.ResetTokenIssuedAt = &issuedAt
	return nil
}

func (m *memCredentials) ConsumePasswordResetTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cred, ok := m.credentials[id]
	if !ok || cred.ResetToken != token {
		return notFound("credential not found")
	}
	cred.PasswordHash = passwordHash
	cred.ResetToken = ""
	cred.ResetTokenIssuedAt = nil
	return nil
}

func (m *memCredentials) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cred, ok := m.credentials[id]
	if !ok {
		return notFound("credential not found")
	}
	cred.PasswordHash = passwordHash
	cred.ResetToken = ""
	cred.ResetTokenIssuedAt = nil
	return nil
}

type memSocial memStore

func (m *memSocial) CreateTx(ctx context.Context, tx bun.IDB, cred *account.SocialCredential) (*account.SocialCredential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.social {
		if existing.Provider == cred.Provider && existing.ExternalID == cred.ExternalID {
			return nil, goerrors.New("social credential already exists", goerrors.CategoryConflict).
				WithCode(goerrors.CodeConflict)
		}
	}
	if cred.ID == uuid.Nil {
		cred.ID = uuid.New()
	}
	m.social[cred.ID] = cred
	return cred, nil
}

func (m *memSocial) GetByProviderID(ctx context.Context, provider, externalID string) (*account.SocialCredential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cred := range m.social {
		if cred.Provider == provider && cred.ExternalID == externalID {
			cp := *cred
			return &cp, nil
		}
	}
	return nil, notFound("social credential not found")
}

type memProfiles memStore

func (m *memProfiles) CreateTx(ctx context.Context, tx bun.IDB, profile *account.Profile) (*account.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	m.profiles[profile.ID] = profile
	return profile, nil
}

func (m *memProfiles) GetByUserID(ctx context.Context, userID uuid.UUID) (*account.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, profile := range m.profiles {
		if profile.UserID == userID {
			cp := *profile
			return &cp, nil
		}
	}
	return nil, notFound("profile not found")
}

func (m *memProfiles) GetByNameAndPhone(ctx context.Context, name, phone string) (*account.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, profile := range m.profiles {
		if profile.Name == name && profile.Phone == phone {
			cp := *profile
			return &cp, nil
		}
	}
	return nil, notFound("profile not found")
}

func (m *memProfiles) UpdatePhone(ctx context.Context, userID uuid.UUID, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, profile := range m.profiles {
		if profile.UserID == userID {
			profile.Phone = phone
			return nil
		}
	}
	return notFound("profile not found")
}

func (m *memProfiles) UpdateDeviceToken(ctx context.Context, userID uuid.UUID, deviceToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, profile := range m.profiles {
		if profile.UserID == userID {
			profile.DeviceToken = deviceToken
			return nil
		}
	}
	return notFound("profile not found")
}

type memNotifications memStore

func (m *memNotifications) SetEnabled(ctx context.Context, userID uuid.UUID, notificationID int, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	settings, ok := m.notifications[userID]
	if !ok {
		settings = map[int]*account.NotificationSetting{}
		m.notifications[userID] = settings
	}
	settings[notificationID] = &account.NotificationSetting{
		ID:             uuid.New(),
		UserID:         userID,
		NotificationID: notificationID,
		Enabled:        enabled,
	}
	return nil
}

func (m *memNotifications) ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.NotificationSetting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*account.NotificationSetting{}
	for _, setting := range m.notifications[userID] {
		cp := *setting
		out = append(out, &cp)
	}
	return out, nil
}
