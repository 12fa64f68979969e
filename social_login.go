package account

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/ondo-app/account/social"
)

// SocialLoginResult reports the outcome of an OAuth code exchange. When the
// external id is already linked the result carries a token pair; when it is
// the first visit, Registered is true, the identity has been created, and
// the caller must collect profile details before the account can log in.
type SocialLoginResult struct {
	Registered bool       `json:"registered"`
	UserID     string     `json:"user_id"`
	Tokens     *TokenPair `json:"tokens,omitempty"`
}

// OAuthSignupInput completes the profile of an identity created by a first
// OAuth login.
type OAuthSignupInput struct {
	UserID uuid.UUID
	Name   string
	Gender string
	Birth  string
	Phone  string
}

// OAuthLogin exchanges the authorization code, resolves the provider user,
// and either issues a session for a linked identity or registers a new one.
func (s *AccountService) OAuthLogin(ctx context.Context, provider social.Provider, code string) (*SocialLoginResult, error) {
	token, err := provider.Exchange(ctx, code)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryAuth, "failed to exchange authorization code").
			WithTextCode("OAUTH_EXCHANGE_FAILED").
			WithCode(goerrors.CodeBadRequest)
	}

	info, err := provider.UserInfo(ctx, token)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryAuth, "failed to fetch provider profile").
			WithTextCode("OAUTH_USERINFO_FAILED").
			WithCode(goerrors.CodeBadRequest)
	}

	cred, err := s.repo.SocialCredentials().GetByProviderID(ctx, provider.Name(), info.ProviderUserID)
	if err == nil {
		if _, err := s.activeUser(ctx, cred.UserID); err != nil {
			return nil, err
		}

		tokens, err := s.issueTokenPair(cred.UserID, cred.ExternalID)
		if err != nil {
			return nil, err
		}

		return &SocialLoginResult{
			UserID: cred.UserID.String(),
			Tokens: tokens,
		}, nil
	}
	if !goerrors.IsNotFound(err) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up social credential")
	}

	userID, err := s.registerSocialIdentity(ctx, provider.Name(), info, token)
	if err != nil {
		return nil, err
	}

	return &SocialLoginResult{
		Registered: true,
		UserID:     userID.String(),
	}, nil
}

// CompleteOAuthSignup attaches the profile collected after a first OAuth
// login. Until this runs the identity exists but has no profile.
func (s *AccountService) CompleteOAuthSignup(ctx context.Context, in OAuthSignupInput) error {
	if _, err := s.activeUser(ctx, in.UserID); err != nil {
		return err
	}

	if _, err := s.repo.Profiles().GetByUserID(ctx, in.UserID); err == nil {
		return goerrors.New("profile already registered", goerrors.CategoryConflict).
			WithTextCode("PROFILE_EXISTS").
			WithCode(goerrors.CodeConflict)
	} else if !goerrors.IsNotFound(err) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check profile")
	}

	return s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := s.repo.Profiles().CreateTx(ctx, tx, &Profile{
			UserID: in.UserID,
			Name:   in.Name,
			Gender: in.Gender,
			Birth:  in.Birth,
			Phone:  in.Phone,
		}); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create profile")
		}
		return nil
	})
}

func (s *AccountService) registerSocialIdentity(ctx context.Context, providerName string, info *social.Profile, token *social.Token) (uuid.UUID, error) {
	var userID uuid.UUID

	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err := s.repo.Users().CreateTx(ctx, tx, &User{})
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create user")
		}
		userID = user.ID

		meta := map[string]any{
			"connected_at": info.ConnectedAt,
			"nickname":     info.Nickname,
		}
		if info.Email != "" {
			meta["email"] = info.Email
		}

		if _, err := s.repo.SocialCredentials().CreateTx(ctx, tx, &SocialCredential{
			Provider:   providerName,
			ExternalID: info.ProviderUserID,
			UserID:     user.ID,
			Metadata:   meta,
		}); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "failed to create social credential")
		}

		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	s.logger.Info("registered social identity provider=%s user=%s", providerName, userID)

	return userID, nil
}
