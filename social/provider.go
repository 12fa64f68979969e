// Package social defines the outbound OAuth boundary: exchanging an
// authorization code for a provider token and fetching the provider
// profile, normalized away from provider-specific payloads.
package social

import (
	"context"
	"time"
)

// Provider is an OAuth2 authorization-code provider.
type Provider interface {
	// Name returns the provider identifier (e.g., "kakao").
	Name() string

	// Exchange trades an authorization code for an access token.
	Exchange(ctx context.Context, code string) (*Token, error)

	// UserInfo fetches the user's profile using the access token.
	UserInfo(ctx context.Context, token *Token) (*Profile, error)
}

// Token represents an OAuth2 token response.
type Token struct {
	AccessToken  string
	TokenType    string
	RefreshToken string
	ExpiresAt    time.Time
	Raw          map[string]any
}

// Profile represents normalized user information from a provider.
type Profile struct {
	ProviderUserID string
	Provider       string
	Nickname       string
	Email          string
	ConnectedAt    string
	Raw            map[string]any
}
