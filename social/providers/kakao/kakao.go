// Package kakao implements the social.Provider interface for Kakao's
// authorization-code grant and profile API.
package kakao

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ondo-app/account/social"
)

const (
	defaultTokenURL    = "https://kauth.kakao.com/oauth/token"
	defaultUserInfoURL = "https://kapi.kakao.com/v2/user/me"
)

// Config holds Kakao OAuth configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	TokenURL    string
	UserInfoURL string

	HTTPClient *http.Client
}

// Provider implements social.Provider for Kakao.
type Provider struct {
	config     Config
	httpClient *http.Client
}

// New creates a new Kakao provider.
func New(cfg Config) *Provider {
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = defaultUserInfoURL
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Provider{
		config:     cfg,
		httpClient: client,
	}
}

// Name implements social.Provider.
func (p *Provider) Name() string {
	return "kakao"
}

// Exchange implements social.Provider.
func (p *Provider) Exchange(ctx context.Context, code string) (*social.Token, error) {
	data := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {p.config.ClientID},
		"client_secret": {p.config.ClientSecret},
		"redirect_uri":  {p.config.RedirectURI},
		"code":          {code},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var tokenResp kakaoTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, providerError("exchange", resp.StatusCode, "invalid_response", "failed to decode token response", err)
	}

	if resp.StatusCode != http.StatusOK || tokenResp.Error != "" {
		return nil, providerError("exchange", resp.StatusCode, tokenResp.Error, tokenResp.ErrorDesc, nil)
	}
	if tokenResp.AccessToken == "" {
		return nil, providerError("exchange", resp.StatusCode, "missing_access_token", "missing access token", nil)
	}

	expiresAt := time.Time{}
	if tokenResp.ExpiresIn > 0 {
		expiresAt = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	}

	return &social.Token{
		AccessToken:  tokenResp.AccessToken,
		TokenType:    tokenResp.TokenType,
		RefreshToken: tokenResp.RefreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// UserInfo implements social.Provider.
func (p *Provider) UserInfo(ctx context.Context, token *social.Token) (*social.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.UserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		code, desc := parseKakaoError(body)
		return nil, providerError("user_info", resp.StatusCode, code, desc, nil)
	}

	var userInfo kakaoUserInfo
	if err := json.Unmarshal(body, &userInfo); err != nil {
		return nil, providerError("user_info", resp.StatusCode, "invalid_response", "failed to decode userinfo response", err)
	}

	return mapProfile(&userInfo), nil
}

func providerError(operation string, status int, code, description string, err error) *social.ProviderError {
	return &social.ProviderError{
		Provider:    "kakao",
		Operation:   operation,
		Status:      status,
		Code:        code,
		Description: description,
		Err:         err,
	}
}
