package account

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind discriminates the two mutually exclusive claim shapes.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// SessionClaims is the payload of a signed session token. Exactly one of
// AccessTokenExp and RefreshTokenExp is set; expiries travel as RFC 3339
// strings and are compared against the wall clock by the SessionAuthority,
// never by the codec.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID          string `json:"id"`
	AccessTokenExp  string `json:"access_token_exp,omitempty"`
	RefreshTokenExp string `json:"refresh_token_exp,omitempty"`
}

// Kind reports which claim shape the token carries. A token with both or
// neither expiry claim is structurally invalid.
func (c *SessionClaims) Kind() (TokenKind, error) {
	switch {
	case c.AccessTokenExp != "" && c.RefreshTokenExp != "":
		return "", ErrTokenInvalid
	case c.AccessTokenExp != "":
		return TokenKindAccess, nil
	case c.RefreshTokenExp != "":
		return TokenKindRefresh, nil
	default:
		return "", ErrTokenInvalid
	}
}

// Expiry parses the embedded expiry timestamp for whichever shape is set.
func (c *SessionClaims) Expiry() (time.Time, error) {
	kind, err := c.Kind()
	if err != nil {
		return time.Time{}, err
	}

	raw := c.AccessTokenExp
	if kind == TokenKindRefresh {
		raw = c.RefreshTokenExp
	}

	exp, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, ErrTokenInvalid
	}

	return exp, nil
}

// UserUUID parses the identity id carried by the token.
func (c *SessionClaims) UserUUID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.UserID)
	if err != nil {
		return uuid.Nil, ErrTokenInvalid
	}
	return id, nil
}
