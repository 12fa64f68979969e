package account

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// TokenCodec signs and verifies session tokens with the process-wide
// symmetric secret. It is the only component touching the signing key.
// Expiry is carried as data and checked by the caller, not here.
type TokenCodec struct {
	signingKey []byte
	now        func() time.Time
	logger     Logger
}

// NewTokenCodec creates a codec for the given signing key.
func NewTokenCodec(signingKey []byte) *TokenCodec {
	return &TokenCodec{
		signingKey: signingKey,
		now:        time.Now,
		logger:     defLogger{},
	}
}

// NewTokenCodecFromConfig creates a codec from the app configuration.
func NewTokenCodecFromConfig(cfg Config) *TokenCodec {
	return NewTokenCodec([]byte(cfg.GetSigningKey()))
}

// WithClock injects a custom clock (useful for tests).
func (tc *TokenCodec) WithClock(clock func() time.Time) *TokenCodec {
	if clock != nil {
		tc.now = clock
	}
	return tc
}

func (tc *TokenCodec) WithLogger(logger Logger) *TokenCodec {
	if logger != nil {
		tc.logger = logger
	}
	return tc
}

// Issue signs a token of the given kind for the identity id, embedding an
// expiry of now+ttl in the shape the kind demands.
func (tc *TokenCodec) Issue(userID string, kind TokenKind, ttl time.Duration) (string, error) {
	exp := tc.now().Add(ttl).Format(time.RFC3339)

	claims := &SessionClaims{UserID: userID}
	switch kind {
	case TokenKindAccess:
		claims.AccessTokenExp = exp
	case TokenKindRefresh:
		claims.RefreshTokenExp = exp
	default:
		return "", goerrors.New(fmt.Sprintf("unknown token kind: %q", kind), goerrors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(tc.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign session token")
	}

	return signed, nil
}

// Decode verifies the signature and structural shape of a raw token and
// returns its claims. It fails with ErrTokenInvalid on a bad signature,
// unexpected signing method, malformed payload, or a both/neither claim
// shape. A token whose embedded expiry has passed still decodes.
func (tc *TokenCodec) Decode(raw string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return tc.signingKey, nil
	})
	if err != nil {
		tc.logger.Debug("token decode failed: %v", err)
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if _, err := claims.Kind(); err != nil {
		return nil, err
	}

	return claims, nil
}
