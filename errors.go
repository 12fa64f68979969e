package account

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeTokenNotFound       = "TOKEN_NOT_FOUND"
	TextCodeTokenInvalid        = "TOKEN_INVALID"
	TextCodeAccessTokenExpired  = "ACCESS_TOKEN_EXPIRED"
	TextCodeRefreshTokenExpired = "REFRESH_TOKEN_EXPIRED"
	TextCodeUserNotFound        = "USER_NOT_FOUND"
	TextCodeBadCredentials      = "BAD_CREDENTIALS"
	TextCodeDuplicateLoginID    = "DUPLICATE_LOGIN_ID"
	TextCodeResetTokenInvalid   = "RESET_TOKEN_INVALID"
	TextCodeResetTokenExpired   = "RESET_TOKEN_EXPIRED"
)

// ErrTokenNotFound is returned when a protected call carries no token.
var ErrTokenNotFound = goerrors.New("token not found", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenNotFound).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenInvalid covers bad signatures, malformed payloads, and claim
// shapes that are neither access nor refresh.
var ErrTokenInvalid = goerrors.New("invalid token", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalid).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccessTokenExpired is terminal for the current call; the client must
// present its refresh token instead. Note the dedicated 403 status.
var ErrAccessTokenExpired = goerrors.New("access token expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeAccessTokenExpired).
	WithCode(goerrors.CodeForbidden)

// ErrRefreshTokenExpired means the session is over; the client must log in again.
var ErrRefreshTokenExpired = goerrors.New("refresh token expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeRefreshTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrUserNotFound is raised at the session boundary when a decoded token
// points at an identity that is missing or soft-deleted.
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryAuth).
	WithTextCode(TextCodeUserNotFound).
	WithCode(goerrors.CodeUnauthorized)

// ErrBadCredentials is the login failure for a wrong password.
var ErrBadCredentials = goerrors.New("wrong password", goerrors.CategoryAuth).
	WithTextCode(TextCodeBadCredentials).
	WithCode(goerrors.CodeBadRequest)

// ErrLoginIDNotFound is the login failure for an unknown login id.
var ErrLoginIDNotFound = goerrors.New("login id does not exist", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeBadRequest)

// ErrIdentityDeleted is returned when credentials resolve to a withdrawn account.
var ErrIdentityDeleted = goerrors.New("account has been withdrawn", goerrors.CategoryAuth).
	WithCode(goerrors.CodeBadRequest)

// ErrDuplicateLoginID is returned when signup races or repeats a login id.
var ErrDuplicateLoginID = goerrors.New("login id is already taken", goerrors.CategoryConflict).
	WithTextCode(TextCodeDuplicateLoginID).
	WithCode(goerrors.CodeConflict)

// ErrProfileNotFound is the find-id failure when no profile matches.
var ErrProfileNotFound = goerrors.New("no matching user", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeBadRequest)

// ErrResetTokenInvalid is returned when no credential holds the presented
// reset token: never issued, already consumed, or overwritten by a reissue.
var ErrResetTokenInvalid = goerrors.New("password reset verification failed", goerrors.CategoryAuth).
	WithTextCode(TextCodeResetTokenInvalid).
	WithCode(goerrors.CodeBadRequest)

// ErrResetTokenExpired is returned when a reset token outlived its TTL.
var ErrResetTokenExpired = goerrors.New("password reset token has expired", goerrors.CategoryValidation).
	WithTextCode(TextCodeResetTokenExpired).
	WithCode(goerrors.CodeBadRequest)
