// Package account implements the user-account service: registration,
// credential login, password recovery, and the access/refresh session
// token lifecycle, plus Kakao OAuth login and signup.
//
// The core pieces are the TokenCodec (signed session tokens), the
// SessionAuthority (per-request token state machine with silent refresh),
// and the ResetTokenAuthority (single-use password-reset tokens). The
// AccountService orchestrates them over bun-backed stores.
package account
