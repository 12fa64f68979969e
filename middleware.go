package account

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// IdentityLocalsKey is the fiber locals key holding the authenticated *User.
const IdentityLocalsKey = "account:identity"

// TokenFromHeader extracts the session token from the Authorization
// header. A "Bearer " prefix is accepted but not required; the original
// clients send the raw token.
func TokenFromHeader(c *fiber.Ctx) string {
	raw := c.Get(fiber.HeaderAuthorization)
	if after, ok := strings.CutPrefix(raw, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(raw)
}

// RequireSession guards a route group with the session state machine.
// A live access token binds the identity into the request context and
// passes through. A live refresh token short-circuits the route: the
// response is a fresh access token and the protected operation does not
// run. Every other state becomes an error for the app's error handler.
func RequireSession(sessions *SessionAuthority) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := sessions.Authenticate(c.UserContext(), TokenFromHeader(c))
		if err != nil {
			return err
		}

		if result.State == StateRefreshed {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"access_token": result.AccessToken,
			})
		}

		c.Locals(IdentityLocalsKey, result.Identity)
		c.SetUserContext(WithIdentity(c.UserContext(), result.Identity))

		return c.Next()
	}
}

// IdentityFromFiber returns the identity bound by RequireSession.
func IdentityFromFiber(c *fiber.Ctx) (*User, bool) {
	user, ok := c.Locals(IdentityLocalsKey).(*User)
	return user, ok && user != nil
}
