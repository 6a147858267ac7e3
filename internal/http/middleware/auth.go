package middleware

import (
	"github.com/gofiber/fiber/v2"

	"todoboard/internal/auth"
)

const UserIDLocalKey = "user_id"

// TokenVerifier resolves a bearer token to the calling user.
type TokenVerifier interface {
	Verify(raw string) (auth.Identity, error)
}

// Auth rejects requests without a valid bearer token and stores the user id
// in the context locals.
func Auth(v TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := v.Verify(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or missing bearer token")
		}
		c.Locals(UserIDLocalKey, id.UserID)
		return c.Next()
	}
}

// UserID returns the authenticated user, or "" before Auth ran.
func UserID(c *fiber.Ctx) string {
	uid, _ := c.Locals(UserIDLocalKey).(string)
	return uid
}
