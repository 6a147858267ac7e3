package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// Limiter decides whether a key may issue another request.
type Limiter interface {
	Allow(key string) bool
}

// RateLimit throttles per authenticated user, falling back to the client IP.
// It must run after Auth.
func RateLimit(l Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := UserID(c)
		if key == "" {
			key = "ip:" + c.IP()
		}
		if !l.Allow(key) {
			c.Set(fiber.HeaderRetryAfter, "1")
			return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded")
		}
		return c.Next()
	}
}
