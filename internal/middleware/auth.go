// Package middleware provides request-scoped logging, authentication, rate
// limiting and tracing for the HTTP server.
package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// TokenVerifier checks a bearer token and returns the admin it was issued to
// and the token id used for revocation.
type TokenVerifier func(ctx context.Context, token string) (adminID uint, tokenID string, err error)

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The second return is a client-facing message when it is missing
// or malformed.
func BearerToken(c *fiber.Ctx) (string, string) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", "Authorization header required"
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", "Invalid authorization header format"
	}
	return parts[1], ""
}

// AuthRequired rejects requests without a valid admin bearer token. On
// success the admin and token ids are stored in Fiber locals and in the user
// context for logging.
func AuthRequired(verify TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, problem := BearerToken(c)
		if problem != "" {
			return unauthorized(c, problem)
		}

		adminID, tokenID, err := verify(c.UserContext(), token)
		if err != nil || adminID == 0 {
			return unauthorized(c, "Invalid token")
		}

		c.Locals(LocalAdminID, adminID)
		c.Locals(LocalTokenID, tokenID)
		c.SetUserContext(context.WithValue(c.UserContext(), AdminIDKey, adminID))

		return c.Next()
	}
}

// AdminID returns the authenticated admin id, or 0 outside AuthRequired.
func AdminID(c *fiber.Ctx) uint {
	id, _ := c.Locals(LocalAdminID).(uint)
	return id
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": message,
		"code":  "UNAUTHORIZED",
	})
}
