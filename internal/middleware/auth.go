package middleware

import (
	"context"
	"strings"

	"vastraa/internal/apperrors"
	"vastraa/internal/session"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TokenValidator resolves a bearer token to a session.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (session.Session, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) (string, bool) {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Session attaches the caller's session to every request. Requests without a token proceed
// anonymously; a token that is present but invalid is rejected.
func Session(auth TokenValidator, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return c.Next()
		}
		token, ok := BearerToken(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		sess, err := auth.ValidateToken(c.UserContext(), token)
		if err != nil {
			log.Debug("token validation failed", zap.Error(err))
			status := fiber.StatusUnauthorized
			if apperrors.Is(err, apperrors.KindRemoteFailure) {
				status = fiber.StatusBadGateway
			}
			return c.Status(status).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		session.Store(c, sess)
		return c.Next()
	}
}

// AuthRequired rejects anonymous requests. It must run after Session.
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !session.From(c).Authenticated() {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}
		return c.Next()
	}
}

// AdminOnly rejects callers without the admin role. It must run after Session.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := session.From(c)
		if !sess.Authenticated() {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}
		if !sess.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Admin access required",
			})
		}
		return c.Next()
	}
}
