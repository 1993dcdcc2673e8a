package middleware_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"vastraa/internal/apperrors"
	"vastraa/internal/middleware"
	"vastraa/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubValidator map[string]session.Session

func (v stubValidator) ValidateToken(_ context.Context, token string) (session.Session, error) {
	if token == "broken-store" {
		return session.Session{}, apperrors.Remote("failed to check token revocation", errors.New("redis down"))
	}
	sess, ok := v[token]
	if !ok {
		return session.Session{}, apperrors.New(apperrors.KindAuthRequired, "invalid token", nil)
	}
	return sess, nil
}

func newApp() *fiber.App {
	validator := stubValidator{
		"customer-token": {UserID: "u1", Role: session.RoleCustomer},
		"admin-token":    {UserID: "a1", Role: session.RoleAdmin},
	}
	app := fiber.New()
	app.Use(middleware.Session(validator, zap.NewNop()))
	app.Get("/public", func(c *fiber.Ctx) error {
		return c.SendString(session.From(c).UserID)
	})
	app.Get("/private", middleware.AuthRequired(), func(c *fiber.Ctx) error {
		return c.SendString(session.From(c).UserID)
	})
	app.Get("/admin", middleware.AdminOnly(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func do(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestSessionMiddleware(t *testing.T) {
	app := newApp()

	assert.Equal(t, fiber.StatusOK, do(t, app, "/public", ""))
	assert.Equal(t, fiber.StatusOK, do(t, app, "/public", "Bearer customer-token"))
	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, "/public", "Token customer-token"))
	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, "/public", "Bearer forged"))
	assert.Equal(t, fiber.StatusBadGateway, do(t, app, "/public", "Bearer broken-store"))
}

func TestAuthRequiredAndAdminOnly(t *testing.T) {
	app := newApp()

	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, "/private", ""))
	assert.Equal(t, fiber.StatusOK, do(t, app, "/private", "Bearer customer-token"))

	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, "/admin", ""))
	assert.Equal(t, fiber.StatusForbidden, do(t, app, "/admin", "Bearer customer-token"))
	assert.Equal(t, fiber.StatusNoContent, do(t, app, "/admin", "Bearer admin-token"))
}
