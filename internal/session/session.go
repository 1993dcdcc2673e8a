package session

import (
	"vastraa/internal/apperrors"

	"github.com/gofiber/fiber/v2"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"

	localsKey = "session"
)

// Session identifies the caller of a data-access operation.
// The zero value is an anonymous caller.
type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	// TokenID is the jti of the token the session was resolved from.
	TokenID string `json:"-"`
}

// Authenticated reports whether the session belongs to a signed-in user.
func (s Session) Authenticated() bool {
	return s.UserID != ""
}

// IsAdmin reports whether the caller may use the back-office.
func (s Session) IsAdmin() bool {
	return s.Authenticated() && s.Role == RoleAdmin
}

// Require returns AuthRequired for anonymous sessions.
func (s Session) Require() error {
	if !s.Authenticated() {
		return apperrors.AuthRequired()
	}
	return nil
}

// Store attaches the session to the request.
func Store(c *fiber.Ctx, s Session) {
	c.Locals(localsKey, s)
}

// From returns the session attached to the request, or an anonymous one.
func From(c *fiber.Ctx) Session {
	if s, ok := c.Locals(localsKey).(Session); ok {
		return s
	}
	return Session{}
}
