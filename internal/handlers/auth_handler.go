package handlers

import (
	"vastraa/internal/middleware"
	"vastraa/internal/services"
	"vastraa/internal/session"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	log         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/otp/request", h.HandleRequestOTP)
	authRoutes.Post("/otp/verify", h.HandleVerifyOTP)
	authRoutes.Post("/logout", h.HandleLogout)
	authRoutes.Get("/me", middleware.AuthRequired(), h.HandleMe)
	authRoutes.Put("/password", middleware.AuthRequired(), h.HandleChangePassword)
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var in services.SignUpInput
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	user, err := h.authService.SignUp(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, "Registration failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// HandleLogin handles user login and returns a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var creds struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if ok, err := parseBody(c, &creds); !ok {
		return err
	}
	result, err := h.authService.SignInWithPassword(c.UserContext(), creds.Email, creds.Password)
	if err != nil {
		return respondError(c, h.log, "Login failed", err)
	}
	return c.JSON(result)
}

// HandleRequestOTP sends a one-time sign-in code to the given email.
func (h *AuthHandler) HandleRequestOTP(c *fiber.Ctx) error {
	var body struct {
		Email string `json:"email" validate:"required,email"`
	}
	if ok, err := parseBody(c, &body); !ok {
		return err
	}
	if err := h.authService.RequestOTP(c.UserContext(), body.Email); err != nil {
		return respondError(c, h.log, "Could not send code", err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Code sent",
	})
}

// HandleVerifyOTP exchanges a one-time code for a token.
func (h *AuthHandler) HandleVerifyOTP(c *fiber.Ctx) error {
	var body struct {
		Email string `json:"email" validate:"required,email"`
		Code  string `json:"code" validate:"required,len=6,numeric"`
	}
	if ok, err := parseBody(c, &body); !ok {
		return err
	}
	result, err := h.authService.VerifyOTP(c.UserContext(), body.Email, body.Code)
	if err != nil {
		return respondError(c, h.log, "Verification failed", err)
	}
	return c.JSON(result)
}

// HandleLogout revokes the bearer token of the request.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	token, ok := middleware.BearerToken(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authorization header is required",
		})
	}
	if err := h.authService.SignOut(c.UserContext(), token); err != nil {
		return respondError(c, h.log, "Logout failed", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleMe returns the profile of the signed-in user.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	user, err := h.authService.GetUser(c.UserContext(), session.From(c))
	if err != nil {
		return respondError(c, h.log, "Could not retrieve profile", err)
	}
	return c.JSON(user)
}

func (h *AuthHandler) HandleChangePassword(c *fiber.Ctx) error {
	var body struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
	}
	if ok, err := parseBody(c, &body); !ok {
		return err
	}
	if err := h.authService.ChangePassword(c.UserContext(), session.From(c), body.CurrentPassword, body.NewPassword); err != nil {
		return respondError(c, h.log, "Could not change password", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
