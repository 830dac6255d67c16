package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/AYOPELUMI/support-ticket-system/internal/api/dto"
	"github.com/AYOPELUMI/support-ticket-system/internal/auth"
	"github.com/AYOPELUMI/support-ticket-system/internal/service"
	apperrors "github.com/AYOPELUMI/support-ticket-system/pkg/util"
)

// AuthHandler exposes registration, login and logout endpoints.
type AuthHandler struct {
	auth     *service.AuthService
	cookies  *auth.SessionCookies
	resolver *auth.Resolver
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authService *service.AuthService, cookies *auth.SessionCookies, resolver *auth.Resolver) *AuthHandler {
	return &AuthHandler{auth: authService, cookies: cookies, resolver: resolver}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid payload", nil)
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("All fields are required", nil)
	}

	user, token, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	h.cookies.Set(c, token)
	return c.Status(fiber.StatusCreated).JSON(dto.OK("Registration successful", dto.UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("All fields are required", nil)
	}

	user, token, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.cookies.Set(c, token)
	return c.JSON(dto.OK("Login successful", dto.UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}))
}

// Logout handles POST /auth/logout. Clearing an absent session is a
// no-op success.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID := ""
	if user, ok := h.resolver.Resolve(c); ok {
		userID = user.ID
	}
	h.cookies.Clear(c)
	h.auth.Logout(c.UserContext(), userID)
	return c.JSON(dto.OK("Logout successful", nil))
}
