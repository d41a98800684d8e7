package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fundora/fundora/pkg/errx"
	"github.com/fundora/fundora/pkg/iam/account"
	"github.com/fundora/fundora/pkg/kernel"
	"github.com/fundora/fundora/pkg/validatex"
)

// ============================================================================
// Request DTOs
// ============================================================================

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=backer creator admin"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type sendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// ============================================================================
// Handlers
// ============================================================================

// AuthHandlers exposes the registration, session and OTP endpoints.
type AuthHandlers struct {
	service *AuthService
}

func NewAuthHandlers(service *AuthService) *AuthHandlers {
	return &AuthHandlers{service: service}
}

// RegisterRoutes mounts the public auth and OTP routes plus the authenticated
// profile route.
func (h *AuthHandlers) RegisterRoutes(app *fiber.App, authMW *TokenMiddleware) {
	authGroup := app.Group("/api/auth")
	authGroup.Post("/register", h.register)
	authGroup.Post("/login", h.login)
	authGroup.Post("/refresh", h.refresh)
	authGroup.Post("/logout", h.logout)

	otpGroup := app.Group("/api/otp")
	otpGroup.Post("/send", h.sendOTP)
	otpGroup.Post("/verify", h.verifyOTP)
	otpGroup.Post("/resend", h.sendOTP)

	app.Get("/api/users/me", authMW.Authenticate(), h.me)
}

func (h *AuthHandlers) register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Wrap(err, "invalid request body", errx.TypeValidation)
	}
	if err := validatex.Struct(req); err != nil {
		return err
	}

	profile, err := h.service.Register(c.Context(), req.Name, req.Email, req.Password, account.Role(req.Role))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful. Please verify your email with the OTP sent.",
		"user":    profile,
	})
}

func (h *AuthHandlers) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Wrap(err, "invalid request body", errx.TypeValidation)
	}
	if err := validatex.Struct(req); err != nil {
		return err
	}

	creds, err := h.service.Login(c.Context(), req.Email, req.Password, c.IP())
	if err != nil {
		return err
	}
	return c.JSON(creds)
}

func (h *AuthHandlers) refresh(c *fiber.Ctx) error {
	var req refreshRequest
	// A missing or malformed body is the same as a missing token: 401.
	if err := c.BodyParser(&req); err != nil {
		return ErrRefreshRequired()
	}

	accessToken, err := h.service.Refresh(c.Context(), req.RefreshToken, c.IP())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"accessToken": accessToken})
}

func (h *AuthHandlers) logout(c *fiber.Ctx) error {
	var req logoutRequest
	if err := c.BodyParser(&req); err == nil {
		h.service.Logout(c.Context(), req.RefreshToken, c.IP())
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandlers) sendOTP(c *fiber.Ctx) error {
	var req sendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Wrap(err, "invalid request body", errx.TypeValidation)
	}
	if err := validatex.Struct(req); err != nil {
		return err
	}

	window, err := h.service.SendVerificationOTP(c.Context(), req.Email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":          "OTP sent successfully",
		"expiresInSeconds": int(window.Seconds()),
	})
}

func (h *AuthHandlers) verifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Wrap(err, "invalid request body", errx.TypeValidation)
	}
	if err := validatex.Struct(req); err != nil {
		return err
	}

	creds, err := h.service.VerifyRegistrationOTP(c.Context(), req.Email, req.OTP)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":      "Email verified successfully",
		"user":         creds.Profile,
		"accessToken":  creds.AccessToken,
		"refreshToken": creds.RefreshToken,
	})
}

func (h *AuthHandlers) me(c *fiber.Ctx) error {
	authCtx, ok := c.Locals("auth").(*kernel.AuthContext)
	if !ok || !authCtx.IsValid() {
		return ErrUnauthorized()
	}

	profile, err := h.service.Me(c.Context(), authCtx.AccountID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": profile})
}
