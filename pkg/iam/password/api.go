package password

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fundora/fundora/pkg/errx"
	"github.com/fundora/fundora/pkg/iam/auth"
	"github.com/fundora/fundora/pkg/kernel"
	"github.com/fundora/fundora/pkg/validatex"
)

type forgotRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyResetOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type resetRequest struct {
	Email       string `json:"email" validate:"required,email"`
	ResetToken  string `json:"resetToken" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// Handlers exposes the password reset and change endpoints.
type Handlers struct {
	service *Service
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes mounts the public reset flow and the authenticated
// change-password route.
func (h *Handlers) RegisterRoutes(app *fiber.App, authMW *auth.TokenMiddleware) {
	group := app.Group("/api/password")
	group.Post("/forgot", h.forgot)
	group.Post("/verify-otp", h.verifyOTP)
	group.Post("/reset", h.reset)

	app.Put("/api/users/change-password", authMW.Authenticate(), h.changePassword)
}

func (h *Handlers) forgot(c *fiber.Ctx) error {
	var req forgotRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Wrap(err, "invalid request body", errx.TypeValidation)
	}
	if err := validatex.Struct(req); err != nil {
		return err
	}

	if err := h.service.Forgot(c.Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": GenericForgotAck})
}

func (h *Handlers) verifyOTP(c *fiber.Ctx) error {
	var req verifyResetOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Wrap(err, "invalid request body", errx.TypeValidation)
	}
	if err := validatex.Struct(req); err != nil {
		return err
	}

	resetToken, err := h.service.VerifyResetOTP(c.Context(), req.Email, req.OTP)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":    "OTP verified successfully",
		"resetToken": resetToken,
		"email":      req.Email,
	})
}

func (h *Handlers) reset(c *fiber.Ctx) error {
	var req resetRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Wrap(err, "invalid request body", errx.TypeValidation)
	}
	if err := validatex.Struct(req); err != nil {
		return err
	}

	if err := h.service.Reset(c.Context(), req.Email, req.ResetToken, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password reset successfully"})
}

func (h *Handlers) changePassword(c *fiber.Ctx) error {
	authCtx, ok := c.Locals("auth").(*kernel.AuthContext)
	if !ok || !authCtx.IsValid() {
		return auth.ErrUnauthorized()
	}

	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Wrap(err, "invalid request body", errx.TypeValidation)
	}
	if err := validatex.Struct(req); err != nil {
		return err
	}

	if err := h.service.ChangePassword(c.Context(), authCtx.AccountID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}
