package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fundora/fundora/pkg/kernel"
)

// TokenMiddleware authenticates requests carrying a Bearer access token.
type TokenMiddleware struct {
	tokens TokenService
}

func NewTokenMiddleware(tokens TokenService) *TokenMiddleware {
	return &TokenMiddleware{tokens: tokens}
}

// Authenticate verifies the access token and injects the auth context into
// the request. Only access-purpose tokens pass: a refresh or reset token in
// the Authorization header is rejected like any other invalid token.
func (m *TokenMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearer(c.Get("Authorization"))
		if token == "" {
			return ErrUnauthorized()
		}

		claims, status := m.tokens.Verify(token, PurposeAccess)
		if status != VerifyOK {
			return ErrTokenValidationFailed()
		}

		c.Locals("auth", &kernel.AuthContext{
			AccountID: claims.AccountID,
			Email:     claims.Email,
			Role:      claims.Role,
		})
		return c.Next()
	}
}

func extractBearer(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
