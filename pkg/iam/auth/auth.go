package auth

import (
	"net/http"
	"time"

	"github.com/fundora/fundora/pkg/errx"
	"github.com/fundora/fundora/pkg/iam/account"
	"github.com/fundora/fundora/pkg/kernel"
)

// ============================================================================
// Token Types
// ============================================================================

// TokenPurpose separates the three token families. Each purpose is signed
// under its own key and carries its own audience, so a token minted for one
// purpose can never validate as another.
type TokenPurpose string

const (
	PurposeAccess  TokenPurpose = "access"
	PurposeRefresh TokenPurpose = "refresh"
	PurposeReset   TokenPurpose = "password_reset"
)

// VerifyStatus tags why verification failed, so callers can map outcomes to
// the right HTTP answer without parsing error strings.
type VerifyStatus int

const (
	VerifyOK VerifyStatus = iota
	VerifyExpired
	VerifyMalformed
	VerifyBadSignature
)

// TokenClaims is the decoded, verified content of a token.
type TokenClaims struct {
	AccountID kernel.AccountID `json:"account_id"`
	Email     string           `json:"email"`
	Role      string           `json:"role"`
	Purpose   TokenPurpose     `json:"purpose"`
	IssuedAt  time.Time        `json:"iat"`
	ExpiresAt time.Time        `json:"exp"`
}

// ============================================================================
// Response Types
// ============================================================================

// Profile is the public projection of an account.
type Profile struct {
	ID       kernel.AccountID `json:"id"`
	Name     string           `json:"name"`
	Email    string           `json:"email"`
	Role     account.Role     `json:"role"`
	Verified bool             `json:"verified"`
}

// ProfileOf projects an account.
func ProfileOf(acc *account.Account) Profile {
	return Profile{
		ID:       acc.ID,
		Name:     acc.Name,
		Email:    acc.Email,
		Role:     acc.Role,
		Verified: acc.Verified,
	}
}

// Credentials is a profile plus a freshly minted token pair.
type Credentials struct {
	Profile      Profile `json:"user"`
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("AUTH")

var (
	// The login failure message never says whether the email exists or the
	// password was wrong.
	CodeInvalidCredentials = ErrRegistry.Register("INVALID_CREDENTIALS", errx.TypeAuthorization, http.StatusUnauthorized, "Invalid email or password")

	CodeRefreshRequired = ErrRegistry.Register("REFRESH_REQUIRED", errx.TypeAuthorization, http.StatusUnauthorized, "Refresh token required")
	CodeRefreshInvalid  = ErrRegistry.Register("REFRESH_INVALID", errx.TypeForbidden, http.StatusForbidden, "Invalid or expired refresh token")

	CodeTokenGenerationFailed = ErrRegistry.Register("TOKEN_GENERATION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Token generation failed")
	CodeTokenValidationFailed = ErrRegistry.Register("TOKEN_VALIDATION_FAILED", errx.TypeAuthorization, http.StatusUnauthorized, "Token validation failed")
	CodeUnauthorized          = ErrRegistry.Register("UNAUTHORIZED", errx.TypeAuthorization, http.StatusUnauthorized, "Authentication required")
)

func ErrInvalidCredentials() *errx.Error    { return ErrRegistry.New(CodeInvalidCredentials) }
func ErrRefreshRequired() *errx.Error       { return ErrRegistry.New(CodeRefreshRequired) }
func ErrRefreshInvalid() *errx.Error        { return ErrRegistry.New(CodeRefreshInvalid) }
func ErrTokenGenerationFailed() *errx.Error { return ErrRegistry.New(CodeTokenGenerationFailed) }
func ErrTokenValidationFailed() *errx.Error { return ErrRegistry.New(CodeTokenValidationFailed) }
func ErrUnauthorized() *errx.Error          { return ErrRegistry.New(CodeUnauthorized) }
