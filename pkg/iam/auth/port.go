package auth

import (
	"context"

	"github.com/fundora/fundora/pkg/kernel"
)

// TokenService mints and verifies purpose-bound tokens.
type TokenService interface {
	IssueAccess(accountID kernel.AccountID, email, role string) (string, error)
	IssueRefresh(accountID kernel.AccountID) (string, error)
	IssueReset(accountID kernel.AccountID) (string, error)

	// Verify checks the token against the expected purpose's key and audience.
	// On failure the claims are nil and the status says why.
	Verify(token string, purpose TokenPurpose) (*TokenClaims, VerifyStatus)
}

// PasswordHasher hides the hashing scheme from orchestration code.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// AuditService records security-relevant identity events.
type AuditService interface {
	LogRegistration(ctx context.Context, accountID kernel.AccountID, email string)
	LogLoginAttempt(ctx context.Context, email string, success bool, ip string)
	LogTokenRefresh(ctx context.Context, accountID kernel.AccountID, ip string)
	LogLogout(ctx context.Context, accountID kernel.AccountID, ip string)
	LogOTPVerification(ctx context.Context, email string, success bool)
	LogPasswordReset(ctx context.Context, accountID kernel.AccountID, stage string)
}
