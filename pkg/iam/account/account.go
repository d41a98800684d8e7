package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/fundora/fundora/pkg/kernel"
)

// MaxRefreshTokens bounds the number of concurrent sessions per account.
// Logging in past the cap evicts the oldest token.
const MaxRefreshTokens = 5

// Role classifies what an account can do on the platform.
type Role string

const (
	RoleBacker  Role = "backer"
	RoleCreator Role = "creator"
	RoleAdmin   Role = "admin"
)

// IsValid reports whether the role is one of the known values.
func (r Role) IsValid() bool {
	switch r {
	case RoleBacker, RoleCreator, RoleAdmin:
		return true
	}
	return false
}

// OTPChallenge is a pending email verification code. At most one is active
// per account; a verified account never holds one.
type OTPChallenge struct {
	Code      string
	ExpiresAt time.Time
}

// Expired reports whether the challenge is past its window. The boundary
// instant itself is still valid: only now strictly after ExpiresAt expires.
func (c OTPChallenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// PasswordResetChallenge tracks the two-step reset flow: first an OTP, then a
// single-use signed reset token once the OTP is consumed.
type PasswordResetChallenge struct {
	OTP          *string
	OTPExpiresAt *time.Time
	ResetToken   *string
}

// OTPPending reports whether the challenge is still in its OTP phase.
func (p PasswordResetChallenge) OTPPending() bool {
	return p.OTP != nil && p.OTPExpiresAt != nil
}

// Account is the identity record: the single source of truth for
// registration state, credentials and active sessions.
type Account struct {
	ID           kernel.AccountID
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Verified     bool

	OTP           *OTPChallenge
	PasswordReset *PasswordResetChallenge

	// RefreshTokens is insertion-ordered: index 0 is the oldest session.
	RefreshTokens []string

	// Version backs optimistic concurrency in the store. Every successful
	// Save bumps it; a conditional update that observes a different version
	// fails instead of silently losing a concurrent write.
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates an unverified account with a freshly generated ID.
func New(name, email, passwordHash string, role Role) *Account {
	now := time.Now().UTC()
	return &Account{
		ID:           kernel.NewAccountID(uuid.NewString()),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Verified:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ─── Verification lifecycle ──────────────────────────────────────────────────

// SetOTPChallenge installs (or overwrites) the pending verification code.
func (a *Account) SetOTPChallenge(code string, expiresAt time.Time) {
	a.OTP = &OTPChallenge{Code: code, ExpiresAt: expiresAt}
}

// ClearOTPChallenge drops any pending verification code.
func (a *Account) ClearOTPChallenge() {
	a.OTP = nil
}

// MarkVerified transitions the account to verified and clears the challenge,
// upholding the invariant that verified accounts never hold one.
func (a *Account) MarkVerified() {
	a.Verified = true
	a.OTP = nil
}

// ─── Refresh token set ───────────────────────────────────────────────────────

// AppendRefreshToken appends a session token, evicting the oldest entries
// once the set exceeds MaxRefreshTokens.
func (a *Account) AppendRefreshToken(token string) {
	a.RefreshTokens = append(a.RefreshTokens, token)
	if n := len(a.RefreshTokens); n > MaxRefreshTokens {
		a.RefreshTokens = a.RefreshTokens[n-MaxRefreshTokens:]
	}
}

// SeedRefreshToken resets the set to a single session (post-verification
// auto-login).
func (a *Account) SeedRefreshToken(token string) {
	a.RefreshTokens = []string{token}
}

// RemoveRefreshToken removes exactly the given token. It reports whether the
// token was present.
func (a *Account) RemoveRefreshToken(token string) bool {
	for i, t := range a.RefreshTokens {
		if t == token {
			a.RefreshTokens = append(a.RefreshTokens[:i], a.RefreshTokens[i+1:]...)
			return true
		}
	}
	return false
}

// HasRefreshToken reports whether the exact token string is in the set.
func (a *Account) HasRefreshToken(token string) bool {
	for _, t := range a.RefreshTokens {
		if t == token {
			return true
		}
	}
	return false
}

// ClearRefreshTokens drops every active session.
func (a *Account) ClearRefreshTokens() {
	a.RefreshTokens = nil
}

// ─── Password reset lifecycle ────────────────────────────────────────────────

// StartPasswordReset installs a fresh reset challenge in its OTP phase,
// replacing any in-flight one.
func (a *Account) StartPasswordReset(code string, expiresAt time.Time) {
	a.PasswordReset = &PasswordResetChallenge{
		OTP:          &code,
		OTPExpiresAt: &expiresAt,
	}
}

// AdvancePasswordReset consumes the OTP and stores the single-use reset
// token. The OTP cannot be replayed after this.
func (a *Account) AdvancePasswordReset(resetToken string) {
	a.PasswordReset = &PasswordResetChallenge{
		ResetToken: &resetToken,
	}
}

// ClearPasswordReset drops the whole reset challenge, forcing a restart from
// the forgot-password step.
func (a *Account) ClearPasswordReset() {
	a.PasswordReset = nil
}

// ─── Copying ─────────────────────────────────────────────────────────────────

// Clone returns a deep copy. Stores hand out clones so callers can mutate
// freely before a conditional Save.
func (a *Account) Clone() *Account {
	cp := *a
	if a.OTP != nil {
		otp := *a.OTP
		cp.OTP = &otp
	}
	if a.PasswordReset != nil {
		pr := PasswordResetChallenge{}
		if a.PasswordReset.OTP != nil {
			v := *a.PasswordReset.OTP
			pr.OTP = &v
		}
		if a.PasswordReset.OTPExpiresAt != nil {
			v := *a.PasswordReset.OTPExpiresAt
			pr.OTPExpiresAt = &v
		}
		if a.PasswordReset.ResetToken != nil {
			v := *a.PasswordReset.ResetToken
			pr.ResetToken = &v
		}
		cp.PasswordReset = &pr
	}
	if a.RefreshTokens != nil {
		cp.RefreshTokens = append([]string(nil), a.RefreshTokens...)
	}
	return &cp
}
