package password_test

import (
	"context"
	"testing"
	"time"

	"github.com/fundora/fundora/pkg/config"
	"github.com/fundora/fundora/pkg/errx"
	"github.com/fundora/fundora/pkg/iam/account"
	"github.com/fundora/fundora/pkg/iam/account/accountinfra"
	"github.com/fundora/fundora/pkg/iam/auth"
	"github.com/fundora/fundora/pkg/iam/otp"
	"github.com/fundora/fundora/pkg/iam/otp/otpinfra"
	"github.com/fundora/fundora/pkg/iam/password"
	"github.com/fundora/fundora/pkg/kernel"
)

type fakeHasher struct{}

func (fakeHasher) Hash(plaintext string) (string, error) { return "hashed:" + plaintext, nil }
func (fakeHasher) Verify(plaintext, digest string) bool  { return digest == "hashed:"+plaintext }

type noopAudit struct{}

func (noopAudit) LogRegistration(context.Context, kernel.AccountID, string)  {}
func (noopAudit) LogLoginAttempt(context.Context, string, bool, string)      {}
func (noopAudit) LogTokenRefresh(context.Context, kernel.AccountID, string)  {}
func (noopAudit) LogLogout(context.Context, kernel.AccountID, string)        {}
func (noopAudit) LogOTPVerification(context.Context, string, bool)           {}
func (noopAudit) LogPasswordReset(context.Context, kernel.AccountID, string) {}

type nullNotifier struct{}

func (nullNotifier) SendVerificationCode(context.Context, string, string, string, time.Duration) error {
	return nil
}

func (nullNotifier) SendPasswordResetCode(context.Context, string, string, string, time.Duration) error {
	return nil
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		AccessSecret:    "test-access-secret",
		RefreshSecret:   "test-refresh-secret",
		ResetSecret:     "test-reset-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		ResetTokenTTL:   15 * time.Minute,
		Issuer:          "fundora",
	}
}

type harness struct {
	store  *accountinfra.MemoryAccountStore
	tokens auth.TokenService
	svc    *password.Service
}

func newHarness(t *testing.T, revokeOnReset bool) *harness {
	t.Helper()

	store := accountinfra.NewMemoryAccountStore()
	tokens := auth.NewJWTService(testAuthConfig())
	manager := otp.NewManager(nullNotifier{}, otpinfra.NewMemoryLimiter(), otp.Options{
		Window:         10 * time.Minute,
		MaxAttempts:    5,
		ResendCooldown: time.Minute,
	})

	return &harness{
		store:  store,
		tokens: tokens,
		svc:    password.NewService(store, fakeHasher{}, tokens, manager, noopAudit{}, revokeOnReset),
	}
}

func (h *harness) seedAccount(t *testing.T, email string) *account.Account {
	t.Helper()
	acc := account.New("Ann", email, "hashed:oldpassword", account.RoleBacker)
	acc.Verified = true
	acc.AppendRefreshToken("session-1")
	if err := h.store.Create(context.Background(), acc); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return acc
}

// resetOTP reads the pending reset code straight from the store.
func (h *harness) resetOTP(t *testing.T, email string) string {
	t.Helper()
	acc, err := h.store.FindByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("find %s: %v", email, err)
	}
	if acc.PasswordReset == nil || !acc.PasswordReset.OTPPending() {
		t.Fatalf("account %s has no pending reset OTP", email)
	}
	return *acc.PasswordReset.OTP
}

func TestForgot_UnknownEmailSucceedsSilently(t *testing.T) {
	h := newHarness(t, false)
	if err := h.svc.Forgot(context.Background(), "ghost@example.com"); err != nil {
		t.Fatalf("unknown email must not error: %v", err)
	}
}

func TestForgot_InstallsChallenge(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	h.seedAccount(t, "ann@example.com")

	if err := h.svc.Forgot(ctx, "ann@example.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	code := h.resetOTP(t, "ann@example.com")
	if len(code) != 6 {
		t.Fatalf("expected 6-digit reset code, got %q", code)
	}
}

func TestForgot_CooldownSkipsSilently(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	h.seedAccount(t, "ann@example.com")

	if err := h.svc.Forgot(ctx, "ann@example.com"); err != nil {
		t.Fatalf("first forgot: %v", err)
	}
	first := h.resetOTP(t, "ann@example.com")

	// A second request within the cooldown succeeds without reissuing, so
	// the response stays indistinguishable from the unknown-email case.
	if err := h.svc.Forgot(ctx, "ann@example.com"); err != nil {
		t.Fatalf("second forgot must not error: %v", err)
	}
	if h.resetOTP(t, "ann@example.com") != first {
		t.Fatal("cooldown-denied forgot must not replace the challenge")
	}
}

func TestVerifyResetOTP_AdvancesToTokenPhase(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	h.seedAccount(t, "ann@example.com")

	if err := h.svc.Forgot(ctx, "ann@example.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	code := h.resetOTP(t, "ann@example.com")

	token, err := h.svc.VerifyResetOTP(ctx, "ann@example.com", code)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if token == "" {
		t.Fatal("expected a reset token")
	}

	acc, _ := h.store.FindByEmail(ctx, "ann@example.com")
	if acc.PasswordReset.OTPPending() {
		t.Fatal("OTP phase must be consumed")
	}
	if acc.PasswordReset.ResetToken == nil || *acc.PasswordReset.ResetToken != token {
		t.Fatal("reset token must be stored for the exact-match check")
	}

	// The consumed OTP cannot be replayed.
	_, err = h.svc.VerifyResetOTP(ctx, "ann@example.com", code)
	if !errx.IsCode(err, otp.CodeNoChallenge) {
		t.Fatalf("expected no-challenge on replay, got %v", err)
	}
}

func TestVerifyResetOTP_UnknownEmail(t *testing.T) {
	h := newHarness(t, false)
	_, err := h.svc.VerifyResetOTP(context.Background(), "ghost@example.com", "123456")
	if !errx.IsCode(err, password.CodeInvalidRequest) {
		t.Fatalf("expected generic invalid-request, got %v", err)
	}
}

func TestVerifyResetOTP_ExpiredClearsChallenge(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	acc := h.seedAccount(t, "ann@example.com")

	stored, _ := h.store.FindByID(ctx, acc.ID)
	stored.StartPasswordReset("123456", time.Now().Add(-time.Minute))
	if err := h.store.Save(ctx, stored); err != nil {
		t.Fatalf("save: %v", err)
	}

	_, err := h.svc.VerifyResetOTP(ctx, "ann@example.com", "123456")
	if !errx.IsCode(err, otp.CodeExpired) {
		t.Fatalf("expected expired, got %v", err)
	}

	after, _ := h.store.FindByEmail(ctx, "ann@example.com")
	if after.PasswordReset != nil {
		t.Fatal("expired reset challenge must be cleared")
	}
}

func TestReset_CompletesAndInvalidatesChallenge(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	h.seedAccount(t, "ann@example.com")

	if err := h.svc.Forgot(ctx, "ann@example.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	token, err := h.svc.VerifyResetOTP(ctx, "ann@example.com", h.resetOTP(t, "ann@example.com"))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if err := h.svc.Reset(ctx, "ann@example.com", token, "newpassword123"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	acc, _ := h.store.FindByEmail(ctx, "ann@example.com")
	if acc.PasswordHash != "hashed:newpassword123" {
		t.Fatalf("password not updated: %s", acc.PasswordHash)
	}
	if acc.PasswordReset != nil {
		t.Fatal("completed reset must clear the challenge")
	}
	// Sessions survive by default.
	if !acc.HasRefreshToken("session-1") {
		t.Fatal("existing sessions must survive a reset by default")
	}

	// The single-use token is spent.
	err = h.svc.Reset(ctx, "ann@example.com", token, "anotherpassword")
	if !errx.IsCode(err, password.CodeResetTokenInvalid) {
		t.Fatalf("expected invalid token on reuse, got %v", err)
	}
}

func TestReset_RevokeSessionsFlag(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)
	h.seedAccount(t, "ann@example.com")

	if err := h.svc.Forgot(ctx, "ann@example.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	token, err := h.svc.VerifyResetOTP(ctx, "ann@example.com", h.resetOTP(t, "ann@example.com"))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := h.svc.Reset(ctx, "ann@example.com", token, "newpassword123"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	acc, _ := h.store.FindByEmail(ctx, "ann@example.com")
	if len(acc.RefreshTokens) != 0 {
		t.Fatalf("expected all sessions revoked, got %v", acc.RefreshTokens)
	}
}

func TestReset_WrongToken(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	h.seedAccount(t, "ann@example.com")

	if err := h.svc.Forgot(ctx, "ann@example.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	if _, err := h.svc.VerifyResetOTP(ctx, "ann@example.com", h.resetOTP(t, "ann@example.com")); err != nil {
		t.Fatalf("verify: %v", err)
	}

	err := h.svc.Reset(ctx, "ann@example.com", "not-the-stored-token", "newpassword123")
	if !errx.IsCode(err, password.CodeResetTokenInvalid) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestReset_CrossAccountTokenRejected(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	h.seedAccount(t, "ann@example.com")

	// A validly signed reset token for a DIFFERENT account, planted into
	// Ann's challenge, must still be rejected by the subject check.
	foreign, err := h.tokens.IssueReset(kernel.NewAccountID("someone-else"))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	stored, _ := h.store.FindByEmail(ctx, "ann@example.com")
	stored.AdvancePasswordReset(foreign)
	if err := h.store.Save(ctx, stored); err != nil {
		t.Fatalf("save: %v", err)
	}

	err = h.svc.Reset(ctx, "ann@example.com", foreign, "newpassword123")
	if !errx.IsCode(err, password.CodeResetTokenInvalid) {
		t.Fatalf("expected invalid token for foreign subject, got %v", err)
	}
}

func TestReset_ShortPassword(t *testing.T) {
	h := newHarness(t, false)
	err := h.svc.Reset(context.Background(), "ann@example.com", "token", "short")
	if !errx.IsCode(err, password.CodePasswordTooShort) {
		t.Fatalf("expected too-short, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	acc := h.seedAccount(t, "ann@example.com")

	err := h.svc.ChangePassword(ctx, acc.ID, "wrong-current", "newpassword123")
	if !errx.IsCode(err, password.CodeCurrentPasswordWrong) {
		t.Fatalf("expected wrong-current-password, got %v", err)
	}

	if err := h.svc.ChangePassword(ctx, acc.ID, "oldpassword", "newpassword123"); err != nil {
		t.Fatalf("change: %v", err)
	}
	stored, _ := h.store.FindByID(ctx, acc.ID)
	if stored.PasswordHash != "hashed:newpassword123" {
		t.Fatalf("password not updated: %s", stored.PasswordHash)
	}
}
