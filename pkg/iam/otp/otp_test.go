package otp_test

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/fundora/fundora/pkg/errx"
	"github.com/fundora/fundora/pkg/iam/account"
	"github.com/fundora/fundora/pkg/iam/otp"
	"github.com/fundora/fundora/pkg/iam/otp/otpinfra"
)

func TestGenerateCode_AlwaysSixDigits(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := otp.GenerateCode()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("non-numeric code %q", code)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("code %d out of range", n)
		}
	}
}

func TestEvaluate(t *testing.T) {
	now := time.Now()
	live := &account.OTPChallenge{Code: "123456", ExpiresAt: now.Add(10 * time.Minute)}

	if v := otp.Evaluate(nil, "123456", now); v != otp.VerdictNoChallenge {
		t.Fatalf("nil challenge: got %v", v)
	}
	if v := otp.Evaluate(live, "123456", now); v != otp.VerdictOk {
		t.Fatalf("matching code: got %v", v)
	}
	if v := otp.Evaluate(live, "654321", now); v != otp.VerdictMismatch {
		t.Fatalf("wrong code: got %v", v)
	}

	// The boundary instant is still valid; one step past it is not.
	boundary := &account.OTPChallenge{Code: "123456", ExpiresAt: now}
	if v := otp.Evaluate(boundary, "123456", now); v != otp.VerdictOk {
		t.Fatalf("boundary instant: got %v", v)
	}
	if v := otp.Evaluate(boundary, "123456", now.Add(time.Nanosecond)); v != otp.VerdictExpired {
		t.Fatalf("past boundary: got %v", v)
	}

	// Expiry wins over mismatch.
	if v := otp.Evaluate(boundary, "000000", now.Add(time.Second)); v != otp.VerdictExpired {
		t.Fatalf("expired with wrong code: got %v", v)
	}
}

// silentNotifier satisfies otp.Notifier for manager tests.
type silentNotifier struct {
	mu    sync.Mutex
	sends int
}

func (n *silentNotifier) SendVerificationCode(context.Context, string, string, string, time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sends++
	return nil
}

func (n *silentNotifier) SendPasswordResetCode(context.Context, string, string, string, time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sends++
	return nil
}

func newTestManager() *otp.Manager {
	return otp.NewManager(&silentNotifier{}, otpinfra.NewMemoryLimiter(), otp.Options{
		Window:         10 * time.Minute,
		MaxAttempts:    5,
		ResendCooldown: time.Minute,
	})
}

func TestCheck_AttemptCapBurnsChallenge(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()
	now := time.Now()
	ch := &account.OTPChallenge{Code: "123456", ExpiresAt: now.Add(10 * time.Minute)}

	for i := 1; i <= 4; i++ {
		err := m.Check(ctx, "acc-1", otp.PurposeVerification, ch, "000000", now)
		if !errx.IsCode(err, otp.CodeMismatch) {
			t.Fatalf("attempt %d: expected mismatch, got %v", i, err)
		}
	}

	err := m.Check(ctx, "acc-1", otp.PurposeVerification, ch, "000000", now)
	if !errx.IsCode(err, otp.CodeTooManyAttempts) {
		t.Fatalf("fifth mismatch should hit the attempt cap, got %v", err)
	}
}

func TestCheck_SuccessClearsAttemptCounter(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()
	now := time.Now()
	ch := &account.OTPChallenge{Code: "123456", ExpiresAt: now.Add(10 * time.Minute)}

	for i := 0; i < 4; i++ {
		_ = m.Check(ctx, "acc-1", otp.PurposeVerification, ch, "000000", now)
	}
	if err := m.Check(ctx, "acc-1", otp.PurposeVerification, ch, "123456", now); err != nil {
		t.Fatalf("correct code below the cap must pass: %v", err)
	}

	// Counter restarted: four more mismatches fit before the cap again.
	for i := 1; i <= 4; i++ {
		err := m.Check(ctx, "acc-1", otp.PurposeVerification, ch, "000000", now)
		if !errx.IsCode(err, otp.CodeMismatch) {
			t.Fatalf("attempt %d after reset: expected mismatch, got %v", i, err)
		}
	}
}

func TestCheck_AttemptsScopedPerPurpose(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()
	now := time.Now()
	ch := &account.OTPChallenge{Code: "123456", ExpiresAt: now.Add(10 * time.Minute)}

	for i := 0; i < 4; i++ {
		_ = m.Check(ctx, "acc-1", otp.PurposeVerification, ch, "000000", now)
	}

	// Same account, different purpose: fresh counter.
	err := m.Check(ctx, "acc-1", otp.PurposePasswordReset, ch, "000000", now)
	if !errx.IsCode(err, otp.CodeMismatch) {
		t.Fatalf("expected plain mismatch on fresh purpose counter, got %v", err)
	}
}

func TestAllowIssue_Cooldown(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	if err := m.AllowIssue(ctx, "acc-1", otp.PurposeVerification); err != nil {
		t.Fatalf("first issue must pass: %v", err)
	}
	err := m.AllowIssue(ctx, "acc-1", otp.PurposeVerification)
	if !errx.IsCode(err, otp.CodeTooManyRequests) {
		t.Fatalf("second issue within cooldown must be denied, got %v", err)
	}

	// Other accounts and purposes are unaffected.
	if err := m.AllowIssue(ctx, "acc-2", otp.PurposeVerification); err != nil {
		t.Fatalf("different account: %v", err)
	}
	if err := m.AllowIssue(ctx, "acc-1", otp.PurposePasswordReset); err != nil {
		t.Fatalf("different purpose: %v", err)
	}
}

func TestNewChallenge_UsesWindow(t *testing.T) {
	m := newTestManager()
	now := time.Now()

	ch, err := m.NewChallenge(now)
	if err != nil {
		t.Fatalf("new challenge: %v", err)
	}
	if len(ch.Code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", ch.Code)
	}
	if !ch.ExpiresAt.Equal(now.Add(10 * time.Minute)) {
		t.Fatalf("expected expiry one window out, got %v", ch.ExpiresAt)
	}
}
