package otp

import (
	"context"
	"fmt"
	"time"

	"github.com/fundora/fundora/pkg/asyncx"
	"github.com/fundora/fundora/pkg/iam/account"
	"github.com/fundora/fundora/pkg/logx"
)

// Options tunes the challenge manager. Zero values fall back to the
// documented defaults.
type Options struct {
	Window          time.Duration // challenge validity, default 10m
	MaxAttempts     int           // mismatches before the challenge burns, default 5
	ResendCooldown  time.Duration // min gap between issues per account+purpose, default 1m
	DispatchTimeout time.Duration // bound on each detached email send, default 10s
}

// Manager owns the one-time-code lifecycle shared by registration
// verification and password reset: generation, attempt limiting and
// out-of-band dispatch. It holds no per-request state; challenge persistence
// stays with the caller so verified-state transitions commit in one
// conditional save.
type Manager struct {
	notifier Notifier
	limiter  Limiter
	opts     Options
}

// NewManager creates a challenge manager.
func NewManager(notifier Notifier, limiter Limiter, opts Options) *Manager {
	if opts.Window <= 0 {
		opts.Window = 10 * time.Minute
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 5
	}
	if opts.ResendCooldown <= 0 {
		opts.ResendCooldown = time.Minute
	}
	if opts.DispatchTimeout <= 0 {
		opts.DispatchTimeout = 10 * time.Second
	}
	return &Manager{
		notifier: notifier,
		limiter:  limiter,
		opts:     opts,
	}
}

// Window returns the configured challenge validity window.
func (m *Manager) Window() time.Duration {
	return m.opts.Window
}

// NewChallenge mints a fresh challenge expiring one window from now.
func (m *Manager) NewChallenge(now time.Time) (account.OTPChallenge, error) {
	code, err := GenerateCode()
	if err != nil {
		return account.OTPChallenge{}, err
	}
	return account.OTPChallenge{
		Code:      code,
		ExpiresAt: now.Add(m.opts.Window),
	}, nil
}

// AllowIssue enforces the per-account issuance cooldown. Returns
// ErrTooManyRequests when a challenge was issued too recently.
func (m *Manager) AllowIssue(ctx context.Context, accountID string, purpose Purpose) error {
	allowed, err := m.limiter.MarkIssued(ctx, issueKey(accountID, purpose), m.opts.ResendCooldown)
	if err != nil {
		// A broken limiter must not take OTP issuance down with it.
		logx.WithError(err).Warn("otp: issuance cooldown check failed, allowing")
		return nil
	}
	if !allowed {
		return ErrTooManyRequests().
			WithDetail("retry_after_seconds", int(m.opts.ResendCooldown.Seconds()))
	}
	return nil
}

// Check evaluates a submitted code and applies attempt accounting. It never
// persists the account: the caller owns the save so that clearing the
// challenge and committing the resulting state transition stay atomic.
//
// The caller must clear the challenge when the returned error carries
// CodeExpired or CodeTooManyAttempts; a mismatch below the attempt cap
// retains it.
func (m *Manager) Check(ctx context.Context, accountID string, purpose Purpose, ch *account.OTPChallenge, submitted string, now time.Time) error {
	key := attemptKey(accountID, purpose)

	switch Evaluate(ch, submitted, now) {
	case VerdictNoChallenge:
		return ErrNoChallenge()

	case VerdictExpired:
		m.clearAttempts(ctx, key)
		return ErrExpired()

	case VerdictMismatch:
		attempts, err := m.limiter.IncrAttempts(ctx, key, m.opts.Window)
		if err != nil {
			logx.WithError(err).Warn("otp: attempt accounting failed")
			return ErrMismatch()
		}
		if attempts >= m.opts.MaxAttempts {
			m.clearAttempts(ctx, key)
			return ErrTooManyAttempts()
		}
		return ErrMismatch().WithDetail("attempts_remaining", m.opts.MaxAttempts-attempts)

	default:
		m.clearAttempts(ctx, key)
		return nil
	}
}

// Dispatch sends the challenge code by email as a detached, bounded side
// effect. Failures are logged and swallowed: issuance already succeeded and
// the caller may request a resend.
func (m *Manager) Dispatch(purpose Purpose, email, name, code string) {
	window := m.opts.Window
	asyncx.DoTimeout(m.opts.DispatchTimeout, func(ctx context.Context) {
		var err error
		switch purpose {
		case PurposePasswordReset:
			err = m.notifier.SendPasswordResetCode(ctx, email, name, code, window)
		default:
			err = m.notifier.SendVerificationCode(ctx, email, name, code, window)
		}
		if err != nil {
			logx.WithFields(logx.Fields{
				"email":   email,
				"purpose": string(purpose),
			}).WithError(err).Error("otp: dispatch failed")
		}
	})
}

func (m *Manager) clearAttempts(ctx context.Context, key string) {
	if err := m.limiter.ClearAttempts(ctx, key); err != nil {
		logx.WithError(err).Warn("otp: failed to clear attempt counter")
	}
}

func attemptKey(accountID string, purpose Purpose) string {
	return fmt.Sprintf("otp:attempts:%s:%s", purpose, accountID)
}

func issueKey(accountID string, purpose Purpose) string {
	return fmt.Sprintf("otp:issued:%s:%s", purpose, accountID)
}
