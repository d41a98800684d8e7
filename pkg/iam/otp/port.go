package otp

import (
	"context"
	"time"
)

// Notifier delivers challenge codes out-of-band. Implementations live in
// otpinfra; the manager only knows this contract.
type Notifier interface {
	SendVerificationCode(ctx context.Context, to, name, code string, window time.Duration) error
	SendPasswordResetCode(ctx context.Context, to, name, code string, window time.Duration) error
}

// Limiter tracks per-challenge verification attempts and issuance cooldowns.
// Keys are account+purpose scoped; entries expire on their own.
type Limiter interface {
	// IncrAttempts bumps the mismatch counter for key and returns the new
	// count. The counter expires after ttl.
	IncrAttempts(ctx context.Context, key string, ttl time.Duration) (int, error)

	// ClearAttempts drops the mismatch counter for key.
	ClearAttempts(ctx context.Context, key string) error

	// MarkIssued records an issuance and reports whether it was allowed: a
	// second call within cooldown of the first returns false.
	MarkIssued(ctx context.Context, key string, cooldown time.Duration) (bool, error)
}
