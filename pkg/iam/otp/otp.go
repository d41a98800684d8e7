package otp

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/fundora/fundora/pkg/errx"
	"github.com/fundora/fundora/pkg/iam/account"
)

// Purpose distinguishes the two challenge flows that share this manager.
type Purpose string

const (
	PurposeVerification  Purpose = "VERIFICATION"
	PurposePasswordReset Purpose = "PASSWORD_RESET"
)

// codeSpan is the size of the 6-digit code space [100000, 999999].
const codeSpan = 900000

// GenerateCode returns a cryptographically random 6-digit code, uniform over
// [100000, 999999]. No leading-zero codes: the range itself guarantees six
// digits.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", errx.Wrap(err, "failed to generate OTP code", errx.TypeInternal)
	}
	return big.NewInt(n.Int64() + 100000).String(), nil
}

// Verdict is the outcome of evaluating a submitted code against a pending
// challenge.
type Verdict int

const (
	VerdictOk Verdict = iota
	VerdictNoChallenge
	VerdictExpired
	VerdictMismatch
)

// String returns the verdict name for logs.
func (v Verdict) String() string {
	switch v {
	case VerdictOk:
		return "ok"
	case VerdictNoChallenge:
		return "no_challenge"
	case VerdictExpired:
		return "expired"
	case VerdictMismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}

// Evaluate is the pure state-machine step: it inspects a challenge without
// mutating anything. Expiry wins over mismatch; the boundary instant
// now == ExpiresAt is still valid.
func Evaluate(ch *account.OTPChallenge, submitted string, now time.Time) Verdict {
	if ch == nil || ch.Code == "" {
		return VerdictNoChallenge
	}
	if ch.Expired(now) {
		return VerdictExpired
	}
	if ch.Code != submitted {
		return VerdictMismatch
	}
	return VerdictOk
}
