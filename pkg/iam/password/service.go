package password

import (
	"context"
	"time"

	"github.com/fundora/fundora/pkg/errx"
	"github.com/fundora/fundora/pkg/iam/account"
	"github.com/fundora/fundora/pkg/iam/auth"
	"github.com/fundora/fundora/pkg/iam/otp"
	"github.com/fundora/fundora/pkg/kernel"
	"github.com/fundora/fundora/pkg/logx"
)

// GenericForgotAck is the one and only forgot-password response body. It is
// byte-identical whether or not the email is registered.
const GenericForgotAck = "If this email exists, a reset OTP has been sent."

const minPasswordLength = 8

// Service orchestrates the two-phase password reset (OTP, then single-use
// reset token) and authenticated password changes.
type Service struct {
	store         account.Store
	hasher        auth.PasswordHasher
	tokens        auth.TokenService
	otp           *otp.Manager
	audit         auth.AuditService
	revokeOnReset bool
}

func NewService(store account.Store, hasher auth.PasswordHasher, tokens auth.TokenService, otpMgr *otp.Manager, audit auth.AuditService, revokeOnReset bool) *Service {
	return &Service{
		store:         store,
		hasher:        hasher,
		tokens:        tokens,
		otp:           otpMgr,
		audit:         audit,
		revokeOnReset: revokeOnReset,
	}
}

// Forgot starts a reset for the account behind email, if one exists. An
// unknown email and a cooldown denial both succeed silently: the caller
// answers with GenericForgotAck either way.
func (s *Service) Forgot(ctx context.Context, email string) error {
	acc, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errx.IsCode(err, account.CodeNotFound) {
			return nil
		}
		return err
	}

	if err := s.otp.AllowIssue(ctx, acc.ID.String(), otp.PurposePasswordReset); err != nil {
		// Denying loudly would reveal the account exists.
		logx.WithField("account_id", acc.ID).Debug("forgot: reset OTP reissue within cooldown, skipping")
		return nil
	}

	challenge, err := s.otp.NewChallenge(time.Now())
	if err != nil {
		return err
	}
	acc.StartPasswordReset(challenge.Code, challenge.ExpiresAt)
	if err := s.store.Save(ctx, acc); err != nil {
		return err
	}

	s.otp.Dispatch(otp.PurposePasswordReset, acc.Email, acc.Name, challenge.Code)
	s.audit.LogPasswordReset(ctx, acc.ID, "requested")
	return nil
}

// VerifyResetOTP confirms the reset OTP and advances the challenge into its
// token phase. Consuming the OTP and storing the reset token commit in one
// save, so the OTP cannot be replayed.
func (s *Service) VerifyResetOTP(ctx context.Context, email, code string) (string, error) {
	acc, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errx.IsCode(err, account.CodeNotFound) {
			return "", ErrInvalidRequest()
		}
		return "", err
	}

	challenge := resetChallengeOf(acc)
	if err := s.otp.Check(ctx, acc.ID.String(), otp.PurposePasswordReset, challenge, code, time.Now()); err != nil {
		if errx.IsCode(err, otp.CodeExpired) || errx.IsCode(err, otp.CodeTooManyAttempts) {
			acc.ClearPasswordReset()
			if saveErr := s.store.Save(ctx, acc); saveErr != nil {
				return "", errx.Wrap(saveErr, "failed to clear burned reset challenge", errx.TypeInternal)
			}
		}
		return "", err
	}

	resetToken, err := s.tokens.IssueReset(acc.ID)
	if err != nil {
		return "", err
	}

	acc.AdvancePasswordReset(resetToken)
	if err := s.store.Save(ctx, acc); err != nil {
		return "", err
	}

	s.audit.LogPasswordReset(ctx, acc.ID, "otp_verified")
	return resetToken, nil
}

// Reset completes the flow: it validates the single-use reset token and
// installs the new password. The stored token must match the presented one
// exactly, and the token must still verify under the reset key.
func (s *Service) Reset(ctx context.Context, email, resetToken, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort()
	}

	acc, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errx.IsCode(err, account.CodeNotFound) {
			return ErrResetTokenInvalid()
		}
		return err
	}

	if acc.PasswordReset == nil || acc.PasswordReset.ResetToken == nil || *acc.PasswordReset.ResetToken != resetToken {
		return ErrResetTokenInvalid()
	}

	claims, status := s.tokens.Verify(resetToken, auth.PurposeReset)
	if status != auth.VerifyOK {
		// The stored token is dead either way: drop the challenge so the
		// flow restarts from the beginning.
		acc.ClearPasswordReset()
		if saveErr := s.store.Save(ctx, acc); saveErr != nil {
			return errx.Wrap(saveErr, "failed to clear dead reset token", errx.TypeInternal)
		}
		if status == auth.VerifyExpired {
			return ErrResetExpired()
		}
		return ErrResetTokenInvalid()
	}
	if claims.AccountID != acc.ID {
		return ErrResetTokenInvalid()
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return errx.Wrap(err, "failed to hash password", errx.TypeInternal)
	}

	acc.PasswordHash = hash
	acc.ClearPasswordReset()
	if s.revokeOnReset {
		acc.ClearRefreshTokens()
	}
	if err := s.store.Save(ctx, acc); err != nil {
		return err
	}

	s.audit.LogPasswordReset(ctx, acc.ID, "completed")
	return nil
}

// ChangePassword updates the password of an authenticated account after
// re-proving the current one.
func (s *Service) ChangePassword(ctx context.Context, id kernel.AccountID, current, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort()
	}

	acc, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(current, acc.PasswordHash) {
		return ErrCurrentPasswordWrong()
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return errx.Wrap(err, "failed to hash password", errx.TypeInternal)
	}

	acc.PasswordHash = hash
	if err := s.store.Save(ctx, acc); err != nil {
		return err
	}

	s.audit.LogPasswordReset(ctx, acc.ID, "password_changed")
	return nil
}

// resetChallengeOf projects the OTP phase of a reset challenge into the
// shared challenge shape the manager evaluates. A challenge past its OTP
// phase (or absent) projects to nil.
func resetChallengeOf(acc *account.Account) *account.OTPChallenge {
	pr := acc.PasswordReset
	if pr == nil || !pr.OTPPending() {
		return nil
	}
	return &account.OTPChallenge{
		Code:      *pr.OTP,
		ExpiresAt: *pr.OTPExpiresAt,
	}
}
