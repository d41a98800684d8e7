package auth

import (
	"context"
	"time"

	"github.com/fundora/fundora/pkg/errx"
	"github.com/fundora/fundora/pkg/iam/account"
	"github.com/fundora/fundora/pkg/iam/otp"
	"github.com/fundora/fundora/pkg/kernel"
	"github.com/fundora/fundora/pkg/logx"
)

// dummyDigest is a valid bcrypt digest compared against when login hits an
// unknown email, so the miss path costs about as much as a real compare.
const dummyDigest = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// AuthService orchestrates registration, verification, sessions and token
// refresh. All state lives in the account store; concurrent flows are
// serialized by its conditional Save.
type AuthService struct {
	store  account.Store
	hasher PasswordHasher
	tokens TokenService
	otp    *otp.Manager
	audit  AuditService
}

func NewAuthService(store account.Store, hasher PasswordHasher, tokens TokenService, otpMgr *otp.Manager, audit AuditService) *AuthService {
	return &AuthService{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		otp:    otpMgr,
		audit:  audit,
	}
}

// Register creates an unverified account and issues its first verification
// challenge. No tokens are returned: the account cannot act until the OTP is
// confirmed.
func (s *AuthService) Register(ctx context.Context, name, email, password string, role account.Role) (*Profile, error) {
	if !role.IsValid() {
		return nil, account.ErrInvalidRole().WithDetail("role", string(role))
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, errx.Wrap(err, "failed to hash password", errx.TypeInternal)
	}

	acc := account.New(name, email, hash, role)

	challenge, err := s.otp.NewChallenge(time.Now())
	if err != nil {
		return nil, err
	}
	acc.SetOTPChallenge(challenge.Code, challenge.ExpiresAt)

	if err := s.store.Create(ctx, acc); err != nil {
		return nil, err
	}

	// Start the resend cooldown so an immediate resend after registering is
	// rate limited like any other reissue.
	if err := s.otp.AllowIssue(ctx, acc.ID.String(), otp.PurposeVerification); err != nil {
		logx.WithField("account_id", acc.ID).Warn("register: could not record OTP issuance")
	}
	s.otp.Dispatch(otp.PurposeVerification, acc.Email, acc.Name, challenge.Code)

	s.audit.LogRegistration(ctx, acc.ID, acc.Email)

	profile := ProfileOf(acc)
	return &profile, nil
}

// VerifyRegistrationOTP confirms the challenge and, on success, marks the
// account verified and opens its first session. The verified flag, the
// cleared challenge and the seeded refresh token commit in one conditional
// save: either the whole transition lands or none of it does.
func (s *AuthService) VerifyRegistrationOTP(ctx context.Context, email, code string) (*Credentials, error) {
	acc, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if acc.Verified {
		return nil, account.ErrAlreadyVerified()
	}

	if err := s.otp.Check(ctx, acc.ID.String(), otp.PurposeVerification, acc.OTP, code, time.Now()); err != nil {
		s.audit.LogOTPVerification(ctx, email, false)

		// A burned challenge (expired or attempt cap) must not be retryable:
		// clear it before reporting the failure.
		if errx.IsCode(err, otp.CodeExpired) || errx.IsCode(err, otp.CodeTooManyAttempts) {
			acc.ClearOTPChallenge()
			if saveErr := s.store.Save(ctx, acc); saveErr != nil {
				return nil, errx.Wrap(saveErr, "failed to clear burned OTP challenge", errx.TypeInternal)
			}
		}
		return nil, err
	}

	accessToken, err := s.tokens.IssueAccess(acc.ID, acc.Email, string(acc.Role))
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.IssueRefresh(acc.ID)
	if err != nil {
		return nil, err
	}

	acc.MarkVerified()
	acc.SeedRefreshToken(refreshToken)
	if err := s.store.Save(ctx, acc); err != nil {
		return nil, err
	}

	s.audit.LogOTPVerification(ctx, email, true)

	return &Credentials{
		Profile:      ProfileOf(acc),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// SendVerificationOTP issues a fresh verification challenge for an
// unverified account, replacing any pending one. Returns the challenge
// window so the handler can report the expiry.
func (s *AuthService) SendVerificationOTP(ctx context.Context, email string) (time.Duration, error) {
	acc, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return 0, err
	}
	if acc.Verified {
		return 0, account.ErrAlreadyVerified()
	}

	if err := s.otp.AllowIssue(ctx, acc.ID.String(), otp.PurposeVerification); err != nil {
		return 0, err
	}

	challenge, err := s.otp.NewChallenge(time.Now())
	if err != nil {
		return 0, err
	}
	acc.SetOTPChallenge(challenge.Code, challenge.ExpiresAt)
	if err := s.store.Save(ctx, acc); err != nil {
		return 0, err
	}

	s.otp.Dispatch(otp.PurposeVerification, acc.Email, acc.Name, challenge.Code)
	return s.otp.Window(), nil
}

// Login verifies credentials and opens a session. The failure answer is the
// same whether the email is unknown or the password wrong; a dummy hash
// compare keeps the unknown-email path from being measurably faster.
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*Credentials, error) {
	acc, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errx.IsCode(err, account.CodeNotFound) {
			s.hasher.Verify(password, dummyDigest)
			s.audit.LogLoginAttempt(ctx, email, false, ip)
			return nil, ErrInvalidCredentials()
		}
		return nil, err
	}

	if !s.hasher.Verify(password, acc.PasswordHash) {
		s.audit.LogLoginAttempt(ctx, email, false, ip)
		return nil, ErrInvalidCredentials()
	}

	accessToken, err := s.tokens.IssueAccess(acc.ID, acc.Email, string(acc.Role))
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.IssueRefresh(acc.ID)
	if err != nil {
		return nil, err
	}

	acc.AppendRefreshToken(refreshToken)
	if err := s.store.Save(ctx, acc); err != nil {
		return nil, err
	}

	s.audit.LogLoginAttempt(ctx, email, true, ip)

	return &Credentials{
		Profile:      ProfileOf(acc),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh trades a live refresh token for a new access token. The refresh
// token itself is untouched: it stays valid until logout, eviction or its own
// expiry.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, ip string) (string, error) {
	if refreshToken == "" {
		return "", ErrRefreshRequired()
	}

	acc, err := s.store.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errx.IsCode(err, account.CodeNotFound) {
			return "", ErrRefreshInvalid()
		}
		return "", err
	}

	claims, status := s.tokens.Verify(refreshToken, PurposeRefresh)
	if status != VerifyOK {
		return "", ErrRefreshInvalid()
	}
	// The token must belong to the account whose set contains it.
	if claims.AccountID != acc.ID {
		return "", ErrRefreshInvalid()
	}

	accessToken, err := s.tokens.IssueAccess(acc.ID, acc.Email, string(acc.Role))
	if err != nil {
		return "", err
	}

	s.audit.LogTokenRefresh(ctx, acc.ID, ip)
	return accessToken, nil
}

// Logout removes the session token from its account. It never fails: an
// unknown, already-removed or malformed token and even a store error all land
// on the same silent success, so the endpoint leaks nothing about token
// validity.
func (s *AuthService) Logout(ctx context.Context, refreshToken, ip string) {
	if refreshToken == "" {
		return
	}

	acc, err := s.store.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		if !errx.IsCode(err, account.CodeNotFound) {
			logx.WithError(err).Warn("logout: refresh token lookup failed")
		}
		return
	}

	if !acc.RemoveRefreshToken(refreshToken) {
		return
	}
	if err := s.store.Save(ctx, acc); err != nil {
		logx.WithError(err).WithField("account_id", acc.ID).Warn("logout: failed to persist token removal")
		return
	}

	s.audit.LogLogout(ctx, acc.ID, ip)
}

// Me returns the profile for an authenticated account.
func (s *AuthService) Me(ctx context.Context, id kernel.AccountID) (*Profile, error) {
	acc, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	profile := ProfileOf(acc)
	return &profile, nil
}
