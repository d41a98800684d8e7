package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fundora/fundora/pkg/config"
	"github.com/fundora/fundora/pkg/kernel"
)

// JWTService implements TokenService with HS256 tokens. Purposes are isolated
// twice over: each purpose signs under its own secret, and carries a purpose
// claim plus a purpose-scoped audience that Verify insists on.
type JWTService struct {
	issuer  string
	secrets map[TokenPurpose][]byte
	ttls    map[TokenPurpose]time.Duration
}

// NewJWTService builds the token service from auth config. Config validation
// already guaranteed the three secrets are present and distinct.
func NewJWTService(cfg config.AuthConfig) *JWTService {
	return &JWTService{
		issuer: cfg.Issuer,
		secrets: map[TokenPurpose][]byte{
			PurposeAccess:  []byte(cfg.AccessSecret),
			PurposeRefresh: []byte(cfg.RefreshSecret),
			PurposeReset:   []byte(cfg.ResetSecret),
		},
		ttls: map[TokenPurpose]time.Duration{
			PurposeAccess:  cfg.AccessTokenTTL,
			PurposeRefresh: cfg.RefreshTokenTTL,
			PurposeReset:   cfg.ResetTokenTTL,
		},
	}
}

// JWTClaims is the on-wire claim set.
type JWTClaims struct {
	Email   string       `json:"email,omitempty"`
	Role    string       `json:"role,omitempty"`
	Purpose TokenPurpose `json:"purpose"`
	jwt.RegisteredClaims
}

// IssueAccess mints an access token carrying the identity claims the request
// middleware needs.
func (j *JWTService) IssueAccess(accountID kernel.AccountID, email, role string) (string, error) {
	return j.issue(PurposeAccess, accountID, email, role)
}

// IssueRefresh mints a refresh token. It carries only the subject: everything
// else is looked up when the token is redeemed.
func (j *JWTService) IssueRefresh(accountID kernel.AccountID) (string, error) {
	return j.issue(PurposeRefresh, accountID, "", "")
}

// IssueReset mints the short-lived single-purpose password reset token.
func (j *JWTService) IssueReset(accountID kernel.AccountID) (string, error) {
	return j.issue(PurposeReset, accountID, "", "")
}

func (j *JWTService) issue(purpose TokenPurpose, accountID kernel.AccountID, email, role string) (string, error) {
	now := time.Now()

	claims := JWTClaims{
		Email:   email,
		Role:    role,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   accountID.String(),
			Audience:  []string{j.audience(purpose)},
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttls[purpose])),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(j.secrets[purpose])
	if err != nil {
		return "", ErrTokenGenerationFailed().WithCause(err)
	}
	return signed, nil
}

// Verify parses and validates a token against the expected purpose. Expiry
// and signature failures are reported as distinct statuses; everything else
// (wrong algorithm, wrong audience, wrong purpose claim, garbage input) is
// VerifyMalformed.
func (j *JWTService) Verify(tokenString string, purpose TokenPurpose) (*TokenClaims, VerifyStatus) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secrets[purpose], nil
	}, jwt.WithAudience(j.audience(purpose)), jwt.WithIssuer(j.issuer))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, VerifyExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, VerifyBadSignature
		default:
			return nil, VerifyMalformed
		}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, VerifyMalformed
	}
	if claims.Purpose != purpose {
		return nil, VerifyMalformed
	}

	return &TokenClaims{
		AccountID: kernel.NewAccountID(claims.Subject),
		Email:     claims.Email,
		Role:      claims.Role,
		Purpose:   claims.Purpose,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, VerifyOK
}

func (j *JWTService) audience(purpose TokenPurpose) string {
	return fmt.Sprintf("%s-%s", j.issuer, purpose)
}
