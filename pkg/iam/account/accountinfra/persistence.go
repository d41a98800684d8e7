package accountinfra

import (
	"time"

	"github.com/lib/pq"

	"github.com/fundora/fundora/pkg/iam/account"
	"github.com/fundora/fundora/pkg/kernel"
	"github.com/fundora/fundora/pkg/ptrx"
)

// accountRow mirrors the accounts table. Optional challenge fields are
// nullable columns; the refresh-token set is a Postgres text array.
type accountRow struct {
	ID           string `db:"id"`
	Name         string `db:"name"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	Role         string `db:"role"`
	Verified     bool   `db:"verified"`

	OTPCode      *string    `db:"otp_code"`
	OTPExpiresAt *time.Time `db:"otp_expires_at"`

	ResetOTP          *string    `db:"reset_otp"`
	ResetOTPExpiresAt *time.Time `db:"reset_otp_expires_at"`
	ResetToken        *string    `db:"reset_token"`

	RefreshTokens pq.StringArray `db:"refresh_tokens"`
	Version       int64          `db:"version"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func toPersistence(acc *account.Account) accountRow {
	row := accountRow{
		ID:            acc.ID.String(),
		Name:          acc.Name,
		Email:         acc.Email,
		PasswordHash:  acc.PasswordHash,
		Role:          string(acc.Role),
		Verified:      acc.Verified,
		RefreshTokens: pq.StringArray(acc.RefreshTokens),
		Version:       acc.Version,
		CreatedAt:     acc.CreatedAt,
		UpdatedAt:     acc.UpdatedAt,
	}
	if row.RefreshTokens == nil {
		row.RefreshTokens = pq.StringArray{}
	}
	if acc.OTP != nil {
		row.OTPCode = ptrx.Ptr(acc.OTP.Code)
		row.OTPExpiresAt = ptrx.Ptr(acc.OTP.ExpiresAt)
	}
	if acc.PasswordReset != nil {
		row.ResetOTP = acc.PasswordReset.OTP
		row.ResetOTPExpiresAt = acc.PasswordReset.OTPExpiresAt
		row.ResetToken = acc.PasswordReset.ResetToken
	}
	return row
}

func toDomain(row accountRow) *account.Account {
	acc := &account.Account{
		ID:            kernel.NewAccountID(row.ID),
		Name:          row.Name,
		Email:         row.Email,
		PasswordHash:  row.PasswordHash,
		Role:          account.Role(row.Role),
		Verified:      row.Verified,
		RefreshTokens: []string(row.RefreshTokens),
		Version:       row.Version,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if row.OTPCode != nil && row.OTPExpiresAt != nil {
		acc.OTP = &account.OTPChallenge{
			Code:      *row.OTPCode,
			ExpiresAt: *row.OTPExpiresAt,
		}
	}
	if row.ResetOTP != nil || row.ResetToken != nil {
		acc.PasswordReset = &account.PasswordResetChallenge{
			OTP:          row.ResetOTP,
			OTPExpiresAt: row.ResetOTPExpiresAt,
			ResetToken:   row.ResetToken,
		}
	}
	return acc
}
