package config

import (
	"fmt"
	"time"
)

// AuthConfig configures the identity core: signing keys, token lifetimes,
// OTP windows and password hashing.
//
// Access, refresh and reset tokens are signed under DISTINCT keys so a token
// minted for one purpose can never validate against another purpose's key.
type AuthConfig struct {
	AccessSecret  string
	RefreshSecret string
	ResetSecret   string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	ResetTokenTTL   time.Duration

	OTPWindow         time.Duration
	OTPMaxAttempts    int
	OTPResendCooldown time.Duration

	BcryptCost int

	// RevokeSessionsOnReset clears the whole refresh-token set when a password
	// reset completes, forcing re-login on every device. Off by default.
	RevokeSessionsOnReset bool

	Issuer string
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		AccessSecret:  getEnv("JWT_ACCESS_SECRET", ""),
		RefreshSecret: getEnv("JWT_REFRESH_SECRET", ""),
		ResetSecret:   getEnv("JWT_RESET_SECRET", ""),

		AccessTokenTTL:  getEnvDuration("JWT_ACCESS_TTL", time.Hour),
		RefreshTokenTTL: getEnvDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		ResetTokenTTL:   getEnvDuration("JWT_RESET_TTL", 15*time.Minute),

		OTPWindow:         getEnvDuration("OTP_EXPIRY_WINDOW", 10*time.Minute),
		OTPMaxAttempts:    getEnvInt("OTP_MAX_ATTEMPTS", 5),
		OTPResendCooldown: getEnvDuration("OTP_RESEND_COOLDOWN", time.Minute),

		BcryptCost: getEnvInt("BCRYPT_COST", 10),

		RevokeSessionsOnReset: getEnvBool("AUTH_REVOKE_SESSIONS_ON_RESET", false),

		Issuer: getEnv("JWT_ISSUER", "fundora"),
	}
}

func (a AuthConfig) validate() error {
	if a.AccessSecret == "" {
		return fmt.Errorf("config: JWT_ACCESS_SECRET is required")
	}
	if a.RefreshSecret == "" {
		return fmt.Errorf("config: JWT_REFRESH_SECRET is required")
	}
	if a.ResetSecret == "" {
		return fmt.Errorf("config: JWT_RESET_SECRET is required")
	}
	if a.AccessSecret == a.RefreshSecret || a.AccessSecret == a.ResetSecret || a.RefreshSecret == a.ResetSecret {
		return fmt.Errorf("config: JWT secrets must be distinct per token purpose")
	}
	if a.AccessTokenTTL <= 0 || a.RefreshTokenTTL <= 0 || a.ResetTokenTTL <= 0 {
		return fmt.Errorf("config: token TTLs must be positive")
	}
	if a.OTPWindow <= 0 {
		return fmt.Errorf("config: OTP_EXPIRY_WINDOW must be positive")
	}
	if a.OTPMaxAttempts < 1 {
		return fmt.Errorf("config: OTP_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}
