package config

import (
	"fmt"
	"time"
)

// MailConfig configures outbound email delivery.
type MailConfig struct {
	// Provider is "ses" or "console".
	Provider    string
	FromAddress string
	FromName    string
	AWSRegion   string

	// DispatchTimeout bounds each detached email send. A slow transport must
	// never hold up the operation that triggered it.
	DispatchTimeout time.Duration
}

func loadMailConfig() MailConfig {
	return MailConfig{
		Provider:        getEnv("MAIL_PROVIDER", "console"),
		FromAddress:     getEnv("EMAIL_FROM_ADDRESS", "noreply@fundora.app"),
		FromName:        getEnv("EMAIL_FROM_NAME", "Fundora"),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		DispatchTimeout: getEnvDuration("MAIL_DISPATCH_TIMEOUT", 10*time.Second),
	}
}

func (m MailConfig) validate() error {
	switch m.Provider {
	case "ses", "console":
	default:
		return fmt.Errorf("config: unknown MAIL_PROVIDER %q (use 'ses' or 'console')", m.Provider)
	}
	if m.DispatchTimeout <= 0 {
		return fmt.Errorf("config: MAIL_DISPATCH_TIMEOUT must be positive")
	}
	return nil
}
