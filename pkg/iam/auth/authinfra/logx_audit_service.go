package authinfra

import (
	"context"

	"github.com/fundora/fundora/pkg/kernel"
	"github.com/fundora/fundora/pkg/logx"
)

// LogxAuditService implements auth.AuditService using structured logx logging.
type LogxAuditService struct{}

func NewLogxAuditService() *LogxAuditService {
	return &LogxAuditService{}
}

func (s *LogxAuditService) LogRegistration(_ context.Context, accountID kernel.AccountID, email string) {
	logx.WithFields(logx.Fields{
		"audit_event": "registration",
		"account_id":  accountID,
		"email":       email,
	}).Info("Audit: account registered")
}

func (s *LogxAuditService) LogLoginAttempt(_ context.Context, email string, success bool, ip string) {
	logx.WithFields(logx.Fields{
		"audit_event": "login_attempt",
		"email":       email,
		"success":     success,
		"ip":          ip,
	}).Info("Audit: login attempt")
}

func (s *LogxAuditService) LogTokenRefresh(_ context.Context, accountID kernel.AccountID, ip string) {
	logx.WithFields(logx.Fields{
		"audit_event": "token_refresh",
		"account_id":  accountID,
		"ip":          ip,
	}).Info("Audit: token refresh")
}

func (s *LogxAuditService) LogLogout(_ context.Context, accountID kernel.AccountID, ip string) {
	logx.WithFields(logx.Fields{
		"audit_event": "logout",
		"account_id":  accountID,
		"ip":          ip,
	}).Info("Audit: logout")
}

func (s *LogxAuditService) LogOTPVerification(_ context.Context, email string, success bool) {
	logx.WithFields(logx.Fields{
		"audit_event": "otp_verification",
		"email":       email,
		"success":     success,
	}).Info("Audit: OTP verification")
}

func (s *LogxAuditService) LogPasswordReset(_ context.Context, accountID kernel.AccountID, stage string) {
	logx.WithFields(logx.Fields{
		"audit_event": "password_reset",
		"account_id":  accountID,
		"stage":       stage,
	}).Info("Audit: password reset")
}
