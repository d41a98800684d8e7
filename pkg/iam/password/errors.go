package password

import (
	"net/http"

	"github.com/fundora/fundora/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("PASSWORD")

var (
	// The reset flow answers with deliberately vague messages so responses
	// never confirm whether an email is registered.
	CodeInvalidRequest       = ErrRegistry.Register("INVALID_REQUEST", errx.TypeValidation, http.StatusBadRequest, "Invalid request")
	CodeResetExpired         = ErrRegistry.Register("RESET_EXPIRED", errx.TypeValidation, http.StatusBadRequest, "Reset session has expired. Please start over.")
	CodeResetTokenInvalid    = ErrRegistry.Register("RESET_TOKEN_INVALID", errx.TypeValidation, http.StatusBadRequest, "Invalid or expired reset token")
	CodePasswordTooShort     = ErrRegistry.Register("TOO_SHORT", errx.TypeValidation, http.StatusBadRequest, "Password must be at least 8 characters")
	CodeCurrentPasswordWrong = ErrRegistry.Register("CURRENT_INVALID", errx.TypeAuthorization, http.StatusUnauthorized, "Invalid current password")
)

func ErrInvalidRequest() *errx.Error       { return ErrRegistry.New(CodeInvalidRequest) }
func ErrResetExpired() *errx.Error         { return ErrRegistry.New(CodeResetExpired) }
func ErrResetTokenInvalid() *errx.Error    { return ErrRegistry.New(CodeResetTokenInvalid) }
func ErrPasswordTooShort() *errx.Error     { return ErrRegistry.New(CodePasswordTooShort) }
func ErrCurrentPasswordWrong() *errx.Error { return ErrRegistry.New(CodeCurrentPasswordWrong) }
