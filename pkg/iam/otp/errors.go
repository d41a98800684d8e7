package otp

import (
	"net/http"

	"github.com/fundora/fundora/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("OTP")

var (
	CodeNoChallenge     = ErrRegistry.Register("NO_CHALLENGE", errx.TypeValidation, http.StatusBadRequest, "No OTP found. Please request a new one.")
	CodeExpired         = ErrRegistry.Register("EXPIRED", errx.TypeValidation, http.StatusBadRequest, "OTP has expired. Please request a new one.")
	CodeMismatch        = ErrRegistry.Register("MISMATCH", errx.TypeValidation, http.StatusBadRequest, "Invalid OTP")
	CodeTooManyAttempts = ErrRegistry.Register("TOO_MANY_ATTEMPTS", errx.TypeBusiness, http.StatusTooManyRequests, "Too many verification attempts. Please request a new code.")
	CodeTooManyRequests = ErrRegistry.Register("TOO_MANY_REQUESTS", errx.TypeBusiness, http.StatusTooManyRequests, "Too many OTP requests")
)

func ErrNoChallenge() *errx.Error     { return ErrRegistry.New(CodeNoChallenge) }
func ErrExpired() *errx.Error         { return ErrRegistry.New(CodeExpired) }
func ErrMismatch() *errx.Error        { return ErrRegistry.New(CodeMismatch) }
func ErrTooManyAttempts() *errx.Error { return ErrRegistry.New(CodeTooManyAttempts) }
func ErrTooManyRequests() *errx.Error { return ErrRegistry.New(CodeTooManyRequests) }
