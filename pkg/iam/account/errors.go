package account

import (
	"net/http"

	"github.com/fundora/fundora/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("ACCOUNT")

var (
	// Duplicate registration answers 400, not 409, matching the public API
	// contract for the register endpoint.
	CodeEmailTaken      = ErrRegistry.Register("EMAIL_TAKEN", errx.TypeConflict, http.StatusBadRequest, "User already exists")
	CodeNotFound        = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "User not found")
	CodeAlreadyVerified = ErrRegistry.Register("ALREADY_VERIFIED", errx.TypeBusiness, http.StatusBadRequest, "User is already verified")
	CodeStale           = ErrRegistry.Register("STALE", errx.TypeConflict, http.StatusConflict, "Account was modified concurrently, please retry")
	CodeInvalidRole     = ErrRegistry.Register("INVALID_ROLE", errx.TypeValidation, http.StatusBadRequest, "Invalid account role")
)

func ErrEmailTaken() *errx.Error      { return ErrRegistry.New(CodeEmailTaken) }
func ErrAccountNotFound() *errx.Error { return ErrRegistry.New(CodeNotFound) }
func ErrAlreadyVerified() *errx.Error { return ErrRegistry.New(CodeAlreadyVerified) }
func ErrStaleAccount() *errx.Error    { return ErrRegistry.New(CodeStale) }
func ErrInvalidRole() *errx.Error     { return ErrRegistry.New(CodeInvalidRole) }
