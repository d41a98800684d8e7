// Package validatex wraps go-playground/validator behind a single shared
// instance. Handlers validate their input structs here before any state
// mutation begins.
package validatex

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fundora/fundora/pkg/errx"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates a tagged struct and returns a 400 validation error listing
// every failing field, or nil when the struct is valid.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errx.Wrap(err, "invalid request body", errx.TypeValidation)
	}

	e := errx.New("invalid request body", errx.TypeValidation)
	for _, fe := range verrs {
		e.WithDetail(strings.ToLower(fe.Field()), ruleMessage(fe))
	}
	return e
}

// Var validates a single value against a rule string (e.g. "required,email").
func Var(value interface{}, rules string) error {
	if err := validate.Var(value, rules); err != nil {
		return errx.Wrap(err, "invalid value", errx.TypeValidation)
	}
	return nil
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed rule: " + fe.Tag()
	}
}
