package opgen

import (
	"context"
	"fmt"
	"go/token"
	"path"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/broady/opgen/contract"
	"github.com/broady/opgen/provider"
)

// ErrorCode is a machine-readable failure category.
type ErrorCode string

const (
	CodeInvalidConfig   ErrorCode = "invalid_config"
	CodeInvalidRegistry ErrorCode = "invalid_registry"
	CodeVersionMismatch ErrorCode = "version_mismatch"
	CodeContract        ErrorCode = "contract_violation"
	CodeCanceled        ErrorCode = "canceled"
	CodeInternal        ErrorCode = "internal"
)

// ExitCode maps a code to a process exit status.
func (c ErrorCode) ExitCode() int {
	switch c {
	case CodeInvalidConfig:
		return 2
	case CodeInvalidRegistry, CodeVersionMismatch:
		return 3
	case CodeContract:
		return 4
	case CodeCanceled:
		return 130
	default:
		return 1
	}
}

// Error is a categorized failure.
type Error struct {
	Code    ErrorCode         `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Classify maps any error returned by this module to an *Error.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &Error{Code: CodeCanceled, Message: err.Error()}
	case errors.Is(err, provider.ErrVersionMismatch):
		return &Error{Code: CodeVersionMismatch, Message: err.Error()}
	case errors.Is(err, provider.ErrInvalidRegistry):
		return &Error{Code: CodeInvalidRegistry, Message: err.Error()}
	case errors.Is(err, contract.ErrContract):
		return &Error{Code: CodeContract, Message: err.Error()}
	}

	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		details := make(map[string]string, len(valErrs))
		messages := make([]string, 0, len(valErrs))
		for _, ve := range valErrs {
			field := strings.TrimPrefix(ve.Namespace(), "Config.")
			msg := formatValidationError(ve)
			details[field] = msg
			messages = append(messages, field+": "+msg)
		}
		return &Error{Code: CodeInvalidConfig, Message: strings.Join(messages, "; "), Details: details}
	}

	return &Error{Code: CodeInternal, Message: err.Error()}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	for tag, fn := range map[string]validator.Func{
		"goident": func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return token.IsIdentifier(s) && !token.IsKeyword(s)
		},
		"glob": func(fl validator.FieldLevel) bool {
			_, err := path.Match(fl.Field().String(), "")
			return err == nil
		},
		"constraint": func(fl validator.FieldLevel) bool {
			_, err := semver.NewConstraint(fl.Field().String())
			return err == nil
		},
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return v
}

// validateConfig checks a defaulted config. The returned error unwraps to
// validator.ValidationErrors.
func validateConfig(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}

func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	case "goident":
		return fmt.Sprintf("%q is not a Go identifier", ve.Value())
	case "glob":
		return fmt.Sprintf("%q is not a valid pattern", ve.Value())
	case "constraint":
		return fmt.Sprintf("%q is not a version constraint", ve.Value())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
