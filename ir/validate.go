package ir

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError represents a registry validation error.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks the registry for structural issues.
// Returns all validation errors found (not just the first).
func (r *Registry) Validate() []error {
	if r == nil {
		return []error{&ValidationError{Code: "missing_registry", Message: "registry is nil"}}
	}

	var result []error
	if err := validate.Struct(r); err != nil {
		var valErrs validator.ValidationErrors
		if !errors.As(err, &valErrs) {
			return []error{err}
		}
		for _, ve := range valErrs {
			result = append(result, &ValidationError{
				Code:    "invalid_" + ve.Tag(),
				Message: ve.Namespace() + ": " + formatValidationError(ve),
			})
		}
	}

	// Synonyms share a nickname exactly. Nicknames that differ only in case or
	// in "-" versus "_" would map to the same Go identifier.
	folded := make(map[string]string)
	r.Walk(func(n *ClassNode) bool {
		if n.Abstract || n.Nickname == "" {
			return true
		}
		key := foldNickname(n.Nickname)
		if prev, ok := folded[key]; ok && prev != n.Nickname {
			result = append(result, &ValidationError{
				Code:    "nickname_collision",
				Message: "nicknames " + prev + " and " + n.Nickname + " collide when converted to identifiers",
			})
		}
		folded[key] = n.Nickname
		return true
	})

	return result
}

func foldNickname(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "-", "_"))
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "required_unless":
		return "required for concrete operations"
	case "gte":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "semver":
		return fmt.Sprintf("%q is not a semantic version", ve.Value())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
