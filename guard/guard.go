// Package guard holds the validation predicates shared by the entity services.
//
// A guard returns nil when the value is acceptable and a *Violation otherwise.
// Guards are pure and cheap; they run before any data store call. Callers chain
// them with First, which stops at the first failure.
package guard

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Violation describes a single rejected field.
type Violation struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (v *Violation) Error() string {
	return v.Message
}

func violation(field, format string, args ...any) *Violation {
	return &Violation{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Check defers a guard so that First only evaluates what it needs.
type Check func() error

// First runs checks in order and returns the first failure.
func First(checks ...Check) error {
	for _, check := range checks {
		if check == nil {
			continue
		}
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

// RequireNotNil rejects nil values, including typed nil pointers.
func RequireNotNil(value any, name string) error {
	if err := validation.Validate(value, validation.NotNil); err != nil {
		return violation(name, "%s is required", name)
	}
	return nil
}

// RequireNonEmpty rejects empty and whitespace-only strings.
func RequireNonEmpty(value, name string) error {
	if err := validation.Validate(strings.TrimSpace(value), validation.Required); err != nil {
		return violation(name, "%s is required", name)
	}
	return nil
}

// RequirePositive rejects zero and negative identifiers and counts.
func RequirePositive(value int64, name string) error {
	if value <= 0 {
		return violation(name, "%s must be a positive number", name)
	}
	return nil
}

// RequireInRange accepts min <= value <= max.
func RequireInRange(value, min, max int, name string) error {
	if value < min || value > max {
		return violation(name, "%s must be between %d and %d", name, min, max)
	}
	return nil
}

// RequireMaxLength counts runes, not bytes.
func RequireMaxLength(value string, max int, name string) error {
	if err := validation.Validate(value, validation.RuneLength(0, max)); err != nil {
		return violation(name, "%s must be at most %d characters", name, max)
	}
	return nil
}

// RequireURL accepts an empty value; anything else must parse as a URL.
func RequireURL(value, name string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	if err := validation.Validate(value, is.URL); err != nil {
		return violation(name, "%s must be a valid URL", name)
	}
	return nil
}

// RequirePositiveIfSet applies RequirePositive to optional references.
func RequirePositiveIfSet(value *int64, name string) error {
	if value == nil {
		return nil
	}
	return RequirePositive(*value, name)
}

// RequirePositiveIntIfSet applies RequirePositive to optional page numbers.
func RequirePositiveIntIfSet(value *int, name string) error {
	if value == nil {
		return nil
	}
	return RequirePositive(int64(*value), name)
}
