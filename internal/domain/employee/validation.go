package employee

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// EmailLookup answers whether an email is held by a record other than excludeID.
type EmailLookup interface {
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
}

type candidate struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,max=255,email"`
	Position string `json:"position" validate:"required,max=255"`
}

// Gate checks presence, type, length and email syntax of every field, then
// email uniqueness. All violations are reported together.
type Gate struct {
	lookup   EmailLookup
	validate *validator.Validate
}

func NewGate(lookup EmailLookup) *Gate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Gate{lookup: lookup, validate: v}
}

// Check validates in. excludeID is the record being updated, or 0 on create.
// It returns a *ValidationError for rule violations and a wrapped error when
// the uniqueness lookup itself fails.
func (g *Gate) Check(ctx context.Context, in Input, excludeID int64) (Fields, error) {
	fields := Fields{
		Name:     trimmed(in.Name),
		Email:    trimmed(in.Email),
		Position: trimmed(in.Position),
	}

	verr := NewValidationError()
	nonString := make(map[string]bool, len(in.NonString))
	for _, field := range in.NonString {
		nonString[field] = true
		verr.Add(field, ReasonString)
	}

	err := g.validate.Struct(candidate(fields))
	var fieldErrs validator.ValidationErrors
	switch {
	case err == nil:
	case errors.As(err, &fieldErrs):
		for _, fe := range fieldErrs {
			if nonString[fe.Field()] {
				continue
			}
			verr.Add(fe.Field(), reasonFor(fe.Tag()))
		}
	default:
		return Fields{}, fmt.Errorf("validate employee: %w", err)
	}

	if _, bad := verr.Fields["email"]; !bad && g.lookup != nil {
		taken, err := g.lookup.EmailTaken(ctx, fields.Email, excludeID)
		if err != nil {
			return Fields{}, fmt.Errorf("check email uniqueness: %w", err)
		}
		if taken {
			verr.Add("email", ReasonTaken)
		}
	}

	if verr.HasIssues() {
		return Fields{}, verr
	}
	return fields, nil
}

func reasonFor(tag string) string {
	switch tag {
	case "required":
		return ReasonRequired
	case "email":
		return ReasonEmail
	case "max":
		return ReasonTooLong
	default:
		return "is invalid"
	}
}

func trimmed(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
