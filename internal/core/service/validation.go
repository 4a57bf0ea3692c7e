package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/partsdesk/storefront/internal/core/domain"
)

// newValidator returns a validator that also knows the notblank tag.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

// validateStruct runs the validate tags of v and converts the first failure
// into a domain.ValidationError with a user-facing message.
func validateStruct(validate *validator.Validate, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate: %w", err)
	}
	fe := verrs[0]
	return domain.NewValidationError(jsonName(fe.Field()), fieldMessage(fe))
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return name + " is required"
	case "email":
		return "Please enter a valid email address"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, fe.Param())
	default:
		return name + " is invalid"
	}
}

func jsonName(field string) string {
	if field == "" {
		return field
	}
	b := []byte(field)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
