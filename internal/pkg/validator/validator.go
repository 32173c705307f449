package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Pesokrava/product_catalog/internal/domain"
)

var skuPattern = regexp.MustCompile(`^[A-Z0-9-]+$`)

// Shared validator instance to avoid creating multiple instances
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report violations under the json field name, not the Go field name
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	// sku restricts a field to uppercase letters, numbers and hyphens
	_ = validate.RegisterValidation("sku", func(fl validator.FieldLevel) bool {
		return skuPattern.MatchString(fl.Field().String())
	})
}

// Get returns the shared validator instance
func Get() *validator.Validate {
	return validate
}

// Violations converts a validation error into field-level violation pairs.
func Violations(err error) []domain.FieldViolation {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []domain.FieldViolation{{Field: "", Message: err.Error()}}
	}

	violations := make([]domain.FieldViolation, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		violations = append(violations, domain.FieldViolation{
			Field:   fe.Field(),
			Message: messageFor(fe),
		})
	}
	return violations
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must not exceed %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be %s or greater", fe.Param())
	case "lt":
		return fmt.Sprintf("must be less than %s", fe.Param())
	case "sku":
		return "may only contain uppercase letters, numbers and hyphens"
	default:
		return fmt.Sprintf("failed validation on %q", fe.Tag())
	}
}
