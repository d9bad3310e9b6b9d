package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance whose error fields use the `label` tag
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		return fld.Name
	})
	return &Validator{
		validate: v,
	}
}

// ValidateStruct validates a struct using struct tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// Var validates a single value against a tag expression
func (v *Validator) Var(value interface{}, tag string) error {
	return v.validate.Var(value, tag)
}

// FormatValidationErrors converts validation errors to user facing messages in field order
func FormatValidationErrors(err error) []string {
	var messages []string

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			field := e.Field()
			switch e.Tag() {
			case "required":
				messages = append(messages, fmt.Sprintf("%s is required.", field))
			case "email":
				messages = append(messages, "Please enter a valid email address.")
			case "url", "http_url":
				messages = append(messages, fmt.Sprintf("%s must be a valid URL.", field))
			case "min":
				messages = append(messages, fmt.Sprintf("%s must be at least %s characters.", field, e.Param()))
			case "max":
				messages = append(messages, fmt.Sprintf("%s must be at most %s characters.", field, e.Param()))
			case "gte":
				messages = append(messages, fmt.Sprintf("%s must be greater than or equal to %s.", field, e.Param()))
			case "oneof":
				messages = append(messages, fmt.Sprintf("%s must be one of: %s.", field, strings.ReplaceAll(e.Param(), " ", ", ")))
			case "eqfield":
				messages = append(messages, fmt.Sprintf("%s does not match.", field))
			default:
				messages = append(messages, fmt.Sprintf("%s is invalid.", field))
			}
		}
	}

	return messages
}
