// Package forms defines the submitted form shapes and their
// validation rules.
package forms

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// GenerateTrackingLink is the link-generation form.
type GenerateTrackingLink struct {
	EmailTitle   string `validate:"required,max=500"`
	EmailAddress string `validate:"required,email"`
}

// ParseGenerateTrackingLink reads the form fields from the request.
func ParseGenerateTrackingLink(r *http.Request) *GenerateTrackingLink {
	return &GenerateTrackingLink{
		EmailTitle:   strings.TrimSpace(r.FormValue("email_title")),
		EmailAddress: strings.TrimSpace(r.FormValue("email_address")),
	}
}

// Validate returns field -> message for every failed rule, empty when
// the form is valid.
func (f *GenerateTrackingLink) Validate() map[string]string {
	return fieldErrors(validate.Struct(f), map[string]string{
		"EmailTitle":   "Mail title is required",
		"EmailAddress": "A valid email address is required",
	})
}

// LoginForm is the sign-in form.
type LoginForm struct {
	Username string `validate:"required,email"`
	Password string `validate:"required"`
}

// ParseLoginForm reads the form fields from the request.
func ParseLoginForm(r *http.Request) *LoginForm {
	return &LoginForm{
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: r.FormValue("password"),
	}
}

// Validate returns field -> message for every failed rule.
func (f *LoginForm) Validate() map[string]string {
	return fieldErrors(validate.Struct(f), map[string]string{
		"Username": "A valid email address is required",
		"Password": "Password is required",
	})
}

func fieldErrors(err error, messages map[string]string) map[string]string {
	if err == nil {
		return nil
	}

	result := make(map[string]string)
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fieldErr := range validationErrs {
			if msg, ok := messages[fieldErr.Field()]; ok {
				result[fieldErr.Field()] = msg
			} else {
				result[fieldErr.Field()] = "Invalid value"
			}
		}
		return result
	}

	result["form"] = "Invalid form submission"
	return result
}
