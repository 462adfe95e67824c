package service

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 128
	maxNameLength     = 100
)

// normalizeEmail is applied before every lookup and write.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// notBlank rejects strings made only of whitespace, which Required lets
// through.
var notBlank = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if s != "" && strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
})

var passwordRules = []validation.Rule{
	validation.Required,
	notBlank,
	validation.Length(minPasswordLength, maxPasswordLength),
}

func (in SignupInput) validate() error {
	if in.FullName == "" || in.Email == "" || strings.TrimSpace(in.Password) == "" {
		return fromValidation("Please provide all required fields", validation.ValidateStruct(&in,
			validation.Field(&in.FullName, validation.Required),
			validation.Field(&in.Email, validation.Required),
			validation.Field(&in.Password, validation.Required, notBlank),
		))
	}

	return fromValidation("Invalid signup details", validation.ValidateStruct(&in,
		validation.Field(&in.FullName, validation.Required, validation.Length(1, maxNameLength)),
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, passwordRules...),
	))
}

func (in LoginInput) validate() error {
	return fromValidation("Please provide email and password", validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required),
		validation.Field(&in.Password, validation.Required),
	))
}

func (in ChangePasswordInput) validate() error {
	if in.CurrentPassword == "" || in.NewPassword == "" {
		return invalid("Please provide current and new password")
	}
	return fromValidation("Invalid new password", validation.ValidateStruct(&in,
		validation.Field(&in.NewPassword, passwordRules...),
	))
}

func validateEmail(email string) error {
	if err := validation.Validate(email, is.Email); err != nil {
		return &ValidationError{
			Message: "Invalid email address",
			Fields:  map[string]string{"email": err.Error()},
		}
	}
	return nil
}

func validateFullName(name string) error {
	if err := validation.Validate(name, validation.Length(1, maxNameLength)); err != nil {
		return &ValidationError{
			Message: "Invalid full name",
			Fields:  map[string]string{"fullName": err.Error()},
		}
	}
	return nil
}
