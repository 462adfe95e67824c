package service

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	// ErrValidation is wrapped by every *ValidationError.
	ErrValidation = errors.New("validation failed")

	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Authorization pipeline outcomes, in gate order.
	ErrTokenInvalid      = errors.New("token invalid or expired")
	ErrPrincipalNotFound = errors.New("token subject not found")
	ErrAccountInactive   = errors.New("account deactivated")

	ErrUserNotFound             = errors.New("user not found")
	ErrCurrentPasswordIncorrect = errors.New("current password is incorrect")

	ErrAlreadyActive    = errors.New("user is already active")
	ErrAlreadyInactive  = errors.New("user is already inactive")
	ErrSelfDeactivation = errors.New("cannot deactivate own account")
)

// ValidationError describes rejected input. Message is safe to show to the
// caller; Fields maps a request field to what is wrong with it.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// fromValidation converts ozzo field errors. Non-field errors are returned
// unchanged so internal failures are not reported as bad input.
func fromValidation(msg string, err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	ve := &ValidationError{Message: msg, Fields: make(map[string]string, len(fieldErrs))}
	for field, ferr := range fieldErrs {
		if ferr != nil {
			ve.Fields[field] = ferr.Error()
		}
	}
	return ve
}
