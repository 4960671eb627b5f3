package dto

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var ErrValidation = errors.New("validation failed")

// ValidationError names the first offending input, using its JSON name.
type ValidationError struct {
	Field   string
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
	rppsPattern  = regexp.MustCompile(`^\d{11}$`)
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonName)
		_ = v.RegisterValidation("password_policy", func(fl validator.FieldLevel) bool {
			return PasswordPolicyViolation(fl.Field().String()) == ""
		})
		_ = v.RegisterValidation("rpps", func(fl validator.FieldLevel) bool {
			return rppsPattern.MatchString(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// Validate checks a request struct before it is sent anywhere.
func Validate(req interface{}) error {
	err := instance().Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	fe := fieldErrs[0]
	return &ValidationError{
		Field:   fe.Field(),
		Rule:    fe.Tag(),
		Message: describe(fe),
	}
}

// PasswordPolicyViolation returns what the password is missing, or "" when it
// is acceptable: at least 8 characters, an upper-case letter, a digit and a
// character that is neither letter nor digit.
func PasswordPolicyViolation(password string) string {
	if len([]rune(password)) < 8 {
		return "must be at least 8 characters"
	}
	var upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case r < 'a' || r > 'z':
			special = true
		}
	}
	switch {
	case !upper:
		return "must contain an upper-case letter"
	case !digit:
		return "must contain a digit"
	case !special:
		return "must contain a special character"
	}
	return ""
}

func jsonName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "is not a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "eqfield":
		return "does not match the password"
	case "rpps":
		return "must be 11 digits"
	case "password_policy":
		if msg := PasswordPolicyViolation(fmt.Sprint(fe.Value())); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("failed %q check", fe.Tag())
}
