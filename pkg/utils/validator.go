package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

// mobileRegex takes ten digits: a local number with one trunk 0, or a
// subscriber number without it.
var mobileRegex = regexp.MustCompile(`^(?:0[1-9][0-9]{8}|[1-9][0-9]{9})$`)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := validate.RegisterValidation("user_role", validateUserRole); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("mobile_phone", validateMobilePhone); err != nil {
		panic(err)
	}
}

func ValidateStruct(s any) error {
	return validate.Struct(s)
}

// IsValidEmail reports whether email passes the same check as the `email` tag.
func IsValidEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "user", "merchant", "admin":
		return true
	}
	return false
}

func validateMobilePhone(fl validator.FieldLevel) bool {
	return mobileRegex.MatchString(fl.Field().String())
}

// ValidationMessages renders validator errors as human readable sentences keyed
// by the JSON field name. Errors of any other type yield their own text.
func ValidationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, fieldMessage(fe))
	}
	return messages
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required", "required_with":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must have at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must have maximum %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "email":
		return "Please provide a valid email!"
	case "mobile_phone":
		return "Please provide a mobile phone number!"
	case "eqfield":
		return "Passwords do not match!"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "user_role":
		return fmt.Sprintf("%s must be one of: user, merchant, admin", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
