package utils

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var seatIDPattern = regexp.MustCompile(`^[A-Z][1-9][0-9]{0,2}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("seat_id", func(fl validator.FieldLevel) bool {
		// request bodies may use lower case, ids are canonicalised later
		return IsSeatID(strings.ToUpper(strings.TrimSpace(fl.Field().String())))
	})
	return v
}

// IsSeatID reports whether id has the row-letter plus number shape, e.g. A1 or J25.
func IsSeatID(id string) bool {
	return seatIDPattern.MatchString(id)
}

// IsEmail applies the same syntactic email rule used for request structs.
func IsEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

func ValidateStruct(data interface{}) map[string]string {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, err := range validationErrors {
			errors[err.Field()] = getErrorMessage(err)
		}
	}

	return errors
}

// converts validator errors to human-readable messages
func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("Minimum length is %s", err.Param())
	case "max":
		return fmt.Sprintf("Maximum length is %s", err.Param())
	case "unique":
		return "Values must not repeat"
	case "seat_id":
		return "Must be a seat id like A1"
	case "oneof":
		options := strings.ReplaceAll(err.Param(), " ", ", ")
		return fmt.Sprintf("Must be one of: %s", options)
	default:
		return fmt.Sprintf("Invalid %s field", err.Field())
	}
}

// formats validation errors map into single string
func FormatValidationErrors(errors map[string]string) string {
	fields := make([]string, 0, len(errors))
	for field := range errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, errors[field]))
	}
	return strings.Join(msgs, "; ")
}
