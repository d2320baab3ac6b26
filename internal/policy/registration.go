package policy

import (
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field names used as keys in FieldErrors.
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
)

const (
	MsgNameTooShort    = "Name must be a minimum of 5 characters."
	MsgEmailInvalid    = "Please enter a valid email address."
	MsgPasswordTooLong = "Password must be at most 72 bytes long"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

var validate = validator.New()

// FieldErrors maps a field name to its violation messages.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

// Fields returns the names of the failing fields in sorted order.
func (fe FieldErrors) Fields() []string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// ValidationError is returned when input fails its shape or format rules.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields.Fields(), ", ")
}

// IsValidationError reports whether err is a ValidationError and returns it.
func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Registration is the shape checked before an account is created.
type Registration struct {
	Name     string `validate:"min=5"`
	Email    string `validate:"required,email"`
	Password string
}

// ValidateRegistration checks every field and returns nil when the input is acceptable.
func ValidateRegistration(in Registration) *ValidationError {
	fields := FieldErrors{}

	var shapeErrs validator.ValidationErrors
	if errors.As(validate.Struct(in), &shapeErrs) {
		for _, fe := range shapeErrs {
			switch fe.StructField() {
			case "Name":
				fields.Add(FieldName, MsgNameTooShort)
			case "Email":
				fields.Add(FieldEmail, MsgEmailInvalid)
			}
		}
	}
	for _, v := range ValidatePassword(in.Password).Violations {
		fields.Add(FieldPassword, v)
	}
	if len(in.Password) > MaxPasswordBytes {
		fields.Add(FieldPassword, MsgPasswordTooLong)
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// ValidEmail reports whether s is a syntactically valid email address.
func ValidEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}
