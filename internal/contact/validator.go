// Package contact implements the contact form: per-field validation rules and
// the controller that owns form state and the submission lifecycle.
package contact

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Field names a contact form input.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldMessage Field = "message"
)

// Fields lists every form field in display order.
var Fields = []Field{FieldName, FieldEmail, FieldMessage}

// ParseField maps a wire name to a Field.
func ParseField(s string) (Field, error) {
	switch f := Field(s); f {
	case FieldName, FieldEmail, FieldMessage:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Kind classifies a field validation failure.
type Kind string

const (
	KindRequired      Kind = "required"
	KindTooShort      Kind = "too_short"
	KindInvalidFormat Kind = "invalid_format"
)

const (
	minNameLength    = 2
	minMessageLength = 10
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FieldError is a single validation failure with a human readable message.
type FieldError struct {
	Field   Field  `json:"field"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return e.Message
}

// FieldErrors maps a field to its current validation error. Fields that
// validate cleanly have no entry.
type FieldErrors map[Field]*FieldError

// Messages flattens the errors into field name -> message.
func (fe FieldErrors) Messages() map[string]string {
	out := make(map[string]string, len(fe))
	for field, err := range fe {
		if err != nil {
			out[string(field)] = err.Message
		}
	}
	return out
}

// Values is the content of the three form fields.
type Values struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Get returns the value of field.
func (v Values) Get(field Field) string {
	switch field {
	case FieldName:
		return v.Name
	case FieldEmail:
		return v.Email
	case FieldMessage:
		return v.Message
	}
	return ""
}

// Set stores value under field. Unknown fields are ignored.
func (v *Values) Set(field Field, value string) {
	switch field {
	case FieldName:
		v.Name = value
	case FieldEmail:
		v.Email = value
	case FieldMessage:
		v.Message = value
	}
}

// Validate checks a single field value. Rules run in order (required, then
// length or format) and the first failure is returned. Unknown fields are
// always valid.
func Validate(field Field, value string) *FieldError {
	trimmed := strings.TrimSpace(value)

	switch field {
	case FieldName:
		if trimmed == "" {
			return fieldError(field, KindRequired, "Name is required")
		}
		if utf8.RuneCountInString(trimmed) < minNameLength {
			return fieldError(field, KindTooShort, fmt.Sprintf("Name must be at least %d characters", minNameLength))
		}
	case FieldEmail:
		if trimmed == "" {
			return fieldError(field, KindRequired, "Email is required")
		}
		if !emailPattern.MatchString(value) {
			return fieldError(field, KindInvalidFormat, "Please enter a valid email")
		}
	case FieldMessage:
		if trimmed == "" {
			return fieldError(field, KindRequired, "Message is required")
		}
		if utf8.RuneCountInString(trimmed) < minMessageLength {
			return fieldError(field, KindTooShort, fmt.Sprintf("Message must be at least %d characters", minMessageLength))
		}
	}
	return nil
}

// ValidateAll validates every field and reports whether the form can be
// submitted.
func ValidateAll(values Values) (FieldErrors, bool) {
	errs := make(FieldErrors, len(Fields))
	for _, field := range Fields {
		if err := Validate(field, values.Get(field)); err != nil {
			errs[field] = err
		}
	}
	return errs, len(errs) == 0
}

func fieldError(field Field, kind Kind, message string) *FieldError {
	return &FieldError{Field: field, Kind: kind, Message: message}
}
