package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Validation patterns. Titles allow only letters, digits, and spaces; names
// start with a letter and allow spaces, dots, apostrophes, and hyphens.
var (
	titleRe = regexp.MustCompile(`^[a-zA-Z0-9 ]{1,100}$`)
	nameRe  = regexp.MustCompile(`^[a-zA-Z][a-zA-Z\s.'-]{1,49}$`)
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// FieldError describes a single violated validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every violated field of a request. The full set
// is always reported; consumers that expect a single message can take the
// first entry.
type ValidationError struct {
	Fields []FieldError
}

// Error returns the first violation, which keeps single-message consumers
// working.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("%s: %s", e.Fields[0].Field, e.Fields[0].Message)
}

// Unwrap makes errors.Is(err, ErrInvalidInput) hold for validation errors.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// add appends a violation and returns the receiver for chaining.
func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// orNil returns nil when no rule was violated.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ValidateDocumentInput checks a create request's title and content.
func ValidateDocumentInput(title, content string) error {
	var v ValidationError
	checkTitle(&v, title)
	checkContent(&v, content)
	return v.orNil()
}

// ValidateDocumentUpdate checks only the fields present in an edit request.
// A nil pointer means the field was absent from the body.
func ValidateDocumentUpdate(title, content *string) error {
	var v ValidationError
	if title != nil {
		checkTitle(&v, *title)
	}
	if content != nil {
		checkContent(&v, *content)
	}
	return v.orNil()
}

func checkTitle(v *ValidationError, title string) {
	title = strings.TrimSpace(title)
	if title == "" {
		v.add("title", "Title is required")
		return
	}
	if !titleRe.MatchString(title) {
		v.add("title", "Title must not contain symbols")
	}
}

func checkContent(v *ValidationError, content string) {
	if strings.TrimSpace(content) == "" {
		v.add("content", "Content is required")
	}
}

// ValidateRegistration checks a registration request. Role is optional and
// defaults to "user" at the service layer.
func ValidateRegistration(name, email, password string, role Role) error {
	var v ValidationError
	if strings.TrimSpace(name) == "" {
		v.add("name", "Name is required")
	} else if !nameRe.MatchString(strings.TrimSpace(name)) {
		v.add("name", "Name must be 2-50 characters and contain only letters, spaces, and basic punctuation")
	}
	checkEmail(&v, email)
	checkPassword(&v, password)
	if role != "" && !role.Valid() {
		v.add("role", "Role must be either user or admin")
	}
	return v.orNil()
}

// ValidateLogin checks a login request.
func ValidateLogin(email, password string) error {
	var v ValidationError
	checkEmail(&v, email)
	checkPassword(&v, password)
	return v.orNil()
}

func checkEmail(v *ValidationError, email string) {
	if !emailRe.MatchString(strings.TrimSpace(email)) {
		v.add("email", "Valid email is required")
	}
}

func checkPassword(v *ValidationError, password string) {
	if len(password) < 8 {
		v.add("password", "Password must be at least 8 characters")
	}
}
