package employee

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound   = errors.New("employee: not found")
	ErrEmailTaken = errors.New("employee: email already taken")
	ErrInvalidID  = errors.New("employee: invalid id")
)

const (
	ReasonRequired = "is required"
	ReasonString   = "must be a string"
	ReasonEmail    = "must be a valid email address"
	ReasonTooLong  = "must not exceed 255 characters"
	ReasonTaken    = "already taken"
)

// ValidationError carries every violated field with its reasons.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string, 3)}
}

func (e *ValidationError) Add(field, reason string) {
	if e == nil {
		return
	}
	field = strings.TrimSpace(field)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return
	}
	if e.Fields == nil {
		e.Fields = make(map[string][]string, 3)
	}
	for _, existing := range e.Fields[field] {
		if existing == reason {
			return
		}
	}
	e.Fields[field] = append(e.Fields[field], reason)
}

func (e *ValidationError) HasIssues() bool {
	return e != nil && len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	if !e.HasIssues() {
		return "employee: validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		keys = append(keys, field)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, field := range keys {
		parts = append(parts, field+": "+strings.Join(e.Fields[field], ", "))
	}
	return "employee: validation failed: " + strings.Join(parts, "; ")
}

// AsValidationError unwraps err into a *ValidationError when it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
