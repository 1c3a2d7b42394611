package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shashiranjanraj/dailyfresh/pkg/orm"
)

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrBadCredentials     = errors.New("wrong username or password")
	ErrAccountNotActive   = errors.New("account not activated")
	ErrTokenExpired       = errors.New("activation link expired")
	ErrTokenInvalid       = errors.New("activation link invalid")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// Cart input failures. Both match ErrInvalidInput; callers that need the
// legacy result codes tell them apart with errors.Is.
var (
	ErrIncompleteInput = fmt.Errorf("%w: incomplete data", ErrInvalidInput)
	ErrInvalidCount    = fmt.Errorf("%w: invalid count", ErrInvalidInput)
	ErrInvalidSKU      = fmt.Errorf("%w: invalid sku", ErrInvalidInput)
)

// ValidationError carries per-field messages. It matches ErrInvalidInput,
// and ErrUsernameTaken when that was the cause.
type ValidationError struct {
	Message string
	Fields  map[string]string
	cause   error
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
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func (e *ValidationError) Unwrap() []error {
	if e.cause != nil {
		return []error{ErrInvalidInput, e.cause}
	}
	return []error{ErrInvalidInput}
}

func invalid(message string, fields map[string]string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// unavailable marks a backend failure.
func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
}

// lookup maps a missing row to ErrNotFound and anything else to
// ErrServiceUnavailable.
func lookup(err error) error {
	if orm.IsNotFound(err) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return unavailable(err)
}
