package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrCaseNotFound = errors.New("case not found")
	ErrRateLimited  = errors.New("rate limit exceeded")
	ErrNoStore      = errors.New("no case store configured")

	// ErrDuplicateSession is returned by a case store when a voice session
	// already has a case.
	ErrDuplicateSession = errors.New("voice session already has a case")
)

// VapiSessionConstraint is the unique index on cases.vapi_session_id.
const VapiSessionConstraint = "cases_vapi_session_id_key"

type ValidationCode string

const (
	ValidationMissingFields      ValidationCode = "MISSING_FIELDS"
	ValidationInvalidCategory    ValidationCode = "INVALID_CATEGORY"
	ValidationInvalidCoordinates ValidationCode = "INVALID_COORDINATES"
	ValidationFieldTooLong       ValidationCode = "FIELD_TOO_LONG"
)

// ValidationError describes exactly what failed so the submitter can fix it.
type ValidationError struct {
	Code    ValidationCode `json:"code"`
	Message string         `json:"message"`
	Fields  []string       `json:"fields,omitempty"`
	Field   string         `json:"field,omitempty"`
	Limit   int            `json:"limit,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func MissingFieldsError(fields []string) *ValidationError {
	return &ValidationError{
		Code:    ValidationMissingFields,
		Message: "missing required fields: " + strings.Join(fields, ", "),
		Fields:  fields,
	}
}

func InvalidCategoryError(category string) *ValidationError {
	return &ValidationError{
		Code:    ValidationInvalidCategory,
		Message: fmt.Sprintf("invalid category %q", category),
		Field:   "category",
	}
}

func InvalidCoordinatesError(msg string) *ValidationError {
	return &ValidationError{
		Code:    ValidationInvalidCoordinates,
		Message: msg,
		Field:   "coordinates",
	}
}

func FieldTooLongError(field string, limit int) *ValidationError {
	return &ValidationError{
		Code:    ValidationFieldTooLong,
		Message: fmt.Sprintf("%s must be %d characters or fewer", field, limit),
		Field:   field,
		Limit:   limit,
	}
}

// RateLimitError unwraps to ErrRateLimited.
type RateLimitError struct {
	Identity   string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry in %s", e.Identity, e.RetryAfter.Round(time.Second))
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// PersistenceError wraps whatever the case store returned.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist case (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
