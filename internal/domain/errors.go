package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPlanNotFound is returned when a plan does not exist or is not visible to the caller.
	// Ownership mismatches are reported with this same error.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrUnauthorized is returned when the caller identity is missing or invalid
	ErrUnauthorized = errors.New("unauthorized")
)

// FieldError describes a single invalid input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field problem found in a request
type ValidationError struct {
	Fields []FieldError
}

// Add records a problem for field
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns e when it holds at least one field problem, nil otherwise
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// StorageError wraps a persistence failure
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError wraps err as a StorageError for operation op; nil stays nil
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
