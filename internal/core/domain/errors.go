package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrNotFound = errors.New("resource not found")

func TodoNotFound(id int64) error {
	return fmt.Errorf("todo %d: %w", id, ErrNotFound)
}

func CategoryNotFound(id int64) error {
	return fmt.Errorf("category %d: %w", id, ErrNotFound)
}

// ValidationError carries field-keyed messages. A nil or empty value is
// never returned as an error; use Err to convert.
type ValidationError struct {
	Errors map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Errors: map[string][]string{}}
}

func (e *ValidationError) Add(field, message string) {
	if e.Errors == nil {
		e.Errors = map[string][]string{}
	}

	e.Errors[field] = append(e.Errors[field], message)
}

func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Errors) > 0
}

func (e *ValidationError) Has(field string) bool {
	return e.HasErrors() && len(e.Errors[field]) > 0
}

// Err returns e as an error, or nil when nothing was recorded.
func (e *ValidationError) Err() error {
	if !e.HasErrors() {
		return nil
	}

	return e
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))

	for field := range e.Errors {
		fields = append(fields, field)
	}

	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(e.Errors[field], ", "))
	}

	return "validation failed: " + strings.Join(parts, "; ")
}
