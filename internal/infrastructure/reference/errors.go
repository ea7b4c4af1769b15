package reference

import (
	"fmt"

	"github.com/nutrigrade/backend/internal/domain"
)

// LoadError describes why a reference table could not be loaded.
// Index is the zero-based entry position, or -1 when the problem is not tied to one entry.
type LoadError struct {
	Source string
	Index  int
	Field  string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	msg := "load reference table"
	if e.Source != "" {
		msg += " " + e.Source
	}
	if e.Index >= 0 {
		msg += fmt.Sprintf(": entry %d", e.Index)
	}
	if e.Field != "" {
		msg += fmt.Sprintf(": field %q", e.Field)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the domain sentinel and the underlying cause to errors.Is / errors.As
func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{domain.ErrReferenceTableInvalid}
	}
	return []error{domain.ErrReferenceTableInvalid, e.Err}
}

func entryError(index int, field, reason string) *LoadError {
	return &LoadError{Index: index, Field: field, Reason: reason}
}
