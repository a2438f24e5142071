package models

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared across the service and handler layers.
var (
	ErrNotFound      = errors.New("report not found")
	ErrInvalidStatus = errors.New("invalid status value")
	// ErrReportResolved rejects status changes on a terminal report.
	ErrReportResolved = errors.New("report is already resolved")
)

// FieldError describes a single failing field of a submission.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every failing field of a submission, not just
// the first one.
type ValidationError struct {
	Fields []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add records a failing field.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any field failed.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// DuplicateError signals that a recent nearby report already covers the
// incident. It is a rejection, not a failure.
type DuplicateError struct {
	MatchedReportID string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate of recent nearby report %s", e.MatchedReportID)
}
