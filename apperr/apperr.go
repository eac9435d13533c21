// Package apperr holds the error taxonomy shared by the catalog, editor and
// aggregator. Controllers translate these into HTTP responses.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned while another request holds the editing session,
	// most commonly an in-flight submit.
	ErrBusy = errors.New("session is busy")
	// ErrSessionClosed is returned for edits after a successful submit.
	ErrSessionClosed = errors.New("session already submitted")
)

// NotFoundError reports a producer, order or session id that does not resolve.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func NotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// IsNotFound reports whether err is a NotFoundError, optionally for a given resource.
func IsNotFound(err error, resource ...string) bool {
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		return false
	}
	if len(resource) == 0 {
		return true
	}
	for _, r := range resource {
		if nf.Resource == r {
			return true
		}
	}
	return false
}

// WriteFailure means the store did not complete a write. The caller may retry.
type WriteFailure struct {
	Op  string
	Err error
}

func (e *WriteFailure) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *WriteFailure) Unwrap() error { return e.Err }

// ValidationError rejects input before anything is written.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func Invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func Invalidf(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsWriteFailure(err error) bool {
	var w *WriteFailure
	return errors.As(err, &w)
}
