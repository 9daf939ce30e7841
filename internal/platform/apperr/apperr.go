// Package apperr holds the error taxonomy shared by the domain packages and
// its mapping onto HTTP status codes and client-facing messages.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ehr/journal/internal/platform/markup"
	"github.com/ehr/journal/internal/platform/store"
)

// ValidationError reports a missing or empty required field.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validation returns a *ValidationError with a formatted message.
func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictError reports a uniqueness violation.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// Conflict returns a *ConflictError with a formatted message.
func Conflict(format string, args ...any) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a reference to a record that does not exist.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// NotFound returns a *NotFoundError with a formatted message.
func NotFound(format string, args ...any) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

// HTTPStatus maps err onto a status code. Unknown errors are server faults.
func HTTPStatus(err error) int {
	var (
		ve *ValidationError
		ce *ConflictError
		ne *NotFoundError
		re *store.ReadError
		we *store.WriteError
	)
	switch {
	case err == nil:
		return http.StatusOK
	// A corrupt collection file is a server fault even though it is a
	// decode failure, so store errors are checked first.
	case errors.As(err, &re), errors.As(err, &we):
		return http.StatusInternalServerError
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case markup.IsDecodeError(err):
		return http.StatusBadRequest
	case errors.As(err, &ce):
		return http.StatusConflict
	case errors.As(err, &ne):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text shown to clients for err. Server faults never
// expose the underlying cause.
func Message(err error) string {
	var (
		ve *ValidationError
		ce *ConflictError
		ne *NotFoundError
		re *store.ReadError
		we *store.WriteError
	)
	switch {
	case errors.As(err, &re):
		return "Could not read " + collectionName(re.Path)
	case errors.As(err, &we):
		return "Could not write " + collectionName(we.Path)
	case errors.As(err, &ve):
		return ve.Msg
	case markup.IsDecodeError(err):
		return "Invalid XML"
	case errors.As(err, &ce):
		return ce.Msg
	case errors.As(err, &ne):
		return ne.Msg
	case errors.Is(err, context.DeadlineExceeded):
		return "Request timed out"
	default:
		return "Internal server error"
	}
}

func collectionName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
