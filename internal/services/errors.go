package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Error kinds. Every error returned by a service wraps exactly one of these.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrDenied          = errors.New("denied")
	ErrConflict        = errors.New("conflict")
	ErrDependency      = errors.New("dependency failure")
)

// ErrDefaultFoldersIncomplete marks a drive whose root exists but whose
// default subfolders could not all be created.
var ErrDefaultFoldersIncomplete = errors.New("default folders incomplete")

type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func invalidArgument(message string) error {
	return &Error{Kind: ErrInvalidArgument, Message: message}
}

func notFound(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

func denied(message string) error {
	return &Error{Kind: ErrDenied, Message: message}
}

func conflict(message string, err error) error {
	return &Error{Kind: ErrConflict, Message: message, Err: err}
}

func dependency(message string, err error) error {
	return &Error{Kind: ErrDependency, Message: message, Err: err}
}

// storeError classifies a GORM error. notFoundMessage is used for missing rows.
func storeError(err error, notFoundMessage string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound(notFoundMessage)
	case isDuplicateKey(err):
		return conflict("resource already exists", err)
	default:
		return dependency("database operation failed", err)
	}
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// Kind returns the taxonomy kind of err, or ErrDependency for unclassified errors.
func Kind(err error) error {
	for _, kind := range []error{ErrInvalidArgument, ErrNotFound, ErrDenied, ErrConflict, ErrDependency} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrDependency
}

// Message returns the caller-facing message for err.
func Message(err error) string {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Message
	}
	return "internal server error"
}
