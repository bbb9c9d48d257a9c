// Package apperror classifies domain errors so that transport code can map them
// without knowing every sentinel of every package.
package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type Kind string

const (
	KindValidation Kind = "validation"
	KindGuard      Kind = "guard"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindForbidden  Kind = "forbidden"
)

// kindError is the target used with errors.Is to match a whole category.
type kindError Kind

func (k kindError) Error() string { return string(k) }

var (
	ErrValidation error = kindError(KindValidation)
	ErrGuard      error = kindError(KindGuard)
	ErrNotFound   error = kindError(KindNotFound)
	ErrConflict   error = kindError(KindConflict)
	ErrForbidden  error = kindError(KindForbidden)
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Fields  map[string]string
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// Is reports category membership, so errors.Is(err, apperror.ErrGuard) holds
// for every guard sentinel.
func (e *Error) Is(target error) bool {
	k, ok := target.(kindError)
	return ok && Kind(k) == e.Kind
}

// Validation builds a field-level validation error.
func Validation(fields map[string]string) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    "VALIDATION_ERROR",
		Message: "validation failed",
		Fields:  fields,
	}
}

// FieldError is a shortcut for a single offending field.
func FieldError(field, message string) *Error {
	return Validation(map[string]string{field: message})
}

// Wrapf attaches a detail message to a sentinel while keeping it matchable.
func Wrapf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

// As extracts the classified error from a chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func KindOf(err error) (Kind, bool) {
	ae, ok := As(err)
	if !ok {
		return "", false
	}
	return ae.Kind, true
}
