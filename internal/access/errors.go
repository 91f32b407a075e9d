package access

import (
	"errors"
	"fmt"
)

// Kind classifies a rejected operation. Handlers translate kinds into HTTP
// status codes; the resolver never carries presentation text.
type Kind string

const (
	KindUnauthorized    Kind = "unauthorized"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindInvalidArgument Kind = "invalid_argument"
	KindConflict        Kind = "conflict"
)

// Error is a structured business-rule violation: a kind plus the field or id
// the rule tripped on.
type Error struct {
	Kind   Kind
	Field  string
	Reason string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Reason)
}

// KindOf returns the kind carried by err, or the empty string for errors that
// did not originate in this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func Unauthorized(field, reason string) *Error {
	return &Error{Kind: KindUnauthorized, Field: field, Reason: reason}
}

func Forbidden(field, reason string) *Error {
	return &Error{Kind: KindForbidden, Field: field, Reason: reason}
}

func NotFound(field, reason string) *Error {
	return &Error{Kind: KindNotFound, Field: field, Reason: reason}
}

func InvalidArgument(field, reason string) *Error {
	return &Error{Kind: KindInvalidArgument, Field: field, Reason: reason}
}

func Conflict(field, reason string) *Error {
	return &Error{Kind: KindConflict, Field: field, Reason: reason}
}
