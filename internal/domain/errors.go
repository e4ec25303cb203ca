package domain

import (
	"fmt"
)

// ErrorKind classifies the failures the request pipeline can end with.
type ErrorKind int

const (
	KindValidationFailed ErrorKind = iota + 1
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindUpstreamFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidationFailed:
		return "validation failed"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindUpstreamFailure:
		return "upstream failure"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a failure produced by a gate, the validator or a handler step.
// Message is safe to show to the caller; Err carries the cause for operators.
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func ValidationFailed(fields []FieldError) *Error {
	return &Error{Kind: KindValidationFailed, Message: "Validation failed", Fields: fields}
}

func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func UpstreamFailure(err error) *Error {
	return &Error{Kind: KindUpstreamFailure, Message: "Internal server error", Err: err}
}
