// Package domainerrors carries failures across layers with a stable code that
// the transport maps to a status. It knows nothing about HTTP.
package domainerrors

import "errors"

// Code classifies a failure in business terms.
type Code string

// Caller faults.
const (
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeValidation         Code = "validation_failed"
	CodeInvariantViolation Code = "invariant_violation"
	CodeUnsupportedType    Code = "unsupported_type"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
)

// Server faults.
const (
	CodeInternal Code = "internal_error"
	CodeTimeout  Code = "timeout"
)

// FieldError is one violated rule. Field may be synthetic ("user") when the
// rule spans several columns.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Error is a coded failure, optionally wrapping its cause and listing the
// fields that failed.
type Error struct {
	Code    Code
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code, so errors.Is(err, New(CodeNotFound, ""))
// works regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Invalid reports every violated rule at once under CodeValidation.
func Invalid(fields []FieldError) error {
	return WithFields(CodeValidation, "validation failed", fields)
}

func WithFields(code Code, msg string, fields []FieldError) error {
	return &Error{Code: code, Message: msg, Fields: fields}
}

// Wrap attaches msg to err. An err that already carries a domain code keeps
// that code and its fields; code applies only to foreign errors.
func Wrap(err error, code Code, msg string) error {
	wrapped := &Error{Code: code, Message: msg, Err: err}
	if inner, ok := as(err); ok {
		wrapped.Code = inner.Code
		wrapped.Fields = inner.Fields
	}
	return wrapped
}

// CodeOf returns the code of the outermost domain error in err's chain, or ""
// when there is none.
func CodeOf(err error) Code {
	if e, ok := as(err); ok {
		return e.Code
	}
	return ""
}

func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// Fields returns the field errors carried by err.
func Fields(err error) []FieldError {
	if e, ok := as(err); ok {
		return e.Fields
	}
	return nil
}

func as(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
