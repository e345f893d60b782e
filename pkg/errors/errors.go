package errors

import (
	"errors"
)

type Code string

// Programming-error-class codes. Caller-facing data problems never become Go
// errors; they are carried as envelope values instead.
const (
	CodeSchemaCompile Code = "schema_compile"
	CodeBadDocument   Code = "bad_document"
	CodeInternalFault Code = "internal_fault"
)

const (
	CodeUnknown        Code = "unknown"
	CodeNotImplemented Code = "not_implemented"
)

var ErrMissingValidator = errors.New("fedcheck: schema validator is required")

type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	if e.Message != "" {
		return e.Message
	}

	if e.Err != nil {
		return e.Err.Error()
	}

	return string(e.Code)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func New(code Code, message string, err *error) *Error {
	newErr := &Error{
		Code:    code,
		Message: message,
	}
	if err != nil {
		newErr.Err = *err
	}
	return newErr
}

func Wrap(code Code, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsCode(err error, code Code) bool {
	var typed *Error
	if !errors.As(err, &typed) {
		return false
	}
	return typed.Code == code
}

func IsInternalCode(err error) bool {
	return IsCode(err, CodeUnknown) || IsCode(err, CodeInternalFault) || IsCode(err, CodeNotImplemented)
}
