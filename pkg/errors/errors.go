// Package errors carries typed application errors from services to the HTTP
// layer. Each Code belongs to a Class that fixes its status and how much of
// the error a caller may see.
package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeNotFound          Code = "NOT_FOUND"
	CodeConflict          Code = "CONFLICT"
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodeIdempotency       Code = "IDEMPOTENCY_KEY_REUSED"
	CodeInternal          Code = "INTERNAL_ERROR"
	CodeDependency        Code = "DEPENDENCY_ERROR"
)

// Class describes how a code surfaces over HTTP. Fallback is returned
// whenever the error's own message stays private.
type Class struct {
	Status      int
	Fallback    string
	ShowMessage bool
	ShowDetails bool
	Retryable   bool
}

var classes = map[Code]Class{
	CodeValidation:        {Status: http.StatusBadRequest, Fallback: "validation failed", ShowMessage: true, ShowDetails: true},
	CodeNotFound:          {Status: http.StatusNotFound, Fallback: "resource not found", ShowMessage: true},
	CodeConflict:          {Status: http.StatusConflict, Fallback: "conflict detected", ShowMessage: true},
	CodeInvalidTransition: {Status: http.StatusBadRequest, Fallback: "status transition not allowed", ShowMessage: true, ShowDetails: true},
	CodeIdempotency:       {Status: http.StatusConflict, Fallback: "idempotency key reused", ShowMessage: true, ShowDetails: true},
	CodeInternal:          {Status: http.StatusInternalServerError, Fallback: "internal server error", Retryable: true},
	CodeDependency:        {Status: http.StatusServiceUnavailable, Fallback: "dependency unavailable", ShowDetails: true, Retryable: true},
}

// ClassOf falls back to the internal class for codes it does not know.
func ClassOf(code Code) Class {
	if c, ok := classes[code]; ok {
		return c
	}
	return classes[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

// Public returns the message and details a caller is allowed to see.
func (e *Error) Public() (string, any) {
	class := ClassOf(e.Code())
	msg := class.Fallback
	if class.ShowMessage && e.Message() != "" {
		msg = e.Message()
	}
	if !class.ShowDetails {
		return msg, nil
	}
	return msg, e.Details()
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As finds the first *Error in err's chain.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}
