package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies an error category. Codes are stable and end up verbatim
// in API responses, so renaming one is a breaking change for clients.
type Code string

const (
	CodeBadRequest         Code = "BAD_REQUEST"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeForbidden          Code = "FORBIDDEN"
	CodeNotFound           Code = "NOT_FOUND"
	CodeRecordNotFound     Code = "RECORD_NOT_FOUND"
	CodeDuplicateRecord    Code = "DUPLICATE_RECORD"
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeAuthentication     Code = "AUTHENTICATION_ERROR"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeInvalidToken       Code = "INVALID_TOKEN"
	CodeTokenExpired       Code = "TOKEN_EXPIRED"
	CodeDatabase           Code = "DATABASE_ERROR"
	CodeInternal           Code = "INTERNAL_SERVER_ERROR"
)

// Error is the application error carried between the repository, service,
// and HTTP layers.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetails attaches structured context that is safe to show to clients.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// HTTPStatus maps the error code to a response status.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeAuthentication, CodeInvalidCredentials, CodeInvalidToken, CodeTokenExpired:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound, CodeRecordNotFound:
		return http.StatusNotFound
	case CodeDuplicateRecord:
		return http.StatusConflict
	case CodeValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func BadRequest(message string) *Error {
	return New(CodeBadRequest, message)
}

func Unauthorized(message string) *Error {
	return New(CodeUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(CodeForbidden, message)
}

func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

// RecordNotFound reports a missing row, e.g. RecordNotFound("user", id).
func RecordNotFound(entity string, id any) *Error {
	return New(CodeRecordNotFound, fmt.Sprintf("%s with id %v not found", entity, id))
}

func DuplicateRecord(message string) *Error {
	return New(CodeDuplicateRecord, message)
}

func Validation(message string, details map[string]any) *Error {
	return &Error{Code: CodeValidation, Message: message, Details: details}
}

func InvalidCredentials() *Error {
	return New(CodeInvalidCredentials, "Invalid email or password")
}

func InvalidToken() *Error {
	return New(CodeInvalidToken, "Invalid token")
}

func TokenExpired() *Error {
	return New(CodeTokenExpired, "Token has expired")
}

func Database(operation string, cause error) *Error {
	return Wrap(CodeDatabase, fmt.Sprintf("database operation failed: %s", operation), cause)
}

func Internal(cause error) *Error {
	return Wrap(CodeInternal, "An unexpected error occurred", cause)
}

// From normalizes any error into an *Error, wrapping unknown errors as
// internal so handlers never leak raw error strings to clients.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// CodeOf extracts the code, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	return From(err).Code
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Code == code
}
