package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Error codes shared by the session gateway.
const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeConflict         = "CONFLICT"
	CodeInternal         = "INTERNAL_ERROR"

	CodeAuthorizeFailed = "AUTHORIZE_FAILED"
	CodeUserNotExist    = "USER_NOT_EXIST"
	CodeTokenNotExist   = "TOKEN_NOT_EXIST"
	CodeTokenIsExpired  = "TOKEN_IS_EXPIRED"
	CodeBackend         = "BACKEND_ERROR"
	CodeHashFailed      = "HASH_FAILED"
)

// Authentication failures. Compare with errors.Is; wrapped copies match by code.
var (
	ErrAuthorizeFailed = NewDomainError(CodeAuthorizeFailed, "authorization failed", http.StatusUnauthorized, nil)
	ErrUserNotExist    = NewDomainError(CodeUserNotExist, "user does not exist", http.StatusNotFound, nil)
	ErrTokenNotExist   = NewDomainError(CodeTokenNotExist, "token not present", http.StatusUnauthorized, nil)
	ErrTokenIsExpired  = NewDomainError(CodeTokenIsExpired, "session is expired", http.StatusUnauthorized, nil)
	ErrBackend         = NewDomainError(CodeBackend, "backend unavailable", http.StatusServiceUnavailable, nil)
	ErrHashFailed      = NewDomainError(CodeHashFailed, "password hashing failed", http.StatusInternalServerError, nil)
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError carrying the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// Wrap returns a copy of base that carries err as its cause.
func Wrap(base *DomainError, err error) error {
	return &DomainError{
		Code:       base.Code,
		Message:    base.Message,
		HTTPStatus: base.HTTPStatus,
		Details:    base.Details,
		Err:        err,
	}
}

// NewBackendError marks err as a credential or session store failure.
func NewBackendError(err error) error {
	return Wrap(ErrBackend, err)
}

// NewHashError marks err as a password hashing failure.
func NewHashError(err error) error {
	return Wrap(ErrHashFailed, err)
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return &DomainError{
			Code:       codeForStatus(fiberErr.Code),
			Message:    fiberErr.Message,
			HTTPStatus: fiberErr.Code,
		}
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeValidationFailed
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	}
	if status >= http.StatusInternalServerError {
		return CodeInternal
	}
	return http.StatusText(status)
}
