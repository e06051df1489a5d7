package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v55/github"
)

// ErrCode represents an error code
type ErrCode string

const (
	ErrCodeNotFound     ErrCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrCode = "UNAUTHORIZED"
	ErrCodeRateLimited  ErrCode = "RATE_LIMITED"
	ErrCodeInternal     ErrCode = "INTERNAL_ERROR"
	ErrCodeBadRequest   ErrCode = "BAD_REQUEST"
	ErrCodeForbidden    ErrCode = "FORBIDDEN"
)

// AppError represents an application error
type AppError struct {
	Code    ErrCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeUnauthorized,
		Message: message,
	}
}

// NewRateLimitedError creates a new rate limited error
func NewRateLimitedError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeRateLimited,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
	}
}

// NewForbiddenError creates a new forbidden error
func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeForbidden,
		Message: message,
	}
}

func (e *AppError) withCause(err error) *AppError {
	e.Err = err
	return e
}

// FromGitHubError classifies an error returned by the GitHub client.
// resource names the object being fetched, e.g. "organization acme".
// A nil error yields nil.
func FromGitHubError(resource string, err error) error {
	if err == nil {
		return nil
	}

	var rateErr *github.RateLimitError
	if stderrors.As(err, &rateErr) {
		return NewRateLimitedError(fmt.Sprintf("rate limit exceeded while fetching %s", resource)).withCause(err)
	}
	var abuseErr *github.AbuseRateLimitError
	if stderrors.As(err, &abuseErr) {
		return NewRateLimitedError(fmt.Sprintf("secondary rate limit hit while fetching %s", resource)).withCause(err)
	}

	var respErr *github.ErrorResponse
	if stderrors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusNotFound:
			return NewNotFoundError(resource).withCause(err)
		case http.StatusUnauthorized:
			return NewUnauthorizedError("GitHub rejected the token").withCause(err)
		case http.StatusForbidden:
			return NewForbiddenError(fmt.Sprintf("access to %s denied", resource)).withCause(err)
		}
	}

	return NewInternalError(fmt.Sprintf("failed to fetch %s", resource), err)
}

// CodeOf returns the code of the AppError in err's chain, or ErrCodeInternal
func CodeOf(err error) ErrCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// StatusCode maps an error to the HTTP status reported by the API
func StatusCode(err error) int {
	switch CodeOf(err) {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeBadRequest:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return is(err, ErrCodeNotFound)
}

// IsForbidden checks if the error is a forbidden error
func IsForbidden(err error) bool {
	return is(err, ErrCodeForbidden)
}

// IsRateLimited checks if the error is a rate limited error
func IsRateLimited(err error) bool {
	return is(err, ErrCodeRateLimited)
}

func is(err error, code ErrCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
