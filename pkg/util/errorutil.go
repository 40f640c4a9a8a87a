package util

import (
	"errors"
	"fmt"
	"net/http"
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

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewMalformedPayload flags an inbound webhook payload missing required fields.
func NewMalformedPayload(message string, details map[string]any) error {
	return NewDomainError("MALFORMED_PAYLOAD", message, http.StatusBadRequest, details)
}

// NewUpstreamQueryFailure wraps a failed model or retrieval call.
func NewUpstreamQueryFailure(err error) error {
	return &DomainError{
		Code:       "UPSTREAM_QUERY_FAILED",
		Message:    "upstream query failed",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewStoreIOFailure wraps a user store read or write failure.
func NewStoreIOFailure(err error) error {
	return &DomainError{
		Code:       "STORE_IO_FAILURE",
		Message:    "user store unavailable",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
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
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
