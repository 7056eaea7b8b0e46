package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a remote service failure so callers can decide whether
// a retry is safe.
type ErrorKind string

const (
	// ErrUnauthorized means the credential was missing, invalid or expired.
	ErrUnauthorized ErrorKind = "unauthorized"
	// ErrRateLimited means the service asked the caller to back off.
	ErrRateLimited ErrorKind = "rate_limited"
	// ErrTransient covers network failures and generic 5xx; safe to retry.
	ErrTransient ErrorKind = "transient"
	// ErrRejected covers 4xx other than auth/rate limiting; not safe to retry.
	ErrRejected ErrorKind = "rejected"
	// ErrUnavailable means the service reported itself down.
	ErrUnavailable ErrorKind = "unavailable"
)

// ServiceError is the uniform error returned by every remote adapter.
type ServiceError struct {
	Service string
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Service, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Service, e.Kind, e.Message)
}

// CredentialError reports missing or incomplete client configuration. It is
// fatal: no adapter call is attempted and nothing is retried.
type CredentialError struct {
	Service string
	Reason  string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("%s: credentials: %s", e.Service, e.Reason)
}

// classifyStatus maps an HTTP status code onto the error taxonomy.
func classifyStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status == http.StatusServiceUnavailable:
		return ErrUnavailable
	case status >= 500:
		return ErrTransient
	default:
		return ErrRejected
	}
}

// statusError builds a ServiceError from a non-2xx response.
func statusError(service string, status int, body []byte) *ServiceError {
	return &ServiceError{
		Service: service,
		Kind:    classifyStatus(status),
		Status:  status,
		Message: string(body),
	}
}

// transportError wraps a failed network round trip. The request may or may
// not have reached the service, so it is classified as transient.
func transportError(service string, err error) *ServiceError {
	return &ServiceError{
		Service: service,
		Kind:    ErrTransient,
		Message: err.Error(),
	}
}

// IsTransient reports whether err is a retryable adapter failure.
func IsTransient(err error) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Kind == ErrTransient
}

// ErrorKindOf returns the taxonomy kind of err, or "" for non-adapter errors.
func ErrorKindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
