package model

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a request to the service failed.
type FailureKind string

const (
	FailureTransport FailureKind = "transport"
	FailureStatus    FailureKind = "status"
	FailureDecode    FailureKind = "decode"
	FailureUnknown   FailureKind = "unknown"
)

// TransportError means the request could not be sent or the connection failed.
type TransportError struct {
	Op  string // "upload" or "query"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPError means a response arrived with a non-success status code.
type HTTPError struct {
	StatusCode int
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// DecodeError means a success status was returned but the body did not have
// the expected shape.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s decode: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Classify maps err to its FailureKind.
func Classify(err error) FailureKind {
	var transportErr *TransportError
	var httpErr *HTTPError
	var decodeErr *DecodeError
	switch {
	case errors.As(err, &httpErr):
		return FailureStatus
	case errors.As(err, &decodeErr):
		return FailureDecode
	case errors.As(err, &transportErr):
		return FailureTransport
	default:
		return FailureUnknown
	}
}
