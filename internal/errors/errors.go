// Package errors provides custom error types for the concierge client.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Sentinel errors for common cases
var (
	ErrTransport       = errors.New("transport failure")
	ErrProtocol        = errors.New("protocol failure")
	ErrInvalidResponse = errors.New("invalid response format")
	ErrEmptyPrompt     = errors.New("prompt cannot be empty")
)

// Kind groups failures the way the conversation client reacts to them
type Kind int

const (
	KindUnknown Kind = iota
	// KindTransport covers network unreachable, DNS, timeouts and cancellation
	KindTransport
	// KindProtocol covers non-2xx statuses and unparseable bodies
	KindProtocol
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// TransportError represents a request that never produced an HTTP response
type TransportError struct {
	Operation string
	Endpoint  string
	Cause     error
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("%s failed", e.Operation)
	if e.Endpoint != "" {
		msg = fmt.Sprintf("%s at %s", msg, e.Endpoint)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Is allows comparison with sentinel errors
func (e *TransportError) Is(target error) bool {
	if target == ErrTransport {
		return true
	}
	_, ok := target.(*TransportError)
	return ok
}

// Timeout reports whether the cause was a deadline or a net timeout
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Cause, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(e.Cause, &netErr) && netErr.Timeout() {
		return true
	}
	return e.Cause != nil && strings.Contains(strings.ToLower(e.Cause.Error()), "timeout")
}

// NewTransportError creates a new TransportError
func NewTransportError(operation, endpoint string, cause error) *TransportError {
	return &TransportError{
		Operation: operation,
		Endpoint:  endpoint,
		Cause:     cause,
	}
}

// APIError represents a response with a non-2xx status
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// Is allows comparison with sentinel errors
func (e *APIError) Is(target error) bool {
	if target == ErrProtocol {
		return true
	}
	_, ok := target.(*APIError)
	return ok
}

// WithBody attaches a (truncated) response body for diagnostics
func (e *APIError) WithBody(body string) *APIError {
	const maxBody = 2048
	if len(body) > maxBody {
		body = body[:maxBody] + "..."
	}
	e.Body = body
	return e
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// ParseError represents a response body that could not be decoded
type ParseError struct {
	Message  string
	Path     string
	Endpoint string
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse error: %s (path %q)", e.Message, e.Path)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse || target == ErrProtocol {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// Classify maps an error onto the two failure kinds the client distinguishes
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrTransport):
		return KindTransport
	case errors.Is(err, ErrProtocol):
		return KindProtocol
	default:
		return KindUnknown
	}
}

// IsTransportError reports whether err is a transport failure
func IsTransportError(err error) bool {
	return Classify(err) == KindTransport
}

// IsProtocolError reports whether err is a protocol failure
func IsProtocolError(err error) bool {
	return Classify(err) == KindProtocol
}

// IsTimeoutError reports whether err is a transport failure caused by a timeout
func IsTimeoutError(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Timeout()
	}
	return false
}

// GetHTTPStatus returns the status code carried by err, or 0
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// GetEndpoint returns the endpoint carried by err, or ""
func GetEndpoint(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Endpoint
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.Endpoint
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Endpoint
	}
	return ""
}

// GetResponseBody returns the response body carried by err, or ""
func GetResponseBody(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}
	return ""
}
