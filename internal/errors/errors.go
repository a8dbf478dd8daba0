// Package errors provides custom error types for the BookRAG chat client.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrBusy           = errors.New("an answer is still streaming")
	ErrEmptyQuery     = errors.New("query cannot be empty")
	ErrNoCredentials  = errors.New("no credentials found")
	ErrClientClosed   = errors.New("client is closed")
	ErrTransport      = errors.New("transport failure")
	ErrInvalidFrame   = errors.New("invalid frame")
	ErrAuthFailed     = errors.New("authentication failed")
	ErrNoSessionStore = errors.New("no session store configured")
)

// NetworkError represents a request that never produced a response
type NetworkError struct {
	Operation string
	Endpoint  string
	Cause     error
}

func (e *NetworkError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("network error during %s at %s: %v", e.Operation, e.Endpoint, e.Cause)
	}
	return fmt.Sprintf("network error during %s: %v", e.Operation, e.Cause)
}

// Unwrap returns the underlying transport error
func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// Is matches the ErrTransport sentinel
func (e *NetworkError) Is(target error) bool {
	return target == ErrTransport
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(operation, endpoint string, cause error) *NetworkError {
	return &NetworkError{Operation: operation, Endpoint: endpoint, Cause: cause}
}

// APIError represents a non-success HTTP status
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

// Is matches the ErrTransport sentinel, and ErrAuthFailed for 401/403
func (e *APIError) Is(target error) bool {
	if target == ErrTransport {
		return true
	}
	if target == ErrAuthFailed {
		return e.StatusCode == 401 || e.StatusCode == 403
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// WithBody attaches a diagnostic excerpt of the response body
func (e *APIError) WithBody(body string) *APIError {
	const maxBody = 512
	if len(body) > maxBody {
		body = body[:maxBody] + "..."
	}
	e.Body = body
	return e
}

// StreamError represents a failure while reading an already-open response body
type StreamError struct {
	Endpoint string
	Frames   int // frames decoded before the failure
	Cause    error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream aborted at %s after %d frames: %v", e.Endpoint, e.Frames, e.Cause)
}

// Unwrap returns the underlying read error
func (e *StreamError) Unwrap() error {
	return e.Cause
}

// Is matches the ErrTransport sentinel
func (e *StreamError) Is(target error) bool {
	return target == ErrTransport
}

// NewStreamError creates a new StreamError
func NewStreamError(endpoint string, frames int, cause error) *StreamError {
	return &StreamError{Endpoint: endpoint, Frames: frames, Cause: cause}
}

// AuthError represents missing or rejected credentials
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "authentication failed: credentials may have expired"
	}
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *AuthError) Is(target error) bool {
	if target == ErrAuthFailed {
		return true
	}
	_, ok := target.(*AuthError)
	return ok
}

// NewAuthError creates a new AuthError
func NewAuthError(message string) *AuthError {
	return &AuthError{Message: message}
}

// FrameError describes a stream line that could not be decoded into a frame.
// It is logged and never returned to callers of the stream.
type FrameError struct {
	Line   string
	Reason string
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("dropped frame (%s): %q", e.Reason, excerpt(e.Line, 80))
}

// Is matches the ErrInvalidFrame sentinel
func (e *FrameError) Is(target error) bool {
	return target == ErrInvalidFrame
}

// NewFrameError creates a new FrameError
func NewFrameError(line, reason string) *FrameError {
	return &FrameError{Line: line, Reason: reason}
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// IsTransportError reports whether err ended a request at the transport level
func IsTransportError(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsAuthError reports whether err is an authentication failure
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthFailed) || errors.Is(err, ErrNoCredentials)
}

// IsNetworkError reports whether err is a connection-level failure
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// GetHTTPStatus returns the HTTP status carried by err, or 0
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
