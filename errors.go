package maxbot

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// TransportError is a network-level failure: the request was not sent
// or the response was not received.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is a non-successful platform response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string

	// RetryAfter is the server-provided delay for rate-limited requests.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s (code: %s)", e.StatusCode, e.Message, e.Code)
}

var fatalCodes = map[string]bool{
	"verify.token":  true,
	"invalid.token": true,
	"access.denied": true,
}

// Fatal reports whether the error is caused by invalid credentials
// or missing permissions and cannot be resolved by retrying.
func (e *APIError) Fatal() bool {
	return e.StatusCode == http.StatusUnauthorized ||
		e.StatusCode == http.StatusForbidden ||
		fatalCodes[e.Code]
}

func (e *APIError) Delay() time.Duration {
	return e.RetryAfter
}

// Temporary reports whether the request may succeed when repeated.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// DecodeError is a successful response with a body which could not be decoded.
type DecodeError struct {
	Path string
	Body string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Malformed() bool {
	return true
}

// IsNotFound reports whether err is an APIError with 404 status code.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func isTemporary(err error) bool {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return true
	}

	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Temporary()
}
