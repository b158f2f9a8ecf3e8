package internal

import (
	"errors"
	"net/http"
)

// Configuration errors. Every one of them wraps ErrConfiguration and is
// returned while the dispatcher is being set up, before any request is admitted.
var (
	ErrConfiguration    = errors.New("dispatch: configuration error")
	ErrDuplicateAction  = errors.New("duplicate action reverse path")
	ErrChainCycle       = errors.New("chained actions form a cycle")
	ErrChainParent      = errors.New("unresolvable chain parent")
	ErrArgsConflict     = errors.New("action declares both Args and CaptureArgs")
	ErrAutoArgsConflict = errors.New("action declares both AutoArgs and AutoCaptureArgs")
	ErrUnknownRole      = errors.New("unknown action role")
	ErrRoleConfig       = errors.New("invalid action role configuration")
	ErrInvalidAttribute = errors.New("invalid action attribute")
	ErrUnknownHandler   = errors.New("unknown action handler")
)

// Request-time errors recorded on the Context.
var (
	// ErrAbort marks an action as failed without recording an error message.
	// Return it from a hook to short-circuit the lifecycle.
	ErrAbort = errors.New("dispatch: aborted")

	ErrNoAction        = errors.New("dispatch: no action matched")
	ErrActionNotFound  = errors.New("dispatch: action not found")
	ErrMissingCaptures = errors.New("dispatch: not enough captures for chain")
)

// configError is the concrete type behind configuration failures.
// It matches ErrConfiguration and the specific cause with errors.Is.
type configError struct {
	cause  error
	detail string
}

func newConfigError(cause error, detail string) error {
	return &configError{cause: cause, detail: detail}
}

func (e *configError) Error() string {
	if e.detail == "" {
		return ErrConfiguration.Error() + ": " + e.cause.Error()
	}
	return ErrConfiguration.Error() + ": " + e.cause.Error() + ": " + e.detail
}

func (e *configError) Unwrap() []error {
	return []error{ErrConfiguration, e.cause}
}

// IsConfigError reports whether err is a dispatcher configuration error.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// HTTPError represents an HTTP error with all data needed for rendering.
// The transport produces one for unmatched paths and failed dispatches.
type HTTPError struct {
	// Err is the underlying error (for logging, not exposed to users).
	Err error

	// Message is the user-facing error message.
	Message string

	// RequestID is the request tracking ID.
	RequestID string

	// Code is the HTTP status code (e.g., 404, 500).
	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func (e *HTTPError) StatusText() string {
	return http.StatusText(e.Code)
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates a new HTTPError with the given status code and message.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{
		Code:    code,
		Message: message,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithRequestID(id string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.RequestID = id
	}
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

// ErrNotFound builds the error the transport returns when no action matched.
func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

// ErrInternal builds the error the transport returns for a failed dispatch.
func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, opts...)
}

// AsHTTPError extracts the HTTPError from an error if present.
// Returns nil if the error is not an HTTPError.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}
