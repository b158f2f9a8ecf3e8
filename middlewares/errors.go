package middlewares

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/dispatch/internal"
)

// PanicError is a panic recovered while a request was dispatched.
type PanicError struct {
	Value  any
	Action *internal.Action // nil when the panic happened before matching
	Stack  []byte           // nil when stack capture is disabled
}

func (e *PanicError) Error() string {
	if e.Action != nil {
		return fmt.Sprintf("panic in %s: %v", e.Action, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// TimeoutError reports a request that outlived its deadline.
type TimeoutError struct {
	Action   *internal.Action
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Action != nil {
		return fmt.Sprintf("%s timed out after %s", e.Action, e.Duration)
	}
	return fmt.Sprintf("request timeout after %s", e.Duration)
}

// IsPanicError reports whether err wraps a PanicError.
func IsPanicError(err error) bool {
	_, ok := as[*PanicError](err)
	return ok
}

// IsTimeoutError reports whether err wraps a TimeoutError.
func IsTimeoutError(err error) bool {
	_, ok := as[*TimeoutError](err)
	return ok
}

// AsPanicError extracts the PanicError from err.
func AsPanicError(err error) (*PanicError, bool) { return as[*PanicError](err) }

// AsTimeoutError extracts the TimeoutError from err.
func AsTimeoutError(err error) (*TimeoutError, bool) { return as[*TimeoutError](err) }

func as[T error](err error) (T, bool) {
	var target T
	ok := errors.As(err, &target)
	return target, ok
}
