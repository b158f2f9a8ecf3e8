package middlewares

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrymomot/dispatch/internal"
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// Timeout returns middleware that puts a deadline on the request context.
// Actions observe it through the Context, which is a context.Context. When
// the deadline passed and nothing was written, a TimeoutError is returned to
// be handled by the ErrorHandler.
//
// Dispatch stays on the request goroutine: an action that ignores the
// deadline runs to completion before the timeout is reported.
func Timeout(timeout time.Duration) internal.Middleware {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return func(next internal.ActionFunc) internal.ActionFunc {
		return func(c *internal.Context) error {
			ctx, cancel := context.WithTimeout(c.Context(), timeout)
			defer cancel()

			c.SetRequest(c.Request().WithContext(ctx))
			err := next(c)

			if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Written() {
				c.LogWarn("request timeout", "timeout", timeout.String())
				terr := &TimeoutError{Action: c.Action(), Duration: timeout}
				return internal.NewHTTPError(http.StatusGatewayTimeout, "Gateway Timeout",
					internal.WithError(errors.Join(terr, err)))
			}
			return err
		}
	}
}
