// Package middlewares provides request middleware for dispatch applications.
// Each middleware wraps the whole dispatch of a request: it runs before the
// path is matched and sees the error the lifecycle produced.
//
// # Request ID
//
// RequestID assigns a unique ID to each request. Incoming X-Request-ID style
// headers are kept; otherwise a UUID is generated.
//
//	app, err := dispatch.New(
//	    dispatch.WithLogger("api", middlewares.RequestIDExtractor()),
//	    dispatch.WithMiddleware(middlewares.RequestID()),
//	)
//
// # Recover
//
// Recover turns panics in actions and hooks into a PanicError wrapped in a
// 500 HTTPError:
//
//	dispatch.WithErrorHandler(func(c *dispatch.Context, err error) error {
//	    if pe, ok := middlewares.AsPanicError(err); ok {
//	        c.LogError("panic", "action", pe.Action, "value", pe.Value)
//	    }
//	    return err
//	})
//
// # Timeout
//
// Timeout puts a deadline on the request context. Actions pass the Context to
// blocking calls and return when it is done:
//
//	dispatch.WithMiddleware(middlewares.Timeout(5 * time.Second))
//
// # Recommended Middleware Order
//
//	dispatch.WithMiddleware(
//	    middlewares.RequestID(),
//	    middlewares.Recover(),
//	    middlewares.Timeout(5*time.Second),
//	)
package middlewares
