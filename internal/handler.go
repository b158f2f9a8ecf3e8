package internal

// Middleware wraps the dispatch of a whole request. It runs before the
// path is resolved, so it can short-circuit, enrich the stash or inspect
// the outcome afterwards.
//
// Example:
//
//	func Timing(next dispatch.ActionFunc) dispatch.ActionFunc {
//	    return func(c *dispatch.Context) error {
//	        start := time.Now()
//	        err := next(c)
//	        c.LogInfo("request", "action", c.Action(), "took", time.Since(start))
//	        return err
//	    }
//	}
type Middleware func(next ActionFunc) ActionFunc

// ErrorHandler renders errors returned by the middleware chain, including
// the HTTPError produced for unmatched paths and failed dispatches.
type ErrorHandler func(c *Context, err error) error
