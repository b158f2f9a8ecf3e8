package internal

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/dispatch/pkg/logger"
)

// Option configures the application.
type Option func(*App)

// WithControllers registers controllers. Their Routes method is called
// once, during New.
func WithControllers(c ...Controller) Option {
	return func(a *App) {
		a.controllers = append(a.controllers, c...)
	}
}

// WithMiddleware adds middleware around the dispatch of every request.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHTTPMiddleware adds net/http middleware to the chi router. It also
// wraps mounted handlers and health endpoints.
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(a *App) {
		a.httpMiddlewares = append(a.httpMiddlewares, mw...)
	}
}

// WithMount serves h under pattern instead of the dispatcher.
//
// Example:
//
//	dispatch.WithMount("/static", http.FileServerFS(assets))
func WithMount(pattern string, h http.Handler) Option {
	return func(a *App) {
		a.mounts = append(a.mounts, mount{handler: h, pattern: pattern})
	}
}

// WithErrorHandler sets a custom error handler. It receives the HTTPError
// built for unmatched paths and failed dispatches as well as errors
// returned by middleware.
//
// Example:
//
//	dispatch.WithErrorHandler(func(c *dispatch.Context, err error) error {
//	    if he := dispatch.AsHTTPError(err); he != nil {
//	        return c.JSON(he.Code, map[string]string{"error": he.Message})
//	    }
//	    return err
//	})
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithNotFoundHandler sets the handler for paths no action matched.
//
// Example:
//
//	dispatch.WithNotFoundHandler(func(c *dispatch.Context) error {
//	    return c.String(http.StatusNotFound, "Page not found")
//	})
func WithNotFoundHandler(h ActionFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithHealthChecks enables liveness and readiness endpoints. Readiness
// always includes the "dispatcher" check.
//
// Example:
//
//	dispatch.WithHealthChecks(
//	    dispatch.WithReadinessCheck("db", pingDB),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
			timeout:       defaultHealthTimeout,
			checks:        make(healthChecks),
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithLogger creates a JSON logger tagged with a component name and the
// given extractors. The matched action is always extracted.
//
// Example:
//
//	dispatch.New(
//	    dispatch.WithLogger("shop", middlewares.RequestIDExtractor()),
//	)
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		l := logger.New(logger.WithExtractors(append(extractors, ActionExtractor())...))
		a.logger = logger.Category(l, component)
	}
}

// WithCustomLogger sets a fully custom logger.
// Use this when you need complete control over logging configuration.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithDispatchType adds a matching strategy next to the built-in ones.
func WithDispatchType(t ...DispatchType) Option {
	return func(a *App) {
		a.dispatcherOpts = append(a.dispatcherOpts, WithDispatchTypes(t...))
	}
}

// WithRole registers a role constructor usable as ":Does(name)".
func WithRole(name string, f RoleFactory) Option {
	return func(a *App) {
		a.dispatcherOpts = append(a.dispatcherOpts, WithRoleFactory(name, f))
	}
}

// WithRoles sets how the ACL role learns the current user's roles.
//
// Example:
//
//	dispatch.WithRoles(dispatch.NewExtractor(
//	    dispatch.FromStash(rolesKey{}),
//	).Roles)
func WithRoles(fn func(c *Context) []string) Option {
	return func(a *App) {
		a.dispatcherOpts = append(a.dispatcherOpts, WithUserRoles(fn))
	}
}

// WithRequestStats logs a per-request table of executed actions and their
// durations at debug level and sets an X-Runtime response header.
func WithRequestStats() Option {
	return func(a *App) {
		a.dispatcherOpts = append(a.dispatcherOpts, WithStats(true))
	}
}
