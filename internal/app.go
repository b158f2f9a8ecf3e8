package internal

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/dispatch/pkg/logger"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// App serves HTTP requests through the dispatcher. Every path that is not
// mounted explicitly goes through PrepareAction and Dispatch.
// App is immutable after creation - all configuration is done via New().
type App struct {
	router          chi.Router
	dispatcher      *Dispatcher
	errorHandler    ErrorHandler
	notFoundHandler ActionFunc
	healthConfig    *healthConfig
	logger          *slog.Logger
	controllers     []Controller
	middlewares     []Middleware
	httpMiddlewares []func(http.Handler) http.Handler
	dispatcherOpts  []DispatcherOption
	mounts          []mount
	handler         ActionFunc
}

// mount is an http.Handler served next to the dispatcher.
type mount struct {
	handler http.Handler
	pattern string
}

// New creates an application and sets up its dispatcher. Configuration
// errors (duplicate actions, chain cycles, unknown roles) are returned
// before any request can be served.
//
// Example:
//
//	app, err := dispatch.New(
//	    dispatch.WithLogger("shop"),
//	    dispatch.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    dispatch.WithControllers(&Root{}, &Catalog{}),
//	)
func New(opts ...Option) (*App, error) {
	a := &App{
		router: chi.NewRouter(),
		logger: logger.NewNope(),
	}

	for _, opt := range opts {
		opt(a)
	}

	dopts := append([]DispatcherOption{WithDispatcherLogger(a.logger)}, a.dispatcherOpts...)
	a.dispatcher = NewDispatcher(dopts...)
	if err := a.dispatcher.Setup(a.controllers...); err != nil {
		return nil, err
	}

	a.handler = a.dispatch
	for i := len(a.middlewares) - 1; i >= 0; i-- {
		a.handler = a.middlewares[i](a.handler)
	}

	a.setupRoutes()
	return a, nil
}

// MustNew is like New but panics on configuration errors.
func MustNew(opts ...Option) *App {
	a, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return a
}

// Router returns the underlying chi.Router.
func (a *App) Router() chi.Router {
	return a.router
}

// Dispatcher returns the configured dispatcher.
func (a *App) Dispatcher() *Dispatcher {
	return a.dispatcher
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Run starts the HTTP server and blocks until shutdown.
//
// Example:
//
//	err := app.Run(":8080", dispatch.Logger(log))
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := runtimeConfig{
		handler:         a.router,
		address:         addr,
		logger:          a.logger,
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if addr != "" {
		cfg.address = addr
	}
	return runServer(cfg)
}

// setupRoutes configures the router: raw middleware, mounts, health
// endpoints, then the catch-all into the dispatcher.
func (a *App) setupRoutes() {
	for _, mw := range a.httpMiddlewares {
		a.router.Use(mw)
	}

	for _, m := range a.mounts {
		a.router.Mount(m.pattern, m.handler)
	}

	if a.healthConfig != nil {
		a.healthConfig.checks["dispatcher"] = a.dispatcher.Ready
		a.router.Get(a.healthConfig.livenessPath, livenessHandler())
		a.router.Get(a.healthConfig.readinessPath, readinessHandler(a.healthConfig, a.logger))
	}

	a.router.HandleFunc("/", a.serve)
	a.router.HandleFunc("/*", a.serve)
}

// serve runs one request through the middleware chain and the dispatcher.
func (a *App) serve(w http.ResponseWriter, r *http.Request) {
	c := a.dispatcher.NewContext(w, r)
	if s := c.Stats(); s != nil {
		c.Response().OnBeforeWrite(func() {
			c.Response().Header().Set("X-Runtime", s.Elapsed().String())
		})
	}

	if err := a.handler(c); err != nil {
		a.handleError(c, err)
	}

	c.LogDebug("request completed",
		slog.Int("status", c.Response().Status()),
		slog.Int64("size", c.Response().Size()),
	)
	if s := c.Stats(); s != nil {
		a.dispatcher.logger.DebugContext(c, s.Report())
	}
}

// dispatch is the innermost handler: resolve, then run the lifecycle.
func (a *App) dispatch(c *Context) error {
	c.LogDebug("request", "method", c.Request().Method, "path", "/"+c.Path())

	if !a.dispatcher.PrepareAction(c) {
		if a.notFoundHandler != nil {
			return a.notFoundHandler(c)
		}
		return ErrNotFound("Not Found", WithError(ErrNoAction))
	}

	if a.dispatcher.Dispatch(c) {
		return nil
	}
	for _, err := range c.Errors() {
		if httpErr := AsHTTPError(err); httpErr != nil {
			return httpErr
		}
	}
	return ErrInternal("Internal Server Error", WithError(errors.Join(c.Errors()...)))
}

// handleError renders err unless a response was already written.
func (a *App) handleError(c *Context, err error) {
	if c.Written() {
		return
	}
	if a.errorHandler != nil {
		if herr := a.errorHandler(c, err); herr == nil || c.Written() {
			return
		}
	}

	httpErr := AsHTTPError(err)
	if httpErr == nil {
		httpErr = ErrInternal("Internal Server Error", WithError(err))
	}
	if httpErr.Code >= http.StatusInternalServerError {
		c.LogError("request failed",
			slog.Int("status", httpErr.Code),
			slog.Any("error", httpErr.Err),
		)
	}
	http.Error(c.Response(), httpErr.Message, httpErr.Code)
}
