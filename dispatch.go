package dispatch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/dispatch/internal"
	"github.com/dmitrymomot/dispatch/pkg/logger"
)

// Type aliases - public API
type (
	// App serves HTTP requests through the dispatcher.
	App = internal.App

	// Dispatcher resolves paths to actions and runs them.
	Dispatcher = internal.Dispatcher

	// Context carries one request through matching and dispatch.
	Context = internal.Context

	// Controller declares actions on a Router.
	Controller = internal.Controller

	// Router is what controllers declare actions on.
	Router = internal.Router

	// ControllerInfo is the runtime record of a registered controller.
	ControllerInfo = internal.ControllerInfo

	// Action is a single routable handler.
	Action = internal.Action

	// ActionFunc is the signature for actions and lifecycle hooks.
	ActionFunc = internal.ActionFunc

	// ActionOption describes the handler signature and visibility of an action.
	ActionOption = internal.ActionOption

	// Attributes is the parsed attribute multimap of an action.
	Attributes = internal.Attributes

	// Method describes the handler an attribute string belongs to.
	Method = internal.Method

	// Param describes one declared handler parameter.
	Param = internal.Param

	// DispatchType is a pluggable matching strategy.
	DispatchType = internal.DispatchType

	// MatchResult is what a strategy resolved for a path.
	MatchResult = internal.MatchResult

	// MatchType is the outcome of asking a strategy about a path.
	MatchType = internal.MatchType

	// Registry indexes actions by private path and namespace.
	Registry = internal.Registry

	// Role wraps the execution of an action.
	Role = internal.Role

	// ReadyRole resolves other actions once setup is complete.
	ReadyRole = internal.ReadyRole

	// RoleFactory creates a role instance for one action.
	RoleFactory = internal.RoleFactory

	// Middleware wraps the dispatch of a whole request.
	Middleware = internal.Middleware

	// ErrorHandler renders errors returned while serving a request.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// DispatcherOption configures a Dispatcher.
	DispatcherOption = internal.DispatcherOption

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// Handlers maps handler names used in controller files to functions.
	Handlers = internal.Handlers

	// HTTPError is the error rendered for unmatched paths and failed dispatches.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// CheckFunc is a readiness check.
	CheckFunc = internal.CheckFunc

	// StatsEntry is one executed action in Stats.
	StatsEntry = internal.StatsEntry

	// Stats records the actions executed for one request.
	Stats = internal.Stats

	// ResponseWriter wraps http.ResponseWriter with write tracking and hooks.
	ResponseWriter = internal.ResponseWriter

	// Extractor tries several request sources in order.
	Extractor = internal.Extractor

	// ExtractorSource extracts a value from the request context.
	ExtractorSource = internal.ExtractorSource

	// ContextExtractor extracts a slog attribute from context.
	// Used with WithLogger to add request-scoped values to logs.
	ContextExtractor = logger.ContextExtractor
)

// Match outcomes.
const (
	NoMatch      = internal.NoMatch
	PartialMatch = internal.PartialMatch
	ExactMatch   = internal.ExactMatch
)

// Handler parameter kinds used by AutoArgs and AutoCaptureArgs.
const (
	ParamString     = internal.ParamString
	ParamStringList = internal.ParamStringList
	ParamOther      = internal.ParamOther
)

// Built-in roles.
const (
	RoleACL  = internal.RoleACL
	RoleREST = internal.RoleREST
)

// Errors
var (
	ErrConfiguration    = internal.ErrConfiguration
	ErrDuplicateAction  = internal.ErrDuplicateAction
	ErrChainCycle       = internal.ErrChainCycle
	ErrChainParent      = internal.ErrChainParent
	ErrArgsConflict     = internal.ErrArgsConflict
	ErrAutoArgsConflict = internal.ErrAutoArgsConflict
	ErrUnknownRole      = internal.ErrUnknownRole
	ErrRoleConfig       = internal.ErrRoleConfig
	ErrInvalidAttribute = internal.ErrInvalidAttribute
	ErrUnknownHandler   = internal.ErrUnknownHandler
	ErrAbort            = internal.ErrAbort
	ErrNoAction         = internal.ErrNoAction
	ErrActionNotFound   = internal.ErrActionNotFound
	ErrMissingCaptures  = internal.ErrMissingCaptures
)

// Constructors

// New creates an application and sets up its dispatcher.
//
// Example:
//
//	app, err := dispatch.New(
//	    dispatch.WithLogger("shop"),
//	    dispatch.WithControllers(&Root{}, &Catalog{}),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = app.Run(":8080")
func New(opts ...Option) (*App, error) {
	return internal.New(opts...)
}

// MustNew is like New but panics on configuration errors.
func MustNew(opts ...Option) *App {
	return internal.MustNew(opts...)
}

// NewDispatcher creates a standalone dispatcher. Call Setup before use.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	return internal.NewDispatcher(opts...)
}

// NewPathDispatch creates the Literal Path strategy.
func NewPathDispatch() DispatchType { return internal.NewPathDispatch() }

// NewRegexDispatch creates the Regex strategy.
func NewRegexDispatch() DispatchType { return internal.NewRegexDispatch() }

// NewChainedDispatch creates the Chained strategy.
func NewChainedDispatch(l *slog.Logger) DispatchType { return internal.NewChainedDispatch(l) }

// NewRegistry creates an empty action registry.
func NewRegistry() *Registry { return internal.NewRegistry() }

// NormalizePath collapses duplicate and trailing slashes and strips the
// query and fragment.
func NormalizePath(raw string) string { return internal.NormalizePath(raw) }

// ParseAttributes parses an attribute string for a handler in namespace.
func ParseAttributes(m Method, namespace, raw string) (Attributes, error) {
	return internal.ParseAttributes(m, namespace, raw)
}

// DeriveNamespace turns a CamelCase controller name into a namespace.
func DeriveNamespace(name string) string {
	return internal.DeriveNamespace(name)
}

// LoadControllers reads controller declarations from YAML.
func LoadControllers(r io.Reader, handlers Handlers) ([]Controller, error) {
	return internal.LoadControllers(r, handlers)
}

// LoadControllersFile reads controller declarations from a YAML file.
func LoadControllersFile(path string, handlers Handlers) ([]Controller, error) {
	return internal.LoadControllersFile(path, handlers)
}

// IsConfigError reports whether err is a dispatcher configuration error.
func IsConfigError(err error) bool {
	return internal.IsConfigError(err)
}

// App options

// WithControllers registers controllers.
func WithControllers(c ...Controller) Option {
	return internal.WithControllers(c...)
}

// WithMiddleware adds middleware around the dispatch of every request.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHTTPMiddleware adds net/http middleware to the underlying router.
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return internal.WithHTTPMiddleware(mw...)
}

// WithMount serves h under pattern instead of the dispatcher.
func WithMount(pattern string, h http.Handler) Option {
	return internal.WithMount(pattern, h)
}

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler sets the handler for paths no action matched.
func WithNotFoundHandler(h ActionFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithHealthChecks enables liveness and readiness endpoints.
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithLogger creates a JSON logger tagged with a component name.
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// WithDispatchType adds a matching strategy next to the built-in ones.
func WithDispatchType(t ...DispatchType) Option {
	return internal.WithDispatchType(t...)
}

// WithRole registers a role constructor usable as ":Does(name)".
func WithRole(name string, f RoleFactory) Option {
	return internal.WithRole(name, f)
}

// WithRoles sets how the ACL role learns the current user's roles.
func WithRoles(fn func(c *Context) []string) Option {
	return internal.WithRoles(fn)
}

// WithRequestStats logs per-request action statistics at debug level.
func WithRequestStats() Option {
	return internal.WithRequestStats()
}

// Dispatcher options

// WithDispatcherLogger sets the dispatcher logger.
func WithDispatcherLogger(l *slog.Logger) DispatcherOption {
	return internal.WithDispatcherLogger(l)
}

// WithDispatchTypes adds strategies to a standalone dispatcher.
func WithDispatchTypes(types ...DispatchType) DispatcherOption {
	return internal.WithDispatchTypes(types...)
}

// WithRoleFactory registers a role constructor on a standalone dispatcher.
func WithRoleFactory(name string, f RoleFactory) DispatcherOption {
	return internal.WithRoleFactory(name, f)
}

// WithUserRoles sets the user-roles function of a standalone dispatcher.
func WithUserRoles(fn func(c *Context) []string) DispatcherOption {
	return internal.WithUserRoles(fn)
}

// WithStats enables per-request statistics on a standalone dispatcher.
func WithStats(enabled bool) DispatcherOption {
	return internal.WithStats(enabled)
}

// Action options

// WithParams declares the handler's parameters for AutoArgs and AutoCaptureArgs.
func WithParams(params ...Param) ActionOption {
	return internal.WithParams(params...)
}

// WithPrivate marks the handler as non-public.
func WithPrivate() ActionOption {
	return internal.WithPrivate()
}

// Health options

// WithLivenessPath sets a custom liveness endpoint path.
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// WithHealthTimeout bounds the duration of all readiness checks together.
func WithHealthTimeout(d time.Duration) HealthOption {
	return internal.WithHealthTimeout(d)
}

// Run options

// Address sets the HTTP server address when Run gets an empty one.
func Address(addr string) RunOption {
	return internal.Address(addr)
}

// Logger sets the runtime logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the timeout for graceful shutdown.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook registers a function that runs before the server accepts connections.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function to run during shutdown.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets a custom base context for signal handling.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Extractors

// NewExtractor creates an Extractor that tries the given sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

// FromHeader returns a source that reads from a request header.
func FromHeader(name string) ExtractorSource { return internal.FromHeader(name) }

// FromQuery returns a source that reads from a query parameter.
func FromQuery(name string) ExtractorSource { return internal.FromQuery(name) }

// FromCookie returns a source that reads from a plain cookie.
func FromCookie(name string) ExtractorSource { return internal.FromCookie(name) }

// FromStash returns a source that reads a stash value.
func FromStash(key any) ExtractorSource { return internal.FromStash(key) }

// FromBearerToken returns a source that reads a Bearer token.
func FromBearerToken() ExtractorSource { return internal.FromBearerToken() }

// ActionExtractor adds the matched action to log records.
func ActionExtractor() ContextExtractor { return internal.ActionExtractor() }

// Errors

// NewHTTPError creates an HTTPError.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

// WithRequestID attaches a request ID to an HTTPError.
func WithRequestID(id string) HTTPErrorOption {
	return internal.WithRequestID(id)
}

// WithError attaches the underlying error to an HTTPError.
func WithError(err error) HTTPErrorOption {
	return internal.WithError(err)
}

// AsHTTPError extracts the HTTPError from an error if present.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// Typed helpers

// Arg converts the i-th arg of the executing action.
func Arg[T internal.Scalar](c *Context, i int) (T, bool) {
	return internal.Arg[T](c, i)
}

// Capture converts the i-th capture of the matched chain.
func Capture[T internal.Scalar](c *Context, i int) (T, bool) {
	return internal.Capture[T](c, i)
}

// StashValue returns the stash value for key as T, or the zero value.
func StashValue[T any](c *Context, key any) T {
	return internal.StashValue[T](c, key)
}

// Query returns a typed query parameter, or the zero value.
func Query[T internal.Scalar](c *Context, name string) T {
	return internal.Query[T](c, name)
}

// QueryDefault returns a typed query parameter or defaultValue.
func QueryDefault[T internal.Scalar](c *Context, name string, defaultValue T) T {
	return internal.QueryDefault[T](c, name, defaultValue)
}
