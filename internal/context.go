package internal

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Context carries one request through matching and dispatch: the resolved
// action with its captures and args, accumulated errors, the stash shared
// between actions and the stack of executing actions.
// It also implements context.Context by delegating to the request context.
//
// A Context belongs to a single request and must not be shared between
// goroutines.
type Context struct {
	request    *http.Request
	response   *ResponseWriter
	dispatcher *Dispatcher
	logger     *slog.Logger
	action     *Action
	stats      *Stats
	stash      map[any]any
	path       string
	match      string
	args       []string
	captures   []string
	errors     []error
	stack      []string
	roles      []string
	state      bool
	detached   bool
	rolesReady bool
}

// NewContext creates a context for the request. The path is built from the
// escaped request path, so encoded slashes, question marks and hashes stay
// inside their segment.
func (d *Dispatcher) NewContext(w http.ResponseWriter, r *http.Request) *Context {
	c := &Context{
		request:    r,
		response:   NewResponseWriter(w),
		dispatcher: d,
		logger:     d.ctxLogger,
		path:       requestPath(r.URL),
	}
	if d.stats {
		c.stats = newStats()
	}
	return c
}

// NormalizePath strips query, fragment and surrounding slashes and drops
// empty segments. It is meant for raw strings; parsed URLs already keep
// query and fragment apart.
func NormalizePath(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	return cleanNamespace(raw)
}

// requestPath drops empty segments of the escaped path of u and re-encodes
// the rest canonically, so %7e and ~ match the same action.
func requestPath(u *url.URL) string {
	segments := strings.Split(u.EscapedPath(), "/")
	parts := segments[:0]
	for _, s := range segments {
		if s == "" {
			continue
		}
		if decoded, err := url.PathUnescape(s); err == nil {
			s = url.PathEscape(decoded)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "/")
}

// unescapeAll decodes matched segments. Segments that are not valid
// escapes are kept as they are.
func unescapeAll(segments []string) []string {
	if len(segments) == 0 {
		return segments
	}
	out := make([]string, len(segments))
	for i, s := range segments {
		if decoded, err := url.PathUnescape(s); err == nil {
			s = decoded
		}
		out[i] = s
	}
	return out
}

// Request returns the underlying *http.Request.
func (c *Context) Request() *http.Request { return c.request }

// Response returns the wrapped response writer.
func (c *Context) Response() *ResponseWriter { return c.response }

// Context returns the request's context.Context.
func (c *Context) Context() context.Context { return c.request.Context() }

func (c *Context) Deadline() (time.Time, bool) { return c.request.Context().Deadline() }
func (c *Context) Done() <-chan struct{}       { return c.request.Context().Done() }
func (c *Context) Err() error                  { return c.request.Context().Err() }

// Value resolves stash values first, then the request context.
func (c *Context) Value(key any) any {
	if v, ok := c.stash[key]; ok {
		return v
	}
	return c.request.Context().Value(key)
}

// Path returns the normalized request path without a leading slash. Its
// segments are percent-encoded.
func (c *Context) Path() string { return c.path }

// Action returns the matched action, or nil when nothing matched.
func (c *Context) Action() *Action { return c.action }

// Match returns the path the action was matched on, without a leading
// slash. For chains it is the private path of the endpoint.
func (c *Context) Match() string { return c.match }

// Args returns the args of the executing action. While a chain link runs
// they are that link's captures.
func (c *Context) Args() []string { return c.args }

// Captures returns every capture consumed by the matched chain.
func (c *Context) Captures() []string { return c.captures }

// Namespace returns the namespace of the matched action.
func (c *Context) Namespace() string {
	if c.action == nil {
		return ""
	}
	return c.action.namespace
}

// Controller returns the controller of the matched action.
func (c *Context) Controller() *ControllerInfo {
	if c.action == nil {
		return nil
	}
	return c.action.controller
}

// Dispatcher returns the dispatcher serving the request.
func (c *Context) Dispatcher() *Dispatcher { return c.dispatcher }

// Query returns the query parameter value by name.
func (c *Context) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

// Form returns the form value by name.
func (c *Context) Form(name string) string {
	return c.request.FormValue(name)
}

// Header returns the request header value by name.
func (c *Context) Header(name string) string {
	return c.request.Header.Get(name)
}

// SetHeader sets a response header.
func (c *Context) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

// JSON writes a JSON response with the given status code.
func (c *Context) JSON(code int, v any) error {
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

// String writes a plain text response with the given status code.
func (c *Context) String(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(s))
	return err
}

// NoContent writes a response with no body.
func (c *Context) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

// Redirect redirects to the given URL with the given status code.
func (c *Context) Redirect(code int, url string) error {
	http.Redirect(c.response, c.request, url, code)
	return nil
}

// Written returns true if a response has already been written.
func (c *Context) Written() bool {
	return c.response.Written()
}

// Error records err on the context. Nil errors and ErrAbort are ignored.
func (c *Context) Error(err error) {
	if err == nil || errors.Is(err, ErrAbort) {
		return
	}
	c.errors = append(c.errors, err)
}

// Errors returns the recorded errors in order.
func (c *Context) Errors() []error { return c.errors }

// HasErrors reports whether any error was recorded.
func (c *Context) HasErrors() bool { return len(c.errors) > 0 }

// ClearErrors drops every recorded error, e.g. after an End hook rendered them.
func (c *Context) ClearErrors() { c.errors = nil }

// State returns the outcome of the last dispatch.
func (c *Context) State() bool { return c.state }

// Set stores a value in the stash shared by every action of the request.
func (c *Context) Set(key, value any) {
	if c.stash == nil {
		c.stash = make(map[any]any)
	}
	c.stash[key] = value
}

// Get retrieves a stash value. Returns nil if the key is not found.
func (c *Context) Get(key any) any {
	return c.stash[key]
}

// Stack returns the private paths of the actions currently executing,
// outermost first.
func (c *Context) Stack() []string {
	out := make([]string, len(c.stack))
	copy(out, c.stack)
	return out
}

// Stats returns the request statistics, or nil when profiling is off.
func (c *Context) Stats() *Stats { return c.stats }

// Detached reports whether Detach was called.
func (c *Context) Detached() bool { return c.detached }

// Detach forwards to a (when not nil) and marks the context detached, which
// stops the remaining links of a chain.
func (c *Context) Detach(a *Action) {
	if a != nil {
		c.dispatcher.Forward(c, a)
	}
	c.detached = true
}

// Forward executes a as a nested call sharing this context.
func (c *Context) Forward(a *Action) bool {
	return c.dispatcher.Forward(c, a)
}

// ForwardTo executes the action named by an absolute private path or a
// name relative to the current namespace.
func (c *Context) ForwardTo(name string) bool {
	return c.dispatcher.ForwardTo(c, name)
}

// GetAction returns the action named name in namespace ns.
func (c *Context) GetAction(name, ns string) *Action {
	return c.dispatcher.GetAction(name, ns)
}

// GetActions returns the actions named name visible from ns.
func (c *Context) GetActions(name, ns string) []*Action {
	return c.dispatcher.GetActions(name, ns)
}

// UserRoles returns the roles of the current user as reported by the
// configured extractor. The result is cached for the request.
func (c *Context) UserRoles() []string {
	if !c.rolesReady {
		c.rolesReady = true
		if c.dispatcher.userRoles != nil {
			c.roles = c.dispatcher.userRoles(c)
		}
	}
	return c.roles
}

// URIFor builds an absolute path from path and args plus a query string.
// An empty path means the current controller namespace. Args are
// percent-encoded.
func (c *Context) URIFor(path string, args []string, query url.Values) string {
	if path == "" && c.action != nil {
		path = c.action.controller.namespace
	}
	path = "/" + strings.Trim(path, "/")

	if len(args) > 0 {
		encoded := make([]string, 0, len(args))
		for _, arg := range args {
			encoded = append(encoded, url.PathEscape(arg))
		}
		path = strings.TrimSuffix(path, "/") + "/" + strings.Join(encoded, "/")
	}

	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return path
}

// URIForAction builds the public URI of a. A nil action means the current
// one. It returns "" when the action cannot be reversed with captures.
func (c *Context) URIForAction(a *Action, captures, args []string, query url.Values) string {
	if a == nil {
		a = c.action
	}
	if a == nil {
		return ""
	}
	path := c.dispatcher.URIForAction(a, captures)
	if path == "" {
		return ""
	}
	return c.URIFor(path, args, query)
}

// Logger returns the logger for advanced usage.
func (c *Context) Logger() *slog.Logger { return c.logger }

// LogDebug logs a debug message with optional attributes.
func (c *Context) LogDebug(msg string, attrs ...any) {
	c.logger.DebugContext(c, msg, attrs...)
}

// LogInfo logs an info message with optional attributes.
func (c *Context) LogInfo(msg string, attrs ...any) {
	c.logger.InfoContext(c, msg, attrs...)
}

// LogWarn logs a warning message with optional attributes.
func (c *Context) LogWarn(msg string, attrs ...any) {
	c.logger.WarnContext(c, msg, attrs...)
}

// LogError logs an error message with optional attributes.
func (c *Context) LogError(msg string, attrs ...any) {
	c.logger.ErrorContext(c, msg, attrs...)
}

// bind stores a successful match.
func (c *Context) bind(res MatchResult) {
	c.action = res.Action
	c.match = res.Match
	c.captures = unescapeAll(res.Captures)
	c.args = unescapeAll(res.Args)
}

// execute runs a with the call stack and statistics maintained around it.
// Failures other than ErrAbort are recorded.
func (c *Context) execute(a *Action) error {
	c.stack = append(c.stack, a.reverse)
	var entry int
	if c.stats != nil {
		entry = c.stats.start(a, len(c.stack))
	}

	err := a.run(c)

	if c.stats != nil {
		c.stats.finish(entry)
	}
	c.stack = c.stack[:len(c.stack)-1]

	if err != nil {
		c.Error(err)
	}
	return err
}

// SetRequest replaces the request, e.g. to attach a derived context.
// Later actions and the transport see the new request.
func (c *Context) SetRequest(r *http.Request) {
	if r != nil {
		c.request = r
	}
}
