package internal

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/dmitrymomot/dispatch/pkg/logger"
)

var errNotReady = errors.New("dispatcher is not set up")

// Dispatcher owns the action registry and the dispatch strategies. It is
// configured once by Setup and safe for concurrent use afterwards.
type Dispatcher struct {
	logger      *slog.Logger
	ctxLogger   *slog.Logger
	registry    *Registry
	roles       map[string]RoleFactory
	userRoles   func(c *Context) []string
	types       []DispatchType
	extra       []DispatchType
	controllers []*ControllerInfo
	stats       bool
	ready       bool
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the logger. Category loggers are derived from it.
func WithDispatcherLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithDispatchTypes adds strategies next to the built-in Chained, Path and
// Regex ones.
func WithDispatchTypes(types ...DispatchType) DispatcherOption {
	return func(d *Dispatcher) {
		d.extra = append(d.extra, types...)
	}
}

// WithRoleFactory registers a role constructor under name, replacing a
// built-in role of the same name.
func WithRoleFactory(name string, f RoleFactory) DispatcherOption {
	return func(d *Dispatcher) {
		d.roles[name] = f
	}
}

// WithUserRoles sets the function reporting the roles of the current user.
// The ACL role denies every request without it.
func WithUserRoles(fn func(c *Context) []string) DispatcherOption {
	return func(d *Dispatcher) {
		d.userRoles = fn
	}
}

// WithStats enables per-request action statistics.
func WithStats(enabled bool) DispatcherOption {
	return func(d *Dispatcher) {
		d.stats = enabled
	}
}

// NewDispatcher creates a dispatcher with the built-in strategies and roles.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		logger:   logger.NewNope(),
		registry: NewRegistry(),
		roles: map[string]RoleFactory{
			RoleACL:  NewACLRole,
			RoleREST: NewRESTRole,
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	d.ctxLogger = logger.Category(d.logger, "controller")
	d.logger = logger.Category(d.logger, "dispatcher")
	return d
}

// Setup registers the controllers and freezes the routing tables. Any
// returned error wraps ErrConfiguration; the dispatcher must not serve
// requests after a failed setup.
func (d *Dispatcher) Setup(controllers ...Controller) error {
	if d.ready {
		return newConfigError(ErrConfiguration, "dispatcher is already set up")
	}

	for _, ctrl := range controllers {
		if err := d.registerController(ctrl); err != nil {
			return err
		}
	}

	candidates := append([]DispatchType{
		NewChainedDispatch(logger.Category(d.logger, "dispatcher.chained")),
		NewPathDispatch(),
		NewRegexDispatch(),
	}, d.extra...)

	for _, a := range d.registry.All() {
		if a.IsPrivate() {
			continue
		}
		registered := false
		for _, t := range candidates {
			ok, err := t.RegisterAction(a)
			if err != nil {
				return err
			}
			registered = registered || ok
		}
		if !registered {
			d.logger.Debug("action has no public path", slog.String("action", a.String()))
		}
	}

	for _, t := range candidates {
		if err := t.Setup(d.registry); err != nil {
			return err
		}
		if t.InUse() {
			d.types = append(d.types, t)
		}
	}
	slices.SortStableFunc(d.types, compareDispatchTypes)

	for _, ci := range d.controllers {
		d.registry.ResolveLifecycleHooks(ci)
	}

	for _, a := range d.registry.All() {
		for _, role := range a.roles {
			r, ok := role.(ReadyRole)
			if !ok {
				continue
			}
			if err := r.DispatcherReady(d, a); err != nil {
				return newConfigError(ErrRoleConfig, a.String()+": "+err.Error())
			}
		}
	}

	d.ready = true
	d.logger.Debug("dispatcher ready",
		slog.Int("controllers", len(d.controllers)),
		slog.Int("actions", d.registry.Len()),
		slog.Int("dispatch_types", len(d.types)),
	)
	for _, t := range d.types {
		d.logger.Debug(t.List())
	}
	return nil
}

func compareDispatchTypes(a, b DispatchType) int {
	if a.IsLowPrecedence() != b.IsLowPrecedence() {
		if a.IsLowPrecedence() {
			return 1
		}
		return -1
	}
	return cmp.Compare(a.Name(), b.Name())
}

func (d *Dispatcher) registerController(ctrl Controller) error {
	name := controllerName(ctrl)
	ns := controllerNamespace(ctrl, name)

	decl := &declarer{namespace: ns}
	ctrl.Routes(decl)

	ci := &ControllerInfo{name: name, namespace: ns}
	for _, ad := range decl.decls {
		attrs, err := ParseAttributes(ad.method, ns, ad.attrs)
		if err != nil {
			return err
		}
		a, err := newAction(ci, ad.method.Name, attrs, ad.fn)
		if err != nil {
			return err
		}
		if err := d.attachRoles(a); err != nil {
			return err
		}
		if err := d.registry.Register(a); err != nil {
			return err
		}
		ci.actions = append(ci.actions, a)
	}

	d.controllers = append(d.controllers, ci)
	d.logger.Debug("controller registered",
		slog.String("controller", name),
		slog.String("namespace", ns),
		slog.Int("actions", len(ci.actions)),
	)
	return nil
}

// attachRoles builds the roles named by Does attributes, outermost first.
func (d *Dispatcher) attachRoles(a *Action) error {
	for _, name := range a.attrs.Values(AttrDoes) {
		factory, ok := d.roles[name]
		if !ok {
			return newConfigError(ErrUnknownRole, a.String()+": Does("+name+")")
		}
		role := factory()
		if err := role.Init(a); err != nil {
			return newConfigError(ErrRoleConfig, a.String()+": "+err.Error())
		}
		a.roles = append(a.roles, role)
	}
	return nil
}

// PrepareAction resolves the request path of c to an action. Trailing
// segments are peeled off one by one and become args; at each prefix the
// strategies are asked in precedence order and the first exact match wins.
// It returns false when nothing matched, which is not an error.
func (d *Dispatcher) PrepareAction(c *Context) bool {
	parts := splitPath(c.path)
	var args []string
	for {
		prefix := strings.Join(parts, "/")
		for _, t := range d.types {
			res := t.Match(prefix, args)
			if res.Type != ExactMatch {
				continue
			}
			c.bind(res)
			d.logger.DebugContext(c, "path resolved",
				slog.String("path", "/"+c.path),
				slog.String("dispatch_type", t.Name()),
				slog.String("action", res.Action.String()),
				slog.Any("captures", res.Captures),
				slog.Any("args", res.Args),
			)
			return true
		}
		if len(parts) == 0 {
			break
		}
		args = append([]string{parts[len(parts)-1]}, args...)
		parts = parts[:len(parts)-1]
	}

	d.logger.DebugContext(c, "no action matched", slog.String("path", "/"+c.path))
	return false
}

// Dispatch runs the prepared action through its controller lifecycle and
// returns whether it succeeded.
func (d *Dispatcher) Dispatch(c *Context) bool {
	if c.action == nil {
		c.Error(fmt.Errorf("%w: /%s", ErrNoAction, c.path))
		c.state = false
		return false
	}
	c.state = runLifecycle(c)
	return c.state
}

// Forward executes a as a nested call. A failure is recorded on the context
// but the calling action keeps running.
func (d *Dispatcher) Forward(c *Context, a *Action) bool {
	if a == nil {
		c.Error(ErrActionNotFound)
		c.state = false
		return false
	}
	c.state = c.execute(a) == nil
	return c.state
}

// ForwardTo resolves name and forwards to it. Names containing '/' are
// private paths; bare names are looked up in the namespace of the current
// action.
func (d *Dispatcher) ForwardTo(c *Context, name string) bool {
	a := d.resolve(name, c.Namespace())
	if a == nil {
		c.Error(fmt.Errorf("%w: %s", ErrActionNotFound, name))
		c.state = false
		return false
	}
	return d.Forward(c, a)
}

func (d *Dispatcher) resolve(name, ns string) *Action {
	if strings.Contains(name, "/") {
		return d.registry.ActionByPath(name)
	}
	return d.registry.Action(name, ns)
}

// URIForAction returns the public path of a, asking each strategy in
// precedence order. It returns "" when no strategy can build one from captures.
func (d *Dispatcher) URIForAction(a *Action, captures []string) string {
	if a == nil {
		return ""
	}
	for _, t := range d.types {
		if uri := t.URIForAction(a, captures); uri != "" {
			return uri
		}
	}
	return ""
}

// GetAction returns the action named name declared in namespace ns.
func (d *Dispatcher) GetAction(name, ns string) *Action {
	return d.registry.Action(name, ns)
}

// GetActionByPath returns the action with the given private path.
func (d *Dispatcher) GetActionByPath(path string) *Action {
	return d.registry.ActionByPath(path)
}

// GetActions returns the actions named name visible from ns, root first.
func (d *Dispatcher) GetActions(name, ns string) []*Action {
	return d.registry.Actions(name, ns)
}

// Controllers returns the registered controllers in registration order.
func (d *Dispatcher) Controllers() []*ControllerInfo {
	out := make([]*ControllerInfo, len(d.controllers))
	copy(out, d.controllers)
	return out
}

// DispatchTypes returns the strategies in use, in precedence order.
func (d *Dispatcher) DispatchTypes() []DispatchType {
	out := make([]DispatchType, len(d.types))
	copy(out, d.types)
	return out
}

// Ready reports an error until Setup has succeeded. It doubles as a
// readiness check.
func (d *Dispatcher) Ready(context.Context) error {
	if !d.ready {
		return errNotReady
	}
	return nil
}

// Logger returns the dispatcher logger.
func (d *Dispatcher) Logger() *slog.Logger { return d.logger }
