package internal

import (
	"errors"
	"net/http"
	"slices"
	"strings"
)

// Built-in role names usable in Does attributes.
const (
	RoleACL  = "ACL"
	RoleREST = "REST"
)

// Attributes read by the ACL role.
const (
	AttrRequiresRole = "RequiresRole"
	AttrAllowedRole  = "AllowedRole"
	AttrACLDetachTo  = "ACLDetachTo"
)

// Role wraps the execution of an action. Roles are attached with
// ":Does(Name)" and built from the factory registered under Name.
type Role interface {
	// Init validates the action's attributes. It runs while the action is
	// being registered.
	Init(a *Action) error

	// AroundExecute runs around the action. Call next to execute it.
	AroundExecute(c *Context, a *Action, next ActionFunc) error
}

// ReadyRole is implemented by roles that resolve other actions. It runs once
// every controller is registered.
type ReadyRole interface {
	DispatcherReady(d *Dispatcher, a *Action) error
}

// RoleFactory creates a role instance for one action.
type RoleFactory func() Role

var (
	errACLNoRoles    = errors.New("ACL requires at least one RequiresRole or AllowedRole attribute")
	errACLNoDetachTo = errors.New("ACL requires the ACLDetachTo attribute")
)

// ACLRole lets the action run only when the current user has every
// RequiresRole and at least one AllowedRole. Denied requests are detached to
// the ACLDetachTo action.
type ACLRole struct {
	target   *Action
	detachTo string
	required []string
	allowed  []string
}

// NewACLRole is the RoleFactory of the ACL role.
func NewACLRole() Role { return &ACLRole{} }

func (r *ACLRole) Init(a *Action) error {
	r.required = a.attrs.Values(AttrRequiresRole)
	r.allowed = a.attrs.Values(AttrAllowedRole)
	if len(r.required) == 0 && len(r.allowed) == 0 {
		return errACLNoRoles
	}
	r.detachTo = a.attrs.Value(AttrACLDetachTo)
	if r.detachTo == "" {
		return errACLNoDetachTo
	}
	return nil
}

// DispatcherReady resolves ACLDetachTo: a private path when it contains '/',
// otherwise a name in the action's namespace.
func (r *ACLRole) DispatcherReady(d *Dispatcher, a *Action) error {
	r.target = d.resolve(r.detachTo, a.namespace)
	if r.target == nil {
		return errors.New("ACLDetachTo(" + r.detachTo + ") does not name an action")
	}
	return nil
}

func (r *ACLRole) AroundExecute(c *Context, a *Action, next ActionFunc) error {
	if r.CanVisit(c.UserRoles()) {
		return next(c)
	}
	c.LogDebug("access denied",
		"action", a.String(),
		"detach_to", r.target.String(),
	)
	c.Detach(r.target)
	return ErrAbort
}

// CanVisit reports whether a user with the given roles passes the ACL.
func (r *ACLRole) CanVisit(userRoles []string) bool {
	for _, role := range r.required {
		if !slices.Contains(userRoles, role) {
			return false
		}
	}
	if len(r.allowed) == 0 {
		return len(r.required) > 0
	}
	for _, role := range r.allowed {
		if slices.Contains(userRoles, role) {
			return true
		}
	}
	return false
}

// restMethods are the methods the REST role looks for, in Allow header order.
var restMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// RESTRole runs the action and then forwards to the sibling action named
// "<name>_<METHOD>" for the request method. OPTIONS is answered with the
// Allow header; other methods without a handler get 405.
type RESTRole struct {
	methods map[string]*Action
	allow   string
}

// NewRESTRole is the RoleFactory of the REST role.
func NewRESTRole() Role { return &RESTRole{} }

func (r *RESTRole) Init(*Action) error { return nil }

func (r *RESTRole) DispatcherReady(_ *Dispatcher, a *Action) error {
	r.methods = make(map[string]*Action)
	var allow []string
	for _, m := range restMethods {
		if target := a.controller.ActionFor(a.name + "_" + m); target != nil {
			r.methods[m] = target
			allow = append(allow, m)
		}
	}
	if _, ok := r.methods[http.MethodGet]; ok {
		if _, ok := r.methods[http.MethodHead]; !ok {
			allow = append(allow, http.MethodHead)
		}
	}
	if _, ok := r.methods[http.MethodOptions]; !ok {
		allow = append(allow, http.MethodOptions)
	}
	slices.SortFunc(allow, func(x, y string) int {
		return slices.Index(restMethods, x) - slices.Index(restMethods, y)
	})
	r.allow = strings.Join(allow, ", ")
	return nil
}

// Allow returns the value of the Allow header.
func (r *RESTRole) Allow() string { return r.allow }

func (r *RESTRole) AroundExecute(c *Context, _ *Action, next ActionFunc) error {
	if err := next(c); err != nil {
		return err
	}

	method := c.Request().Method
	target, ok := r.methods[method]
	if !ok && method == http.MethodHead {
		target, ok = r.methods[http.MethodGet]
	}
	if ok {
		if !c.Forward(target) {
			return ErrAbort
		}
		return nil
	}

	c.SetHeader("Allow", r.allow)
	if method == http.MethodOptions {
		return c.NoContent(http.StatusOK)
	}
	return c.String(http.StatusMethodNotAllowed,
		"Method "+method+" not implemented for "+c.URIFor(c.Path(), nil, nil))
}
