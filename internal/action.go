package internal

import (
	"strconv"
	"strings"
)

// ActionFunc is the signature for controller actions and lifecycle hooks.
// Returning a non-nil error marks the action as failed; the error is
// recorded on the Context unless it is ErrAbort.
type ActionFunc func(c *Context) error

// unlimitedArgs is the argument count of an action that takes any number of args.
const unlimitedArgs = -1

// Action is a single routable handler. It is built once during setup and
// only read afterwards.
type Action struct {
	attrs       Attributes
	fn          ActionFunc
	controller  *ControllerInfo
	parent      *Action
	roles       []Role
	chain       []*Action
	name        string
	reverse     string
	namespace   string
	numArgs     int
	numCaptures int
}

func newAction(ci *ControllerInfo, name string, attrs Attributes, fn ActionFunc) (*Action, error) {
	a := &Action{
		name:       name,
		namespace:  ci.namespace,
		reverse:    reversePath(ci.namespace, name),
		attrs:      attrs,
		fn:         fn,
		controller: ci,
		numArgs:    unlimitedArgs,
	}

	argsValue, hasArgs := attrs.Lookup(AttrArgs)
	captureValue, hasCaptures := attrs.Lookup(AttrCaptureArgs)
	if hasArgs && hasCaptures {
		return nil, newConfigError(ErrArgsConflict, a.reverse)
	}
	if hasArgs && argsValue != "" {
		n, err := strconv.Atoi(argsValue)
		if err != nil {
			return nil, newConfigError(ErrInvalidAttribute, a.reverse+": Args("+argsValue+")")
		}
		a.numArgs = n
	}
	if hasCaptures {
		n, err := strconv.Atoi(captureValue)
		if err != nil && captureValue != "" {
			return nil, newConfigError(ErrInvalidAttribute, a.reverse+": CaptureArgs("+captureValue+")")
		}
		a.numCaptures = n
	}
	return a, nil
}

func reversePath(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "/" + name
}

// newActionChain wraps the links of a chain, root first, into one executable
// action that carries the identity of the endpoint.
func newActionChain(links []*Action) *Action {
	leaf := links[len(links)-1]
	return &Action{
		name:        leaf.name,
		namespace:   leaf.namespace,
		reverse:     leaf.reverse,
		attrs:       leaf.attrs,
		controller:  leaf.controller,
		numArgs:     leaf.numArgs,
		numCaptures: leaf.numCaptures,
		chain:       links,
	}
}

// Name returns the action's method name.
func (a *Action) Name() string { return a.name }

// Reverse returns the private path identifying the action, e.g. "foo/bar".
func (a *Action) Reverse() string { return a.reverse }

// Namespace returns the namespace of the owning controller.
func (a *Action) Namespace() string { return a.namespace }

// Controller returns the owning controller.
func (a *Action) Controller() *ControllerInfo { return a.controller }

// Attributes returns the parsed attributes.
func (a *Action) Attributes() *Attributes { return &a.attrs }

// Attribute returns the first value of the named attribute.
func (a *Action) Attribute(name string) string { return a.attrs.Value(name) }

// NumberOfArgs returns the fixed argument count, or -1 when any count is accepted.
func (a *Action) NumberOfArgs() int { return a.numArgs }

// NumberOfCaptures returns the CaptureArgs count.
func (a *Action) NumberOfCaptures() int { return a.numCaptures }

// HasCaptures reports whether the action is a chain link rather than an endpoint.
func (a *Action) HasCaptures() bool { return a.attrs.Has(AttrCaptureArgs) }

// IsPrivate reports whether the action carries the Private attribute.
func (a *Action) IsPrivate() bool { return a.attrs.Has(AttrPrivate) }

// ChainParent returns the resolved Chained parent, or nil for chain roots
// and unchained actions.
func (a *Action) ChainParent() *Action { return a.parent }

// Chain returns the links of a chain match, root first. Nil for plain actions.
func (a *Action) Chain() []*Action {
	if a.chain == nil {
		return nil
	}
	out := make([]*Action, len(a.chain))
	copy(out, a.chain)
	return out
}

// Endpoint returns the last link for a chain and the action itself otherwise.
func (a *Action) Endpoint() *Action {
	if len(a.chain) > 0 {
		return a.chain[len(a.chain)-1]
	}
	return a
}

// MatchArgs reports whether n trailing segments satisfy the Args declaration.
func (a *Action) MatchArgs(n int) bool {
	return a.numArgs == unlimitedArgs || a.numArgs == n
}

// String returns the private path prefixed with '/'.
func (a *Action) String() string {
	return "/" + a.reverse
}

// run executes the action body wrapped by its roles, outermost role first.
func (a *Action) run(c *Context) error {
	if a.chain != nil {
		return a.runChain(c)
	}

	next := func(c *Context) error {
		if a.fn == nil {
			return nil
		}
		return a.fn(c)
	}
	for i := len(a.roles) - 1; i >= 0; i-- {
		role, inner := a.roles[i], next
		next = func(c *Context) error {
			return role.AroundExecute(c, a, inner)
		}
	}
	return next(c)
}

// runChain executes each link in order. A link sees its own captures as
// args, the endpoint sees the request args.
func (a *Action) runChain(c *Context) error {
	captures := c.captures
	args := c.args
	defer func() { c.args = args }()

	offset := 0
	last := len(a.chain) - 1
	for i, link := range a.chain {
		if i == last {
			c.args = args
		} else {
			n := link.numCaptures
			if offset+n > len(captures) {
				c.Error(ErrMissingCaptures)
				return ErrAbort
			}
			c.args = captures[offset : offset+n]
			offset += n
		}

		if err := c.execute(link); err != nil {
			return ErrAbort
		}
		if c.detached {
			return nil
		}
	}
	return nil
}

// describeArgs renders the trailing part of a path spec for action tables.
func describeArgs(n int) string {
	if n == unlimitedArgs {
		return "/..."
	}
	return strings.Repeat("/*", n)
}
