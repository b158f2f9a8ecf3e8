package internal

import (
	"reflect"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const controllerNameSuffix = "Controller"

// Controller declares actions on a router.
//
// Example:
//
//	type Catalog struct {
//	    repo *repository.Queries
//	}
//
//	func (h *Catalog) Routes(r dispatch.Router) {
//	    r.Begin(h.begin)
//	    r.Action("item", ":Chained(/):PathPart(catalog):CaptureArgs(1)", h.item)
//	    r.Action("view", ":Chained(item):PathPart(view):Args(0)", h.view)
//	}
type Controller interface {
	Routes(r Router)
}

// Namer overrides the controller name used for namespace derivation.
type Namer interface {
	Name() string
}

// Namespacer overrides the derived namespace. Return "" for the root controller.
type Namespacer interface {
	Namespace() string
}

// Router is the interface controllers use to declare actions.
type Router interface {
	// Action declares an action. attrs uses the ":Key(value):Key" syntax.
	Action(name, attrs string, fn ActionFunc, opts ...ActionOption)

	// Begin declares the controller's Begin hook.
	Begin(fn ActionFunc)

	// Auto declares the controller's Auto hook.
	Auto(fn ActionFunc)

	// End declares the controller's End hook.
	End(fn ActionFunc)

	// Namespace returns the namespace actions are declared in.
	Namespace() string
}

// ActionOption describes the handler signature and visibility of an action.
type ActionOption func(*Method)

// WithParams declares the handler's parameters, used by AutoArgs and AutoCaptureArgs.
func WithParams(params ...Param) ActionOption {
	return func(m *Method) {
		m.Params = append(m.Params, params...)
	}
}

// WithPrivate marks the handler as non-public; the action gains a Private attribute.
func WithPrivate() ActionOption {
	return func(m *Method) {
		m.Private = true
	}
}

// Lifecycle hook names.
const (
	hookBegin = "Begin"
	hookAuto  = "Auto"
	hookEnd   = "End"
)

// ControllerInfo is the runtime record of a registered controller: its
// namespace, its actions in declaration order and its resolved hooks.
type ControllerInfo struct {
	begin     *Action
	end       *Action
	autos     []*Action
	actions   []*Action
	name      string
	namespace string
}

// Name returns the controller name.
func (ci *ControllerInfo) Name() string { return ci.name }

// Namespace returns the controller namespace.
func (ci *ControllerInfo) Namespace() string { return ci.namespace }

// Actions returns the controller's actions in declaration order.
func (ci *ControllerInfo) Actions() []*Action {
	out := make([]*Action, len(ci.actions))
	copy(out, ci.actions)
	return out
}

// ActionFor returns the controller's own action with the given name.
func (ci *ControllerInfo) ActionFor(name string) *Action {
	for _, a := range ci.actions {
		if a.name == name {
			return a
		}
	}
	return nil
}

// Begin returns the resolved Begin hook, if any.
func (ci *ControllerInfo) Begin() *Action { return ci.begin }

// Autos returns the resolved Auto hooks in execution order.
func (ci *ControllerInfo) Autos() []*Action {
	out := make([]*Action, len(ci.autos))
	copy(out, ci.autos)
	return out
}

// End returns the resolved End hook, if any.
func (ci *ControllerInfo) End() *Action { return ci.end }

// actionDecl is one Action call captured by the declaring router.
type actionDecl struct {
	fn     ActionFunc
	method Method
	attrs  string
}

// declarer implements Router by recording declarations; actions are built
// from them once the controller has finished declaring.
type declarer struct {
	namespace string
	decls     []actionDecl
}

func (r *declarer) Action(name, attrs string, fn ActionFunc, opts ...ActionOption) {
	m := Method{Name: name}
	for _, opt := range opts {
		opt(&m)
	}
	r.decls = append(r.decls, actionDecl{method: m, attrs: attrs, fn: fn})
}

func (r *declarer) Begin(fn ActionFunc) { r.Action(hookBegin, ":Private", fn) }
func (r *declarer) Auto(fn ActionFunc)  { r.Action(hookAuto, ":Private", fn) }
func (r *declarer) End(fn ActionFunc)   { r.Action(hookEnd, ":Private", fn) }

func (r *declarer) Namespace() string { return r.namespace }

// controllerName returns the Namer name or the Go type name.
func controllerName(c Controller) string {
	if n, ok := c.(Namer); ok {
		return n.Name()
	}
	t := reflect.TypeOf(c)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// controllerNamespace returns the Namespacer override or the derived namespace.
func controllerNamespace(c Controller, name string) string {
	if n, ok := c.(Namespacer); ok {
		return cleanNamespace(n.Namespace())
	}
	return DeriveNamespace(name)
}

// DeriveNamespace turns a CamelCase controller name into a namespace:
// "FooBar" becomes "foo/bar", runs of capitals stay together ("URLMap" is
// "urlmap") and a trailing "Controller" is dropped.
func DeriveNamespace(name string) string {
	if trimmed := strings.TrimSuffix(name, controllerNameSuffix); trimmed != "" {
		name = trimmed
	}

	var (
		segments []string
		current  []rune
	)
	lastWasUpper := true
	for _, r := range name {
		if unicode.IsUpper(r) && !lastWasUpper && len(current) > 0 {
			segments = append(segments, string(current))
			current = current[:0]
		}
		lastWasUpper = unicode.IsUpper(r)
		current = append(current, r)
	}
	if len(current) > 0 {
		segments = append(segments, string(current))
	}

	lower := cases.Lower(language.Und)
	for i, s := range segments {
		segments[i] = lower.String(s)
	}
	return strings.Join(segments, "/")
}

// cleanNamespace trims surrounding slashes and collapses repeated ones.
func cleanNamespace(ns string) string {
	parts := strings.Split(ns, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "/")
}
