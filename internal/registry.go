package internal

import "strings"

// Registry indexes every action by reverse path and by namespace.
// It is filled during setup and read-only afterwards.
type Registry struct {
	byPath     map[string]*Action
	containers map[string][]*Action
	ordered    []*Action
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byPath:     make(map[string]*Action),
		containers: make(map[string][]*Action),
	}
}

// Register inserts the action. Two actions with the same reverse path make
// routing ambiguous, so a collision is a configuration error.
func (r *Registry) Register(a *Action) error {
	if existing, ok := r.byPath[a.reverse]; ok {
		return newConfigError(ErrDuplicateAction,
			"/"+a.reverse+" declared by "+existing.controller.name+" and "+a.controller.name)
	}
	r.byPath[a.reverse] = a
	r.containers[a.namespace] = append(r.containers[a.namespace], a)
	r.ordered = append(r.ordered, a)
	return nil
}

// ActionByPath returns the action with the given private path. A leading
// '/' is ignored.
func (r *Registry) ActionByPath(path string) *Action {
	return r.byPath[strings.TrimPrefix(path, "/")]
}

// Action returns the action named name in namespace ns.
func (r *Registry) Action(name, ns string) *Action {
	if name == "" {
		return nil
	}
	return r.byPath[reversePath(cleanNamespace(ns), name)]
}

// ActionsInNamespace returns every action named name declared directly in
// ns, in registration order.
func (r *Registry) ActionsInNamespace(ns, name string) []*Action {
	var out []*Action
	for _, a := range r.containers[cleanNamespace(ns)] {
		if a.name == name {
			out = append(out, a)
		}
	}
	return out
}

// Actions returns every action named name visible from ns: the root
// namespace first, then each enclosing namespace down to ns itself.
func (r *Registry) Actions(name, ns string) []*Action {
	if name == "" {
		return nil
	}
	var out []*Action
	for _, container := range namespaceLineage(cleanNamespace(ns)) {
		out = append(out, r.ActionsInNamespace(container, name)...)
	}
	return out
}

// All returns every registered action in registration order.
func (r *Registry) All() []*Action {
	out := make([]*Action, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Len returns the number of registered actions.
func (r *Registry) Len() int {
	return len(r.ordered)
}

// ResolveLifecycleHooks binds the Begin, Auto and End hooks visible from the
// controller's namespace. The last Begin and End win; every Auto applies.
// It must run after every action is registered.
func (r *Registry) ResolveLifecycleHooks(ci *ControllerInfo) {
	if begins := r.Actions(hookBegin, ci.namespace); len(begins) > 0 {
		ci.begin = begins[len(begins)-1]
	}
	ci.autos = r.Actions(hookAuto, ci.namespace)
	if ends := r.Actions(hookEnd, ci.namespace); len(ends) > 0 {
		ci.end = ends[len(ends)-1]
	}
}

// namespaceLineage returns "", "a", "a/b" for "a/b".
func namespaceLineage(ns string) []string {
	lineage := []string{""}
	if ns == "" {
		return lineage
	}
	parts := strings.Split(ns, "/")
	for i := range parts {
		lineage = append(lineage, strings.Join(parts[:i+1], "/"))
	}
	return lineage
}
