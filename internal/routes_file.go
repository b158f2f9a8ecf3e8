package internal

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Handlers maps handler names used in controller files to functions.
type Handlers map[string]ActionFunc

type controllersFile struct {
	Controllers []controllerSpec `yaml:"controllers"`
}

type controllerSpec struct {
	Namespace *string      `yaml:"namespace"`
	Name      string       `yaml:"name"`
	Begin     string       `yaml:"begin"`
	Auto      string       `yaml:"auto"`
	End       string       `yaml:"end"`
	Actions   []actionSpec `yaml:"actions"`
}

type actionSpec struct {
	Name       string   `yaml:"name"`
	Attributes string   `yaml:"attributes"`
	Handler    string   `yaml:"handler"`
	Params     []string `yaml:"params"`
	Private    bool     `yaml:"private"`
}

// LoadControllers reads controller declarations from YAML:
//
//	controllers:
//	  - name: Catalog
//	    namespace: catalog   # optional, derived from name when omitted
//	    begin: catalog.begin
//	    actions:
//	      - name: item
//	        attributes: ":Chained(/):PathPart(catalog):CaptureArgs(1)"
//	        handler: catalog.item
//	      - name: view
//	        attributes: ":Chained(item):PathPart(view):AutoArgs"
//	        params: [string]
//	        handler: catalog.view
//
// Handler names are resolved against handlers; an unknown name is a
// configuration error. An action without a handler does nothing when run.
func LoadControllers(r io.Reader, handlers Handlers) ([]Controller, error) {
	var file controllersFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode controllers: %w", err)
	}

	controllers := make([]Controller, 0, len(file.Controllers))
	for _, spec := range file.Controllers {
		ctrl, err := spec.build(handlers)
		if err != nil {
			return nil, err
		}
		controllers = append(controllers, ctrl)
	}
	return controllers, nil
}

// LoadControllersFile reads controller declarations from a YAML file.
func LoadControllersFile(path string, handlers Handlers) ([]Controller, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open controllers file: %w", err)
	}
	defer f.Close()
	return LoadControllers(f, handlers)
}

func (s controllerSpec) build(handlers Handlers) (*declaredController, error) {
	if s.Name == "" {
		return nil, newConfigError(ErrInvalidAttribute, "controller without a name")
	}
	ctrl := &declaredController{name: s.Name}
	if s.Namespace != nil {
		ctrl.namespace = cleanNamespace(*s.Namespace)
	} else {
		ctrl.namespace = DeriveNamespace(s.Name)
	}

	lookup := func(name string) (ActionFunc, error) {
		if name == "" {
			return nil, nil
		}
		fn, ok := handlers[name]
		if !ok {
			return nil, newConfigError(ErrUnknownHandler, s.Name+": "+name)
		}
		return fn, nil
	}

	var err error
	if ctrl.begin, err = lookup(s.Begin); err != nil {
		return nil, err
	}
	if ctrl.auto, err = lookup(s.Auto); err != nil {
		return nil, err
	}
	if ctrl.end, err = lookup(s.End); err != nil {
		return nil, err
	}

	for _, as := range s.Actions {
		fn, err := lookup(as.Handler)
		if err != nil {
			return nil, err
		}
		params := make([]Param, 0, len(as.Params))
		for _, p := range as.Params {
			params = append(params, parseParam(p))
		}
		ctrl.actions = append(ctrl.actions, declaredAction{
			name:    as.Name,
			attrs:   as.Attributes,
			fn:      fn,
			params:  params,
			private: as.Private,
		})
	}
	return ctrl, nil
}

func parseParam(s string) Param {
	switch s {
	case "string":
		return ParamString
	case "strings", "[]string":
		return ParamStringList
	}
	return ParamOther
}

type declaredAction struct {
	fn      ActionFunc
	name    string
	attrs   string
	params  []Param
	private bool
}

// declaredController is a Controller built from a file.
type declaredController struct {
	begin     ActionFunc
	auto      ActionFunc
	end       ActionFunc
	name      string
	namespace string
	actions   []declaredAction
}

func (c *declaredController) Name() string      { return c.name }
func (c *declaredController) Namespace() string { return c.namespace }

func (c *declaredController) Routes(r Router) {
	if c.begin != nil {
		r.Begin(c.begin)
	}
	if c.auto != nil {
		r.Auto(c.auto)
	}
	if c.end != nil {
		r.End(c.end)
	}
	for _, a := range c.actions {
		opts := []ActionOption{WithParams(a.params...)}
		if a.private {
			opts = append(opts, WithPrivate())
		}
		r.Action(a.name, a.attrs, a.fn, opts...)
	}
}
