package internal

import (
	"slices"
	"strings"
)

// PathDispatch matches literal Path attributes. The dispatcher peels
// trailing segments off the request path, so the longest registered prefix
// is tried first; at one prefix, fixed Args counts are preferred over
// unlimited ones and ties keep declaration order.
type PathDispatch struct {
	paths map[string][]*Action
	keys  []string
}

// NewPathDispatch creates the literal path strategy.
func NewPathDispatch() *PathDispatch {
	return &PathDispatch{paths: make(map[string][]*Action)}
}

func (p *PathDispatch) Name() string { return "Path" }

func (p *PathDispatch) RegisterAction(a *Action) (bool, error) {
	values := a.attrs.Values(AttrPath)
	if len(values) == 0 {
		return false, nil
	}
	for _, v := range values {
		key := escapePath(strings.Trim(v, "/"))
		if _, ok := p.paths[key]; !ok {
			p.keys = append(p.keys, key)
		}
		actions := append(p.paths[key], a)
		slices.SortStableFunc(actions, compareArgs)
		p.paths[key] = actions
	}
	return true, nil
}

// compareArgs orders fixed argument counts ascending with unlimited last.
func compareArgs(a, b *Action) int {
	an, bn := a.numArgs, b.numArgs
	if an == unlimitedArgs && bn == unlimitedArgs {
		return 0
	}
	if an == unlimitedArgs {
		return 1
	}
	if bn == unlimitedArgs {
		return -1
	}
	return an - bn
}

func (p *PathDispatch) Setup(*Registry) error { return nil }

func (p *PathDispatch) Match(path string, args []string) MatchResult {
	for _, a := range p.paths[path] {
		if a.MatchArgs(len(args)) {
			return MatchResult{
				Type:   ExactMatch,
				Action: a,
				Match:  path,
				Args:   args,
			}
		}
	}
	return MatchResult{}
}

// URIForAction returns the first Path of the action. Path actions take no captures.
func (p *PathDispatch) URIForAction(a *Action, captures []string) string {
	if len(captures) > 0 {
		return ""
	}
	values := a.attrs.Values(AttrPath)
	if len(values) == 0 {
		return ""
	}
	return "/" + escapePath(strings.Trim(values[0], "/"))
}

func (p *PathDispatch) InUse() bool { return len(p.paths) > 0 }

func (p *PathDispatch) IsLowPrecedence() bool { return false }

func (p *PathDispatch) List() string {
	var rows [][]string
	for _, key := range p.keys {
		for _, a := range p.paths[key] {
			spec := strings.TrimSuffix("/"+key, "/") + describeArgs(a.numArgs)
			if spec == "" {
				spec = "/"
			}
			rows = append(rows, []string{spec, a.String()})
		}
	}
	return renderTable("Loaded Path actions:", []string{"Path", "Private"}, rows)
}
