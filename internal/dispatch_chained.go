package internal

import (
	"cmp"
	"io"
	"log/slog"
	"net/url"
	"slices"
	"strings"
)

// chainRoot is the Chained reference of actions that start a chain.
const chainRoot = "/"

// ChainedDispatch matches chains of actions linked by Chained attributes.
// Each link consumes its PathPart and then CaptureArgs segments; the
// endpoint (a link without CaptureArgs) takes the rest as args.
type ChainedDispatch struct {
	logger    *slog.Logger
	actions   map[string]*Action
	pathParts map[*Action]string
	children  map[string]map[string][]*Action
	partOrder map[string][]string
	chains    map[*Action]*Action
	ordered   []*Action
	endpoints []*Action
}

// NewChainedDispatch creates the chained strategy. A nil logger discards output.
func NewChainedDispatch(l *slog.Logger) *ChainedDispatch {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ChainedDispatch{
		logger:    l,
		actions:   make(map[string]*Action),
		pathParts: make(map[*Action]string),
		children:  make(map[string]map[string][]*Action),
		partOrder: make(map[string][]string),
		chains:    make(map[*Action]*Action),
	}
}

func (d *ChainedDispatch) Name() string { return "Chained" }

func (d *ChainedDispatch) RegisterAction(a *Action) (bool, error) {
	parent, ok := a.attrs.Lookup(AttrChained)
	if !ok {
		return false, nil
	}
	if parent == "" {
		parent = chainRoot
	}

	part := a.name
	if v, ok := a.attrs.Lookup(AttrPathPart); ok {
		part = escapePath(strings.Trim(v, "/"))
	}

	byPart := d.children[parent]
	if byPart == nil {
		byPart = make(map[string][]*Action)
		d.children[parent] = byPart
	}
	siblings := append(byPart[part], a)
	// Links needing more captures shadow shorter ones; ties keep declaration order.
	slices.SortStableFunc(siblings, func(x, y *Action) int {
		return cmp.Compare(y.numCaptures, x.numCaptures)
	})
	byPart[part] = siblings

	d.actions["/"+a.reverse] = a
	d.pathParts[a] = part
	d.ordered = append(d.ordered, a)
	if !a.HasCaptures() {
		d.endpoints = append(d.endpoints, a)
	}
	return true, nil
}

// Setup resolves parents, rejects cycles and prebuilds one chain per endpoint.
func (d *ChainedDispatch) Setup(*Registry) error {
	for _, a := range d.ordered {
		ref := a.attrs.Value(AttrChained)
		if ref == "" || ref == chainRoot {
			continue
		}
		parent, ok := d.actions[ref]
		if !ok {
			return newConfigError(ErrChainParent, a.String()+" is chained to unknown action "+ref)
		}
		if !parent.HasCaptures() {
			return newConfigError(ErrChainParent, a.String()+" is chained to endpoint "+ref)
		}
		a.parent = parent
	}

	for _, a := range d.ordered {
		seen := make(map[*Action]bool)
		for link := a; link != nil; link = link.parent {
			if seen[link] {
				return newConfigError(ErrChainCycle, a.String()+" reaches "+link.String()+" twice")
			}
			seen[link] = true
		}
	}

	for parent, byPart := range d.children {
		parts := make([]string, 0, len(byPart))
		for part := range byPart {
			parts = append(parts, part)
		}
		slices.SortFunc(parts, comparePathParts)
		d.partOrder[parent] = parts
	}

	for _, ep := range d.endpoints {
		var links []*Action
		for link := ep; link != nil; link = link.parent {
			links = append(links, link)
		}
		slices.Reverse(links)
		d.chains[ep] = newActionChain(links)
		d.logger.Debug("chain resolved",
			slog.String("endpoint", ep.String()),
			slog.Int("links", len(links)),
			slog.Int("captures", totalCaptures(links)),
		)
	}
	return nil
}

// comparePathParts orders parts with more segments first, then longer
// strings, so specific parts are tried before general ones.
func comparePathParts(a, b string) int {
	if c := cmp.Compare(len(splitPath(b)), len(splitPath(a))); c != 0 {
		return c
	}
	if c := cmp.Compare(len(b), len(a)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

func totalCaptures(links []*Action) int {
	n := 0
	for _, l := range links {
		n += l.numCaptures
	}
	return n
}

// Match only considers the full path; chains never see peeled args.
func (d *ChainedDispatch) Match(path string, args []string) MatchResult {
	if len(args) > 0 {
		return MatchResult{}
	}

	best, partial := d.recurseMatch(chainRoot, splitPath(path))
	if best == nil {
		if partial {
			return MatchResult{Type: PartialMatch}
		}
		return MatchResult{}
	}

	endpoint := best.actions[len(best.actions)-1]
	return MatchResult{
		Type:     ExactMatch,
		Action:   d.chains[endpoint],
		Match:    endpoint.reverse,
		Captures: best.captures,
		Args:     best.args,
	}
}

type chainMatch struct {
	actions  []*Action
	captures []string
	args     []string
}

// recurseMatch finds the best chain below parent for parts. The best chain
// leaves the fewest segments as args. partial reports that some link
// consumed segments even though no endpoint completed the chain.
func (d *ChainedDispatch) recurseMatch(parent string, parts []string) (best *chainMatch, partial bool) {
	byPart := d.children[parent]
	for _, part := range d.partOrder[parent] {
		partSegments := splitPath(part)
		if len(parts) < len(partSegments) || !slices.Equal(parts[:len(partSegments)], partSegments) {
			continue
		}
		rest := parts[len(partSegments):]

		for _, a := range byPart[part] {
			var candidate *chainMatch
			if a.HasCaptures() {
				n := a.numCaptures
				if len(rest) < n {
					continue
				}
				partial = true
				sub, _ := d.recurseMatch("/"+a.reverse, rest[n:])
				if sub == nil {
					continue
				}
				candidate = &chainMatch{
					actions:  append([]*Action{a}, sub.actions...),
					captures: append(slices.Clone(rest[:n]), sub.captures...),
					args:     sub.args,
				}
			} else {
				if !a.MatchArgs(len(rest)) {
					continue
				}
				candidate = &chainMatch{
					actions: []*Action{a},
					args:    slices.Clone(rest),
				}
			}

			if best == nil || len(candidate.args) < len(best.args) {
				best = candidate
			}
		}
	}
	return best, partial
}

// URIForAction walks the endpoint's chain from the root, writing each
// PathPart followed by that link's share of captures. The number of
// captures must equal what the chain requires.
func (d *ChainedDispatch) URIForAction(a *Action, captures []string) string {
	chain, ok := d.chains[a.Endpoint()]
	if !ok {
		return ""
	}
	if len(captures) != totalCaptures(chain.chain) {
		return ""
	}

	var segments []string
	next := 0
	for _, link := range chain.chain {
		if part := d.pathParts[link]; part != "" {
			segments = append(segments, part)
		}
		for range link.numCaptures {
			segments = append(segments, url.PathEscape(captures[next]))
			next++
		}
	}
	return "/" + strings.Join(segments, "/")
}

func (d *ChainedDispatch) InUse() bool { return len(d.ordered) > 0 }

func (d *ChainedDispatch) IsLowPrecedence() bool { return false }

func (d *ChainedDispatch) List() string {
	rows := make([][]string, 0, len(d.endpoints))
	for _, ep := range d.endpoints {
		chain, ok := d.chains[ep]
		if !ok {
			continue
		}
		var spec strings.Builder
		private := make([]string, 0, len(chain.chain))
		for _, link := range chain.chain {
			if part := d.pathParts[link]; part != "" {
				spec.WriteString("/" + part)
			}
			if link.HasCaptures() {
				spec.WriteString(describeArgs(link.numCaptures))
			}
			private = append(private, link.String())
		}
		spec.WriteString(describeArgs(ep.numArgs))
		path := spec.String()
		if path == "" {
			path = "/"
		}
		rows = append(rows, []string{path, strings.Join(private, " -> ")})
	}
	return renderTable("Loaded Chained actions:", []string{"Path Spec", "Private"}, rows)
}
