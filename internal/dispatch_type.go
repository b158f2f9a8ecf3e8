package internal

import (
	"net/url"
	"strings"
	"text/tabwriter"
)

// MatchType is the outcome of asking a strategy about a path.
type MatchType int

const (
	NoMatch MatchType = iota
	PartialMatch
	ExactMatch
)

func (m MatchType) String() string {
	switch m {
	case PartialMatch:
		return "partial"
	case ExactMatch:
		return "exact"
	}
	return "none"
}

// MatchResult is what a strategy resolved for a path.
type MatchResult struct {
	Action   *Action
	Match    string
	Captures []string
	Args     []string
	Type     MatchType
}

// DispatchType is a pluggable matching strategy.
//
// Strategies index actions during setup and are only read afterwards, so
// Match and URIForAction must not mutate state.
type DispatchType interface {
	// Name identifies the strategy; it is the secondary sort key for precedence.
	Name() string

	// RegisterAction offers an action to the strategy. It returns false when
	// the action carries nothing the strategy understands.
	RegisterAction(a *Action) (bool, error)

	// Setup runs once after every action has been offered.
	Setup(r *Registry) error

	// Match resolves path with the already peeled trailing args. Both hold
	// percent-encoded segments; the dispatcher decodes captures and args.
	Match(path string, args []string) MatchResult

	// URIForAction returns the public path of a registered action, or ""
	// when the action is unknown or captures do not fit.
	URIForAction(a *Action, captures []string) string

	// InUse reports whether the strategy registered anything.
	InUse() bool

	// IsLowPrecedence puts the strategy after every normal one.
	IsLowPrecedence() bool

	// List renders the registered actions as a table.
	List() string
}

// splitPath splits a normalized path into segments. The empty path has none.
func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// escapePath percent-encodes every segment of a normalized path, giving the
// form request paths are matched in.
func escapePath(path string) string {
	parts := splitPath(path)
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

// renderTable renders rows under a title with aligned columns.
func renderTable(title string, header []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteByte('\n')
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	if len(header) > 0 {
		_, _ = tw.Write([]byte(strings.Join(header, "\t") + "\n"))
	}
	for _, row := range rows {
		_, _ = tw.Write([]byte(strings.Join(row, "\t") + "\n"))
	}
	_ = tw.Flush()
	return b.String()
}
