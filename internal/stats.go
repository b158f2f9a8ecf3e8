package internal

import (
	"strconv"
	"strings"
	"time"
)

// StatsEntry is one executed action.
type StatsEntry struct {
	Start    time.Time
	Action   string
	Depth    int
	Duration time.Duration
}

// Stats records the actions executed for one request with their nesting
// depth, so forwards and chain links show up under their caller.
type Stats struct {
	began   time.Time
	entries []StatsEntry
}

func newStats() *Stats {
	return &Stats{began: time.Now()}
}

func (s *Stats) start(a *Action, depth int) int {
	s.entries = append(s.entries, StatsEntry{
		Action: a.String(),
		Depth:  depth,
		Start:  time.Now(),
	})
	return len(s.entries) - 1
}

func (s *Stats) finish(i int) {
	s.entries[i].Duration = time.Since(s.entries[i].Start)
}

// Entries returns the recorded actions in execution order.
func (s *Stats) Entries() []StatsEntry {
	out := make([]StatsEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Elapsed returns the time since the request started.
func (s *Stats) Elapsed() time.Duration {
	return time.Since(s.began)
}

// Report renders the entries as a table indented by depth.
func (s *Stats) Report() string {
	rows := make([][]string, 0, len(s.entries))
	for _, e := range s.entries {
		indent := ""
		if e.Depth > 1 {
			indent = strings.Repeat(" ", e.Depth-2) + "-> "
		}
		rows = append(rows, []string{indent + e.Action, e.Duration.String()})
	}
	title := "Request took " + s.Elapsed().String() + " (" + strconv.Itoa(len(s.entries)) + " actions):"
	return renderTable(title, []string{"Action", "Time"}, rows)
}
