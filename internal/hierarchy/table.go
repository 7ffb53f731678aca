package hierarchy

import (
	"fmt"
)

// Filter narrows the table to rows whose Level column equals Value.
type Filter struct {
	Level Level  `json:"level"`
	Value string `json:"value"`
}

// Table is the reference dataset. It is read-only once built and safe to
// share between goroutines.
type Table struct {
	chain Chain
	rows  [][]string
}

// NewTable builds a table from rows laid out in chain order.
func NewTable(chain Chain, rows [][]string) (*Table, error) {
	if err := chain.validate(); err != nil {
		return nil, err
	}
	t := &Table{
		chain: append(Chain(nil), chain...),
		rows:  make([][]string, 0, len(rows)),
	}
	for i, r := range rows {
		if len(r) != len(chain) {
			return nil, fmt.Errorf("row %d: expected %d values, got %d", i+1, len(chain), len(r))
		}
		t.rows = append(t.rows, append([]string(nil), r...))
	}
	return t, nil
}

func (t *Table) Chain() Chain { return append(Chain(nil), t.chain...) }

func (t *Table) Len() int { return len(t.rows) }

// Candidates returns the distinct values of the level following the
// filters, taken from rows matching every filter exactly. Filters must be a
// prefix of the chain; anything else yields an empty result. Values keep the
// order in which they first appear in the sheet. Blank cells are never
// candidates; an optional level may be filtered on the blank value.
func (t *Table) Candidates(filters []Filter) []string {
	out := []string{}
	if t == nil || len(filters) >= len(t.chain) {
		return out
	}
	for i, f := range filters {
		if t.chain[i] != f.Level || (f.Value == "" && !f.Level.Optional()) {
			return out
		}
	}

	next := len(filters)
	seen := make(map[string]struct{})
rows:
	for _, row := range t.rows {
		for i, f := range filters {
			if row[i] != f.Value {
				continue rows
			}
		}
		v := row[next]
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// leavesBlank reports whether a row matching the filters has a blank cell at
// the level following them.
func (t *Table) leavesBlank(filters []Filter) bool {
	next := len(filters)
rows:
	for _, row := range t.rows {
		for i, f := range filters {
			if row[i] != f.Value {
				continue rows
			}
		}
		if row[next] == "" {
			return true
		}
	}
	return false
}

// CandidatesFor is Candidates for a named level. The filters must cover
// exactly the levels before it.
func (t *Table) CandidatesFor(level Level, filters []Filter) []string {
	if t == nil {
		return []string{}
	}
	if idx := t.chain.Index(level); idx < 0 || idx != len(filters) {
		return []string{}
	}
	return t.Candidates(filters)
}

// Values returns every distinct non-blank value of a level, ignoring the
// levels above it.
func (t *Table) Values(level Level) []string {
	out := []string{}
	idx := t.chain.Index(level)
	if idx < 0 {
		return out
	}
	seen := make(map[string]struct{})
	for _, row := range t.rows {
		v := row[idx]
		if v == "" {
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
