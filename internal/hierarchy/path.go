package hierarchy

import "slices"

type Status string

const (
	StatusResolved Status = "resolved"
	StatusPending  Status = "pending"
)

// Step is one level of a selection path. A pending step has no value; its
// candidates are empty when an upstream step is still pending.
type Step struct {
	Level      Level    `json:"level"`
	Label      string   `json:"label"`
	Status     Status   `json:"status"`
	Value      string   `json:"value,omitempty"`
	Candidates []string `json:"candidates"`
}

func (s Step) Resolved() bool { return s.Status == StatusResolved }

// Path is the outcome of walking the chain with a set of selections.
type Path struct {
	Steps []Step `json:"steps"`
}

// Resolve walks the chain top-down. A selection resolves its step only if it
// is one of the candidates left by the steps above it. An optional level with
// no selection resolves to the blank value when the rows above leave it
// blank. The first pending step blocks everything below it.
func (t *Table) Resolve(selections map[Level]string) Path {
	if t == nil {
		return Path{}
	}
	steps := make([]Step, len(t.chain))
	var filters []Filter
	blocked := false
	for i, lvl := range t.chain {
		step := Step{
			Level:      lvl,
			Label:      lvl.Label(),
			Status:     StatusPending,
			Candidates: []string{},
		}
		if !blocked {
			step.Candidates = t.Candidates(filters)
			v := selections[lvl]
			switch {
			case v != "" && slices.Contains(step.Candidates, v):
			case v == "" && lvl.Optional() && t.leavesBlank(filters):
			default:
				blocked = true
			}
			if !blocked {
				step.Status = StatusResolved
				step.Value = v
				filters = append(filters, Filter{Level: lvl, Value: v})
			}
		}
		steps[i] = step
	}
	return Path{Steps: steps}
}

// Complete reports whether every step, MSN included, is resolved.
func (p Path) Complete() bool {
	if len(p.Steps) == 0 {
		return false
	}
	for _, s := range p.Steps {
		if !s.Resolved() {
			return false
		}
	}
	return true
}

func (p Path) Step(level Level) (Step, bool) {
	for _, s := range p.Steps {
		if s.Level == level {
			return s, true
		}
	}
	return Step{}, false
}

// Value returns the selected value of a resolved level.
func (p Path) Value(level Level) (string, bool) {
	s, ok := p.Step(level)
	if !ok || !s.Resolved() {
		return "", false
	}
	return s.Value, true
}

// Candidates returns the candidates offered at a level. Empty when the level
// is not reachable yet.
func (p Path) Candidates(level Level) []string {
	s, ok := p.Step(level)
	if !ok {
		return []string{}
	}
	return s.Candidates
}

// Next returns the first pending step.
func (p Path) Next() (Step, bool) {
	for _, s := range p.Steps {
		if !s.Resolved() {
			return s, true
		}
	}
	return Step{}, false
}

// Values returns the resolved selections keyed by level.
func (p Path) Values() map[Level]string {
	out := make(map[Level]string, len(p.Steps))
	for _, s := range p.Steps {
		if s.Resolved() {
			out[s.Level] = s.Value
		}
	}
	return out
}

// Filters returns the resolved prefix as filters.
func (p Path) Filters() []Filter {
	var out []Filter
	for _, s := range p.Steps {
		if !s.Resolved() {
			break
		}
		out = append(out, Filter{Level: s.Level, Value: s.Value})
	}
	return out
}
