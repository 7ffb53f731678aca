// Package msn holds the meter serial number confirmation step: the operator
// either accepts the serial recorded against the DTR or supplies a new one.
package msn

import (
	"errors"
	"fmt"
	"strings"
)

type State string

const (
	Unresolved    State = "unresolved"
	AutoSuggested State = "auto_suggested"
	Confirmed     State = "confirmed"
	Overridden    State = "overridden"
)

// Choice is the operator's answer to "is this serial correct?".
type Choice string

const (
	ChoiceConfirm  Choice = "confirm"
	ChoiceOverride Choice = "override"
)

var (
	ErrNoSuggestion  = errors.New("no meter serial number to confirm")
	ErrUnknownChoice = errors.New("unknown meter serial choice")
)

// Step is the confirmation state machine. The zero value is Unresolved.
type Step struct {
	state      State
	suggestion string
	override   string
}

// Suggest moves to AutoSuggested with the first candidate. With no
// candidates the step stays Unresolved.
func Suggest(candidates []string) Step {
	for _, c := range candidates {
		if c != "" {
			return Step{state: AutoSuggested, suggestion: c}
		}
	}
	return Step{state: Unresolved}
}

func (s Step) State() State {
	if s.state == "" {
		return Unresolved
	}
	return s.state
}

// Suggestion is the system-of-record serial, empty while Unresolved.
func (s Step) Suggestion() string { return s.suggestion }

// OverrideValue returns the replacement serial the operator typed, if any.
func (s Step) OverrideValue() string { return s.override }

// Confirm accepts the suggestion.
func (s Step) Confirm() (Step, error) {
	if s.State() == Unresolved {
		return s, ErrNoSuggestion
	}
	return Step{state: Confirmed, suggestion: s.suggestion}, nil
}

// Override rejects the suggestion in favour of value. A blank value leaves
// the step Overridden with no final serial.
func (s Step) Override(value string) (Step, error) {
	if s.State() == Unresolved {
		return s, ErrNoSuggestion
	}
	return Step{state: Overridden, suggestion: s.suggestion, override: strings.TrimSpace(value)}, nil
}

// Apply runs the transition named by choice.
func (s Step) Apply(choice Choice, override string) (Step, error) {
	switch choice {
	case ChoiceConfirm:
		return s.Confirm()
	case ChoiceOverride:
		return s.Override(override)
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownChoice, choice)
	}
}

// Final returns the serial to record. ok is false until the step is
// Confirmed, or Overridden with a non-blank replacement.
func (s Step) Final() (value string, ok bool) {
	switch s.state {
	case Confirmed:
		return s.suggestion, true
	case Overridden:
		if s.override != "" {
			return s.override, true
		}
	}
	return "", false
}
