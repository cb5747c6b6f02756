package workflow

import (
	"fmt"

	"github.com/phrazzld/task-tracker-api/internal/domain"
)

// Verdict is the outcome of a transition check.
type Verdict struct {
	Legal  bool
	Reason string
}

// edges is the full allow-list. Anything absent, self-loops included, is illegal.
var edges = map[domain.Status][]domain.Status{
	domain.StatusTodo:       {domain.StatusInProgress},
	domain.StatusInProgress: {domain.StatusDone, domain.StatusTodo},
	domain.StatusDone:       nil,
}

// Validate decides whether a task may move from current to target.
// It returns an error wrapping domain.ErrInvalidState, and no verdict, when
// either status is outside the workflow set.
func Validate(current, target domain.Status) (Verdict, error) {
	if !current.Valid() {
		return Verdict{}, fmt.Errorf("%w: current status %q", domain.ErrInvalidState, current)
	}
	if !target.Valid() {
		return Verdict{}, fmt.Errorf("%w: target status %q", domain.ErrInvalidState, target)
	}

	for _, next := range edges[current] {
		if next == target {
			return Verdict{Legal: true}, nil
		}
	}

	reason := fmt.Sprintf("cannot transition from '%s' to '%s'", current, target)
	switch {
	case current == target:
		reason = fmt.Sprintf("task is already '%s'", current)
	case IsTerminal(current):
		reason = fmt.Sprintf("'%s' is a terminal state", current)
	}
	return Verdict{Reason: reason}, nil
}

// Enforce runs Validate and folds an illegal verdict into a *domain.TransitionError.
func Enforce(current, target domain.Status) error {
	verdict, err := Validate(current, target)
	if err != nil {
		return err
	}
	if !verdict.Legal {
		return &domain.TransitionError{Current: current, Target: target}
	}
	return nil
}

// Next lists the states reachable from s in one step.
func Next(s domain.Status) []domain.Status {
	out := make([]domain.Status, len(edges[s]))
	copy(out, edges[s])
	return out
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s domain.Status) bool {
	return s.Valid() && len(edges[s]) == 0
}
