// Package escalation implements the CLEAN → WARNED → BLOCKED machine that
// turns triggered cycles into persisted warnings.
package escalation

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// State is an employee's escalation level.
type State int

const (
	Clean State = iota
	Warned
	Blocked
)

func (s State) String() string {
	switch s {
	case Clean:
		return "CLEAN"
	case Warned:
		return "WARNED"
	case Blocked:
		return "BLOCKED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StateFor maps a persisted warning count to a state. Counts above the
// block level clamp to Blocked, negatives to Clean.
func StateFor(warnings int) State {
	switch {
	case warnings <= 0:
		return Clean
	case warnings == 1:
		return Warned
	default:
		return Blocked
	}
}

// Action is what the caller must do after an evaluation.
type Action int

const (
	ActionNone Action = iota
	ActionWarn
	ActionBlock
)

func (a Action) String() string {
	switch a {
	case ActionWarn:
		return "warn"
	case ActionBlock:
		return "block"
	default:
		return "none"
	}
}

// Store is the subset of the warning record the machine needs.
type Store interface {
	Get(employee string) (int, error)
	Set(employee string, warnings int) error
}

// Transition is the outcome of one Evaluate call.
type Transition struct {
	From      State
	To        State
	Action    Action
	Warnings  int  // count after the transition
	Terminate bool // stop the monitoring loop
}

// Changed reports whether the state advanced.
func (t Transition) Changed() bool { return t.From != t.To }

// Machine is the escalation state for one employee in one session. It is
// the only writer of that employee's warning record while monitoring.
type Machine struct {
	employee string
	store    Store
	state    State
	log      logrus.FieldLogger
}

// NewMachine loads the employee's initial state. A missing or unreadable
// record starts the employee at Clean.
func NewMachine(employee string, store Store, log logrus.FieldLogger) *Machine {
	m := &Machine{employee: employee, store: store, log: log}
	n, err := store.Get(employee)
	if err != nil {
		log.WithError(err).WithField("employee", employee).Warn("warning record unreadable, starting clean")
		n = 0
	}
	m.state = StateFor(n)
	return m
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Evaluate advances the machine when triggered is true. The in-memory
// state advances even if persisting fails, so a session never regresses;
// the persistence error is returned for the caller to report.
func (m *Machine) Evaluate(triggered bool) (Transition, error) {
	tr := Transition{From: m.state, To: m.state, Warnings: int(m.state)}
	if !triggered {
		return tr, nil
	}

	switch m.state {
	case Clean:
		tr.To, tr.Action, tr.Warnings = Warned, ActionWarn, 1
	case Warned:
		tr.To, tr.Action, tr.Warnings, tr.Terminate = Blocked, ActionBlock, 2, true
	case Blocked:
		// Already blocked in an earlier run: nothing new to record.
		tr.Terminate = true
		return tr, nil
	}

	m.state = tr.To
	if err := m.store.Set(m.employee, tr.Warnings); err != nil {
		return tr, fmt.Errorf("escalation: persist %d warnings for %q: %w", tr.Warnings, m.employee, err)
	}
	return tr, nil
}
