package dispatcher

import (
	"github.com/NextNodeSolutions/project-generator/pkg/errors"
)

// State is a step of a generation run
type State string

const (
	StateConfiguring  State = "configuring"
	StateSubstituting State = "substituting"
	StateWriting      State = "writing"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// Terminal reports whether no further transition is allowed from s
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// next lists the legal transitions out of each state
var next = map[State][]State{
	StateConfiguring:  {StateSubstituting, StateFailed},
	StateSubstituting: {StateWriting, StateDone, StateFailed},
	StateWriting:      {StateDone, StateFailed},
}

// machine tracks one run; states are never re-entered
type machine struct {
	current State
	history []State
	kind    errors.Kind
}

func newMachine() *machine {
	return &machine{current: StateConfiguring, history: []State{StateConfiguring}}
}

func (m *machine) to(s State) error {
	for _, allowed := range next[m.current] {
		if allowed == s {
			m.current = s
			m.history = append(m.history, s)
			return nil
		}
	}
	return errors.Newf(errors.ErrInternal, "illegal transition %s -> %s", m.current, s).
		WithDetail("from", string(m.current)).
		WithDetail("to", string(s))
}

// fail moves to Failed and records the kind of err. It is a no-op once terminal.
func (m *machine) fail(err error) {
	if m.current.Terminal() {
		return
	}
	m.kind = errors.GetKind(err)
	m.current = StateFailed
	m.history = append(m.history, StateFailed)
}
