package dispatcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NextNodeSolutions/project-generator/pkg/errors"
)

func TestMachineTransitions(t *testing.T) {
	m := newMachine()
	require.NoError(t, m.to(StateSubstituting))
	require.NoError(t, m.to(StateWriting))
	require.NoError(t, m.to(StateDone))
	assert.Equal(t, []State{StateConfiguring, StateSubstituting, StateWriting, StateDone}, m.history)
	assert.True(t, m.current.Terminal())
}

func TestMachineRejectsReentryAndSkips(t *testing.T) {
	tests := []struct {
		name string
		path []State
		bad  State
	}{
		{"skip substitution", nil, StateWriting},
		{"re-enter configuring", []State{StateSubstituting}, StateConfiguring},
		{"re-enter substituting", []State{StateSubstituting, StateWriting}, StateSubstituting},
		{"leave done", []State{StateSubstituting, StateDone}, StateWriting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMachine()
			for _, s := range tt.path {
				require.NoError(t, m.to(s))
			}
			err := m.to(tt.bad)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrInternal))
		})
	}
}

func TestMachineFailIsTerminal(t *testing.T) {
	m := newMachine()
	m.fail(errors.New(errors.ErrSubstUnresolved, "x"))
	assert.Equal(t, StateFailed, m.current)
	assert.Equal(t, errors.KindSubstitution, m.kind)

	m.fail(errors.New(errors.ErrConfigLoad, "y"))
	assert.Equal(t, errors.KindSubstitution, m.kind, "first failure is kept")
	assert.Equal(t, []State{StateConfiguring, StateFailed}, m.history)

	assert.Error(t, m.to(StateSubstituting))
}
