package wam_test

import (
	"context"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clausewam/wam/engine"
	"github.com/clausewam/wam/internal/term"
	wampkg "github.com/clausewam/wam/wam"
)

func TestNewRunsToCompletion(t *testing.T) {
	m := wampkg.New([]engine.Instruction{
		{Op: engine.PutConst, Reg: 0, Const: 1},
		{Op: engine.GetConst, Reg: 0, Const: 1},
		{Op: engine.Halt},
	}, 1)
	require.NoError(t, m.Run(context.Background()))
}

func TestWithLoggerDoesNotPanic(t *testing.T) {
	logger := hclog.New(&hclog.LoggerOptions{Name: "wam-test", Level: hclog.Trace})
	m := wampkg.New([]engine.Instruction{
		{Op: engine.Call, Predicate: "p"},
		{Op: engine.Halt},
		{Op: engine.Proceed},
	}, 0, wampkg.WithLogger(logger))
	m.RegisterPredicate("p", []int{2})
	require.NoError(t, m.Run(context.Background()))
}

func TestWithOccursCheckRejectsCycle(t *testing.T) {
	m := wampkg.New(nil, 1, wampkg.WithOccursCheck())
	cyclic := term.NewCompound("f", term.Var(1))
	assert.False(t, m.Unify(term.Var(1), cyclic))
}

func TestWithMaxStepsAbortsRunaway(t *testing.T) {
	m := wampkg.New([]engine.Instruction{
		{Op: engine.Choice, Alt: 0},
		{Op: engine.Fail},
	}, 0, wampkg.WithMaxSteps(5))
	err := m.Run(context.Background())
	assert.Error(t, err)
}

func TestRegisterValueAfterRun(t *testing.T) {
	m := wampkg.New([]engine.Instruction{
		{Op: engine.PutConst, Reg: 0, Const: 5},
		{Op: engine.Halt},
	}, 1)
	require.NoError(t, m.Run(context.Background()))
	v, ok := m.RegisterValue(0)
	require.True(t, ok)
	assert.Equal(t, term.Const(5), v)
}
