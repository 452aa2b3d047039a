// Package wam is the public façade over engine.Machine: construction
// with functional options, and observer hooks wired to structured
// logging in the same shape as the teacher's Interpreter type
// (interpreter.go), which wraps engine.State the way Machine here
// wraps engine.Machine.
package wam

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/clausewam/wam/engine"
)

// Machine is a logic-program executor: a register file, a dispatch
// loop over a fixed instruction vector, and a dynamic clause store,
// optionally observed through a structured logger.
type Machine struct {
	*engine.Machine

	logger hclog.Logger
}

// Option configures a Machine at construction time, following the
// teacher's engine.ParserOption pattern (engine/parser.go).
type Option func(*config)

type config struct {
	logger      hclog.Logger
	occursCheck bool
	maxSteps    int
}

// WithLogger attaches a structured logger; Call/Exit/Fail/Redo/Cut
// events are emitted at Trace level, keyed by predicate name.
func WithLogger(logger hclog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithOccursCheck enables the occurs-check unification mode.
func WithOccursCheck() Option {
	return func(c *config) { c.occursCheck = true }
}

// WithMaxSteps bounds the number of instructions Run executes before
// aborting with an error; zero (the default) means unbounded.
func WithMaxSteps(n int) Option {
	return func(c *config) { c.maxSteps = n }
}

// New constructs a Machine for program with the given register count.
func New(program []engine.Instruction, registerCount int, opts ...Option) *Machine {
	cfg := config{logger: hclog.NewNullLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}

	em := engine.New(program, registerCount)
	em.SetOccursCheck(cfg.occursCheck)
	em.SetMaxSteps(cfg.maxSteps)

	m := &Machine{Machine: em, logger: cfg.logger}
	m.wireHooks()
	return m
}

func (m *Machine) wireHooks() {
	log := m.logger
	m.OnCall = func(predicate string) { log.Trace("call", "predicate", predicate) }
	m.OnExit = func(predicate string) { log.Trace("exit", "predicate", predicate) }
	m.OnFail = func(predicate string) { log.Trace("fail", "predicate", predicate) }
	m.OnRedo = func(predicate string) { log.Trace("redo", "predicate", predicate) }
	m.OnCut = func(predicate string, level int) { log.Trace("cut", "predicate", predicate, "level", level) }
}

// Run executes the program from its current program counter, logging
// the outcome at Debug level before returning it to the caller.
func (m *Machine) Run(ctx context.Context) error {
	err := m.Machine.Run(ctx)
	switch {
	case err == nil:
		m.logger.Debug("run finished", "status", "success")
	default:
		if _, ok := err.(*engine.NoChoicePointError); ok {
			m.logger.Debug("run finished", "status", "no solutions")
		} else {
			m.logger.Debug("run finished", "status", "error", "error", err)
		}
	}
	return err
}
