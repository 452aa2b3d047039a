// Package engine is the execution core: the register file, the
// dispatch loop over Instruction, the choice-point/backtracking
// protocol, and the built-in predicate set. It generalizes the
// teacher's engine.VM (engine/vm.go) — same jump-table dispatch and
// OnCall/OnExit/OnFail/OnRedo observer-hook shape — from a
// continuation-passing bytecode interpreter into the explicit
// register/trail/choice-stack machine the data model specifies.
package engine

import (
	"context"
	"fmt"

	"github.com/clausewam/wam/internal/clause"
	"github.com/clausewam/wam/internal/term"
	"github.com/clausewam/wam/internal/unify"
	"github.com/clausewam/wam/internal/varstore"
)

// Builtin is the signature of a built-in predicate: it receives the
// machine so it can read/write registers and call Resolve, and reports
// success or a MachineError (a backtrackable MachineError fails the
// call without aborting Run).
type Builtin func(m *Machine) error

// Machine is the core of the execution engine. It is not safe for
// concurrent use: unlike the teacher's *Env, which is a persistent,
// freely shareable value, this machine's trail and union-find are
// mutated in place so that checkpoint/undo can be O(1) amortized
// rather than copying a persistent map on every binding.
type Machine struct {
	// OnCall, OnExit, OnFail, OnRedo, OnCut are observer hooks in the
	// same spirit as the teacher's VM.OnCall/OnExit/OnFail/OnRedo
	// (engine/vm.go); nil hooks are simply not invoked.
	OnCall func(predicate string)
	OnExit func(predicate string)
	OnFail func(predicate string)
	OnRedo func(predicate string)
	OnCut  func(predicate string, level int)

	program   []Instruction
	registers []term.Term
	names     term.Names

	store   *varstore.Store
	counter term.Counter

	control []ControlFrame
	envs    []*EnvFrame
	choices []*ChoicePoint

	clauses *clause.Store
	builtin map[string]Builtin
	output  Writer

	occursCheck bool
	maxSteps    int

	pc int

	// activePredicate tracks the predicate name of the most recent
	// Call/TailCall, purely so Fail/backtrack observer hooks can report
	// which predicate is being abandoned or retried.
	activePredicate string
}

// New constructs a Machine for program with the given register count.
// It starts with an empty clause store; callers populate it with
// RegisterPredicate/BuildIndex (typically via the loader package)
// before calling Run.
func New(program []Instruction, registerCount int) *Machine {
	m := &Machine{
		program:   program,
		registers: make([]term.Term, registerCount),
		names:     term.Names{},
		store:     varstore.New(),
		clauses:   clause.New(),
		builtin:   map[string]Builtin{},
		maxSteps:  0,
	}
	m.registerDefaultBuiltins()
	return m
}

// SetOccursCheck toggles the occurs-check mode flag the Non-goals
// section reserves ("...unless a mode flag requests it"). The check
// covers the top-level pair passed to Unify only: variables bound while
// unifying the arguments of compounds, applications or lambda bodies
// are not checked.
func (m *Machine) SetOccursCheck(v bool) { m.occursCheck = v }

// SetMaxSteps bounds the number of instructions Run executes before
// giving up with an error; zero (the default) means unbounded. This
// guards host callers against runaway programs without the core
// needing any notion of cancellation, matching §5's "no cooperative
// cancel signal" — the host simply doesn't call Run again.
func (m *Machine) SetMaxSteps(n int) { m.maxSteps = n }

// RegisterBuiltin installs a built-in predicate under name, shadowing
// any user predicate of the same name in the clause store.
func (m *Machine) RegisterBuiltin(name string, b Builtin) {
	m.builtin[name] = b
}

// RegisterPredicate installs addrs as predicate's clause list.
func (m *Machine) RegisterPredicate(predicate string, addrs []int) {
	as := make([]clause.Addr, len(addrs))
	for i, a := range addrs {
		as[i] = clause.Addr(a)
	}
	m.clauses.Register(predicate, as)
}

// AssertClause appends addr to predicate's clause list.
func (m *Machine) AssertClause(predicate string, addr int) {
	m.clauses.Assert(predicate, clause.Addr(addr))
}

// RetractClause removes addr from predicate's clause list.
func (m *Machine) RetractClause(predicate string, addr int) error {
	if err := m.clauses.Retract(predicate, clause.Addr(addr)); err != nil {
		return &NotFoundError{Predicate: predicate, Addr: addr}
	}
	return nil
}

// BuildIndex recomputes predicate's index table by scanning the
// leading Get* instructions of each of its clauses, per §6: each
// GetConst/GetStr/GetStructure instruction addressing one of
// keyPositions contributes that position's key term, and the bucket
// key is the composite encoding of those terms in keyPositions order —
// the same encoding MultiIndexedCall looks up (IndexedCall, whose
// keyPositions is always length 1, gets the same encoding back, since
// a one-element composite key degenerates to a single EncodeKey
// result). Clauses whose head doesn't address every position in
// keyPositions in an indexable way are simply omitted from every
// bucket, not an error.
func (m *Machine) BuildIndex(predicate string, keyPositions []int) error {
	if len(keyPositions) == 0 {
		return &EnvironmentError{Message: "build_index: no key positions given"}
	}
	buckets := map[string][]clause.Addr{}
	for _, addr := range m.clauses.Clauses(predicate) {
		keys, ok := m.headKeyTerms(addr, keyPositions)
		if !ok {
			continue
		}
		key := clause.EncodeCompositeKey(keys...)
		buckets[key] = append(buckets[key], addr)
	}
	m.clauses.SetIndex(predicate, buckets)
	return nil
}

// headKeyTerms scans the contiguous run of Get* instructions at the
// head of the clause at addr, collecting the key term each one
// contributes by register, and returns the terms for keyPositions in
// order. It stops at the first non-Get instruction, matching how a
// clause head is laid out: one Get* per argument register, in
// register order, before any body instruction.
func (m *Machine) headKeyTerms(addr clause.Addr, keyPositions []int) ([]term.Term, bool) {
	if int(addr) < 0 || int(addr) >= len(m.program) {
		return nil, false
	}
	byReg := map[int]term.Term{}
	for pc := int(addr); pc < len(m.program); pc++ {
		t, ok := headKeyTerm(m.program[pc])
		if !ok {
			break
		}
		byReg[m.program[pc].Reg] = t
	}
	keys := make([]term.Term, len(keyPositions))
	for i, pos := range keyPositions {
		t, ok := byReg[pos]
		if !ok {
			return nil, false
		}
		keys[i] = t
	}
	return keys, true
}

func headKeyTerm(instr Instruction) (term.Term, bool) {
	switch instr.Op {
	case GetConst:
		return term.Const(instr.Const), true
	case GetStr:
		return term.Str(instr.Str), true
	case GetStructure:
		return &term.Compound{Functor: instr.Functor, Args: make([]term.Term, instr.Arity)}, true
	default:
		return nil, false
	}
}

// RegisterValue returns the resolved value of register i after
// termination, for host inspection.
func (m *Machine) RegisterValue(i int) (term.Term, bool) {
	if i < 0 || i >= len(m.registers) || m.registers[i] == nil {
		return nil, false
	}
	return m.store.Resolve(m.registers[i]), true
}

// NameVar records name as the diagnostic name of v, used by PutVar and
// term printing.
func (m *Machine) NameVar(v term.VarId, name string) {
	if name != "" {
		m.names[v] = name
	}
}

// FreshVar mints a new VarId from the machine's own counter, for
// instructions and built-ins that need to introduce a variable the
// loader didn't name explicitly.
func (m *Machine) FreshVar() term.VarId { return m.counter.Fresh() }

// Resolve resolves t against the machine's current bindings.
func (m *Machine) Resolve(t term.Term) term.Term { return m.store.Resolve(t) }

// Unify attempts to unify a and b, binding variables as needed; it
// does not itself checkpoint/rollback (see internal/unify.Unify).
func (m *Machine) Unify(a, b term.Term) bool {
	if m.occursCheck {
		return unifyOccursCheck(m, a, b)
	}
	return unify.Unify(m.store, &m.counter, a, b)
}

func unifyOccursCheck(m *Machine, a, b term.Term) bool {
	ar, br := m.store.Resolve(a), m.store.Resolve(b)
	if av, ok := ar.(term.Var); ok {
		if bv, ok := br.(term.Var); ok && av == bv {
			return true
		}
		if term.Occurs(term.VarId(av), br) {
			return false
		}
	}
	if bv, ok := br.(term.Var); ok {
		if term.Occurs(term.VarId(bv), ar) {
			return false
		}
	}
	return unify.Unify(m.store, &m.counter, ar, br)
}

// ReadRegisterConst implements arith.RegisterReader: it resolves
// registers[i] and requires the result to be a Const.
func (m *Machine) ReadRegisterConst(i int) (int64, error) {
	t, err := m.resolvedReg(i)
	if err != nil {
		return 0, err
	}
	c, ok := t.(term.Const)
	if !ok {
		return 0, fmt.Errorf("register r%d does not hold a constant", i)
	}
	return int64(c), nil
}

func (m *Machine) reg(i int) (term.Term, error) {
	if i < 0 || i >= len(m.registers) {
		return nil, &RegisterOutOfBoundsError{Index: i}
	}
	return m.registers[i], nil
}

func (m *Machine) resolvedReg(i int) (term.Term, error) {
	t, err := m.reg(i)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, &UninitializedRegisterError{Index: i}
	}
	return m.store.Resolve(t), nil
}

func (m *Machine) setReg(i int, t term.Term) error {
	if i < 0 || i >= len(m.registers) {
		return &RegisterOutOfBoundsError{Index: i}
	}
	m.registers[i] = t
	return nil
}

// Run executes program starting at the current PC until it terminates:
// successfully (PC advances past the end of the program), with a
// *NoChoicePointError (a query genuinely has no more solutions), or
// with a fatal MachineError. ctx is checked between instructions so a
// host can cancel a runaway query; the core itself has no other notion
// of cancellation (§5).
func (m *Machine) Run(ctx context.Context) error {
	steps := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if m.pc >= len(m.program) {
			return nil
		}
		if m.maxSteps > 0 {
			steps++
			if steps > m.maxSteps {
				return fmt.Errorf("engine: exceeded max steps (%d)", m.maxSteps)
			}
		}

		instr := m.program[m.pc]
		advanced, err := m.step(instr)
		if err == nil {
			if !advanced {
				m.pc++
			}
			continue
		}

		if me, ok := err.(MachineError); ok && me.Backtrackable() {
			if berr := m.backtrack(); berr != nil {
				return berr
			}
			continue
		}
		return err
	}
}
