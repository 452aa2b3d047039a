package engine

import (
	"github.com/clausewam/wam/internal/arith"
	"github.com/clausewam/wam/internal/clause"
	"github.com/clausewam/wam/internal/term"
)

type execFunc func(m *Machine, instr Instruction) (advanced bool, err error)

var dispatch [numOps]execFunc

func init() {
	dispatch[PutConst] = (*Machine).execPutConst
	dispatch[PutStr] = (*Machine).execPutStr
	dispatch[PutVar] = (*Machine).execPutVar
	dispatch[GetConst] = (*Machine).execGetConst
	dispatch[GetStr] = (*Machine).execGetStr
	dispatch[GetVar] = (*Machine).execGetVar
	dispatch[Move] = (*Machine).execMove
	dispatch[BuildCompound] = (*Machine).execBuildCompound
	dispatch[GetStructure] = (*Machine).execGetStructure
	dispatch[ArithmeticIs] = (*Machine).execArithmeticIs
	dispatch[Allocate] = (*Machine).execAllocate
	dispatch[Deallocate] = (*Machine).execDeallocate
	dispatch[SetLocal] = (*Machine).execSetLocal
	dispatch[GetLocal] = (*Machine).execGetLocal
	dispatch[Call] = (*Machine).execCall
	dispatch[TailCall] = (*Machine).execTailCall
	dispatch[Proceed] = (*Machine).execProceed
	dispatch[Choice] = (*Machine).execChoice
	dispatch[Fail] = (*Machine).execFail
	dispatch[IndexedCall] = (*Machine).execIndexedCall
	dispatch[MultiIndexedCall] = (*Machine).execMultiIndexedCall
	dispatch[AssertClause] = (*Machine).execAssertClause
	dispatch[RetractClause] = (*Machine).execRetractClause
	dispatch[Cut] = (*Machine).execCut
	dispatch[Halt] = (*Machine).execHalt
}

func (m *Machine) step(instr Instruction) (bool, error) {
	if int(instr.Op) < 0 || int(instr.Op) >= int(numOps) || dispatch[instr.Op] == nil {
		return false, &EnvironmentError{Message: "unknown opcode"}
	}
	return dispatch[instr.Op](m, instr)
}

func (m *Machine) execPutConst(instr Instruction) (bool, error) {
	if err := m.setReg(instr.Reg, term.Const(instr.Const)); err != nil {
		return false, err
	}
	return false, nil
}

func (m *Machine) execPutStr(instr Instruction) (bool, error) {
	if err := m.setReg(instr.Reg, term.Str(instr.Str)); err != nil {
		return false, err
	}
	return false, nil
}

func (m *Machine) execPutVar(instr Instruction) (bool, error) {
	if err := m.setReg(instr.Reg, term.Var(instr.Var)); err != nil {
		return false, err
	}
	m.NameVar(instr.Var, instr.VarName)
	return false, nil
}

func (m *Machine) execGetConst(instr Instruction) (bool, error) {
	cur, err := m.resolvedReg(instr.Reg)
	if err != nil {
		return false, err
	}
	if !m.Unify(cur, term.Const(instr.Const)) {
		return false, &UnificationFailureError{Reason: "GetConst"}
	}
	return false, nil
}

func (m *Machine) execGetStr(instr Instruction) (bool, error) {
	cur, err := m.resolvedReg(instr.Reg)
	if err != nil {
		return false, err
	}
	if !m.Unify(cur, term.Str(instr.Str)) {
		return false, &UnificationFailureError{Reason: "GetStr"}
	}
	return false, nil
}

func (m *Machine) execGetVar(instr Instruction) (bool, error) {
	t, err := m.reg(instr.Reg)
	if err != nil {
		return false, err
	}
	m.NameVar(instr.Var, instr.VarName)
	if t == nil {
		return false, m.setReg(instr.Reg, term.Var(instr.Var))
	}
	if !m.Unify(t, term.Var(instr.Var)) {
		return false, &UnificationFailureError{Reason: "GetVar"}
	}
	return false, nil
}

func (m *Machine) execMove(instr Instruction) (bool, error) {
	src, err := m.reg(instr.Reg)
	if err != nil {
		return false, err
	}
	if src == nil {
		return false, &UninitializedRegisterError{Index: instr.Reg}
	}
	if err := m.setReg(instr.Dest, src); err != nil {
		return false, err
	}
	return false, nil
}

func (m *Machine) execBuildCompound(instr Instruction) (bool, error) {
	args := make([]term.Term, len(instr.Regs))
	for i, r := range instr.Regs {
		resolved, err := m.resolvedReg(r)
		if err != nil {
			return false, err
		}
		args[i] = resolved
	}
	return false, m.setReg(instr.Dest, &term.Compound{Functor: instr.Functor, Args: args})
}

func (m *Machine) execGetStructure(instr Instruction) (bool, error) {
	resolved, err := m.resolvedReg(instr.Reg)
	if err != nil {
		return false, err
	}
	c, ok := resolved.(*term.Compound)
	if !ok || c.Functor != instr.Functor || len(c.Args) != instr.Arity {
		return false, &UnificationFailureError{Reason: "GetStructure mismatch"}
	}
	return false, nil
}

func (m *Machine) execArithmeticIs(instr Instruction) (bool, error) {
	v, err := arith.Eval(instr.Expr, m)
	if err != nil {
		return false, &ArithmeticError{Message: err.Error()}
	}
	if err := m.setReg(instr.Dest, term.Const(v)); err != nil {
		return false, err
	}
	return false, nil
}

func (m *Machine) execAllocate(instr Instruction) (bool, error) {
	m.envs = append(m.envs, newEnvFrame(instr.N))
	return false, nil
}

func (m *Machine) execDeallocate(instr Instruction) (bool, error) {
	if len(m.envs) == 0 {
		return false, &EnvironmentError{Message: "deallocate with no environment frame"}
	}
	m.envs = m.envs[:len(m.envs)-1]
	return false, nil
}

func (m *Machine) topEnv() (*EnvFrame, error) {
	if len(m.envs) == 0 {
		return nil, &EnvironmentError{Message: "no environment frame"}
	}
	return m.envs[len(m.envs)-1], nil
}

func (m *Machine) execSetLocal(instr Instruction) (bool, error) {
	env, err := m.topEnv()
	if err != nil {
		return false, err
	}
	if instr.Index < 0 || instr.Index >= len(env.Slots) {
		return false, &EnvironmentError{Message: "environment slot out of range"}
	}
	v, err := m.resolvedReg(instr.Reg)
	if err != nil {
		return false, err
	}
	env.Slots[instr.Index] = v
	return false, nil
}

func (m *Machine) execGetLocal(instr Instruction) (bool, error) {
	env, err := m.topEnv()
	if err != nil {
		return false, err
	}
	if instr.Index < 0 || instr.Index >= len(env.Slots) {
		return false, &EnvironmentError{Message: "environment slot out of range"}
	}
	slot := env.Slots[instr.Index]
	if slot == nil {
		return false, &EnvironmentError{Message: "environment slot is uninitialized"}
	}
	cur, err := m.reg(instr.Reg)
	if err != nil {
		return false, err
	}
	if cur == nil {
		return false, m.setReg(instr.Reg, slot)
	}
	if !m.Unify(cur, slot) {
		return false, &UnificationFailureError{Reason: "GetLocal"}
	}
	return false, nil
}

// dispatchPredicate implements the common Call/TailCall body: builtin
// dispatch, clause lookup, control-frame push (skipped for tail
// calls), and choice-point creation when more than one clause remains.
func (m *Machine) dispatchPredicate(predicate string, returnPC int, isTailCall bool) (bool, error) {
	if b, ok := m.builtin[predicate]; ok {
		if err := b(m); err != nil {
			return false, err
		}
		return false, nil
	}

	if !m.clauses.Known(predicate) {
		return false, &PredicateNotFoundError{Name: predicate}
	}
	addrs := m.clauses.Clauses(predicate)
	if len(addrs) == 0 {
		return false, &UnificationFailureError{Reason: "predicate " + predicate + " has no clauses"}
	}

	m.activePredicate = predicate
	if m.OnCall != nil {
		m.OnCall(predicate)
	}

	if !isTailCall {
		m.control = append(m.control, ControlFrame{ReturnPC: returnPC})
	}

	if len(addrs) > 1 {
		level := len(m.control)
		rest := make([]int, len(addrs)-1)
		for i, a := range addrs[1:] {
			rest[i] = int(a)
		}
		m.choices = append(m.choices, newChoicePoint(m.registers, m.store.TrailLen(), m.control, rest, level))
	}

	m.pc = int(addrs[0])
	return true, nil
}

func (m *Machine) execCall(instr Instruction) (bool, error) {
	return m.dispatchPredicate(instr.Predicate, m.pc+1, false)
}

func (m *Machine) execTailCall(instr Instruction) (bool, error) {
	// Pop the top environment frame, if any; per the open question this
	// specification resolves, the absence of a frame is not an error.
	if len(m.envs) > 0 {
		m.envs = m.envs[:len(m.envs)-1]
	}
	// A tail call reuses the caller's return frame: it must not push a
	// new one, so the return PC passed here is unused by the no-push
	// path but is still the logical "next instruction" for bookkeeping
	// symmetry with execCall.
	return m.dispatchPredicate(instr.Predicate, m.pc+1, true)
}

func (m *Machine) execProceed(instr Instruction) (bool, error) {
	if len(m.control) == 0 {
		return false, &EnvironmentError{Message: "proceed with empty control stack"}
	}
	top := m.control[len(m.control)-1]
	m.control = m.control[:len(m.control)-1]
	if m.OnExit != nil {
		m.OnExit(m.activePredicate)
	}
	m.pc = top.ReturnPC
	return true, nil
}

func (m *Machine) execChoice(instr Instruction) (bool, error) {
	level := len(m.control)
	m.choices = append(m.choices, newChoicePoint(m.registers, m.store.TrailLen(), m.control, []int{instr.Alt}, level))
	return false, nil
}

func (m *Machine) execFail(instr Instruction) (bool, error) {
	return false, &UnificationFailureError{Reason: "Fail"}
}

func (m *Machine) execIndexedCall(instr Instruction) (bool, error) {
	key, err := m.resolvedReg(instr.Reg)
	if err != nil {
		return false, err
	}
	return m.dispatchIndexed(instr.Predicate, clause.EncodeKey(key), m.pc+1)
}

func (m *Machine) execMultiIndexedCall(instr Instruction) (bool, error) {
	keys := make([]term.Term, len(instr.Regs))
	for i, r := range instr.Regs {
		resolved, err := m.resolvedReg(r)
		if err != nil {
			return false, err
		}
		keys[i] = resolved
	}
	return m.dispatchIndexed(instr.Predicate, clause.EncodeCompositeKey(keys...), m.pc+1)
}

func (m *Machine) dispatchIndexed(predicate, key string, returnPC int) (bool, error) {
	if !m.clauses.Known(predicate) {
		return false, &PredicateNotFoundError{Name: predicate}
	}
	addrs := m.clauses.Lookup(predicate, key)
	if len(addrs) == 0 {
		return false, &UnificationFailureError{Reason: "indexed lookup miss for " + predicate}
	}

	m.activePredicate = predicate
	if m.OnCall != nil {
		m.OnCall(predicate)
	}

	m.control = append(m.control, ControlFrame{ReturnPC: returnPC})

	if len(addrs) > 1 {
		level := len(m.control)
		rest := make([]int, len(addrs)-1)
		for i, a := range addrs[1:] {
			rest[i] = int(a)
		}
		m.choices = append(m.choices, newChoicePoint(m.registers, m.store.TrailLen(), m.control, rest, level))
	}

	m.pc = int(addrs[0])
	return true, nil
}

func (m *Machine) execAssertClause(instr Instruction) (bool, error) {
	m.clauses.Assert(instr.Predicate, clause.Addr(instr.Addr))
	return false, nil
}

func (m *Machine) execRetractClause(instr Instruction) (bool, error) {
	if err := m.clauses.Retract(instr.Predicate, clause.Addr(instr.Addr)); err != nil {
		return false, &NotFoundError{Predicate: instr.Predicate, Addr: instr.Addr}
	}
	return false, nil
}

func (m *Machine) execCut(instr Instruction) (bool, error) {
	current := len(m.control)
	for len(m.choices) > 0 && m.choices[len(m.choices)-1].callLevel >= current {
		m.choices = m.choices[:len(m.choices)-1]
	}
	if m.OnCut != nil {
		m.OnCut(m.activePredicate, current)
	}
	return false, nil
}

func (m *Machine) execHalt(instr Instruction) (bool, error) {
	m.pc = len(m.program)
	return true, nil
}

// backtrack implements the choice-point restore protocol of §4.7. It
// is invoked uniformly by Run whenever an instruction reports a
// backtrackable MachineError, regardless of which instruction produced
// it (Fail, a failed unification, a GetStructure mismatch, or an
// indexed lookup miss).
func (m *Machine) backtrack() error {
	if len(m.choices) == 0 {
		return &NoChoicePointError{}
	}
	cp := m.choices[len(m.choices)-1]
	m.choices = m.choices[:len(m.choices)-1]

	if m.OnFail != nil {
		m.OnFail(m.activePredicate)
	}

	m.store.Undo(cp.savedTrailLen)
	m.registers = cloneRegisters(cp.savedRegisters)
	m.control = cloneControlStack(cp.savedControl)

	chosen := cp.alternatives[0]
	remaining := cp.alternatives[1:]
	if len(remaining) > 0 {
		m.choices = append(m.choices, &ChoicePoint{
			savedRegisters: cp.savedRegisters,
			savedTrailLen:  cp.savedTrailLen,
			savedControl:   cp.savedControl,
			alternatives:   remaining,
			callLevel:      cp.callLevel,
		})
	}

	if m.OnRedo != nil {
		m.OnRedo(m.activePredicate)
	}

	m.pc = chosen
	return nil
}
