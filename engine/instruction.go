package engine

import "github.com/clausewam/wam/internal/term"

// Op identifies an instruction's opcode. The dispatch table in
// Machine.step is indexed by Op, generalizing the teacher's
// jumpTable [_opLen]func(*registers) *Promise array dispatch
// (engine/vm.go) from the teacher's fixed four-instruction bytecode to
// this engine's full register-machine instruction set.
type Op int

const (
	PutConst Op = iota
	PutStr
	PutVar
	GetConst
	GetStr
	GetVar
	Move
	BuildCompound
	GetStructure
	ArithmeticIs
	Allocate
	Deallocate
	SetLocal
	GetLocal
	Call
	TailCall
	Proceed
	Choice
	Fail
	IndexedCall
	MultiIndexedCall
	AssertClause
	RetractClause
	Cut
	Halt

	numOps
)

func (op Op) String() string {
	names := [numOps]string{
		PutConst: "PutConst", PutStr: "PutStr", PutVar: "PutVar",
		GetConst: "GetConst", GetStr: "GetStr", GetVar: "GetVar",
		Move: "Move", BuildCompound: "BuildCompound", GetStructure: "GetStructure",
		ArithmeticIs: "ArithmeticIs", Allocate: "Allocate", Deallocate: "Deallocate",
		SetLocal: "SetLocal", GetLocal: "GetLocal", Call: "Call", TailCall: "TailCall",
		Proceed: "Proceed", Choice: "Choice", Fail: "Fail", IndexedCall: "IndexedCall",
		MultiIndexedCall: "MultiIndexedCall", AssertClause: "AssertClause",
		RetractClause: "RetractClause", Cut: "Cut", Halt: "Halt",
	}
	if int(op) < 0 || int(op) >= int(numOps) {
		return "Op(?)"
	}
	return names[op]
}

// Instruction is one record of the program's linear instruction
// vector. Only the fields relevant to Op are meaningful; this mirrors
// a tagged-union-as-struct encoding, chosen (over a Go interface per
// opcode) so the loader's on-disk format is a single flat record type.
type Instruction struct {
	Op Op

	// Register operands. Reg is the primary register most instructions
	// address; Dest is the destination register of Move,
	// BuildCompound and ArithmeticIs. No instruction reads Reg2.
	Reg  int
	Reg2 int
	Dest int

	// Regs lists register indices in order, used by BuildCompound (the
	// argument registers to collect) and MultiIndexedCall (the key
	// registers for the composite key).
	Regs []int

	Const int64
	Str   string

	Var     term.VarId
	VarName string

	Functor string
	Arity   int

	Predicate string
	Addr      int // clause address, for AssertClause/RetractClause
	Alt       int // alternative clause address, for Choice

	Expr string // arithmetic expression text, for ArithmeticIs

	N     int // environment frame size, for Allocate
	Index int // environment slot index, for SetLocal/GetLocal
}
