package engine

import "github.com/clausewam/wam/internal/term"

// ChoicePoint is a snapshot of machine state captured so the
// executor can retry an alternative clause on failure, per §4.7.
// Registers and the control stack are deep copies (value copies);
// alternatives is the remaining list of clause addresses still to
// try, in order. The environment stack is deliberately not part of
// the snapshot, per the data model: clauses that allocate environment
// frames are responsible for deallocating them before a failure
// reaches the choice point.
type ChoicePoint struct {
	savedRegisters []term.Term
	savedTrailLen  int
	savedControl   []ControlFrame
	alternatives   []int
	callLevel      int
}

func cloneRegisters(regs []term.Term) []term.Term {
	out := make([]term.Term, len(regs))
	for i, r := range regs {
		if r != nil {
			out[i] = term.CloneTerm(r)
		}
	}
	return out
}

func cloneControlStack(cs []ControlFrame) []ControlFrame {
	out := make([]ControlFrame, len(cs))
	copy(out, cs)
	return out
}

func newChoicePoint(regs []term.Term, trailLen int, control []ControlFrame, alternatives []int, callLevel int) *ChoicePoint {
	return &ChoicePoint{
		savedRegisters: cloneRegisters(regs),
		savedTrailLen:  trailLen,
		savedControl:   cloneControlStack(control),
		alternatives:   alternatives,
		callLevel:      callLevel,
	}
}
