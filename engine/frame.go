package engine

import "github.com/clausewam/wam/internal/term"

// ControlFrame is a control-return frame, per the data model's Control
// Stack: Proceed pops one and resumes at ReturnPC.
type ControlFrame struct {
	ReturnPC int
}

// EnvFrame is a local-variable frame pushed by Allocate and popped by
// Deallocate, addressed by SetLocal/GetLocal relative to the top
// frame. A nil slot is the "empty" state of the data model's
// Option<Term>.
type EnvFrame struct {
	Slots []term.Term
}

func newEnvFrame(n int) *EnvFrame {
	return &EnvFrame{Slots: make([]term.Term, n)}
}
