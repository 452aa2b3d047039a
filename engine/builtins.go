package engine

import (
	"encoding/hex"
	"io"

	"github.com/clausewam/wam/internal/arith"
	"github.com/clausewam/wam/internal/term"
	"golang.org/x/crypto/sha3"
)

// Writer is implemented by hosts that want to capture write/1 and
// nl/0 output; it defaults to nil, in which case those built-ins are
// no-ops beyond resolving their argument (still a valid, observable
// machine state via RegisterValue).
type Writer interface {
	io.Writer
}

// SetOutput installs w as the sink for write/1 and nl/0.
func (m *Machine) SetOutput(w Writer) { m.output = w }

func (m *Machine) registerDefaultBuiltins() {
	m.RegisterBuiltin("write", builtinWrite)
	m.RegisterBuiltin("nl", builtinNl)
	m.RegisterBuiltin("=:=", arithCompare(func(a, b int64) bool { return a == b }))
	m.RegisterBuiltin("=\\=", arithCompare(func(a, b int64) bool { return a != b }))
	m.RegisterBuiltin("<", arithCompare(func(a, b int64) bool { return a < b }))
	m.RegisterBuiltin(">", arithCompare(func(a, b int64) bool { return a > b }))
	m.RegisterBuiltin("=<", arithCompare(func(a, b int64) bool { return a <= b }))
	m.RegisterBuiltin(">=", arithCompare(func(a, b int64) bool { return a >= b }))
	m.RegisterBuiltin("hash", builtinHash)
}

// builtinWrite implements write/1: prints resolve(registers[0]) in
// canonical textual form.
func builtinWrite(m *Machine) error {
	v, err := m.resolvedReg(0)
	if err != nil {
		return err
	}
	if m.output != nil {
		_ = term.Write(m.output, v, m.names)
	}
	return nil
}

// builtinNl implements nl/0.
func builtinNl(m *Machine) error {
	if m.output != nil {
		_, _ = io.WriteString(m.output, "\n")
	}
	return nil
}

// arithCompare builds a two-register arithmetic comparison built-in:
// both registers must resolve to a Const (directly, not through a
// further expression — the comparison operators take already-evaluated
// operands, matching the ArithmeticIs/comparison split spec.md draws
// in §4.8).
func arithCompare(cmp func(a, b int64) bool) Builtin {
	return func(m *Machine) error {
		a, err := m.ReadRegisterConst(0)
		if err != nil {
			return &ArithmeticError{Message: err.Error()}
		}
		b, err := m.ReadRegisterConst(1)
		if err != nil {
			return &ArithmeticError{Message: err.Error()}
		}
		if !cmp(a, b) {
			return &UnificationFailureError{Reason: "arithmetic comparison"}
		}
		return nil
	}
}

var _ arith.RegisterReader = (*Machine)(nil)

// builtinHash implements hash/2: it hashes the canonical write-form of
// registers[0] with SHA3-256 and unifies the hex digest into
// registers[1]. This supplements the minimum built-in set per §4.8's
// "may include" clause, grounded in the crypto_data_hash/N built-in the
// teacher's own upstream lineage (ichiban/prolog) exposes, wiring
// golang.org/x/crypto the way that lineage does.
func builtinHash(m *Machine) error {
	v, err := m.resolvedReg(0)
	if err != nil {
		return err
	}
	sum := sha3.Sum256([]byte(term.Render(v, m.names)))
	digest := term.Str(hex.EncodeToString(sum[:]))

	cur, err := m.reg(1)
	if err != nil {
		return err
	}
	if cur == nil {
		return m.setReg(1, digest)
	}
	if !m.Unify(cur, digest) {
		return &UnificationFailureError{Reason: "hash/2"}
	}
	return nil
}
