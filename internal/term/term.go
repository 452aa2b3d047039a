// Package term implements the tagged term representation shared by the
// rest of the engine: integer and string constants, logic variables,
// compounds, and the lambda binder/application pair.
package term

import (
	"fmt"
	"strings"
)

// VarId identifies a logic variable. It is allocated monotonically by
// the owning machine; the zero value is never issued by a Counter.
type VarId uint64

// Counter hands out dense, monotonically increasing VarIds.
type Counter struct {
	next VarId
}

// Fresh returns a VarId never returned before by this counter.
func (c *Counter) Fresh() VarId {
	c.next++
	return c.next
}

// Term is the sum type of all term variants. It is implemented by
// Const, Str, Var, *Compound, *Lambda, and *App. Terms are value
// semantic: callers that store a term into a register or a choice
// point snapshot must Clone it first if they intend to keep mutating
// shared substructure (constants and variables are already immutable,
// so Clone is a deep copy only where compounds are involved).
type Term interface {
	isTerm()
	fmt.Stringer
}

// Const is an integer constant.
type Const int64

func (Const) isTerm()          {}
func (c Const) String() string { return fmt.Sprintf("%d", int64(c)) }

// Str is an immutable string value.
type Str string

func (Str) isTerm()          {}
func (s Str) String() string { return string(s) }

// Var references a logic variable by id. Human-readable names are kept
// out of Var itself (VarId -> name is diagnostics-only, per the data
// model) and live in a separate Names table.
type Var VarId

func (Var) isTerm() {}
func (v Var) String() string {
	return fmt.Sprintf("_G%d", uint64(v))
}

// Compound is a structured term: a functor applied to a fixed sequence
// of argument terms. Arity is len(Args).
type Compound struct {
	Functor string
	Args    []Term
}

func (*Compound) isTerm() {}

func (c *Compound) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Functor, strings.Join(args, ","))
}

// NewCompound builds a Compound from a functor and its arguments.
func NewCompound(functor string, args ...Term) *Compound {
	return &Compound{Functor: functor, Args: args}
}

// Clone returns a deep copy of c, suitable for storing into a choice
// point snapshot or a register independent of the original.
func (c *Compound) Clone() *Compound {
	args := make([]Term, len(c.Args))
	for i, a := range c.Args {
		args[i] = CloneTerm(a)
	}
	return &Compound{Functor: c.Functor, Args: args}
}

// Lambda is a binder: Param is captured in Body.
type Lambda struct {
	Param VarId
	Body  Term
}

func (*Lambda) isTerm() {}

func (l *Lambda) String() string {
	return fmt.Sprintf("λ%s.%s", Var(l.Param), l.Body)
}

// App is function application.
type App struct {
	Fun Term
	Arg Term
}

func (*App) isTerm() {}

func (a *App) String() string {
	return fmt.Sprintf("(%s %s)", a.Fun, a.Arg)
}

// CloneTerm deep-copies t. Const, Str, and Var are immutable and are
// returned as-is; Compound, Lambda, and App are copied structurally.
func CloneTerm(t Term) Term {
	switch t := t.(type) {
	case Const, Str, Var:
		return t
	case *Compound:
		return t.Clone()
	case *Lambda:
		return &Lambda{Param: t.Param, Body: CloneTerm(t.Body)}
	case *App:
		return &App{Fun: CloneTerm(t.Fun), Arg: CloneTerm(t.Arg)}
	default:
		panic(fmt.Sprintf("term: unhandled variant %T", t))
	}
}

// Equal reports structural equality of two *already resolved* terms.
// It does not itself resolve variables; callers compare resolved forms.
func Equal(a, b Term) bool {
	switch a := a.(type) {
	case Const:
		b, ok := b.(Const)
		return ok && a == b
	case Str:
		b, ok := b.(Str)
		return ok && a == b
	case Var:
		b, ok := b.(Var)
		return ok && a == b
	case *Compound:
		b, ok := b.(*Compound)
		if !ok || a.Functor != b.Functor || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !Equal(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	case *Lambda:
		b, ok := b.(*Lambda)
		return ok && a.Param == b.Param && Equal(a.Body, b.Body)
	case *App:
		b, ok := b.(*App)
		return ok && Equal(a.Fun, b.Fun) && Equal(a.Arg, b.Arg)
	default:
		return false
	}
}

// FreeVars returns the set of VarIds occurring free in t (Lambda
// shadows its own Param within Body).
func FreeVars(t Term) map[VarId]struct{} {
	out := map[VarId]struct{}{}
	collectFree(t, out)
	return out
}

func collectFree(t Term, out map[VarId]struct{}) {
	switch t := t.(type) {
	case Var:
		out[VarId(t)] = struct{}{}
	case *Compound:
		for _, a := range t.Args {
			collectFree(a, out)
		}
	case *Lambda:
		inner := map[VarId]struct{}{}
		collectFree(t.Body, inner)
		for id := range inner {
			if id == t.Param {
				continue
			}
			out[id] = struct{}{}
		}
	case *App:
		collectFree(t.Fun, out)
		collectFree(t.Arg, out)
	}
}

// Occurs reports whether v occurs free in t.
func Occurs(v VarId, t Term) bool {
	_, ok := FreeVars(t)[v]
	return ok
}
