// Package lambda implements capture-avoiding substitution and
// single-step beta reduction over term.Term, per the component design's
// §4.4. Fresh variables needed to avoid capture are minted from a
// term.Counter supplied by the caller (the owning machine's variable
// counter), matching the teacher's NewVariable() pattern
// (engine/variable.go) generalized from string-named to dense VarId
// allocation.
package lambda

import "github.com/clausewam/wam/internal/term"

// Substitute replaces free occurrences of Var(v) in t with value,
// renaming bound variables as needed to avoid capturing value's free
// variables.
func Substitute(counter *term.Counter, t term.Term, v term.VarId, value term.Term) term.Term {
	switch t := t.(type) {
	case term.Const, term.Str:
		return t
	case term.Var:
		if term.VarId(t) == v {
			return value
		}
		return t
	case *term.Compound:
		args := make([]term.Term, len(t.Args))
		for i, a := range t.Args {
			args[i] = Substitute(counter, a, v, value)
		}
		return &term.Compound{Functor: t.Functor, Args: args}
	case *term.Lambda:
		if t.Param == v {
			// The abstraction shadows v; nothing inside is free in v.
			return t
		}
		if term.Occurs(t.Param, value) {
			fresh := counter.Fresh()
			renamedBody := Substitute(counter, t.Body, t.Param, term.Var(fresh))
			return &term.Lambda{
				Param: fresh,
				Body:  Substitute(counter, renamedBody, v, value),
			}
		}
		return &term.Lambda{Param: t.Param, Body: Substitute(counter, t.Body, v, value)}
	case *term.App:
		return &term.App{
			Fun: Substitute(counter, t.Fun, v, value),
			Arg: Substitute(counter, t.Arg, v, value),
		}
	default:
		panic("lambda: unhandled term variant")
	}
}

// BetaReduceOnce performs a single leftmost-outermost beta reduction.
// If t is not itself a redex, it descends into subterms looking for
// one; if none exists anywhere in t, it returns t unchanged and ok is
// false.
func BetaReduceOnce(counter *term.Counter, t term.Term) (result term.Term, ok bool) {
	if app, isApp := t.(*term.App); isApp {
		if lam, isLam := app.Fun.(*term.Lambda); isLam {
			return Substitute(counter, lam.Body, lam.Param, app.Arg), true
		}
	}
	switch t := t.(type) {
	case *term.Compound:
		args := make([]term.Term, len(t.Args))
		copy(args, t.Args)
		for i, a := range args {
			if reduced, did := BetaReduceOnce(counter, a); did {
				args[i] = reduced
				return &term.Compound{Functor: t.Functor, Args: args}, true
			}
		}
		return t, false
	case *term.Lambda:
		if reduced, did := BetaReduceOnce(counter, t.Body); did {
			return &term.Lambda{Param: t.Param, Body: reduced}, true
		}
		return t, false
	case *term.App:
		if reduced, did := BetaReduceOnce(counter, t.Fun); did {
			return &term.App{Fun: reduced, Arg: t.Arg}, true
		}
		if reduced, did := BetaReduceOnce(counter, t.Arg); did {
			return &term.App{Fun: t.Fun, Arg: reduced}, true
		}
		return t, false
	default:
		return t, false
	}
}
