// Package unify implements structural unification over term.Term via
// the shared varstore.Store, per component design §4.3.
package unify

import (
	"github.com/clausewam/wam/internal/lambda"
	"github.com/clausewam/wam/internal/term"
	"github.com/clausewam/wam/internal/varstore"
)

// Store is the narrow interface unify needs from the binding store:
// resolution and binding. Fresh variables for lambda alpha-renaming come
// from the separate counter argument of Unify. *varstore.Store satisfies
// it directly.
type Store interface {
	Resolve(term.Term) term.Term
	Bind(term.VarId, term.Term)
}

// Unify attempts to unify a and b against store, binding variables as
// needed. On failure the caller is responsible for having wrapped the
// attempt between a checkpoint and a conditional undo: Unify itself
// does not roll back partial bindings, matching the spec's statement
// that failure leaves the trail partially extended.
func Unify(store Store, counter *term.Counter, a, b term.Term) bool {
	ar := store.Resolve(a)
	br := store.Resolve(b)

	if av, ok := ar.(term.Var); ok {
		if bv, ok := br.(term.Var); ok && av == bv {
			return true
		}
		store.Bind(term.VarId(av), br)
		return true
	}
	if bv, ok := br.(term.Var); ok {
		store.Bind(term.VarId(bv), ar)
		return true
	}

	switch a := ar.(type) {
	case term.Const:
		b, ok := br.(term.Const)
		return ok && a == b
	case term.Str:
		b, ok := br.(term.Str)
		return ok && a == b
	case *term.Compound:
		b, ok := br.(*term.Compound)
		if !ok || a.Functor != b.Functor || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !Unify(store, counter, a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	case *term.App:
		b, ok := br.(*term.App)
		if !ok {
			return false
		}
		return Unify(store, counter, a.Fun, b.Fun) && Unify(store, counter, a.Arg, b.Arg)
	case *term.Lambda:
		b, ok := br.(*term.Lambda)
		if !ok {
			return false
		}
		fresh := counter.Fresh()
		aBody := lambda.Substitute(counter, a.Body, a.Param, term.Var(fresh))
		bBody := lambda.Substitute(counter, b.Body, b.Param, term.Var(fresh))
		return Unify(store, counter, aBody, bBody)
	default:
		return false
	}
}

// WithRollback runs fn (typically one or more Unify calls) and, if it
// reports failure, undoes every binding fn made before returning. This
// is the checkpoint/undo wrapper §4.3 requires of unification callers.
func WithRollback(store *varstore.Store, fn func() bool) bool {
	mark := store.Checkpoint()
	if fn() {
		return true
	}
	store.Undo(mark)
	return false
}
