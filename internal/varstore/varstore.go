// Package varstore implements the machine's variable binding store: a
// union-find over VarId with an append-only trail that makes every
// binding reversible to an earlier checkpoint. The naming (Bind,
// Resolve, checkpoint/undo) follows the Bind/Resolve vocabulary the
// teacher's engine.Env uses (engine/variable.go), adapted from an
// immutable persistent map to a mutable map-plus-trail because the
// trail/rollback contract in the data model requires recording prior
// values rather than structural sharing.
package varstore

import "github.com/clausewam/wam/internal/term"

// entry is one trail record: the variable that was (re)bound and its
// value immediately before the mutation. An entry IS the previous
// value, not a pointer back into the union-find, per the trail's
// specified representation.
type entry struct {
	id  term.VarId
	old term.Term // nil means "was unbound"
}

// Store is the union-find + trail. The zero value is ready to use.
type Store struct {
	bindings map[term.VarId]term.Term
	trail    []entry
}

// New returns an empty Store.
func New() *Store {
	return &Store{bindings: map[term.VarId]term.Term{}}
}

// Lookup implements term.Bindings.
func (s *Store) Lookup(v term.VarId) (term.Term, bool) {
	t, ok := s.bindings[v]
	return t, ok
}

// Resolve walks v (and any term) to its canonical resolved form.
func (s *Store) Resolve(t term.Term) term.Term {
	return term.Resolve(s, t)
}

// Bound reports whether v currently has a binding.
func (s *Store) Bound(v term.VarId) bool {
	_, ok := s.bindings[v]
	return ok
}

// Bind records v's current value on the trail, then sets uf[v] = t.
// Precondition (enforced by callers, principally the unifier): v is
// unbound after resolution. Binding an already-bound variable is not
// itself an error here — it simply overwrites, with the overwritten
// value preserved on the trail — but well-behaved callers never do
// this, since it would violate invariant I1 if t resolves back to v.
func (s *Store) Bind(v term.VarId, t term.Term) {
	if s.bindings == nil {
		s.bindings = map[term.VarId]term.Term{}
	}
	old, wasBound := s.bindings[v]
	if !wasBound {
		s.trail = append(s.trail, entry{id: v, old: nil})
	} else {
		s.trail = append(s.trail, entry{id: v, old: old})
	}
	s.bindings[v] = t
}

// Checkpoint returns the current trail length, to be passed to Undo
// later to roll back every binding made since.
func (s *Store) Checkpoint() int {
	return len(s.trail)
}

// Undo rewinds the store to exactly the state at mark, popping and
// replaying trail entries in reverse order.
func (s *Store) Undo(mark int) {
	for len(s.trail) > mark {
		last := len(s.trail) - 1
		e := s.trail[last]
		s.trail = s.trail[:last]
		if e.old == nil {
			delete(s.bindings, e.id)
		} else {
			s.bindings[e.id] = e.old
		}
	}
}

// TrailLen reports the current trail length, equivalent to Checkpoint
// but named for read-only inspection call sites (choice point capture).
func (s *Store) TrailLen() int {
	return len(s.trail)
}
