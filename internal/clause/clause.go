// Package clause implements the dynamic clause store: the predicate
// table (predicate name -> ordered clause addresses) and the optional
// key-indexed sub-maps, per component design §4.6.
package clause

import "fmt"

// Addr is a clause address: an index into the instruction vector at
// which the clause's code begins.
type Addr int

// NotFoundError is returned by Retract when the address is absent from
// a table it was expected to be present in.
type NotFoundError struct {
	Predicate string
	Addr      Addr
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("clause: address %d not found for predicate %q", e.Addr, e.Predicate)
}

// Store holds the predicate table and the index table. Construct one
// with New: the zero value has nil maps, and Register, Assert and
// SetIndex panic on it.
type Store struct {
	predicates map[string][]Addr
	index      map[string]map[string][]Addr
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		predicates: map[string][]Addr{},
		index:      map[string]map[string][]Addr{},
	}
}

// Register installs addrs as the full, ordered clause list for
// predicate, overwriting whatever was there (used by the loader to
// seed the initial predicate table).
func (s *Store) Register(predicate string, addrs []Addr) {
	cp := make([]Addr, len(addrs))
	copy(cp, addrs)
	s.predicates[predicate] = cp
}

// Clauses returns the ordered clause addresses for predicate, in
// assertion order. The returned slice must not be mutated by the
// caller.
func (s *Store) Clauses(predicate string) []Addr {
	return s.predicates[predicate]
}

// Known reports whether predicate has ever been registered or
// asserted into, even if its clause list is currently empty (e.g.
// after retracting its only clause). This distinguishes "a predicate
// with zero clauses, which simply fails" from "an undeclared
// predicate name", which is a fatal executor error.
func (s *Store) Known(predicate string) bool {
	_, ok := s.predicates[predicate]
	return ok
}

// Assert appends addr to predicate's clause list, preserving assertion
// order, and appends it to every key bucket already present in that
// predicate's index table (indexing decisions — which keys exist — are
// a loader concern; Assert never invents a new key).
func (s *Store) Assert(predicate string, addr Addr) {
	s.predicates[predicate] = append(s.predicates[predicate], addr)
	if buckets, ok := s.index[predicate]; ok {
		for key := range buckets {
			buckets[key] = append(buckets[key], addr)
		}
	}
}

// Retract removes the first occurrence of addr from predicate's clause
// list and from every index bucket it appears in. It returns
// *NotFoundError if addr is not present in the predicate table.
func (s *Store) Retract(predicate string, addr Addr) error {
	addrs, ok := s.predicates[predicate]
	if !ok {
		return &NotFoundError{Predicate: predicate, Addr: addr}
	}
	i := indexOf(addrs, addr)
	if i < 0 {
		return &NotFoundError{Predicate: predicate, Addr: addr}
	}
	s.predicates[predicate] = append(addrs[:i:i], addrs[i+1:]...)

	if buckets, ok := s.index[predicate]; ok {
		for key, list := range buckets {
			if j := indexOf(list, addr); j >= 0 {
				buckets[key] = append(list[:j:j], list[j+1:]...)
			}
		}
	}
	return nil
}

func indexOf(addrs []Addr, target Addr) int {
	for i, a := range addrs {
		if a == target {
			return i
		}
	}
	return -1
}

// Lookup returns the clause addresses in predicate's index bucket for
// key, or nil if predicate has no index table or no such bucket.
func (s *Store) Lookup(predicate, key string) []Addr {
	buckets, ok := s.index[predicate]
	if !ok {
		return nil
	}
	return buckets[key]
}

// SetIndex installs buckets as the full index table for predicate.
// Used by BuildIndex once it has scanned clauses and computed keys.
func (s *Store) SetIndex(predicate string, buckets map[string][]Addr) {
	s.index[predicate] = buckets
}

// HasIndex reports whether predicate currently has an index table.
func (s *Store) HasIndex(predicate string) bool {
	_, ok := s.index[predicate]
	return ok
}
