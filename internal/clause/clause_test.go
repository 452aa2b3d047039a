package clause

import (
	"testing"

	"github.com/clausewam/wam/internal/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssertPreservesOrder(t *testing.T) {
	s := New()
	s.Assert("p", 10)
	s.Assert("p", 20)
	s.Assert("p", 30)
	assert.Equal(t, []Addr{10, 20, 30}, s.Clauses("p"))
}

func TestRetractRemovesFirstOccurrenceFromBothTables(t *testing.T) {
	s := New()
	s.Assert("p", 1)
	s.Assert("p", 2)
	s.SetIndex("p", map[string][]Addr{"k": {1, 2}})
	s.Assert("p", 3) // appended to predicate list and to bucket "k"

	require.NoError(t, s.Retract("p", 1))
	assert.Equal(t, []Addr{2, 3}, s.Clauses("p"))
	assert.Equal(t, []Addr{2, 3}, s.Lookup("p", "k"))
}

func TestRetractAssertSelectsSecondClause(t *testing.T) {
	s := New()
	s.Assert("p", 1)
	s.Assert("p", 2)
	require.NoError(t, s.Retract("p", 1))
	assert.Equal(t, []Addr{2}, s.Clauses("p"))
}

func TestRetractMissingReturnsNotFound(t *testing.T) {
	s := New()
	s.Assert("p", 1)
	err := s.Retract("p", 99)
	require.Error(t, err)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestRetractUnknownPredicateReturnsNotFound(t *testing.T) {
	s := New()
	err := s.Retract("nope", 1)
	assert.Error(t, err)
}

func TestAssertAppendsToExistingIndexBuckets(t *testing.T) {
	s := New()
	s.Assert("p", 1)
	s.SetIndex("p", map[string][]Addr{"k1": {1}, "k2": {}})
	s.Assert("p", 2)
	assert.Equal(t, []Addr{1, 2}, s.Lookup("p", "k1"))
	assert.Equal(t, []Addr{2}, s.Lookup("p", "k2"))
}

func TestEncodeKeyIsInjectiveAcrossVariants(t *testing.T) {
	keys := map[string]bool{}
	inputs := []term.Term{
		term.Const(1),
		term.Str("1"),
		term.NewCompound("1"),
		term.Var(1),
	}
	for _, in := range inputs {
		k := EncodeKey(in)
		assert.False(t, keys[k], "collision for %v -> %q", in, k)
		keys[k] = true
	}
}

func TestEncodeCompositeKeyDiffersByArgOrder(t *testing.T) {
	k1 := EncodeCompositeKey(term.Const(1), term.Const(2))
	k2 := EncodeCompositeKey(term.Const(2), term.Const(1))
	assert.NotEqual(t, k1, k2)
}
