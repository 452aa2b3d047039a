package lambda

import (
	"testing"

	"github.com/clausewam/wam/internal/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstituteShadowedBinderUnchanged(t *testing.T) {
	var c term.Counter
	l := &term.Lambda{Param: 1, Body: term.Var(1)}
	out := Substitute(&c, l, 1, term.Const(9))
	assert.Same(t, l, out.(*term.Lambda))
}

func TestSubstituteCapturesAreAvoided(t *testing.T) {
	var c term.Counter
	c.Fresh() // param=1 already "in use" conceptually
	// \x. y   where we substitute y := x   (x is free in the value)
	l := &term.Lambda{Param: 1, Body: term.Var(2)} // param x=1, body refers to y=2
	out := Substitute(&c, l, 2, term.Var(1)).(*term.Lambda)

	require.NotEqual(t, term.VarId(1), out.Param, "binder must be renamed to avoid capturing the substituted x")
	body := out.Body.(term.Var)
	assert.Equal(t, term.VarId(1), term.VarId(body), "body should now refer to the original x")
}

func TestSubstituteRecursesWhenNoCapture(t *testing.T) {
	var c term.Counter
	l := &term.Lambda{Param: 1, Body: term.NewCompound("f", term.Var(2))}
	out := Substitute(&c, l, 2, term.Const(5)).(*term.Lambda)
	assert.Equal(t, term.VarId(1), out.Param)
	assert.Equal(t, term.Const(5), out.Body.(*term.Compound).Args[0])
}

func TestCaptureAvoidanceFreeVarProperty(t *testing.T) {
	var c term.Counter
	// t = f(x, y) with y := g(z); check free(substitute(t,v,value))
	tm := term.NewCompound("f", term.Var(1), term.Var(2))
	value := term.NewCompound("g", term.Var(3))
	out := Substitute(&c, tm, 2, value)

	free := term.FreeVars(out)
	_, has1 := free[1]
	_, has3 := free[3]
	_, has2 := free[2]
	assert.True(t, has1)
	assert.True(t, has3)
	assert.False(t, has2)
}

func TestBetaReduceOnceDirectRedex(t *testing.T) {
	var c term.Counter
	app := &term.App{Fun: &term.Lambda{Param: 1, Body: term.Var(1)}, Arg: term.Const(7)}
	out, ok := BetaReduceOnce(&c, app)
	assert.True(t, ok)
	assert.Equal(t, term.Const(7), out)
}

func TestBetaReduceOnceSubstitutesArgumentIntoBody(t *testing.T) {
	var c term.Counter
	// App(Lambda(x, f(x)), y) reduces to f(y)
	app := &term.App{
		Fun: &term.Lambda{Param: 1, Body: term.NewCompound("f", term.Var(1))},
		Arg: term.Var(2),
	}
	out, ok := BetaReduceOnce(&c, app)
	require.True(t, ok)
	comp := out.(*term.Compound)
	assert.Equal(t, "f", comp.Functor)
	assert.Equal(t, term.Var(2), comp.Args[0])
}

func TestBetaReduceOnceDescendsIntoSubterms(t *testing.T) {
	var c term.Counter
	inner := &term.App{Fun: &term.Lambda{Param: 1, Body: term.Var(1)}, Arg: term.Const(3)}
	outer := term.NewCompound("wrap", inner)
	out, ok := BetaReduceOnce(&c, outer)
	require.True(t, ok)
	assert.Equal(t, term.Const(3), out.(*term.Compound).Args[0])
}

func TestBetaReduceOnceNoRedexReturnsFalse(t *testing.T) {
	var c term.Counter
	t1 := term.NewCompound("f", term.Const(1))
	out, ok := BetaReduceOnce(&c, t1)
	assert.False(t, ok)
	assert.Equal(t, t1, out)
}
