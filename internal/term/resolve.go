package term

// Bindings is the read side of the variable binding store. It is
// satisfied by *varstore.Store; term depends only on this narrow
// interface so the two packages don't form an import cycle (varstore
// depends on term for the Term type itself).
type Bindings interface {
	Lookup(VarId) (Term, bool)
}

// Resolve walks Var(v) -> bindings[v] until it reaches a non-variable
// or an unbound variable (I2: the result never has a bound top-level
// variable), then resolves the immediate constituents of compounds and
// applications. A Lambda's binder is left untouched; its body is
// resolved. Resolve(Resolve(t)) == Resolve(t) by construction: every
// branch below only ever unwraps bindings already present in b.
func Resolve(b Bindings, t Term) Term {
	for {
		v, ok := t.(Var)
		if !ok {
			break
		}
		next, bound := b.Lookup(VarId(v))
		if !bound {
			break
		}
		t = next
	}
	switch t := t.(type) {
	case *Compound:
		args := make([]Term, len(t.Args))
		for i, a := range t.Args {
			args[i] = Resolve(b, a)
		}
		return &Compound{Functor: t.Functor, Args: args}
	case *Lambda:
		return &Lambda{Param: t.Param, Body: Resolve(b, t.Body)}
	case *App:
		return &App{Fun: Resolve(b, t.Fun), Arg: Resolve(b, t.Arg)}
	default:
		return t
	}
}
