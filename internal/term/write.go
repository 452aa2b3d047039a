package term

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Names maps a VarId to the human-readable name it was introduced
// with, for diagnostics and `write/1` output only; it has no bearing
// on unification or any other semantics.
type Names map[VarId]string

// Write renders the canonical textual form of t (already resolved) to
// w, following the printing rules in the data model: Const as decimal,
// Str unquoted, Var by its recorded name or _G<id>, Compound as
// f(a1,...,an), Lambda as λp.b, App as (f a).
func Write(w io.Writer, t Term, names Names) error {
	_, err := io.WriteString(w, Render(t, names))
	return err
}

// Render returns the canonical textual form of t as a string.
func Render(t Term, names Names) string {
	var sb strings.Builder
	render(&sb, t, names)
	return sb.String()
}

func render(sb *strings.Builder, t Term, names Names) {
	switch t := t.(type) {
	case Const:
		sb.WriteString(strconv.FormatInt(int64(t), 10))
	case Str:
		sb.WriteString(string(t))
	case Var:
		if name, ok := names[VarId(t)]; ok && name != "" {
			sb.WriteString(name)
			return
		}
		fmt.Fprintf(sb, "_G%d", uint64(t))
	case *Compound:
		sb.WriteString(t.Functor)
		sb.WriteByte('(')
		for i, a := range t.Args {
			if i > 0 {
				sb.WriteByte(',')
			}
			render(sb, a, names)
		}
		sb.WriteByte(')')
	case *Lambda:
		sb.WriteString("λ")
		render(sb, Var(t.Param), names)
		sb.WriteByte('.')
		render(sb, t.Body, names)
	case *App:
		sb.WriteByte('(')
		render(sb, t.Fun, names)
		sb.WriteByte(' ')
		render(sb, t.Arg, names)
		sb.WriteByte(')')
	default:
		fmt.Fprintf(sb, "%v", t)
	}
}
