package clause

import (
	"fmt"
	"strings"

	"github.com/clausewam/wam/internal/term"
)

// keySeparator joins per-argument encodings in a composite index key.
// It can occur inside Str contents or a Compound's functor, but every
// such variable-length component is prefixed with its own length, so a
// separator byte inside the payload can never be mistaken for the next
// field.
const keySeparator = "\x1f"

// EncodeKey returns the canonical index-key encoding of a single
// resolved term, per the data model's IndexKey definition: each
// encoded argument is prefixed with its variant tag and, for
// variable-length variants, a length, making the encoding injective
// over the shapes clauses actually index on (constants, strings, and
// compound functor/arity — the shapes a clause's first instruction can
// introduce).
func EncodeKey(t term.Term) string {
	switch t := t.(type) {
	case term.Const:
		return fmt.Sprintf("c:%d", int64(t))
	case term.Str:
		return fmt.Sprintf("s:%d:%s", len(t), string(t))
	case term.Var:
		return fmt.Sprintf("v:%d", uint64(t))
	case *term.Compound:
		return fmt.Sprintf("p:%d:%s/%d", len(t.Functor), t.Functor, len(t.Args))
	case *term.Lambda:
		return "l"
	case *term.App:
		return "a"
	default:
		return "?"
	}
}

// EncodeCompositeKey concatenates the per-argument encodings of ts
// with the reserved separator, for MultiIndexedCall's composite keys.
func EncodeCompositeKey(ts ...term.Term) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = EncodeKey(t)
	}
	return strings.Join(parts, keySeparator)
}
