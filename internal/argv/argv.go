// Package argv turns a script command into the argument vector used to
// launch its process.
package argv

import (
	"fmt"

	"github.com/specialistvlad/whoosh/internal/script"
)

// Source is the read side of the variable store.
type Source interface {
	Get(name string) (string, error)
}

// Resolve returns [program, arg1, ..., argN]. Literals pass through verbatim
// and variable references take the value the source holds right now, so the
// vector must be rebuilt for every launch. The returned slice is owned by the
// caller.
func Resolve(cmd *script.Command, src Source) ([]string, error) {
	out := make([]string, 0, len(cmd.Args)+1)
	out = append(out, cmd.Program)

	for i, a := range cmd.Args {
		switch a.Kind {
		case script.ArgLiteral:
			out = append(out, a.Literal)
		case script.ArgVariable:
			v, err := src.Get(a.Var)
			if err != nil {
				return nil, fmt.Errorf("argument %d of %s: %w", i+1, cmd.Program, err)
			}
			out = append(out, v)
		default:
			return nil, fmt.Errorf("argument %d of %s: unknown kind %d", i+1, cmd.Program, a.Kind)
		}
	}

	return out, nil
}
