package script

import (
	"errors"
	"fmt"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid script")

// Declared returns the set of slot names the script can read: declared
// variables plus every pid_to and result_to binding, wherever it appears.
// Bindings made by later groups count, because reading a slot before it is
// written yields its initial (empty) value.
func (s *Script) Declared() map[string]struct{} {
	names := make(map[string]struct{}, len(s.Variables))
	for _, v := range s.Variables {
		names[v.Name] = struct{}{}
	}
	for _, g := range s.Groups {
		if g.ResultTo != "" {
			names[g.ResultTo] = struct{}{}
		}
		for _, c := range g.Commands {
			if c.PidTo != "" {
				names[c.PidTo] = struct{}{}
			}
		}
	}
	return names
}

// Validate checks the structural invariants the runner relies on. All
// problems are reported at once.
func (s *Script) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	seen := make(map[string]struct{}, len(s.Variables))
	for _, v := range s.Variables {
		if v.Name == "" {
			fail("variable with empty name")
			continue
		}
		if _, dup := seen[v.Name]; dup {
			fail("variable %q declared twice", v.Name)
		}
		seen[v.Name] = struct{}{}
	}

	declared := s.Declared()
	for gi := range s.Groups {
		g := &s.Groups[gi]
		label := g.Label(gi)

		if g.Repeats < 0 {
			fail("group %s: repeat count %d is negative", label, g.Repeats)
		}
		switch n := len(g.Commands); {
		case n == 0:
			fail("group %s: no commands", label)
		case n > 1 && g.Mode == ModeSingle:
			fail("group %s: %d commands need mode 'and' or 'or'", label, n)
		}

		for ci, c := range g.Commands {
			if c.Program == "" {
				fail("group %s, command %d: empty program", label, ci)
			}
			for _, a := range c.Args {
				if a.Kind != ArgVariable {
					continue
				}
				if _, ok := declared[a.Var]; !ok {
					fail("group %s, command %d: variable $%s is never declared or bound", label, ci, a.Var)
				}
			}
		}
	}

	return errors.Join(errs...)
}
