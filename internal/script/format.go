package script

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// Format writes a human-readable plan of the script to w.
func Format(w io.Writer, s *Script) error {
	bw := bufio.NewWriter(w)

	for _, v := range s.Variables {
		bw.WriteString("var " + v.Name + " = " + strconv.Quote(v.Initial) + "\n")
	}
	if len(s.Variables) > 0 && len(s.Groups) > 0 {
		bw.WriteString("\n")
	}

	for gi := range s.Groups {
		g := &s.Groups[gi]
		if gi > 0 {
			bw.WriteString("\n")
		}

		mode := g.Mode
		if len(g.Commands) == 1 {
			mode = ModeSingle
		}
		bw.WriteString("group " + g.Label(gi) + ": " + mode.String() + " x" + strconv.Itoa(g.Repeats))
		if g.ResultTo != "" {
			bw.WriteString(" -> $" + g.ResultTo)
		}
		bw.WriteString("\n")

		for _, c := range g.Commands {
			bw.WriteString("  " + quoteWord(c.Program))
			for _, a := range c.Args {
				if a.Kind == ArgVariable {
					bw.WriteString(" $" + a.Var)
				} else {
					bw.WriteString(" " + quoteWord(a.Literal))
				}
			}
			if c.PidTo != "" {
				bw.WriteString(" @ $" + c.PidTo)
			}
			bw.WriteString("\n")
		}
	}

	return bw.Flush()
}

// quoteWord leaves plain words bare and Go-quotes anything a reader could
// mistake for plan syntax.
func quoteWord(s string) string {
	if s == "" {
		return `""`
	}
	needs := strings.ContainsFunc(s, func(r rune) bool {
		switch r {
		case '"', '\'', '\\', '$', '@', '#':
			return true
		}
		return unicode.IsSpace(r) || !unicode.IsPrint(r)
	})
	if needs {
		return strconv.Quote(s)
	}
	return s
}
