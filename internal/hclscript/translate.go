// This file translates the HCL schema structs into the format-agnostic
// script model.

package hclscript

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anmitsu/go-shlex"
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/whoosh/internal/ctxlog"
	"github.com/specialistvlad/whoosh/internal/script"
)

// translateVariable converts a variable block. A missing default declares
// an empty slot.
func translateVariable(ctx context.Context, v *Variable) (script.Variable, error) {
	out := script.Variable{Name: v.Name}
	if !isExprDefined(ctx, v.Default, "default") {
		return out, nil
	}

	initial, err := literalString(v.Default)
	if err != nil {
		return out, fmt.Errorf("invalid default for variable %q: %w", v.Name, err)
	}
	out.Initial = initial
	return out, nil
}

// translateGroup converts a group block and its commands.
func translateGroup(ctx context.Context, g *Group) (script.Group, error) {
	logger := ctxlog.FromContext(ctx).With("group", g.Name)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Translating HCL group to script model.")

	mode, err := script.ParseMode(g.Mode)
	if err != nil {
		return script.Group{}, fmt.Errorf("%s: group %q: %w", g.DefRange, g.Name, err)
	}

	out := script.Group{
		Name:     g.Name,
		Repeats:  1,
		Mode:     mode,
		ResultTo: slotName(g.ResultTo),
	}
	if g.Repeat != nil {
		out.Repeats = *g.Repeat
	}

	if len(g.Run) > 0 && len(g.Commands) > 0 {
		return script.Group{}, fmt.Errorf("%s: group %q: use either command blocks or run, not both", g.DefRange, g.Name)
	}

	for i, c := range g.Commands {
		cmd, err := translateCommand(ctx, c)
		if err != nil {
			return script.Group{}, fmt.Errorf("group %q, command %d: %w", g.Name, i, err)
		}
		out.Commands = append(out.Commands, cmd)
	}
	for i, line := range g.Run {
		cmd, err := parseRunLine(line)
		if err != nil {
			return script.Group{}, fmt.Errorf("group %q, run %d: %w", g.Name, i, err)
		}
		out.Commands = append(out.Commands, cmd)
	}

	logger.Debug("Group translated.", "mode", out.Mode, "repeats", out.Repeats, "commands", len(out.Commands))
	return out, nil
}

// translateCommand converts a command block. Every element of args is either
// a primitive literal or a `var.<name>` reference.
func translateCommand(ctx context.Context, c *Command) (script.Command, error) {
	out := script.Command{Program: c.Program, PidTo: slotName(c.PidTo)}
	if !isExprDefined(ctx, c.Args, "args") {
		return out, nil
	}

	elems, diags := hcl.ExprList(c.Args)
	if diags.HasErrors() {
		return out, fmt.Errorf("args of %s: %w", c.Program, diags)
	}
	for _, elem := range elems {
		if name, ok := varReference(elem); ok {
			out.Args = append(out.Args, script.Ref(name))
			continue
		}
		lit, err := literalString(elem)
		if err != nil {
			return out, fmt.Errorf("args of %s: %w", c.Program, err)
		}
		out.Args = append(out.Args, script.Literal(lit))
	}
	return out, nil
}

// parseRunLine converts one line of the run shorthand. The line is split
// with POSIX shell quoting rules; `$name` words are variable references and
// a trailing `@ $name` binds the pid.
//
// Quotes are gone once a line is split, so quoting does not stop a `$name`
// word from being a reference. A literal word starting with `$` is written
// with a doubled dollar: `$$HOME` passes `$HOME`.
func parseRunLine(line string) (script.Command, error) {
	words, err := shlex.Split(line, true)
	if err != nil {
		return script.Command{}, fmt.Errorf("cannot split %q: %w", line, err)
	}
	if len(words) == 0 {
		return script.Command{}, errors.New("empty command line")
	}

	var out script.Command
	if n := len(words); n >= 2 && words[n-2] == "@" {
		name, ok := reference(words[n-1])
		if !ok {
			return script.Command{}, fmt.Errorf("%q: @ must be followed by $name", line)
		}
		out.PidTo = name
		words = words[:n-2]
	}
	if len(words) == 0 {
		return script.Command{}, fmt.Errorf("%q: missing program", line)
	}

	out.Program = words[0]
	for _, w := range words[1:] {
		if lit, ok := strings.CutPrefix(w, "$$"); ok {
			out.Args = append(out.Args, script.Literal("$"+lit))
			continue
		}
		if name, ok := reference(w); ok {
			out.Args = append(out.Args, script.Ref(name))
			continue
		}
		out.Args = append(out.Args, script.Literal(w))
	}
	return out, nil
}

// reference reports whether a shorthand word has the form $name.
func reference(word string) (string, bool) {
	name, ok := strings.CutPrefix(word, "$")
	if !ok || name == "" || strings.HasPrefix(name, "$") {
		return "", false
	}
	return name, true
}
