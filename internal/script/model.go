package script

import (
	"context"
	"fmt"
	"strings"
)

// Loader is the interface for a format-specific script loader.
type Loader interface {
	// Load reads the script found at path (a file or a directory) and
	// translates it into the format-agnostic model.
	Load(ctx context.Context, path string) (*Script, error)
}

// Script is an ordered sequence of groups together with the variables the
// script declares up front.
type Script struct {
	Variables []Variable
	Groups    []Group
}

// Variable declares a store slot and the value it holds before any group runs.
type Variable struct {
	Name    string
	Initial string
}

// Mode selects how the commands of a group are connected.
type Mode int

const (
	// ModeSingle is implied for groups with exactly one command.
	ModeSingle Mode = iota
	// ModeAnd connects the commands into a pipeline.
	ModeAnd
	// ModeOr races the commands against each other.
	ModeOr
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeSingle:
		return "single"
	case ModeAnd:
		return "and"
	case ModeOr:
		return "or"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a mode keyword into a Mode. The empty string maps to
// ModeSingle.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "single":
		return ModeSingle, nil
	case "and", "&&":
		return ModeAnd, nil
	case "or", "||":
		return ModeOr, nil
	default:
		return ModeSingle, fmt.Errorf("unknown group mode %q: must be 'and' or 'or'", s)
	}
}

// Group is a repeatable unit of execution.
type Group struct {
	// Name is informational; it shows up in logs and plans.
	Name     string
	Repeats  int
	Mode     Mode
	Commands []Command
	// ResultTo names the slot that receives the group's exit outcome. Empty
	// means no binding.
	ResultTo string
}

// Label returns the group's name, or its position when it has none.
func (g *Group) Label(index int) string {
	if g.Name != "" {
		return g.Name
	}
	return fmt.Sprintf("#%d", index)
}

// Command is a single program invocation.
type Command struct {
	Program string
	Args    []Argument
	// PidTo names the slot that receives the process id. Empty means no binding.
	PidTo string
}

// ArgKind tags an Argument.
type ArgKind int

const (
	ArgLiteral ArgKind = iota
	ArgVariable
)

// Argument is either a literal string or a reference to a store slot. It is
// resolved only when its command is launched.
type Argument struct {
	Kind    ArgKind
	Literal string
	Var     string
}

// Literal builds a literal argument.
func Literal(s string) Argument {
	return Argument{Kind: ArgLiteral, Literal: s}
}

// Ref builds a variable reference argument.
func Ref(name string) Argument {
	return Argument{Kind: ArgVariable, Var: name}
}

// String renders the argument the way plans and logs show it.
func (a Argument) String() string {
	if a.Kind == ArgVariable {
		return "$" + a.Var
	}
	return a.Literal
}
