// This file contains the HCL schema structs decoded with gohcl.

package hclscript

import "github.com/hashicorp/hcl/v2"

// fileRoot is used to decode all top-level blocks of a script file.
type fileRoot struct {
	Variables []*Variable `hcl:"variable,block"`
	Groups    []*Group    `hcl:"group,block"`
}

// Variable is a `variable "name" { default = ... }` block.
type Variable struct {
	Name    string         `hcl:"name,label"`
	Default hcl.Expression `hcl:"default,optional"`
}

// Group is a `group "name" { ... }` block. Its commands are given either as
// command blocks or through the run shorthand.
type Group struct {
	Name     string     `hcl:"name,label"`
	Repeat   *int       `hcl:"repeat,optional"`
	Mode     string     `hcl:"mode,optional"`
	ResultTo string     `hcl:"result_to,optional"`
	Run      []string   `hcl:"run,optional"`
	Commands []*Command `hcl:"command,block"`
	DefRange hcl.Range  `hcl:",def_range"`
}

// Command is a `command "/path/to/program" { ... }` block.
type Command struct {
	Program string         `hcl:"program,label"`
	Args    hcl.Expression `hcl:"args,optional"`
	PidTo   string         `hcl:"pid_to,optional"`
}
