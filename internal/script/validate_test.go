package script

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_AcceptsWellFormedScript(t *testing.T) {
	s := &Script{
		Variables: []Variable{{Name: "limit", Initial: "2"}},
		Groups: []Group{
			{
				Name:     "sorted",
				Repeats:  1,
				Mode:     ModeAnd,
				ResultTo: "status",
				Commands: []Command{
					{Program: "/usr/bin/sort", PidTo: "sorter"},
					{Program: "/usr/bin/head", Args: []Argument{Literal("-n"), Ref("limit")}},
				},
			},
			{
				Repeats:  0,
				Commands: []Command{{Program: "/bin/echo", Args: []Argument{Ref("status"), Ref("sorter")}}},
			},
		},
	}

	require.NoError(t, s.Validate())
}

func TestValidate_LateBindingCountsAsDeclared(t *testing.T) {
	// $later is read by the first group but only bound by the second one.
	s := &Script{Groups: []Group{
		{Repeats: 1, Commands: []Command{{Program: "/bin/echo", Args: []Argument{Ref("later")}}}},
		{Repeats: 1, ResultTo: "later", Commands: []Command{{Program: "/bin/true"}}},
	}}

	require.NoError(t, s.Validate())
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	s := &Script{
		Variables: []Variable{{Name: "x"}, {Name: "x"}},
		Groups: []Group{
			{Name: "empty", Repeats: 1},
			{Name: "neg", Repeats: -1, Commands: []Command{{Program: "/bin/true"}}},
			{Name: "nomode", Repeats: 1, Commands: []Command{{Program: "/bin/true"}, {Program: "/bin/true"}}},
			{Name: "badref", Repeats: 1, Commands: []Command{{Program: "", Args: []Argument{Ref("ghost")}}}},
		},
	}

	err := s.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))

	msg := err.Error()
	assert.Contains(t, msg, `variable "x" declared twice`)
	assert.Contains(t, msg, "group empty: no commands")
	assert.Contains(t, msg, "group neg: repeat count -1 is negative")
	assert.Contains(t, msg, "group nomode: 2 commands need mode 'and' or 'or'")
	assert.Contains(t, msg, "group badref, command 0: empty program")
	assert.Contains(t, msg, "variable $ghost is never declared or bound")
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"":       ModeSingle,
		"single": ModeSingle,
		"and":    ModeAnd,
		"AND":    ModeAnd,
		"&&":     ModeAnd,
		" or ":   ModeOr,
		"||":     ModeOr,
	}
	for in, want := range cases {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMode("xor")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown group mode "xor"`)
}

func TestGroupLabel(t *testing.T) {
	named := Group{Name: "race"}
	anonymous := Group{}

	assert.Equal(t, "race", named.Label(3))
	assert.Equal(t, "#3", anonymous.Label(3))
}
