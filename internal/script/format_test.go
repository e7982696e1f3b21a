package script

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
		goldie.WithTestNameForDir(true),
	)

	cases := map[string]*Script{
		"pipeline": {
			Variables: []Variable{
				{Name: "limit", Initial: "2"},
				{Name: "greeting", Initial: "hello world"},
			},
			Groups: []Group{{
				Name:     "sorted",
				Repeats:  1,
				Mode:     ModeAnd,
				ResultTo: "status",
				Commands: []Command{
					{Program: "/usr/bin/printf", Args: []Argument{Literal("b\na\nc\n")}, PidTo: "printer"},
					{Program: "/usr/bin/sort"},
					{Program: "/usr/bin/head", Args: []Argument{Literal("-n"), Ref("limit")}},
				},
			}},
		},
		"race": {
			Groups: []Group{
				{
					Name:     "race",
					Repeats:  3,
					Mode:     ModeOr,
					ResultTo: "winner",
					Commands: []Command{
						{Program: "/bin/sleep", Args: []Argument{Literal("5")}, PidTo: "slow"},
						{Program: "/bin/sleep", Args: []Argument{Literal("0")}, PidTo: "fast"},
					},
				},
				{
					Repeats: 1,
					// A mode on a one-command group is ignored.
					Mode: ModeOr,
					Commands: []Command{{
						Program: "/bin/echo",
						Args:    []Argument{Literal(""), Literal("a b"), Literal("cost$"), Ref("winner")},
					}},
				},
			},
		},
	}

	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Format(&buf, s))
			g.Assert(t, name, buf.Bytes())
		})
	}
}

func TestQuoteWord(t *testing.T) {
	assert.Equal(t, "-n", quoteWord("-n"))
	assert.Equal(t, "/usr/bin/head", quoteWord("/usr/bin/head"))
	assert.Equal(t, `""`, quoteWord(""))
	assert.Equal(t, `"a b"`, quoteWord("a b"))
	assert.Equal(t, `"@"`, quoteWord("@"))
	assert.Equal(t, `"tab\there"`, quoteWord("tab\there"))
}
