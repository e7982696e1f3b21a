package hclscript

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/whoosh/internal/script"
	"github.com/specialistvlad/whoosh/internal/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fsys, name, []byte(content), 0o644))
	}
	return fsys
}

func TestLoad_FullScript(t *testing.T) {
	ctx, _ := testutil.Context(t)
	fsys := memFS(t, map[string]string{"/sorted.hcl": `
variable "limit" {
  default = 2
}

variable "empty" {}

group "sorted" {
  mode      = "AND"
  result_to = "status"

  command "/usr/bin/printf" {
    args   = ["b\na\nc\n"]
    pid_to = "printer"
  }
  command "/usr/bin/sort" {}
  command "/usr/bin/head" {
    args = ["-n", var.limit]
  }
}

group "race" {
  repeat    = 3
  mode      = "or"
  run       = ["/bin/sleep 5 @ $slow", "/bin/echo 'two words' $limit"]
  result_to = "$winner"
}

group "never" {
  repeat = 0
  command "/bin/true" {
    args = [1, true]
  }
}
`})

	got, err := NewLoader(fsys).Load(ctx, "/sorted.hcl")
	require.NoError(t, err)

	want := &script.Script{
		Variables: []script.Variable{
			{Name: "limit", Initial: "2"},
			{Name: "empty", Initial: ""},
		},
		Groups: []script.Group{
			{
				Name:     "sorted",
				Repeats:  1,
				Mode:     script.ModeAnd,
				ResultTo: "status",
				Commands: []script.Command{
					{Program: "/usr/bin/printf", Args: []script.Argument{script.Literal("b\na\nc\n")}, PidTo: "printer"},
					{Program: "/usr/bin/sort"},
					{Program: "/usr/bin/head", Args: []script.Argument{script.Literal("-n"), script.Ref("limit")}},
				},
			},
			{
				Name:     "race",
				Repeats:  3,
				Mode:     script.ModeOr,
				ResultTo: "winner",
				Commands: []script.Command{
					{Program: "/bin/sleep", Args: []script.Argument{script.Literal("5")}, PidTo: "slow"},
					{Program: "/bin/echo", Args: []script.Argument{script.Literal("two words"), script.Ref("limit")}},
				},
			},
			{
				Name:     "never",
				Repeats:  0,
				Commands: []script.Command{{Program: "/bin/true", Args: []script.Argument{script.Literal("1"), script.Literal("true")}}},
			},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, got.Validate())
}

func TestLoad_DirectoryInLexicalOrder(t *testing.T) {
	ctx, _ := testutil.Context(t)
	fsys := memFS(t, map[string]string{
		"/scripts/20-second.hcl": `group "second" {
  command "/bin/true" {}
}`,
		"/scripts/10-first.hcl": `variable "x" {
  default = "v"
}
group "first" {
  command "/bin/true" {}
}`,
		"/scripts/notes.md": "not a script",
	})

	got, err := NewLoader(fsys).Load(ctx, "/scripts")
	require.NoError(t, err)

	require.Len(t, got.Groups, 2)
	assert.Equal(t, "first", got.Groups[0].Name)
	assert.Equal(t, "second", got.Groups[1].Name)
	assert.Equal(t, []script.Variable{{Name: "x", Initial: "v"}}, got.Variables)
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name:    "syntax error",
			src:     `group "g" {`,
			wantErr: "failed to parse HCL file",
		},
		{
			name:    "unknown attribute",
			src:     `group "g" { colour = "red" }`,
			wantErr: "failed to decode HCL file",
		},
		{
			name:    "unknown mode",
			src:     `group "g" { mode = "xor" }`,
			wantErr: `unknown group mode "xor"`,
		},
		{
			name: "run and command blocks together",
			src: `group "g" {
  run = ["/bin/true"]
  command "/bin/false" {}
}`,
			wantErr: "not both",
		},
		{
			name: "argument referencing something other than var",
			src: `group "g" {
  command "/bin/echo" { args = [local.x] }
}`,
			wantErr: "args of /bin/echo",
		},
		{
			name: "non-primitive argument",
			src: `group "g" {
  command "/bin/echo" { args = [["nested"]] }
}`,
			wantErr: "cannot be used as a string",
		},
		{
			name:    "pid binding without program",
			src:     `group "g" { run = ["@ $slow"] }`,
			wantErr: "missing program",
		},
		{
			name:    "pid binding without dollar",
			src:     `group "g" { run = ["/bin/sleep 1 @ slow"] }`,
			wantErr: "@ must be followed by $name",
		},
		{
			name:    "unterminated quote",
			src:     `group "g" { run = ["/bin/echo 'open"] }`,
			wantErr: "cannot split",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, _ := testutil.Context(t)
			fsys := memFS(t, map[string]string{"/s.hcl": tc.src})

			_, err := NewLoader(fsys).Load(ctx, "/s.hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad_EmptyDirectory(t *testing.T) {
	ctx, _ := testutil.Context(t)
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/empty", 0o755))

	_, err := NewLoader(fsys).Load(ctx, "/empty")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .hcl files found")
}

func TestParseRunLine(t *testing.T) {
	got, err := parseRunLine(`/bin/printf "%s\n" $greeting "a b" @ $printer`)
	require.NoError(t, err)

	want := script.Command{
		Program: "/bin/printf",
		Args:    []script.Argument{script.Literal(`%s\n`), script.Ref("greeting"), script.Literal("a b")},
		PidTo:   "printer",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseRunLine() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRunLine_EscapedDollar(t *testing.T) {
	got, err := parseRunLine(`/bin/echo $$HOME '$$PATH' $user`)
	require.NoError(t, err)

	want := script.Command{
		Program: "/bin/echo",
		Args:    []script.Argument{script.Literal("$HOME"), script.Literal("$PATH"), script.Ref("user")},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseRunLine() mismatch (-want +got):\n%s", diff)
	}

	_, err = parseRunLine(`/bin/sleep 1 @ $$slow`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "@ must be followed by $name")
}
