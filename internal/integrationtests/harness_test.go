package integrationtests

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/specialistvlad/whoosh/internal/app"
	"github.com/specialistvlad/whoosh/internal/hclscript"
	"github.com/specialistvlad/whoosh/internal/proc"
	"github.com/specialistvlad/whoosh/internal/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Stdout    string
	LogOutput string
	Err       error
	App       *app.App
}

// Var returns the final value of a script variable.
func (r *HarnessResult) Var(t *testing.T, name string) string {
	t.Helper()
	v, err := r.App.Store().Get(name)
	require.NoError(t, err)
	return v
}

// programs lists the system binaries scripts may refer to as {name}.
var programs = []string{"printf", "sort", "head", "tr", "sleep", "true", "false", "sh", "cat"}

// runScript writes files below a temporary directory, expands {program}
// placeholders to absolute paths and runs the directory as one script.
func runScript(ctx context.Context, t *testing.T, files map[string]string) *HarnessResult {
	t.Helper()

	expanded := make(map[string]string, len(files))
	for name, content := range files {
		for _, p := range programs {
			placeholder := "{" + p + "}"
			if strings.Contains(content, placeholder) {
				content = strings.ReplaceAll(content, placeholder, testutil.Program(t, p))
			}
		}
		expanded[name] = content
	}
	dir := testutil.WriteFiles(t, expanded)

	cfg, err := app.NewConfig(app.Config{
		ScriptPath: dir,
		LogLevel:   "debug",
		LogFormat:  "text",
	})
	require.NoError(t, err)

	stdout, logs := &testutil.SafeBuffer{}, &testutil.SafeBuffer{}
	testApp := app.NewApp(proc.Streams{Stdout: stdout, Stderr: logs}, cfg, hclscript.NewLoader(afero.NewOsFs()))
	runErr := testApp.Run(ctx)

	if os.Getenv("WHOOSH_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
	}

	return &HarnessResult{
		Stdout:    stdout.String(),
		LogOutput: logs.String(),
		Err:       runErr,
		App:       testApp,
	}
}

// assertGroupFinished checks the log output to confirm that a group ran all
// its repetitions.
func assertGroupFinished(t *testing.T, result *HarnessResult, group string) {
	t.Helper()

	want := fmt.Sprintf("group=%s", group)
	for _, line := range strings.Split(result.LogOutput, "\n") {
		if strings.Contains(line, `msg="Group finished."`) && strings.Contains(line, want) {
			return
		}
	}
	t.Errorf("expected group %q to finish, but no matching log line was found", group)
}
