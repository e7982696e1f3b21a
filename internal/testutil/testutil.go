// Package testutil holds helpers shared by the package tests: a thread-safe
// output buffer, a logging context, system binary lookup, descriptor counting
// and a temporary script workspace.
package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/whoosh/internal/ctxlog"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing process and log output in
// tests. Competing processes write to it from separate copy goroutines.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Context returns a context carrying a debug logger that writes into the
// returned buffer. Set WHOOSH_TEST_LOGS=true to dump the logs after the test.
func Context(t *testing.T) (context.Context, *SafeBuffer) {
	t.Helper()

	logs := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	t.Cleanup(func() {
		if os.Getenv("WHOOSH_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})

	return ctxlog.WithLogger(context.Background(), logger), logs
}

// Program returns the absolute path of a system binary, skipping the test
// when it is not installed.
func Program(t *testing.T, name string) string {
	t.Helper()

	path, err := exec.LookPath(name)
	if err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	return abs
}

// OpenFDs counts the descriptors currently open in the test process. The
// test is skipped on systems without /proc/self/fd.
func OpenFDs(t *testing.T) int {
	t.Helper()

	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		t.Skipf("descriptor listing not available: %v", err)
	}
	// ReadDir's own descriptor is listed too, but it is counted every time.
	return len(entries)
}

// WriteFiles writes files (relative path -> content) below a fresh temporary
// directory and returns that directory.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}
