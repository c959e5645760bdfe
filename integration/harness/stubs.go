// Package harness holds helpers shared by the integration tests. The tests
// exercise the adapters end to end against stub tool executables, so the
// helpers here are mostly about putting scripts and fixtures on disk.
package harness

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteTool writes an executable shell script named name into its own temp
// directory and returns its path. body follows a "#!/bin/sh" shebang.
func WriteTool(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write tool stub %s: %v", name, err)
	}
	return path
}

// WriteFixture writes a fixture file into dir and returns its path.
func WriteFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}
