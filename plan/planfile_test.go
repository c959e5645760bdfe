package plan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteAndReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sas_plan")
	p := Plan{
		{Name: "pick-up", Args: []string{"a"}},
		{Name: "stack", Args: []string{"a", "b"}},
	}

	diff, err := WriteFile(path, p)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if diff != "" {
		t.Fatalf("diff = %q, want empty for a fresh file", diff)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.String() != p.String() {
		t.Fatalf("read plan = %q, want %q", got.String(), p.String())
	}
}

func TestWriteFileReportsOverwriteDiff(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sas_plan")
	if _, err := WriteFile(path, Plan{{Name: "pick-up", Args: []string{"a"}}}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	diff, err := WriteFile(path, Plan{{Name: "pick-up", Args: []string{"b"}}})
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if !strings.Contains(diff, "-(pick-up a)") || !strings.Contains(diff, "+(pick-up b)") {
		t.Fatalf("diff = %q, want unified diff of the replacement", diff)
	}
}

func TestWriteFileIdenticalContentNoDiff(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sas_plan")
	p := Plan{{Name: "stack", Args: []string{"a", "b"}}}
	if _, err := WriteFile(path, p); err != nil {
		t.Fatal(err)
	}
	diff, err := WriteFile(path, p)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(diff) != "" {
		t.Fatalf("diff = %q, want empty for identical content", diff)
	}
}

func TestFilterComments(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "plan.txt")
	content := "; header\n(pick-up a)\n\n(stack a b)\n; cost = 2 (unit cost)\n"
	if err := os.WriteFile(src, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(dir, "actions")
	if err := FilterComments(src, dst); err != nil {
		t.Fatalf("FilterComments: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if want := "(pick-up a)\n(stack a b)\n"; string(got) != want {
		t.Fatalf("filtered = %q, want %q", got, want)
	}

	// The source file must be preserved byte for byte.
	orig, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}
	if string(orig) != content {
		t.Fatalf("source changed: %q", orig)
	}
}
