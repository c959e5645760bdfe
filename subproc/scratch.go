package subproc

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Scratch is a call-scoped working directory for tool side artifacts
// (preprocessed SAS files, sas_plan output, filtered plan copies). Each
// invocation gets its own Scratch; nothing is shared across calls.
type Scratch struct {
	Dir string

	// Keep leaves the directory on disk after Remove, for debugging a
	// misbehaving tool run.
	Keep bool
}

// NewScratch creates a uniquely named scratch directory under the system
// temp root.
func NewScratch() (*Scratch, error) {
	dir := filepath.Join(os.TempDir(), "pddlkit-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	return &Scratch{Dir: dir}, nil
}

// Path returns the absolute path of a file inside the scratch directory.
func (s *Scratch) Path(name string) string {
	return filepath.Join(s.Dir, name)
}

// CopyIn copies a host file into the scratch directory under the given name
// and returns its new path. Content is preserved byte for byte.
func (s *Scratch) CopyIn(src, name string) (string, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", src, err)
	}
	dst := s.Path(name)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", dst, err)
	}
	return dst, nil
}

// Remove deletes the scratch directory unless Keep is set. Safe to call on
// every exit path, including after a killed run.
func (s *Scratch) Remove() error {
	if s == nil || s.Keep {
		return nil
	}
	if err := os.RemoveAll(s.Dir); err != nil {
		return fmt.Errorf("remove scratch dir: %w", err)
	}
	return nil
}
