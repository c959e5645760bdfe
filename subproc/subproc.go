// Package subproc spawns external tool processes with bounded wall-clock
// runtime and guaranteed termination on every exit path.
package subproc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"
)

// Invocation describes one subprocess launch. It is immutable once built;
// every call to Run takes its own Invocation.
type Invocation struct {
	Path    string
	Args    []string
	Dir     string
	Env     map[string]string
	Timeout time.Duration
}

// RunResult captures what a finished (or killed) subprocess left behind.
// ExitCode is nil when the process was killed before exiting on its own.
type RunResult struct {
	ExitCode  *int
	Stdout    string
	Stderr    string
	Elapsed   time.Duration
	WasKilled bool
}

// Output returns stdout and stderr joined, the way the underlying planning
// tools are usually read (they interleave diagnostics across both streams).
func (r *RunResult) Output() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}

// Run executes the invocation and always reaps the subprocess before
// returning. Timeout and context cancellation share one termination path:
// the whole process group is killed and WasKilled is set.
func Run(ctx context.Context, inv Invocation) (*RunResult, error) {
	if inv.Path == "" {
		return nil, errors.New("invocation path is required")
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if inv.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	cmd := exec.Command(inv.Path, inv.Args...)
	if inv.Dir != "" {
		dir, err := filepath.Abs(inv.Dir)
		if err != nil {
			return nil, fmt.Errorf("resolve workdir: %w", err)
		}
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("stat workdir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("workdir is not a directory: %s", dir)
		}
		cmd.Dir = dir
	}
	cmd.Env = mergeEnv(os.Environ(), inv.Env)

	// Own process group so the tool's children die with it.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", inv.Path, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	result := &RunResult{}
	select {
	case <-runCtx.Done():
		if cmd.Process != nil {
			_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
		<-done // reap
		result.WasKilled = true
	case waitErr := <-done:
		if waitErr != nil {
			var exitErr *exec.ExitError
			if !errors.As(waitErr, &exitErr) {
				return nil, fmt.Errorf("wait %s: %w", inv.Path, waitErr)
			}
			// A signal death we did not cause leaves ExitCode nil and
			// WasKilled false; only our own termination path sets WasKilled.
			if status, ok := exitErr.Sys().(syscall.WaitStatus); !ok || !status.Signaled() {
				code := exitErr.ExitCode()
				result.ExitCode = &code
			}
		} else {
			code := 0
			result.ExitCode = &code
		}
	}

	result.Elapsed = time.Since(start)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	return result, nil
}

func mergeEnv(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return base
	}
	merged := make([]string, 0, len(base)+len(overrides))
	seen := make(map[string]struct{}, len(overrides))
	for key := range overrides {
		seen[key] = struct{}{}
	}
	for _, entry := range base {
		key := entry
		if idx := indexEnvKey(entry); idx >= 0 {
			key = entry[:idx]
		}
		if _, ok := seen[key]; ok {
			continue
		}
		merged = append(merged, entry)
	}
	for key, value := range overrides {
		merged = append(merged, fmt.Sprintf("%s=%s", key, value))
	}
	return merged
}

func indexEnvKey(entry string) int {
	for i := 0; i < len(entry); i++ {
		if entry[i] == '=' {
			return i
		}
	}
	return -1
}
