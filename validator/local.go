package validator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"pddlkit/extract"
	"pddlkit/journal"
	"pddlkit/plan"
	"pddlkit/subproc"
	"pddlkit/tool"
)

// LocalVAL runs a local build of the VAL validate binary. The caller hands
// in the resolved executable path.
type LocalVAL struct {
	// Exec is the path to the validate binary.
	Exec string
	// Profile overrides the builtin VAL profile.
	Profile *tool.Profile
	// Journal, when set, records every invocation.
	Journal *journal.Journal
}

// NewLocalVAL returns an adapter for the validate binary at execPath.
func NewLocalVAL(execPath string) *LocalVAL {
	return &LocalVAL{Exec: execPath}
}

func (a *LocalVAL) profile() *tool.Profile {
	if a.Profile != nil {
		return a.Profile
	}
	return tool.VAL()
}

// Validate checks a plan against a domain and problem. problemPath and
// planPath may be empty to only check what precedes them, matching the
// tool's own argument convention. The plan file is fed to the tool through
// a comment-stripped scratch copy; the caller's file is not modified.
func (a *LocalVAL) Validate(ctx context.Context, domainPath, problemPath, planPath string, opts Options) (extract.Verdict, error) {
	if a.Exec == "" {
		return extract.Verdict{}, errors.New("validator executable path is required")
	}
	domain, err := filepath.Abs(domainPath)
	if err != nil {
		return extract.Verdict{}, fmt.Errorf("resolve domain path: %w", err)
	}

	scratch, err := subproc.NewScratch()
	if err != nil {
		return extract.Verdict{}, err
	}
	scratch.Keep = opts.KeepScratch
	defer func() {
		_ = scratch.Remove()
	}()

	args := []string{"-v", domain}
	if problemPath != "" {
		problem, err := filepath.Abs(problemPath)
		if err != nil {
			return extract.Verdict{}, fmt.Errorf("resolve problem path: %w", err)
		}
		args = append(args, problem)
	}
	if planPath != "" {
		if problemPath == "" {
			return extract.Verdict{}, errors.New("plan validation requires a problem file")
		}
		filtered := scratch.Path("actions")
		if err := plan.FilterComments(planPath, filtered); err != nil {
			return extract.Verdict{}, err
		}
		args = append(args, filtered)
	}

	inv := subproc.Invocation{
		Path:    a.Exec,
		Args:    args,
		Dir:     scratch.Dir,
		Timeout: opts.timeout(),
	}
	res, err := subproc.Run(ctx, inv)
	if err != nil {
		return extract.Verdict{}, err
	}
	if opts.RemoveInputs {
		_ = os.Remove(domainPath)
		if problemPath != "" {
			_ = os.Remove(problemPath)
		}
		if planPath != "" {
			_ = os.Remove(planPath)
		}
	}

	p := a.profile()
	record(a.Journal, p.Name, args, res, p)
	return interpret(res, p, opts, planPath != "")
}
