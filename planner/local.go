package planner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/kballard/go-shellquote"

	"pddlkit/extract"
	"pddlkit/journal"
	"pddlkit/plan"
	"pddlkit/subproc"
	"pddlkit/tool"
)

// DefaultAlias is the search configuration used when none is given. It is
// an optimal configuration, so plan_cost statistics are meaningful.
const DefaultAlias = "--alias seq-opt-lmcut"

// planArtifact is the file name the solver writes its plan to in its
// working directory.
const planArtifact = "sas_plan"

// LocalFastDownward runs a Fast Downward checkout on the host. The caller
// hands in the resolved path to the fast-downward.py driver; obtaining and
// compiling the tool is a provisioning concern outside this package.
type LocalFastDownward struct {
	// Exec is the path to fast-downward.py.
	Exec string
	// Alias selects the search configuration, e.g. "--alias lama-first".
	// Empty means DefaultAlias.
	Alias string
	// Profile overrides the builtin Fast Downward profile, for driver
	// versions with a different output vocabulary.
	Profile *tool.Profile
	// Journal, when set, records every invocation.
	Journal *journal.Journal

	stats stats
}

// NewLocalFastDownward returns an adapter for the driver script at execPath.
func NewLocalFastDownward(execPath string) *LocalFastDownward {
	return &LocalFastDownward{Exec: execPath}
}

func (a *LocalFastDownward) profile() *tool.Profile {
	if a.Profile != nil {
		return a.Profile
	}
	return tool.FastDownward()
}

func (a *LocalFastDownward) alias() string {
	if a.Alias != "" {
		return a.Alias
	}
	return DefaultAlias
}

// PlanFromPDDL translates and solves a domain/problem pair. The solver runs
// inside a call-scoped scratch directory so its intermediate SAS file and
// plan artifact never collide across concurrent calls.
func (a *LocalFastDownward) PlanFromPDDL(ctx context.Context, domainPath, problemPath string, opts Options) (plan.Plan, error) {
	if a.Exec == "" {
		return nil, errors.New("solver executable path is required")
	}
	domain, err := filepath.Abs(domainPath)
	if err != nil {
		return nil, fmt.Errorf("resolve domain path: %w", err)
	}
	problem, err := filepath.Abs(problemPath)
	if err != nil {
		return nil, fmt.Errorf("resolve problem path: %w", err)
	}

	scratch, err := subproc.NewScratch()
	if err != nil {
		return nil, err
	}
	scratch.Keep = opts.KeepScratch
	defer func() {
		_ = scratch.Remove()
	}()

	args, err := a.buildArgs(opts, "--sas-file", scratch.Path("output.sas"), domain, problem)
	if err != nil {
		return nil, err
	}
	return a.run(ctx, args, scratch, opts, domain, problem)
}

// PlanFromSAS solves a preprocessed SAS task directly.
func (a *LocalFastDownward) PlanFromSAS(ctx context.Context, sasPath string, opts Options) (plan.Plan, error) {
	if a.Exec == "" {
		return nil, errors.New("solver executable path is required")
	}
	sas, err := filepath.Abs(sasPath)
	if err != nil {
		return nil, fmt.Errorf("resolve sas path: %w", err)
	}

	scratch, err := subproc.NewScratch()
	if err != nil {
		return nil, err
	}
	scratch.Keep = opts.KeepScratch
	defer func() {
		_ = scratch.Remove()
	}()

	args, err := a.buildArgs(opts, sas)
	if err != nil {
		return nil, err
	}
	return a.run(ctx, args, scratch, opts)
}

func (a *LocalFastDownward) buildArgs(opts Options, tail ...string) ([]string, error) {
	args, err := shellquote.Split(a.alias())
	if err != nil {
		return nil, fmt.Errorf("parse alias flags: %w", err)
	}
	args = append(args, tail...)
	if opts.ExtraFlags != "" {
		extra, err := shellquote.Split(opts.ExtraFlags)
		if err != nil {
			return nil, fmt.Errorf("parse extra flags: %w", err)
		}
		args = append(args, extra...)
	}
	return args, nil
}

func (a *LocalFastDownward) run(ctx context.Context, args []string, scratch *subproc.Scratch, opts Options, inputs ...string) (plan.Plan, error) {
	inv := subproc.Invocation{
		Path:    a.Exec,
		Args:    args,
		Dir:     scratch.Dir,
		Timeout: opts.timeout(),
	}
	res, err := subproc.Run(ctx, inv)
	if err != nil {
		return nil, err
	}
	removeInputs(opts, inputs...)

	p := a.profile()
	record(a.Journal, p.Name, args, res, p, extract.Statistics(res.Output(), p.Stats))
	return interpret(res, p, opts, scratch.Path(planArtifact), &a.stats)
}

// Statistics returns the snapshot from the most recent planning call.
func (a *LocalFastDownward) Statistics() extract.Snapshot {
	return a.stats.get()
}

// ResetStatistics clears the retained snapshot.
func (a *LocalFastDownward) ResetStatistics() {
	a.stats.reset()
}
