// Package planner runs a classical-planning solver as a subprocess and
// turns its reply into a plan or a classified failure. Two backends share
// the contract: a local Fast Downward checkout and the aibasel/downward
// container image. They differ only in how the invocation is built; all
// classification and extraction is shared.
package planner

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"pddlkit/extract"
	"pddlkit/journal"
	"pddlkit/plan"
	"pddlkit/subproc"
	"pddlkit/tool"
)

// Planner is the adapter contract. Statistics reflect the most recent
// planning call on this instance and are replaced wholesale per call.
type Planner interface {
	// PlanFromPDDL solves the task described by a domain and problem file.
	PlanFromPDDL(ctx context.Context, domainPath, problemPath string, opts Options) (plan.Plan, error)
	// PlanFromSAS solves a preprocessed task, bypassing translation.
	PlanFromSAS(ctx context.Context, sasPath string, opts Options) (plan.Plan, error)
	Statistics() extract.Snapshot
	ResetStatistics()
}

// DefaultTimeout bounds a planning call when Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Options configure one planning call.
type Options struct {
	// Horizon is the maximum accepted plan length; 0 means unbounded. A
	// found plan longer than the horizon is reported as no solution, since
	// the caller's remedy is the same: retry with a larger bound.
	Horizon int
	// Timeout is the wall-clock budget from spawn to exit.
	Timeout time.Duration
	// RemoveInputs deletes the input files after the run.
	RemoveInputs bool
	// KeepScratch leaves the call's scratch directory on disk for
	// debugging.
	KeepScratch bool
	// ExtraFlags are appended verbatim to the solver argument vector,
	// split with shell quoting rules.
	ExtraFlags string
}

func (o Options) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return DefaultTimeout
}

// stats is the per-adapter snapshot holder. Assignment is the only state
// shared across calls, guarded so concurrent calls on one instance cannot
// interleave a torn snapshot.
type stats struct {
	mu   sync.Mutex
	snap extract.Snapshot
}

func (s *stats) set(snap extract.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

func (s *stats) get() extract.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return extract.Snapshot{}
	}
	return s.snap.Clone()
}

func (s *stats) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = nil
}

// interpret converts a classified run into the adapter's result: a plan on
// success, a typed failure otherwise. planPath, when non-empty, names the
// side artifact file the solver writes its plan to; it takes precedence over
// scanning the log because the artifact syntax is stable across versions.
func interpret(res *subproc.RunResult, p *tool.Profile, opts Options, planPath string, holder *stats) (plan.Plan, error) {
	output := res.Output()
	snap := extract.Statistics(output, p.Stats)
	outcome := tool.Classify(res, p)

	switch outcome.Tag {
	case tool.Success:
		found, fromArtifact, err := extractPlan(output, planPath)
		if err != nil {
			return nil, &tool.MalformedOutputError{
				Reason:  err.Error(),
				Excerpt: tool.Excerpt(output),
				Stats:   snap,
			}
		}
		if len(found) == 0 && !fromArtifact {
			// The tool claimed success but left no plan evidence at
			// all: format drift or a tool bug, not an empty plan.
			return nil, &tool.MalformedOutputError{
				Reason:  "success reported but no plan lines found",
				Excerpt: tool.Excerpt(output),
				Stats:   snap,
			}
		}
		if opts.Horizon > 0 && len(found) > opts.Horizon {
			holder.set(snap)
			return nil, &tool.NoSolutionError{
				Reason:  fmt.Sprintf("plan length %d exceeds horizon %d", len(found), opts.Horizon),
				Excerpt: tool.Excerpt(output),
				Stats:   snap,
			}
		}
		holder.set(snap)
		return found, nil
	case tool.NoSolution:
		holder.set(snap)
		return nil, &tool.NoSolutionError{
			Excerpt: tool.Excerpt(output),
			Stats:   snap,
		}
	case tool.TimedOut:
		return nil, &tool.TimedOutError{
			Timeout: opts.timeout(),
			Excerpt: tool.Excerpt(output),
			Stats:   snap,
		}
	case tool.ToolCrashed:
		return nil, &tool.ToolCrashedError{
			ExitCode: res.ExitCode,
			Excerpt:  tool.Excerpt(output),
			Stats:    snap,
		}
	default:
		return nil, &tool.MalformedOutputError{
			Reason:  "run could not be interpreted",
			Excerpt: tool.Excerpt(output),
			Stats:   snap,
		}
	}
}

// extractPlan prefers the plan artifact file and falls back to scanning the
// solver log. fromArtifact reports whether the artifact existed, so an empty
// artifact (a zero-action task) can be told apart from no evidence.
func extractPlan(output, planPath string) (plan.Plan, bool, error) {
	if planPath != "" {
		if _, err := os.Stat(planPath); err == nil {
			p, err := plan.ReadFile(planPath)
			if err != nil {
				return nil, true, err
			}
			return p, true, nil
		}
	}
	return extract.PlanLines(output), false, nil
}

func record(j *journal.Journal, toolName string, args []string, res *subproc.RunResult, p *tool.Profile, snap extract.Snapshot) {
	if j == nil {
		return
	}
	outcome := tool.Classify(res, p)
	_ = j.Record(journal.Entry{
		Tool:     toolName,
		Args:     args,
		Outcome:  outcome.Tag.String(),
		ExitCode: res.ExitCode,
		Elapsed:  res.Elapsed,
		Stats:    snap,
	})
}

func removeInputs(opts Options, paths ...string) {
	if !opts.RemoveInputs {
		return
	}
	for _, p := range paths {
		if p != "" {
			_ = os.Remove(p)
		}
	}
}
