// Package validator runs the VAL plan validator as a subprocess and turns
// its output into a verdict. Like the planner adapters, the local and
// containerized variants differ only in invocation construction.
package validator

import (
	"context"
	"time"

	"pddlkit/extract"
	"pddlkit/journal"
	"pddlkit/subproc"
	"pddlkit/tool"
)

// Validator is the adapter contract. An invalid plan is a Verdict, not an
// error; errors are reserved for runs whose output could not be interpreted.
type Validator interface {
	Validate(ctx context.Context, domainPath, problemPath, planPath string, opts Options) (extract.Verdict, error)
}

// DefaultTimeout bounds a validation call when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Options configure one validation call.
type Options struct {
	// Timeout is the wall-clock budget from spawn to exit.
	Timeout time.Duration
	// RemoveInputs deletes the input files after the run.
	RemoveInputs bool
	// KeepScratch leaves the call's scratch directory on disk.
	KeepScratch bool
}

func (o Options) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return DefaultTimeout
}

// interpret converts a classified validator run into a verdict or a typed
// failure. When no plan file was given the tool only checks that the inputs
// parse, and emits no verdict markers; its exit code is the whole answer.
func interpret(res *subproc.RunResult, p *tool.Profile, opts Options, planGiven bool) (extract.Verdict, error) {
	output := res.Output()
	outcome := tool.Classify(res, p)

	if outcome.Tag == tool.TimedOut {
		return extract.Verdict{}, &tool.TimedOutError{
			Timeout: opts.timeout(),
			Excerpt: tool.Excerpt(output),
		}
	}
	if outcome.Tag == tool.ToolCrashed {
		return extract.Verdict{}, &tool.ToolCrashedError{
			ExitCode: res.ExitCode,
			Excerpt:  tool.Excerpt(output),
		}
	}

	if !planGiven {
		valid := res.ExitCode != nil && *res.ExitCode == 0
		return extract.Verdict{Valid: valid, Output: output}, nil
	}

	if outcome.Tag != tool.Success {
		return extract.Verdict{}, &tool.MalformedOutputError{
			Reason:  "validation produced no verdict marker",
			Excerpt: tool.Excerpt(output),
		}
	}
	v, err := extract.ParseVerdict(output, p)
	if err != nil {
		return extract.Verdict{}, &tool.MalformedOutputError{
			Reason:  err.Error(),
			Excerpt: tool.Excerpt(output),
		}
	}
	return v, nil
}

func record(j *journal.Journal, toolName string, args []string, res *subproc.RunResult, p *tool.Profile) {
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
	})
}
