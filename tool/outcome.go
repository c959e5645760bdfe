package tool

import "pddlkit/subproc"

// OutcomeTag is the closed set of things a finished tool run can mean.
type OutcomeTag int

const (
	Success OutcomeTag = iota
	NoSolution
	TimedOut
	MalformedInput
	ToolCrashed
)

func (t OutcomeTag) String() string {
	switch t {
	case Success:
		return "success"
	case NoSolution:
		return "no_solution"
	case TimedOut:
		return "timed_out"
	case MalformedInput:
		return "malformed_input"
	case ToolCrashed:
		return "tool_crashed"
	}
	return "unknown"
}

// Outcome pairs a tag with the run that produced it. Exactly one Outcome
// exists per invocation.
type Outcome struct {
	Tag    OutcomeTag
	Result *subproc.RunResult
}

// Classify applies the decision table to a completed run. The same exit code
// means different things across tool versions, so exit codes are
// cross-checked against output markers rather than trusted alone. Evaluation
// order is fixed: a killed run is TimedOut no matter what the streams say.
func Classify(res *subproc.RunResult, p *Profile) Outcome {
	if res.WasKilled {
		return Outcome{Tag: TimedOut, Result: res}
	}
	if res.ExitCode == nil {
		// Not killed by us and no exit code: signal death.
		return Outcome{Tag: ToolCrashed, Result: res}
	}
	code := *res.ExitCode
	if p.hasExit(p.CrashExits, code) {
		return Outcome{Tag: ToolCrashed, Result: res}
	}

	out := res.Output()
	switch p.Kind {
	case KindValidator:
		if !p.hasExit(p.SuccessExits, code) {
			// Undocumented exit code: the tool did not finish a
			// validation run it knows how to report.
			return Outcome{Tag: ToolCrashed, Result: res}
		}
		// A failed goal check still prints success phrasing for the
		// execution phase ("Plan executed successfully - checking
		// goal"), so either marker kind means a verdict was produced
		// and fail markers take precedence when reading it.
		if containsAny(out, p.FailMarkers) || containsAny(out, p.PassMarkers) {
			return Outcome{Tag: Success, Result: res}
		}
		return Outcome{Tag: MalformedInput, Result: res}
	default:
		if p.hasExit(p.NoSolutionExits, code) || containsAny(out, p.NoSolutionMarkers) {
			return Outcome{Tag: NoSolution, Result: res}
		}
		if p.hasExit(p.SuccessExits, code) {
			if containsAny(out, p.SuccessMarkers) {
				return Outcome{Tag: Success, Result: res}
			}
			// Normal exit without the solution marker: older tool
			// builds reuse exit 0 for "nothing found".
			return Outcome{Tag: NoSolution, Result: res}
		}
		// Exit code outside the tool's documented vocabulary.
		return Outcome{Tag: ToolCrashed, Result: res}
	}
}
