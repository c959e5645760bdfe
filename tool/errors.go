package tool

import (
	"fmt"
	"time"
)

// Failure errors raised at the adapter boundary. Each carries a bounded
// excerpt of the captured tool output so a tool/version mismatch can be
// diagnosed without re-running, plus whatever statistics were parseable
// before the failure.

const excerptLimit = 2000

// Excerpt bounds raw tool output for inclusion in error messages, keeping
// the tail where the tools print their final verdict.
func Excerpt(s string) string {
	if len(s) <= excerptLimit {
		return s
	}
	return "..." + s[len(s)-excerptLimit:]
}

// NoSolutionError reports that the tool determined no plan exists, or that
// search exhausted its budget without one. Callers typically retry with a
// larger horizon or budget.
type NoSolutionError struct {
	Reason  string
	Excerpt string
	Stats   map[string]float64
}

func (e *NoSolutionError) Error() string {
	if e.Reason != "" {
		return "no solution found: " + e.Reason
	}
	return "no solution found"
}

// TimedOutError reports that the wall-clock budget elapsed and the tool was
// killed.
type TimedOutError struct {
	Timeout time.Duration
	Excerpt string
	Stats   map[string]float64
}

func (e *TimedOutError) Error() string {
	return fmt.Sprintf("planning timed out after %s", e.Timeout)
}

// MalformedOutputError reports ambiguous or missing markers: the tool ran
// but its reply could not be interpreted as either a result or a clean
// failure.
type MalformedOutputError struct {
	Reason  string
	Excerpt string
	Stats   map[string]float64
}

func (e *MalformedOutputError) Error() string {
	return "malformed tool output: " + e.Reason
}

// ToolCrashedError reports signal death or an exit code outside the tool's
// documented vocabulary.
type ToolCrashedError struct {
	ExitCode *int
	Excerpt  string
	Stats    map[string]float64
}

func (e *ToolCrashedError) Error() string {
	if e.ExitCode != nil {
		return fmt.Sprintf("tool crashed with exit code %d", *e.ExitCode)
	}
	return "tool crashed (killed by signal)"
}
