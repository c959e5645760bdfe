package extract

import (
	"fmt"
	"regexp"
	"strings"

	"pddlkit/tool"
)

// Verdict is a validator's answer for one plan.
type Verdict struct {
	Valid bool
	// Output is the full captured validator text, kept for diagnostics.
	Output string
	// RepairAdvice is the validator's advice block for an invalid plan,
	// when it printed one in verbose mode.
	RepairAdvice string
}

var repairAdviceRe = regexp.MustCompile(`Plan Repair Advice:\n([\w\W]*?)\nFailed plans:`)

// ParseVerdict interprets validator output against the profile's pass/fail
// markers. Fail markers take precedence: a run whose goal check fails still
// prints the execution-phase success line, so "Failed plans:" decides. No
// marker at all means the inputs confused the tool; that is an error here
// and a malformed-output failure at the adapter.
func ParseVerdict(output string, p *tool.Profile) (Verdict, error) {
	pass := markerPresent(output, p.PassMarkers)
	fail := markerPresent(output, p.FailMarkers)
	if !pass && !fail {
		return Verdict{}, fmt.Errorf("validator output contains no verdict marker")
	}
	v := Verdict{Valid: !fail, Output: output}
	if fail {
		if m := repairAdviceRe.FindStringSubmatch(output); m != nil {
			v.RepairAdvice = strings.TrimSpace(m[1])
		}
	}
	return v, nil
}

func markerPresent(text string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(text, m) {
			return true
		}
	}
	return false
}
