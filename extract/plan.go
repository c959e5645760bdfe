package extract

import (
	"regexp"
	"strings"

	"pddlkit/plan"
)

// Plan step lines in the search log look like "pick-up a (1)": the action,
// its arguments, then the step cost in parentheses. Newer tool builds prefix
// log lines with a "[t=0.01s, 120 KB]" stamp.
var (
	logPrefixRe = regexp.MustCompile(`^\[[^\]]*\]\s*`)
	stepLineRe  = regexp.MustCompile(`(?i)^([a-z][\w\-]*)((?:\s+[\w\-]+)*)\s+\(\d+\)$`)
)

// PlanLines scans tool output for plan-line syntax and returns the actions
// in encountered order. Both the plan-artifact syntax "(pick-up a)" and the
// search-log syntax "pick-up a (1)" are recognized; banner and statistics
// lines match neither and are ignored. Zero recognized lines yields an empty
// plan; deciding whether that is legitimate is the caller's business.
func PlanLines(text string) plan.Plan {
	var p plan.Plan
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(logPrefixRe.ReplaceAllString(strings.TrimSpace(line), ""))
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "(") {
			if a, err := plan.ParseAction(line); err == nil {
				p = append(p, a)
			}
			continue
		}
		if m := stepLineRe.FindStringSubmatch(line); m != nil {
			a := plan.Action{Name: strings.ToLower(m[1])}
			if args := strings.Fields(m[2]); len(args) > 0 {
				a.Args = args
			}
			p = append(p, a)
		}
	}
	return p
}
