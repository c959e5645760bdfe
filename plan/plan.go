// Package plan models a solved plan: an ordered sequence of ground actions
// in the parenthesized syntax the planning tools read and write.
package plan

import (
	"fmt"
	"regexp"
	"strings"
)

// Action is one ground action, e.g. (pick-up a). Names are normalized to
// lower case; the tools are case-insensitive about them.
type Action struct {
	Name string
	Args []string
}

func (a Action) String() string {
	if len(a.Args) == 0 {
		return "(" + a.Name + ")"
	}
	return "(" + a.Name + " " + strings.Join(a.Args, " ") + ")"
}

// Plan is an ordered action sequence; order is execution order.
type Plan []Action

func (p Plan) String() string {
	lines := make([]string, len(p))
	for i, a := range p {
		lines[i] = a.String()
	}
	return strings.Join(lines, "\n")
}

var actionRe = regexp.MustCompile(`^\(([\w\-]+)(?: +([^\)]+)|\s*)\)$`)

// ParseAction parses a single parenthesized action line.
func ParseAction(line string) (Action, error) {
	m := actionRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Action{}, fmt.Errorf("not an action line: %q", line)
	}
	a := Action{Name: strings.ToLower(m[1])}
	if m[2] != "" {
		a.Args = strings.Fields(m[2])
	}
	return a, nil
}

// Parse parses a plan text, one action per line. Lines starting with ';' are
// comments (the tools append e.g. "; cost = 2 (unit cost)") and blank lines
// are skipped.
func Parse(text string) (Plan, error) {
	var p Plan
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		a, err := ParseAction(line)
		if err != nil {
			return nil, err
		}
		p = append(p, a)
	}
	return p, nil
}
