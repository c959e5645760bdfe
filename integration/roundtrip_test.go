package integration_test

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"pddlkit/integration/harness"
	"pddlkit/plan"
	"pddlkit/planner"
	"pddlkit/validator"
)

const blocksDomain = `(define (domain blocks)
  (:requirements :strips)
  (:predicates (on ?x ?y) (ontable ?x) (clear ?x) (handempty) (holding ?x))
  (:action pick-up
    :parameters (?x)
    :precondition (and (clear ?x) (ontable ?x) (handempty))
    :effect (and (not (ontable ?x)) (not (clear ?x)) (not (handempty)) (holding ?x)))
  (:action stack
    :parameters (?x ?y)
    :precondition (and (holding ?x) (clear ?y))
    :effect (and (not (holding ?x)) (not (clear ?y)) (clear ?x) (handempty) (on ?x ?y))))
`

const blocksProblem = `(define (problem blocks-3)
  (:domain blocks)
  (:objects a b c)
  (:init (clear a) (clear b) (clear c) (ontable a) (ontable b) (ontable c) (handempty))
  (:goal (and (on a b) (on b c))))
`

// plannerBody mimics the solver driver: it drops the plan artifact into its
// working directory and prints a search log with the usual counters.
const plannerBody = `cat > sas_plan <<'EOF'
(pick-up b)
(stack b c)
(pick-up a)
(stack a b)
; cost = 4 (unit cost)
EOF
cat <<'EOF'
[t=0.01s, 9001 KB] Plan length: 4 step(s).
[t=0.01s, 9001 KB] Plan cost: 4
[t=0.01s, 9001 KB] Expanded 11 state(s).
[t=0.01s, 9001 KB] Evaluated 17 state(s).
[t=0.01s, 9001 KB] Generated 29 state(s).
[t=0.01s, 9001 KB] Search time: 0.01s
[t=0.01s, 9001 KB] Total time: 0.01s
Solution found.
EOF
exit 0
`

// validatorBody checks the plan copy it receives has exactly the solver's
// four steps and no comment lines, then reports a valid plan.
const validatorBody = `planArg="$4"
if grep -q ';' "$planArg"; then
  echo 'Bad plan description'
  exit 0
fi
steps=$(grep -c '(' "$planArg")
if [ "$steps" != "4" ]; then
  echo 'Bad plan description'
  exit 0
fi
cat <<'EOF'
Checking plan: actions
Plan executed successfully - checking goal
Plan valid
Final value: 4
EOF
exit 0
`

// state is a set of ground facts like "on a b".
type state map[string]bool

func (s state) holds(facts ...string) bool {
	for _, f := range facts {
		if !s[f] {
			return false
		}
	}
	return true
}

func (s state) apply(add, del []string) {
	for _, f := range del {
		delete(s, f)
	}
	for _, f := range add {
		s[f] = true
	}
}

// step executes one blocksworld action against the state, enforcing its
// preconditions.
func step(s state, a plan.Action) error {
	switch a.Name {
	case "pick-up":
		x := a.Args[0]
		if !s.holds("clear "+x, "ontable "+x, "handempty") {
			return fmt.Errorf("pick-up %s precondition unsatisfied", x)
		}
		s.apply([]string{"holding " + x}, []string{"clear " + x, "ontable " + x, "handempty"})
	case "stack":
		x, y := a.Args[0], a.Args[1]
		if !s.holds("holding "+x, "clear "+y) {
			return fmt.Errorf("stack %s %s precondition unsatisfied", x, y)
		}
		s.apply([]string{"on " + x + " " + y, "clear " + x, "handempty"}, []string{"holding " + x, "clear " + y})
	default:
		return fmt.Errorf("unknown action %q", a.Name)
	}
	return nil
}

// TestBlocksworldRoundTrip drives the full pipeline: solve a three-block
// problem, execute the returned plan against a reference model of the
// domain, persist it, and validate the persisted file.
func TestBlocksworldRoundTrip(t *testing.T) {
	dir := t.TempDir()
	domain := harness.WriteFixture(t, dir, "domain.pddl", blocksDomain)
	problem := harness.WriteFixture(t, dir, "problem.pddl", blocksProblem)

	solver := planner.NewLocalFastDownward(harness.WriteTool(t, "fast-downward.py", plannerBody))
	p, err := solver.PlanFromPDDL(context.Background(), domain, problem, planner.Options{})
	if err != nil {
		t.Fatalf("PlanFromPDDL: %v", err)
	}
	if len(p) != 4 {
		t.Fatalf("plan length = %d, want 4", len(p))
	}

	snap := solver.Statistics()
	if snap["plan_cost"] != 4 || snap["expanded_states"] != 11 {
		t.Fatalf("statistics = %v", snap)
	}

	// The plan must actually achieve the goal under the domain's semantics.
	s := state{
		"clear a": true, "clear b": true, "clear c": true,
		"ontable a": true, "ontable b": true, "ontable c": true,
		"handempty": true,
	}
	for i, a := range p {
		if err := step(s, a); err != nil {
			t.Fatalf("step %d: %v", i+1, err)
		}
	}
	if !s.holds("on a b", "on b c") {
		t.Fatalf("goal not reached, final state %v", s)
	}

	planPath := filepath.Join(dir, "plan.txt")
	if _, err := plan.WriteFile(planPath, p); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	val := validator.NewLocalVAL(harness.WriteTool(t, "validate", validatorBody))
	v, err := val.Validate(context.Background(), domain, problem, planPath, validator.Options{})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !v.Valid {
		t.Fatalf("round-tripped plan rejected:\n%s", v.Output)
	}
	if !strings.Contains(v.Output, "Plan valid") {
		t.Fatalf("unexpected validator output %q", v.Output)
	}
}
