package planner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pddlkit/journal"
)

// The docker CLI is just another subprocess; a stub standing in for it
// exercises the containerized argument construction end to end. The stub
// locates the mount argument and writes the plan artifact into the host
// side of the mount, exactly as the real container does.
const dockerStubBody = `echo "$@" > "$ARGS_FILE"
mount=""
prev=""
for arg in "$@"; do
  if [ "$prev" = "-v" ]; then mount="${arg%%:*}"; fi
  prev="$arg"
done
cat <<'EOF'
Solution found!
Plan length: 2 step(s).
Plan cost: 2
Evaluated 6 state(s).
Search time: 0.01s
Total time: 0.05s
EOF
printf '(pick-up a)\n(stack a b)\n; cost = 2 (unit cost)\n' > "$mount/sas_plan"
exit 0
`

func writeDockerStub(t *testing.T, argsFile string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docker")
	body := "#!/bin/sh\nARGS_FILE=" + argsFile + "\n" + dockerStubBody
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write docker stub: %v", err)
	}
	return path
}

func TestDockerFastDownwardSuccess(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args.txt")
	domain, problem := writeInputs(t)

	a := NewDockerFastDownward()
	a.DockerBin = writeDockerStub(t, argsFile)

	p, err := a.PlanFromPDDL(context.Background(), domain, problem, Options{})
	if err != nil {
		t.Fatalf("PlanFromPDDL: %v", err)
	}
	if got, want := p.String(), "(pick-up a)\n(stack a b)"; got != want {
		t.Fatalf("plan = %q, want %q", got, want)
	}
	if got, want := a.Statistics()["plan_length"], 2.0; got != want {
		t.Fatalf("plan_length = %v, want %v", got, want)
	}

	data, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	args := string(data)
	for _, want := range []string{
		"run --rm",
		"-m 16g",
		"-w /pddls",
		"--entrypoint /workspace/downward/fast-downward.py",
		"aibasel/downward",
		"--alias seq-opt-lmcut",
		"--search-time-limit",
		"/pddls/domain.pddl /pddls/problem.pddl",
	} {
		if !strings.Contains(args, want) {
			t.Fatalf("docker argument vector %q missing %q", args, want)
		}
	}
	// Host paths must not leak into the tool's view of its inputs.
	if strings.Contains(args, domain) {
		t.Fatalf("docker argument vector leaks host path: %q", args)
	}
}

func TestDockerFastDownwardPlanFromSAS(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args.txt")
	sas := filepath.Join(t.TempDir(), "task.sas")
	if err := os.WriteFile(sas, []byte("begin_version 3 end_version\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	a := NewDockerFastDownward()
	a.DockerBin = writeDockerStub(t, argsFile)

	p, err := a.PlanFromSAS(context.Background(), sas, Options{})
	if err != nil {
		t.Fatalf("PlanFromSAS: %v", err)
	}
	if len(p) != 2 {
		t.Fatalf("plan = %v, want 2 actions", p)
	}

	data, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "/pddls/output.sas") {
		t.Fatalf("docker argument vector %q missing mounted sas path", data)
	}
}

func TestDockerFastDownwardCLIFailureIsCrash(t *testing.T) {
	domain, problem := writeInputs(t)
	stub := filepath.Join(t.TempDir(), "docker")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\necho 'docker: Cannot connect to the Docker daemon' >&2\nexit 125\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	a := NewDockerFastDownward()
	a.DockerBin = stub

	_, err := a.PlanFromPDDL(context.Background(), domain, problem, Options{})
	if err == nil {
		t.Fatal("expected failure when the docker CLI cannot run")
	}
	if !strings.Contains(err.Error(), "crashed") {
		t.Fatalf("err = %v, want crash classification", err)
	}
}

func TestDockerFastDownwardJournal(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args.txt")
	domain, problem := writeInputs(t)

	j, err := journal.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer func() {
		_ = j.Close()
	}()

	a := NewDockerFastDownward()
	a.DockerBin = writeDockerStub(t, argsFile)
	a.Journal = j

	if _, err := a.PlanFromPDDL(context.Background(), domain, problem, Options{}); err != nil {
		t.Fatalf("PlanFromPDDL: %v", err)
	}

	entries, err := j.Recent(1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if got, want := entries[0].Tool, "fast-downward-docker"; got != want {
		t.Fatalf("tool = %q, want %q", got, want)
	}
	if got, want := entries[0].Outcome, "success"; got != want {
		t.Fatalf("outcome = %q, want %q", got, want)
	}
	if got, want := entries[0].Stats["plan_length"], 2.0; got != want {
		t.Fatalf("journal plan_length = %v, want %v", got, want)
	}
}
