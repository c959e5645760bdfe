package planner

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/kballard/go-shellquote"

	"pddlkit/extract"
	"pddlkit/journal"
	"pddlkit/plan"
	"pddlkit/subproc"
	"pddlkit/tool"
)

// Docker run failures surface as docker CLI exit codes, not container
// codes; they mean the tool never ran.
var dockerCLIExits = []int{125, 126, 127}

// DockerFastDownward runs the aibasel/downward image through the docker
// CLI. Input files are copied into a call-scoped scratch directory that is
// mounted at a fixed point inside the container, so host paths never leak
// into the argument vector the tool sees.
type DockerFastDownward struct {
	// DockerBin is the docker CLI. Empty means "docker".
	DockerBin string
	// Image is the solver image. Empty means DefaultImage.
	Image string
	// Alias selects the search configuration; empty means DefaultAlias.
	Alias string
	// MemLimit caps container memory; empty means "16g".
	MemLimit string
	// Profile overrides the builtin Fast Downward profile.
	Profile *tool.Profile
	// Journal, when set, records every invocation.
	Journal *journal.Journal

	stats stats
}

const (
	// DefaultImage is the upstream Fast Downward image.
	DefaultImage = "aibasel/downward"
	// containerMount is where the scratch directory is visible inside the
	// container; the solver also runs there, so its plan artifact lands
	// back in the scratch directory on the host.
	containerMount = "/pddls"
	// containerEntrypoint is the driver script inside the image.
	containerEntrypoint = "/workspace/downward/fast-downward.py"
)

// NewDockerFastDownward returns an adapter using the default image.
func NewDockerFastDownward() *DockerFastDownward {
	return &DockerFastDownward{}
}

func (a *DockerFastDownward) profile() *tool.Profile {
	p := a.Profile
	if p == nil {
		p = tool.FastDownward()
	}
	cp := *p
	cp.CrashExits = append(append([]int{}, cp.CrashExits...), dockerCLIExits...)
	return &cp
}

func (a *DockerFastDownward) dockerBin() string {
	if a.DockerBin != "" {
		return a.DockerBin
	}
	return "docker"
}

func (a *DockerFastDownward) image() string {
	if a.Image != "" {
		return a.Image
	}
	return DefaultImage
}

func (a *DockerFastDownward) memLimit() string {
	if a.MemLimit != "" {
		return a.MemLimit
	}
	return "16g"
}

func (a *DockerFastDownward) alias() string {
	if a.Alias != "" {
		return a.Alias
	}
	return DefaultAlias
}

// PlanFromPDDL copies the inputs into the mounted scratch directory and
// solves them inside the container.
func (a *DockerFastDownward) PlanFromPDDL(ctx context.Context, domainPath, problemPath string, opts Options) (plan.Plan, error) {
	scratch, err := subproc.NewScratch()
	if err != nil {
		return nil, err
	}
	scratch.Keep = opts.KeepScratch
	defer func() {
		_ = scratch.Remove()
	}()

	if _, err := scratch.CopyIn(domainPath, "domain.pddl"); err != nil {
		return nil, err
	}
	if _, err := scratch.CopyIn(problemPath, "problem.pddl"); err != nil {
		return nil, err
	}

	args, err := a.buildArgs(scratch, opts,
		containerMount+"/domain.pddl",
		containerMount+"/problem.pddl",
	)
	if err != nil {
		return nil, err
	}
	return a.run(ctx, args, scratch, opts, domainPath, problemPath)
}

// PlanFromSAS copies a preprocessed SAS file into the mount and solves it
// directly.
func (a *DockerFastDownward) PlanFromSAS(ctx context.Context, sasPath string, opts Options) (plan.Plan, error) {
	scratch, err := subproc.NewScratch()
	if err != nil {
		return nil, err
	}
	scratch.Keep = opts.KeepScratch
	defer func() {
		_ = scratch.Remove()
	}()

	if _, err := scratch.CopyIn(sasPath, "output.sas"); err != nil {
		return nil, err
	}

	args, err := a.buildArgs(scratch, opts, containerMount+"/output.sas")
	if err != nil {
		return nil, err
	}
	return a.run(ctx, args, scratch, opts)
}

func (a *DockerFastDownward) buildArgs(scratch *subproc.Scratch, opts Options, tail ...string) ([]string, error) {
	args := []string{
		"run", "--rm",
		"-m", a.memLimit(),
		"-w", containerMount,
		"-v", scratch.Dir + ":" + containerMount,
		"--entrypoint", containerEntrypoint,
		a.image(),
	}
	alias, err := shellquote.Split(a.alias())
	if err != nil {
		return nil, fmt.Errorf("parse alias flags: %w", err)
	}
	args = append(args, alias...)
	// The container cannot be SIGKILLed from inside the group reliably,
	// so the solver is additionally told its own search budget.
	seconds := int(opts.timeout().Seconds())
	if seconds < 1 {
		seconds = 1
	}
	args = append(args, "--search-time-limit", strconv.Itoa(seconds))
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

func (a *DockerFastDownward) run(ctx context.Context, args []string, scratch *subproc.Scratch, opts Options, inputs ...string) (plan.Plan, error) {
	inv := subproc.Invocation{
		Path: a.dockerBin(),
		Args: args,
		// Generous margin over the in-container search limit so the
		// solver usually reports its own timeout before we kill it.
		Timeout: opts.timeout() + 30*time.Second,
	}
	res, err := subproc.Run(ctx, inv)
	if err != nil {
		return nil, err
	}
	removeInputs(opts, inputs...)

	p := a.profile()
	record(a.Journal, p.Name+"-docker", args, res, p, extract.Statistics(res.Output(), p.Stats))
	return interpret(res, p, opts, scratch.Path(planArtifact), &a.stats)
}

// Statistics returns the snapshot from the most recent planning call.
func (a *DockerFastDownward) Statistics() extract.Snapshot {
	return a.stats.get()
}

// ResetStatistics clears the retained snapshot.
func (a *DockerFastDownward) ResetStatistics() {
	a.stats.reset()
}
