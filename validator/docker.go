package validator

import (
	"context"
	"errors"
	"os"

	"pddlkit/extract"
	"pddlkit/journal"
	"pddlkit/plan"
	"pddlkit/subproc"
	"pddlkit/tool"
)

const (
	// DefaultImage is a published VAL image.
	DefaultImage   = "claudiusk/val:latest"
	containerMount = "/pddls"
)

var dockerCLIExits = []int{125, 126, 127}

// DockerVAL runs VAL through the docker CLI. Inputs are copied into a
// mounted scratch directory; the container never sees host paths.
type DockerVAL struct {
	// DockerBin is the docker CLI. Empty means "docker".
	DockerBin string
	// Image is the validator image. Empty means DefaultImage.
	Image string
	// Profile overrides the builtin VAL profile.
	Profile *tool.Profile
	// Journal, when set, records every invocation.
	Journal *journal.Journal
}

// NewDockerVAL returns an adapter using the default image.
func NewDockerVAL() *DockerVAL {
	return &DockerVAL{}
}

func (a *DockerVAL) profile() *tool.Profile {
	p := a.Profile
	if p == nil {
		p = tool.VAL()
	}
	cp := *p
	cp.CrashExits = append(append([]int{}, cp.CrashExits...), dockerCLIExits...)
	return &cp
}

func (a *DockerVAL) dockerBin() string {
	if a.DockerBin != "" {
		return a.DockerBin
	}
	return "docker"
}

func (a *DockerVAL) image() string {
	if a.Image != "" {
		return a.Image
	}
	return DefaultImage
}

// Validate checks a plan against a domain and problem inside the container.
func (a *DockerVAL) Validate(ctx context.Context, domainPath, problemPath, planPath string, opts Options) (extract.Verdict, error) {
	scratch, err := subproc.NewScratch()
	if err != nil {
		return extract.Verdict{}, err
	}
	scratch.Keep = opts.KeepScratch
	defer func() {
		_ = scratch.Remove()
	}()

	if _, err := scratch.CopyIn(domainPath, "domain.pddl"); err != nil {
		return extract.Verdict{}, err
	}
	cmd := []string{"-v", containerMount + "/domain.pddl"}
	if problemPath != "" {
		if _, err := scratch.CopyIn(problemPath, "problem.pddl"); err != nil {
			return extract.Verdict{}, err
		}
		cmd = append(cmd, containerMount+"/problem.pddl")
	}
	if planPath != "" {
		if problemPath == "" {
			return extract.Verdict{}, errors.New("plan validation requires a problem file")
		}
		if err := plan.FilterComments(planPath, scratch.Path("actions")); err != nil {
			return extract.Verdict{}, err
		}
		cmd = append(cmd, containerMount+"/actions")
	}

	args := []string{
		"run", "--rm",
		"-v", scratch.Dir + ":" + containerMount,
		a.image(),
	}
	args = append(args, cmd...)

	inv := subproc.Invocation{
		Path:    a.dockerBin(),
		Args:    args,
		Timeout: opts.timeout(),
	}
	res, err := subproc.Run(ctx, inv)
	if err != nil {
		return extract.Verdict{}, err
	}
	if opts.RemoveInputs {
		_ = os.Remove(domainPath)
		if problemPath != "" {
			_ = os.Remove(problemPath)
		}
		if planPath != "" {
			_ = os.Remove(planPath)
		}
	}

	p := a.profile()
	record(a.Journal, p.Name+"-docker", args, res, p)
	return interpret(res, p, opts, planPath != "")
}
