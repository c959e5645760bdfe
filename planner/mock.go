package planner

import (
	"context"

	"pddlkit/extract"
	"pddlkit/plan"
)

// MockPlanner is a deterministic, offline Planner for testing code that
// drives a planner without a solver installed.
type MockPlanner struct {
	// Plan is returned by every planning call when Err is nil.
	Plan plan.Plan
	// Err, when set, is returned by every planning call.
	Err error
	// Snapshot is retained as the statistics of a successful call.
	Snapshot extract.Snapshot

	// Calls records the inputs of each planning call, in order.
	Calls []MockCall

	stats stats
}

// MockCall records one planning call made against the mock.
type MockCall struct {
	Domain  string
	Problem string
	SAS     string
	Opts    Options
}

func (m *MockPlanner) PlanFromPDDL(ctx context.Context, domainPath, problemPath string, opts Options) (plan.Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.Calls = append(m.Calls, MockCall{Domain: domainPath, Problem: problemPath, Opts: opts})
	return m.respond()
}

func (m *MockPlanner) PlanFromSAS(ctx context.Context, sasPath string, opts Options) (plan.Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.Calls = append(m.Calls, MockCall{SAS: sasPath, Opts: opts})
	return m.respond()
}

func (m *MockPlanner) respond() (plan.Plan, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	snap := m.Snapshot
	if snap == nil {
		snap = extract.Snapshot{"plan_length": float64(len(m.Plan))}
	}
	m.stats.set(snap.Clone())
	return m.Plan, nil
}

func (m *MockPlanner) Statistics() extract.Snapshot {
	return m.stats.get()
}

func (m *MockPlanner) ResetStatistics() {
	m.stats.reset()
}
