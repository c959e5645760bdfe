package journal

import (
	"path/filepath"
	"testing"
	"time"
)

func TestJournalRecordAndRecent(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() {
		_ = j.Close()
	}()

	code := 0
	first := Entry{
		Time:     time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		Tool:     "fast-downward",
		Args:     []string{"--alias", "seq-opt-lmcut", "domain.pddl", "problem.pddl"},
		Outcome:  "success",
		ExitCode: &code,
		Elapsed:  125 * time.Millisecond,
		Stats:    map[string]float64{"plan_length": 4, "total_time": 0.05},
	}
	if err := j.Record(first); err != nil {
		t.Fatalf("Record: %v", err)
	}
	second := Entry{
		Time:    time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC),
		Tool:    "val",
		Args:    []string{"-v", "domain.pddl", "problem.pddl", "actions"},
		Outcome: "timed_out",
		Elapsed: 30 * time.Second,
	}
	if err := j.Record(second); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := j.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if got, want := entries[0].Tool, "val"; got != want {
		t.Fatalf("newest tool = %q, want %q", got, want)
	}
	if entries[0].ExitCode != nil {
		t.Fatalf("killed run exit code = %v, want absent", *entries[0].ExitCode)
	}
	if got, want := entries[1].Outcome, "success"; got != want {
		t.Fatalf("outcome = %q, want %q", got, want)
	}
	if got, want := entries[1].Stats["plan_length"], 4.0; got != want {
		t.Fatalf("plan_length = %v, want %v", got, want)
	}
	if entries[1].ID == "" {
		t.Fatal("entry id should be filled in")
	}
	if got, want := entries[1].Elapsed, 125*time.Millisecond; got != want {
		t.Fatalf("elapsed = %v, want %v", got, want)
	}
}

func TestJournalRecentLimit(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() {
		_ = j.Close()
	}()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		e := Entry{Time: base.Add(time.Duration(i) * time.Minute), Tool: "fast-downward", Outcome: "success"}
		if err := j.Record(e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	entries, err := j.Recent(3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
}

func TestJournalNilIsNoOp(t *testing.T) {
	var j *Journal
	if err := j.Record(Entry{Tool: "fast-downward"}); err != nil {
		t.Fatalf("nil journal Record: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("nil journal Close: %v", err)
	}
}
