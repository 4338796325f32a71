package jobs

import (
	"testing"
	"time"
)

type stubPruner struct {
	cutoffs []time.Time
	removed int
}

func (p *stubPruner) Prune(cutoff time.Time) int {
	p.cutoffs = append(p.cutoffs, cutoff)
	return p.removed
}

func TestRunPruneUsesMaxSessionAge(t *testing.T) {
	pruner := &stubPruner{removed: 2}
	janitor := NewSessionJanitor(pruner, &JanitorConfig{
		Schedule:      "*/30 * * * *",
		MaxSessionAge: time.Hour,
		Enabled:       true,
	})

	before := time.Now().Add(-time.Hour)
	if removed := janitor.RunPrune(); removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	after := time.Now().Add(-time.Hour)

	if len(pruner.cutoffs) != 1 {
		t.Fatalf("expected one prune pass, got %d", len(pruner.cutoffs))
	}
	cutoff := pruner.cutoffs[0]
	if cutoff.Before(before) || cutoff.After(after) {
		t.Fatalf("cutoff must be now minus max age, got %v", cutoff)
	}
}

func TestStartDisabledDoesNothing(t *testing.T) {
	janitor := NewSessionJanitor(&stubPruner{}, &JanitorConfig{Enabled: false})

	if err := janitor.Start(); err != nil {
		t.Fatalf("disabled janitor must start cleanly: %v", err)
	}
	janitor.Stop()
}

func TestStartRejectsBadSchedule(t *testing.T) {
	janitor := NewSessionJanitor(&stubPruner{}, &JanitorConfig{
		Schedule: "not a schedule",
		Enabled:  true,
	})

	if err := janitor.Start(); err == nil {
		t.Fatalf("expected error for invalid cron schedule")
	}
	janitor.Stop()
}
