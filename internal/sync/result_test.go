package sync

import (
	"errors"
	"strings"
	"testing"

	"github.com/klauern/photosync/internal/plan"
)

func samplePlan() plan.Plan {
	return plan.Plan{
		{Kind: plan.KindCopy, From: "a.jpg", To: "a.jpg"},
		{Kind: plan.KindMove, From: "misc/b.jpg", To: "b.jpg"},
		{Kind: plan.KindRemoveDuplicate, From: "dup/b.jpg", To: "b.jpg"},
	}
}

func TestNewResult_AllPending(t *testing.T) {
	r := NewResult("/src", "/dst", samplePlan())

	if len(r.Ops) != 3 {
		t.Fatalf("expected 3 op results, got %d", len(r.Ops))
	}
	if len(r.Pending()) != 3 {
		t.Errorf("expected all ops pending, got %d", len(r.Pending()))
	}
	if r.Success() {
		t.Error("pending result should not be success")
	}
}

func TestResult_Filters(t *testing.T) {
	r := NewResult("/src", "/dst", samplePlan())
	r.Ops[0].Status = StatusApplied
	r.Ops[1].Status = StatusFailed
	r.Ops[1].Err = errors.New("disk full")

	if len(r.Applied()) != 1 {
		t.Errorf("expected 1 applied, got %d", len(r.Applied()))
	}
	if len(r.Failed()) != 1 {
		t.Errorf("expected 1 failed, got %d", len(r.Failed()))
	}
	if len(r.Pending()) != 1 {
		t.Errorf("expected 1 pending, got %d", len(r.Pending()))
	}
	if r.Success() {
		t.Error("result with failure should not be success")
	}
}

func TestResult_Summary(t *testing.T) {
	r := NewResult("/src", "/dst", samplePlan())
	for i := range r.Ops {
		r.Ops[i].Status = StatusApplied
	}

	summary := r.Summary()
	for _, want := range []string{"Copied:  1", "Moved:   1", "Removed: 1"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
	if strings.Contains(summary, "Errors") {
		t.Errorf("clean summary should not mention errors:\n%s", summary)
	}
}

func TestResult_SummaryWithFailure(t *testing.T) {
	r := NewResult("/src", "/dst", samplePlan())
	r.Ops[0].Status = StatusApplied
	r.Ops[1].Status = StatusFailed
	r.Ops[1].Err = errors.New("permission denied")

	summary := r.Summary()
	if !strings.Contains(summary, "permission denied") {
		t.Errorf("summary missing failure cause:\n%s", summary)
	}
	if !strings.Contains(summary, "1 operation(s) not attempted") {
		t.Errorf("summary missing pending count:\n%s", summary)
	}
}
