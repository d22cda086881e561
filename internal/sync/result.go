package sync

import (
	"fmt"
	"strings"

	"github.com/klauern/photosync/internal/plan"
)

// Status records the outcome of a single operation.
type Status string

const (
	// StatusPending indicates the operation was not reached because an
	// earlier operation failed.
	StatusPending Status = "pending"

	// StatusApplied indicates the operation completed successfully.
	StatusApplied Status = "applied"

	// StatusFailed indicates the operation failed and aborted the run.
	StatusFailed Status = "failed"
)

// OpResult is the outcome of one planned operation.
type OpResult struct {
	Op     plan.Operation
	Status Status
	Err    error
}

// Result covers the full outcome of executing a plan. Operations
// already applied before a failure stay applied; there is no rollback.
type Result struct {
	SourceRoot string
	TargetRoot string
	Ops        []OpResult
}

// NewResult initializes a result with every operation pending.
func NewResult(sourceRoot, targetRoot string, p plan.Plan) *Result {
	ops := make([]OpResult, len(p))
	for i, op := range p {
		ops[i] = OpResult{Op: op, Status: StatusPending}
	}
	return &Result{
		SourceRoot: sourceRoot,
		TargetRoot: targetRoot,
		Ops:        ops,
	}
}

// Applied returns the operations that completed successfully.
func (r *Result) Applied() []OpResult {
	return r.filterByStatus(StatusApplied)
}

// Failed returns the operations that failed.
func (r *Result) Failed() []OpResult {
	return r.filterByStatus(StatusFailed)
}

// Pending returns the operations never reached.
func (r *Result) Pending() []OpResult {
	return r.filterByStatus(StatusPending)
}

func (r *Result) filterByStatus(status Status) []OpResult {
	var filtered []OpResult
	for _, or := range r.Ops {
		if or.Status == status {
			filtered = append(filtered, or)
		}
	}
	return filtered
}

// Success returns true when every operation was applied.
func (r *Result) Success() bool {
	return len(r.Failed()) == 0 && len(r.Pending()) == 0
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	var sb strings.Builder

	copies, moves, removals := 0, 0, 0
	for _, or := range r.Applied() {
		switch or.Op.Kind {
		case plan.KindCopy:
			copies++
		case plan.KindMove:
			moves++
		case plan.KindRemoveDuplicate:
			removals++
		}
	}

	sb.WriteString(fmt.Sprintf("Reconciled %s -> %s\n", r.SourceRoot, r.TargetRoot))
	sb.WriteString(fmt.Sprintf("  Copied:  %d\n", copies))
	sb.WriteString(fmt.Sprintf("  Moved:   %d\n", moves))
	sb.WriteString(fmt.Sprintf("  Removed: %d\n", removals))

	if failed := r.Failed(); len(failed) > 0 {
		sb.WriteString("\nErrors:\n")
		for _, f := range failed {
			sb.WriteString(fmt.Sprintf("  - %s: %v\n", f.Op.Describe(), f.Err))
		}
		if pending := r.Pending(); len(pending) > 0 {
			sb.WriteString(fmt.Sprintf("%d operation(s) not attempted\n", len(pending)))
		}
	}

	return sb.String()
}
