package sync

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauern/photosync/internal/backup"
	"github.com/klauern/photosync/internal/index"
	"github.com/klauern/photosync/internal/plan"
	"github.com/klauern/photosync/internal/util"
)

func TestExecute_CopyCreatesParents(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	util.WriteFile(t, filepath.Join(source, "2024", "trip", "a.jpg"), "photo-bytes")

	e := New(source, target)
	p := plan.Plan{{Kind: plan.KindCopy, From: "2024/trip/a.jpg", To: "2024/trip/a.jpg"}}

	result, err := e.Execute(p, nil)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.Success() {
		t.Errorf("expected success, got %+v", result.Ops)
	}

	copied := filepath.Join(target, "2024", "trip", "a.jpg")
	data, err := os.ReadFile(copied)
	if err != nil {
		t.Fatalf("copied file missing: %v", err)
	}
	if string(data) != "photo-bytes" {
		t.Errorf("copied content mismatch: %q", data)
	}
}

func TestExecute_MoveWithinTarget(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	util.WriteFile(t, filepath.Join(target, "misc", "a.jpg"), "content")

	e := New(source, target)
	p := plan.Plan{{Kind: plan.KindMove, From: "misc/a.jpg", To: "2024/a.jpg"}}

	if _, err := e.Execute(p, nil); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if util.FileExists(t, filepath.Join(target, "misc", "a.jpg")) {
		t.Error("moved file still exists at old path")
	}
	if !util.FileExists(t, filepath.Join(target, "2024", "a.jpg")) {
		t.Error("moved file missing at new path")
	}
}

func TestExecute_RemoveDuplicate(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	util.WriteFile(t, filepath.Join(target, "a.jpg"), "keep")
	util.WriteFile(t, filepath.Join(target, "dup", "a.jpg"), "keep")

	e := New(source, target)
	p := plan.Plan{{Kind: plan.KindRemoveDuplicate, From: "dup/a.jpg", To: "a.jpg"}}

	if _, err := e.Execute(p, nil); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if util.FileExists(t, filepath.Join(target, "dup", "a.jpg")) {
		t.Error("duplicate was not removed")
	}
	if !util.FileExists(t, filepath.Join(target, "a.jpg")) {
		t.Error("kept copy was removed")
	}
}

func TestExecute_RemoveDuplicateStashesBackup(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	backupDir := t.TempDir()
	util.WriteFile(t, filepath.Join(target, "dup", "a.jpg"), "precious")

	e := New(source, target)
	e.Backups = &backup.Store{Dir: backupDir}
	p := plan.Plan{{Kind: plan.KindRemoveDuplicate, From: "dup/a.jpg", To: "a.jpg"}}

	if _, err := e.Execute(p, nil); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	idx, err := e.Backups.LoadIndex()
	if err != nil {
		t.Fatalf("failed to load backup index: %v", err)
	}
	if len(idx.Backups) != 1 {
		t.Fatalf("expected 1 backup entry, got %d", len(idx.Backups))
	}
	for _, meta := range idx.Backups {
		if meta.RelPath != "dup/a.jpg" {
			t.Errorf("expected rel path dup/a.jpg, got %q", meta.RelPath)
		}
		data, err := os.ReadFile(meta.BackupPath)
		if err != nil {
			t.Fatalf("backup file missing: %v", err)
		}
		if string(data) != "precious" {
			t.Errorf("backup content mismatch: %q", data)
		}
	}
}

func TestExecute_WouldOverwriteAborts(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	util.WriteFile(t, filepath.Join(source, "a.jpg"), "new")
	util.WriteFile(t, filepath.Join(target, "a.jpg"), "existing")
	util.WriteFile(t, filepath.Join(source, "b.jpg"), "other")

	e := New(source, target)
	p := plan.Plan{
		{Kind: plan.KindCopy, From: "a.jpg", To: "a.jpg"},
		{Kind: plan.KindCopy, From: "b.jpg", To: "b.jpg"},
	}

	result, err := e.Execute(p, nil)
	if err == nil {
		t.Fatal("expected overwrite error")
	}
	if !errors.Is(err, ErrWouldOverwrite) {
		t.Errorf("expected ErrWouldOverwrite, got %v", err)
	}

	var opErr *OpError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected *OpError, got %T", err)
	}

	// Existing content stays untouched, and the rest of the plan is
	// never attempted.
	data, _ := os.ReadFile(filepath.Join(target, "a.jpg"))
	if string(data) != "existing" {
		t.Errorf("existing target content was clobbered: %q", data)
	}
	if util.FileExists(t, filepath.Join(target, "b.jpg")) {
		t.Error("operation after failure was applied")
	}
	if len(result.Failed()) != 1 || len(result.Pending()) != 1 {
		t.Errorf("expected 1 failed + 1 pending, got %+v", result.Ops)
	}
}

func TestExecute_SourceNeverModified(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	util.WriteFile(t, filepath.Join(source, "photos", "a.jpg"), "aaa")
	util.WriteFile(t, filepath.Join(source, "photos", "b.jpg"), "bbbb")
	util.WriteFile(t, filepath.Join(target, "misc", "b.jpg"), "bbbb")

	before, err := index.Build(source)
	if err != nil {
		t.Fatalf("failed to index source: %v", err)
	}

	sourceTree, _ := index.Build(source)
	targetTree, err := index.Build(target)
	if err != nil {
		t.Fatalf("failed to index target: %v", err)
	}
	p, err := plan.Build(sourceTree, targetTree)
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}

	e := New(source, target)
	if _, err := e.Execute(p, nil); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	after, err := index.Build(source)
	if err != nil {
		t.Fatalf("failed to re-index source: %v", err)
	}
	if before.Len() != after.Len() {
		t.Errorf("source tree changed: %d keys before, %d after", before.Len(), after.Len())
	}
	for _, k := range before.Keys() {
		if len(before.Paths(k)) != len(after.Paths(k)) {
			t.Errorf("source paths for %s changed", k)
		}
	}
}

func TestExecute_ReconciliationIsIdempotent(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	util.WriteFile(t, filepath.Join(source, "2023", "a.jpg"), "aaa")
	util.WriteFile(t, filepath.Join(source, "2024", "b.jpg"), "bbbb")
	util.WriteFile(t, filepath.Join(target, "misc", "a.jpg"), "aaa")
	util.WriteFile(t, filepath.Join(target, "x", "b.jpg"), "bbbb")
	util.WriteFile(t, filepath.Join(target, "y", "b.jpg"), "bbbb")
	util.WriteFile(t, filepath.Join(target, "keep", "unique.jpg"), "unique")

	sourceTree, err := index.Build(source)
	if err != nil {
		t.Fatalf("failed to index source: %v", err)
	}
	targetTree, err := index.Build(target)
	if err != nil {
		t.Fatalf("failed to index target: %v", err)
	}
	p, err := plan.Build(sourceTree, targetTree)
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}

	e := New(source, target)
	applied := 0
	if _, err := e.Execute(p, func(plan.Operation) { applied++ }); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if applied != len(p) {
		t.Errorf("expected %d progress callbacks, got %d", len(p), applied)
	}

	// Re-planning against the post-execution target reaches a fixed point.
	targetAfter, err := index.Build(target)
	if err != nil {
		t.Fatalf("failed to re-index target: %v", err)
	}
	again, err := plan.Build(sourceTree, targetAfter)
	if err != nil {
		t.Fatalf("re-plan failed: %v", err)
	}
	if !again.Empty() {
		t.Errorf("expected empty plan after execution, got %v", again)
	}

	// Target-only content survived.
	if !util.FileExists(t, filepath.Join(target, "keep", "unique.jpg")) {
		t.Error("unique target content was deleted")
	}
}

func TestExecute_UnknownKindFails(t *testing.T) {
	e := New(t.TempDir(), t.TempDir())
	p := plan.Plan{{Kind: "shred", From: "a", To: "b"}}

	if _, err := e.Execute(p, nil); err == nil {
		t.Fatal("expected error for unknown operation kind")
	}
}
