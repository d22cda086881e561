// Package sync applies reconciliation plans to the filesystem. Plans
// are executed strictly in order; the first failure aborts the rest,
// and operations already applied stay applied.
package sync

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauern/photosync/internal/backup"
	"github.com/klauern/photosync/internal/logging"
	"github.com/klauern/photosync/internal/plan"
)

// ErrWouldOverwrite is returned when an operation's destination path
// already exists. Existing target content is never clobbered.
var ErrWouldOverwrite = errors.New("destination already exists")

// OpError wraps a failure applying a single operation.
type OpError struct {
	Op  plan.Operation
	Err error
}

// Error returns a formatted message naming the failed operation.
func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op.Describe(), e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *OpError) Unwrap() error {
	return e.Err
}

// Executor resolves a plan's relative paths against the source and
// target roots and applies each operation. Only copies read from the
// source root; nothing ever writes to it.
type Executor struct {
	SourceRoot string
	TargetRoot string

	// Backups, when non-nil, stashes every file about to be removed as
	// a duplicate.
	Backups *backup.Store
}

// New creates an executor for the given collection roots.
func New(sourceRoot, targetRoot string) *Executor {
	return &Executor{
		SourceRoot: sourceRoot,
		TargetRoot: targetRoot,
	}
}

// Execute applies the plan in order. onApplied, when non-nil, is called
// after each successful operation (used for progress reporting). The
// returned Result always covers every operation in the plan, including
// those left pending after a failure.
func (e *Executor) Execute(p plan.Plan, onApplied func(plan.Operation)) (*Result, error) {
	defer logging.Timer("execute")()

	result := NewResult(e.SourceRoot, e.TargetRoot, p)

	for i, op := range p {
		if err := e.apply(op); err != nil {
			result.Ops[i].Status = StatusFailed
			result.Ops[i].Err = err
			logging.Error("operation failed",
				logging.Operation(string(op.Kind)),
				logging.Path(op.From),
				logging.Err(err),
			)
			return result, &OpError{Op: op, Err: err}
		}
		result.Ops[i].Status = StatusApplied
		logging.Debug("operation applied",
			logging.Operation(string(op.Kind)),
			logging.Path(op.From),
		)
		if onApplied != nil {
			onApplied(op)
		}
	}

	logging.Info("plan executed",
		logging.Count(len(p)),
	)

	return result, nil
}

func (e *Executor) apply(op plan.Operation) error {
	switch op.Kind {
	case plan.KindCopy:
		src := filepath.Join(e.SourceRoot, filepath.FromSlash(op.From))
		dst := filepath.Join(e.TargetRoot, filepath.FromSlash(op.To))
		if err := ensureAbsent(dst); err != nil {
			return err
		}
		if err := ensureParent(dst); err != nil {
			return err
		}
		return copyFile(src, dst)

	case plan.KindMove:
		from := filepath.Join(e.TargetRoot, filepath.FromSlash(op.From))
		to := filepath.Join(e.TargetRoot, filepath.FromSlash(op.To))
		if err := ensureAbsent(to); err != nil {
			return err
		}
		if err := ensureParent(to); err != nil {
			return err
		}
		if err := os.Rename(from, to); err != nil {
			return fmt.Errorf("failed to move %q: %w", from, err)
		}
		return nil

	case plan.KindRemoveDuplicate:
		path := filepath.Join(e.TargetRoot, filepath.FromSlash(op.From))
		if e.Backups != nil {
			if _, err := e.Backups.Stash(path, op.From); err != nil {
				return fmt.Errorf("failed to back up before removal: %w", err)
			}
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove %q: %w", path, err)
		}
		return nil

	default:
		return fmt.Errorf("unknown operation kind %q", op.Kind)
	}
}

// ensureAbsent fails with ErrWouldOverwrite when path already exists.
// Lstat is used so a dangling symlink at the destination also counts.
func ensureAbsent(path string) error {
	if _, err := os.Lstat(path); err == nil {
		return fmt.Errorf("%q: %w", path, ErrWouldOverwrite)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %q: %w", path, err)
	}
	return nil
}

func ensureParent(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create parent directory for %q: %w", path, err)
	}
	return nil
}

// copyFile copies a single file from src to dst, preserving permissions.
// The destination must not exist; callers check with ensureAbsent first,
// and O_EXCL closes the race in between.
func copyFile(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source %q: %w", src, err)
	}

	// #nosec G304 - src is resolved from the validated source root
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source %q: %w", src, err)
	}
	defer func() { _ = srcFile.Close() }()

	// #nosec G302 G304 - preserving source permissions, dst is resolved from the target root
	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, srcInfo.Mode())
	if err != nil {
		return fmt.Errorf("failed to create destination %q: %w", dst, err)
	}
	defer func() { _ = dstFile.Close() }()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy content to %q: %w", dst, err)
	}

	return nil
}
