// Package plan computes the ordered file operations that reconcile a
// target tree's folder layout with a source tree's. The source is the
// authority: files missing from the target are copied in at the source's
// relative path, misplaced target files are moved, and redundant target
// copies are removed. Content unique to the target is never touched.
package plan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/klauern/photosync/internal/index"
	"github.com/klauern/photosync/internal/logging"
)

// Kind identifies the type of a planned operation.
type Kind string

const (
	// KindCopy copies a file from the source tree into the target tree.
	KindCopy Kind = "copy"

	// KindMove relocates a file within the target tree.
	KindMove Kind = "move"

	// KindRemoveDuplicate deletes a redundant copy in the target tree.
	KindRemoveDuplicate Kind = "remove-duplicate"
)

// Operation is a single planned filesystem action. All paths are
// slash-separated and relative; the executor resolves them against the
// configured roots.
//
// For KindCopy, From is relative to the source root and To to the
// target root. For KindMove both are relative to the target root.
// For KindRemoveDuplicate, From is the duplicate to delete and To is
// the copy that is kept.
type Operation struct {
	Kind Kind   `json:"kind" yaml:"kind"`
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Describe returns a one-line human-readable form of the operation.
func (o Operation) Describe() string {
	switch o.Kind {
	case KindCopy:
		return fmt.Sprintf("copy %s -> %s", o.From, o.To)
	case KindMove:
		return fmt.Sprintf("move %s -> %s", o.From, o.To)
	case KindRemoveDuplicate:
		return fmt.Sprintf("remove %s (duplicate of %s)", o.From, o.To)
	default:
		return fmt.Sprintf("%s %s -> %s", o.Kind, o.From, o.To)
	}
}

// Plan is the ordered list of operations produced by Build. Order
// matters: a move is always planned before the removals that reference
// its destination as the kept copy.
type Plan []Operation

// Empty reports whether the plan contains no operations, meaning the
// trees are already reconciled.
func (p Plan) Empty() bool {
	return len(p) == 0
}

// Count returns the number of operations of the given kind.
func (p Plan) Count(kind Kind) int {
	n := 0
	for _, op := range p {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Describe returns the plan as one line per operation.
func (p Plan) Describe() string {
	var sb strings.Builder
	for _, op := range p {
		sb.WriteString(op.Describe())
		sb.WriteString("\n")
	}
	return sb.String()
}

// ErrEmptyPaths signals an index entry with no paths. This is an
// internal invariant violation in the indexer, not a user error.
var ErrEmptyPaths = errors.New("index entry has no paths")

// DuplicateError reports that the source tree contains duplicate
// identity keys. Planning refuses to guess which copy is authoritative.
type DuplicateError struct {
	Groups []index.Group
}

// Error returns a formatted message listing every duplicate group.
func (e *DuplicateError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "source tree contains %d duplicate group(s):", len(e.Groups))
	for _, g := range e.Groups {
		fmt.Fprintf(&sb, "\n  %s: %s", g.Key, strings.Join(g.Paths, ", "))
	}
	return sb.String()
}

// Build compares the source and target indexes and emits the operations
// that bring the target's layout in line with the source's. Keys are
// visited in the indexes' deterministic order, so the same pair of
// trees always yields the same plan.
func Build(source, target *index.Tree) (Plan, error) {
	defer logging.Timer("plan")()

	if groups := source.Duplicates(); len(groups) > 0 {
		return nil, &DuplicateError{Groups: groups}
	}

	var p Plan
	for _, k := range source.Keys() {
		sourcePaths := source.Paths(k)
		if len(sourcePaths) == 0 {
			return nil, fmt.Errorf("source key %s: %w", k, ErrEmptyPaths)
		}
		want := sourcePaths[0]

		if !target.Contains(k) {
			p = append(p, Operation{Kind: KindCopy, From: want, To: want})
			continue
		}

		targetPaths := target.Paths(k)

		// The chosen copy stays at (or is moved to) the source's
		// relative path; every other path under the key is redundant.
		chosen := targetPaths[0]
		for _, tp := range targetPaths {
			if tp == want {
				chosen = want
				break
			}
		}
		if chosen != want {
			p = append(p, Operation{Kind: KindMove, From: chosen, To: want})
		}

		for _, tp := range targetPaths {
			if tp == chosen {
				continue
			}
			p = append(p, Operation{Kind: KindRemoveDuplicate, From: tp, To: want})
		}
	}

	logging.Debug("plan built",
		logging.Count(len(p)),
	)

	return p, nil
}
