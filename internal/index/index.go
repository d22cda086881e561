// Package index builds content-identity indexes of directory trees.
// Two files are considered the same file when they agree on byte size
// and base name; file contents are never hashed.
package index

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"golang.org/x/text/unicode/norm"

	"github.com/klauern/photosync/internal/logging"
)

// Key identifies a file by its byte size and base name. Names are
// NFC-normalized so that decomposed spellings (as produced by some
// filesystems) compare equal to their composed form.
type Key struct {
	Size uint64
	Name string
}

// KeyFor builds the identity key for a file with the given base name and size.
func KeyFor(name string, size int64) Key {
	return Key{
		Size: uint64(size),
		Name: norm.NFC.String(name),
	}
}

// Less orders keys by size, then name. The ordering carries no meaning
// beyond giving index iteration a stable, platform-independent order.
func (k Key) Less(other Key) bool {
	if k.Size != other.Size {
		return k.Size < other.Size
	}
	return k.Name < other.Name
}

// String returns a human-readable form of the key.
func (k Key) String() string {
	return fmt.Sprintf("%s (%d bytes)", k.Name, k.Size)
}

// Group is the set of relative paths in one tree sharing an identity key.
type Group struct {
	Key   Key
	Paths []string
}

// Tree is a content-identity index of a directory tree. Paths are
// slash-separated and relative to the tree's root.
type Tree struct {
	root  string
	files map[Key][]string
}

// Root returns the root directory the tree was built from.
func (t *Tree) Root() string {
	return t.root
}

// Len returns the number of distinct identity keys in the tree.
func (t *Tree) Len() int {
	return len(t.files)
}

// Contains reports whether the tree has at least one file under the key.
func (t *Tree) Contains(k Key) bool {
	return len(t.files[k]) > 0
}

// Paths returns the relative paths stored under the key, in the order
// they were encountered during the walk.
func (t *Tree) Paths(k Key) []string {
	return t.files[k]
}

// Keys returns all identity keys sorted by size, then name.
func (t *Tree) Keys() []Key {
	keys := make([]Key, 0, len(t.files))
	for k := range t.files {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Less(keys[j])
	})
	return keys
}

// Duplicates returns every group of two or more paths sharing a key,
// in key order. A tree with no intra-tree duplicates returns nil.
func (t *Tree) Duplicates() []Group {
	var groups []Group
	for _, k := range t.Keys() {
		if paths := t.files[k]; len(paths) > 1 {
			groups = append(groups, Group{Key: k, Paths: paths})
		}
	}
	return groups
}

func (t *Tree) add(k Key, rel string) {
	t.files[k] = append(t.files[k], rel)
}

// Error describes a failure while indexing a tree. Any error aborts
// the whole scan; a partial index is never returned.
type Error struct {
	Op   string
	Path string
	Err  error
}

// Error returns a formatted index error message.
func (e *Error) Error() string {
	return fmt.Sprintf("index %s %q: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Options configures tree indexing.
type Options struct {
	// Ignore lists glob patterns matched against base names; matching
	// files and directories are skipped (e.g. ".DS_Store", "*.tmp").
	Ignore []string
}

// Build indexes the directory tree rooted at root with default options.
func Build(root string) (*Tree, error) {
	return BuildWith(root, Options{})
}

// BuildWith indexes the directory tree rooted at root. Regular files
// are indexed under their slash-separated relative path; directories
// recurse; anything else (symlinks, devices, sockets) is skipped with
// a warning. filepath.WalkDir visits entries in lexical order, so the
// path order within each key is deterministic for a given tree state.
func BuildWith(root string, opts Options) (*Tree, error) {
	defer logging.Timer("index")()

	t := &Tree{
		root:  root,
		files: make(map[Key][]string),
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &Error{Op: "walk", Path: path, Err: err}
		}

		if ignored(d.Name(), opts.Ignore) && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if !d.Type().IsRegular() {
			logging.Warn("skipping non-regular file",
				logging.Path(path),
				logging.Operation("index"),
			)
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return &Error{Op: "stat", Path: path, Err: err}
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return &Error{Op: "relativize", Path: path, Err: err}
		}

		t.add(KeyFor(d.Name(), info.Size()), filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.Debug("indexed tree",
		logging.Root(root),
		logging.Count(t.Len()),
	)

	return t, nil
}

func ignored(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := filepath.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
