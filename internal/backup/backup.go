// Package backup stashes copies of target files before they are
// deleted as duplicates, so a bad run can be recovered by hand.
package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/klauern/photosync/internal/logging"
	"github.com/klauern/photosync/internal/util"
)

const (
	// DirPerm is the permission for backup directories (rwxr-x---)
	DirPerm = 0o750
	// FilePerm is the permission for backup files (rw-r-----)
	FilePerm = 0o640
)

// Store writes backups under Dir and records them in a JSON index.
type Store struct {
	// Dir is the directory backups are written to.
	Dir string
	// MaxEntries caps how many backups are kept; older entries are
	// pruned by Cleanup. Zero means unlimited.
	MaxEntries int
}

// NewStore returns a store rooted at the default backups directory.
func NewStore() *Store {
	return &Store{Dir: util.BackupsPath(), MaxEntries: 100}
}

// Stash copies the file at path into the store before it is deleted.
// rel is the file's path relative to the target root, recorded in the
// index so the original location can be recovered.
func (s *Store) Stash(path, rel string) (*Metadata, error) {
	if err := os.MkdirAll(s.Dir, DirPerm); err != nil {
		return nil, fmt.Errorf("failed to create backups directory: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %q: %w", path, err)
	}

	// #nosec G304 - path comes from the executor's resolved plan
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}

	hash := sha256.Sum256(content)
	hashStr := hex.EncodeToString(hash[:])
	id := time.Now().Format("20060102-150405-") + hashStr[:8]

	backupPath := filepath.Join(s.Dir, id+filepath.Ext(path))
	if err := os.WriteFile(backupPath, content, FilePerm); err != nil {
		return nil, fmt.Errorf("failed to write backup file: %w", err)
	}

	meta := &Metadata{
		ID:         id,
		SourcePath: path,
		RelPath:    rel,
		BackupPath: backupPath,
		CreatedAt:  time.Now(),
		ModifiedAt: info.ModTime(),
		Hash:       hashStr,
		Size:       info.Size(),
	}

	idx, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	idx.Backups[id] = *meta
	idx.Updated = time.Now()
	if err := s.saveIndex(idx); err != nil {
		return nil, err
	}

	logging.Debug("stashed backup",
		logging.Path(path),
		logging.Operation("backup"),
	)

	return meta, nil
}

// Cleanup removes the oldest backups beyond MaxEntries and returns the
// IDs that were deleted.
func (s *Store) Cleanup() ([]string, error) {
	if s.MaxEntries <= 0 {
		return nil, nil
	}

	idx, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	if len(idx.Backups) <= s.MaxEntries {
		return nil, nil
	}

	entries := make([]Metadata, 0, len(idx.Backups))
	for _, m := range idx.Backups {
		entries = append(entries, m)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})

	var deleted []string
	for _, m := range entries[:len(entries)-s.MaxEntries] {
		if err := os.Remove(m.BackupPath); err != nil && !os.IsNotExist(err) {
			return deleted, fmt.Errorf("failed to remove backup %q: %w", m.BackupPath, err)
		}
		delete(idx.Backups, m.ID)
		deleted = append(deleted, m.ID)
	}

	idx.Updated = time.Now()
	if err := s.saveIndex(idx); err != nil {
		return deleted, err
	}

	if len(deleted) > 0 {
		logging.Debug("cleaned up old backups",
			logging.Count(len(deleted)),
		)
	}

	return deleted, nil
}
