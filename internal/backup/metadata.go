package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Metadata records a single stashed backup.
type Metadata struct {
	ID         string    `json:"id"`          // Unique backup identifier (timestamp-based)
	SourcePath string    `json:"source_path"` // Absolute path the file was backed up from
	RelPath    string    `json:"rel_path"`    // Path relative to the target root
	BackupPath string    `json:"backup_path"` // Path to the backup file
	CreatedAt  time.Time `json:"created_at"`  // Backup creation timestamp
	ModifiedAt time.Time `json:"modified_at"` // Source modification timestamp
	Hash       string    `json:"hash"`        // SHA256 hash of content
	Size       int64     `json:"size"`        // File size in bytes
}

// Index maintains an index of all backups in a store.
type Index struct {
	Version string              `json:"version"`
	Updated time.Time           `json:"updated"`
	Backups map[string]Metadata `json:"backups"` // Key: backup ID
}

const (
	// IndexVersion is the current version of the backup index format
	IndexVersion = "1.0"
	// IndexFilename is the name of the index file
	IndexFilename = "index.json"
)

func (s *Store) indexPath() string {
	return filepath.Join(s.Dir, IndexFilename)
}

func (s *Store) loadIndex() (*Index, error) {
	// #nosec G304 - index path is derived from the store directory
	data, err := os.ReadFile(s.indexPath())
	if os.IsNotExist(err) {
		return &Index{
			Version: IndexVersion,
			Updated: time.Now(),
			Backups: make(map[string]Metadata),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup index: %w", err)
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse backup index: %w", err)
	}
	if idx.Backups == nil {
		idx.Backups = make(map[string]Metadata)
	}
	return &idx, nil
}

func (s *Store) saveIndex(idx *Index) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode backup index: %w", err)
	}
	if err := os.WriteFile(s.indexPath(), data, FilePerm); err != nil {
		return fmt.Errorf("failed to write backup index: %w", err)
	}
	return nil
}

// LoadIndex reads the store's backup index, returning an empty index
// when none exists yet.
func (s *Store) LoadIndex() (*Index, error) {
	return s.loadIndex()
}
