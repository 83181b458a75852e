package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/wonny/stockmarket/internal/registry"
)

// FileStore keeps the newest snapshot as one JSON document
type FileStore struct {
	path string
}

// NewFileStore stores snapshots at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save writes snap next to the target and renames it into place, so a crash
// mid-write never leaves a truncated snapshot behind.
func (s *FileStore) Save(_ context.Context, snap registry.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Latest reads the stored snapshot
func (s *FileStore) Latest(_ context.Context) (registry.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return registry.Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return registry.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}

	var snap registry.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return registry.Snapshot{}, fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}
	return snap, nil
}

// Close is a no-op
func (s *FileStore) Close() error { return nil }
