package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPath is where the cache lives when no path is configured.
const DefaultPath = ".cache/firefly_data.json"

// Store loads and persists snapshots. A store with nothing saved yet loads an
// empty snapshot.
type Store interface {
	Load() (*Snapshot, error)
	Save(*Snapshot) error
	Close() error
}

// Open returns the store for path: SQLite for .db and .sqlite files, JSON otherwise.
func Open(path string) (Store, error) {
	if path == "" {
		path = DefaultPath
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite":
		return OpenSQLite(path)
	}
	return &FileStore{Path: path}, nil
}

// FileStore keeps the snapshot in a JSON file.
type FileStore struct {
	Path string
}

func (f *FileStore) Load() (*Snapshot, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewSnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}
	snap := NewSnapshot()
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("parsing cache %s: %w", f.Path, err)
	}
	if snap.Entries == nil {
		snap.Entries = NewSnapshot().Entries
	}
	return snap, nil
}

func (f *FileStore) Save(snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	if err := os.Rename(tmp, f.Path); err != nil {
		return fmt.Errorf("replacing cache: %w", err)
	}
	return nil
}

func (f *FileStore) Close() error { return nil }

// MemoryStore keeps the snapshot in memory. Dry runs use it so nothing is written.
type MemoryStore struct {
	data []byte
}

func (m *MemoryStore) Load() (*Snapshot, error) {
	snap := NewSnapshot()
	if m.data == nil {
		return snap, nil
	}
	if err := json.Unmarshal(m.data, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (m *MemoryStore) Save(snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	m.data = data
	return nil
}

func (m *MemoryStore) Close() error { return nil }
