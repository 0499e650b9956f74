package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ynabmigrate/ynabmigrate/internal/firefly"
)

// cacheEntry is one cached resource.
type cacheEntry struct {
	Kind       string `gorm:"primaryKey"`
	Key        string `gorm:"primaryKey"`
	ResourceID string
	Type       string
	Attributes string // JSON object
}

// cachedKind marks a kind as listed, so empty kinds survive a round trip.
type cachedKind struct {
	Kind string `gorm:"primaryKey"`
}

// SQLiteStore keeps the snapshot in a SQLite database.
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	if err := db.AutoMigrate(&cacheEntry{}, &cachedKind{}); err != nil {
		return nil, fmt.Errorf("failed to migrate cache schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load() (*Snapshot, error) {
	snap := NewSnapshot()

	var kinds []cachedKind
	if err := s.db.Find(&kinds).Error; err != nil {
		return nil, fmt.Errorf("loading cached kinds: %w", err)
	}
	for _, k := range kinds {
		snap.Fill(Kind(k.Kind), nil)
	}

	var entries []cacheEntry
	if err := s.db.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("loading cache entries: %w", err)
	}
	for _, e := range entries {
		res := firefly.Resource{Type: e.Type, ID: e.ResourceID}
		if err := json.Unmarshal([]byte(e.Attributes), &res.Attributes); err != nil {
			return nil, fmt.Errorf("cache entry %s/%s: %w", e.Kind, e.Key, err)
		}
		snap.Put(Kind(e.Kind), e.Key, res)
	}
	return snap, nil
}

func (s *SQLiteStore) Save(snap *Snapshot) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := all.Delete(&cacheEntry{}).Error; err != nil {
			return fmt.Errorf("clearing cache entries: %w", err)
		}
		if err := all.Delete(&cachedKind{}).Error; err != nil {
			return fmt.Errorf("clearing cached kinds: %w", err)
		}

		for kind, entries := range snap.Entries {
			if err := tx.Create(&cachedKind{Kind: string(kind)}).Error; err != nil {
				return fmt.Errorf("saving kind %s: %w", kind, err)
			}
			for key, res := range entries {
				attrs, err := json.Marshal(res.Attributes)
				if err != nil {
					return fmt.Errorf("encoding %s/%s: %w", kind, key, err)
				}
				e := cacheEntry{
					Kind:       string(kind),
					Key:        key,
					ResourceID: res.ID,
					Type:       res.Type,
					Attributes: string(attrs),
				}
				if err := tx.Create(&e).Error; err != nil {
					return fmt.Errorf("saving %s/%s: %w", kind, key, err)
				}
			}
		}
		return nil
	})
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
