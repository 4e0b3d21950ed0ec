package profile

import (
	"fmt"
	"os"
	"path/filepath"

	"quickbackup/internal/backup"
	"quickbackup/internal/config"
)

// NewStoreFromConfig creates a ProfileStore implementation based on the
// database config type.
func NewStoreFromConfig(cfg config.DatabaseConfig, idgen backup.IDGenerator, clock backup.Clock) (backup.ProfileStore, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, "profiles.db"), idgen, clock)
	case "memory":
		return NewSQLiteStore(":memory:", idgen, clock)
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
