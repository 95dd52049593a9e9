package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rand/homer-sub001/internal/store"
)

// openStore opens the SQLite store at repoRoot/cfg.DBPath, creating
// its parent directory (.homer/) if necessary.
func openStore(repoRoot string) (*store.SQLiteStore, error) {
	path := dbPath(repoRoot, cfg)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	s, err := store.NewSQLiteStore(path, logger)
	if err != nil {
		return nil, fmt.Errorf("open store at %s: %w", path, err)
	}
	return s, nil
}
