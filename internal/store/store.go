// Package store owns the on-disk state: one match-list file and one status
// file per player, plus a shared ID-mapping file. Writes go through a
// temp-file-then-rename so a crash mid-write never leaves a truncated file
// for the next reader.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"aoe2-tracker/internal/config"

	"github.com/rs/zerolog"
)

type Store struct {
	dataDir string
	logger  zerolog.Logger
}

func New(cfg *config.Config, logger zerolog.Logger) *Store {
	return &Store{dataDir: cfg.DataDir, logger: logger}
}

func (s *Store) MatchesPath(playerID string) string {
	return filepath.Join(s.dataDir, fmt.Sprintf("matches_%s.json", playerID))
}

func (s *Store) StatusPath(playerID string) string {
	return filepath.Join(s.dataDir, fmt.Sprintf("sync_status_%s.json", playerID))
}

func (s *Store) idMappingsPath() string {
	return filepath.Join(s.dataDir, "id_mappings.json")
}

// writeAtomic persists data by writing a sibling temp file and renaming it
// over the target.
func (s *Store) writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
