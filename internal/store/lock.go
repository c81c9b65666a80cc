package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// AcquireSyncLock takes the advisory cross-process lock guarding a player's
// status record. It never blocks: the second return is false when another
// writer holds the lock. Callers must Unlock the returned lock when done.
func (s *Store) AcquireSyncLock(playerID string) (*flock.Flock, bool, error) {
	path := s.StatusPath(playerID) + ".lock"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, false, fmt.Errorf("failed to create data dir: %w", err)
	}

	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire sync lock for %s: %w", playerID, err)
	}
	if !locked {
		return nil, false, nil
	}
	return lock, true, nil
}
