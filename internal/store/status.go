package store

import (
	"fmt"
	"os"

	"aoe2-tracker/internal/domain"

	"github.com/goccy/go-json"
)

// LoadStatus reads a player's sync-progress record. The second return is
// false when no status has been persisted yet; readers tolerate missing
// optional fields, so older files decode cleanly.
func (s *Store) LoadStatus(playerID string) (domain.SyncStatus, bool) {
	data, err := os.ReadFile(s.StatusPath(playerID))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("player_id", playerID).Msg("failed to read sync status")
		}
		return domain.SyncStatus{}, false
	}

	var status domain.SyncStatus
	if err := json.Unmarshal(data, &status); err != nil {
		s.logger.Warn().Err(err).Str("player_id", playerID).Msg("sync status is corrupt, starting fresh")
		return domain.SyncStatus{}, false
	}
	return status, true
}

func (s *Store) SaveStatus(playerID string, status domain.SyncStatus) error {
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sync status for %s: %w", playerID, err)
	}
	if err := s.writeAtomic(s.StatusPath(playerID), data); err != nil {
		return fmt.Errorf("failed to save sync status for %s: %w", playerID, err)
	}
	return nil
}
