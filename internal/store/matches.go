package store

import (
	"fmt"
	"os"
	"slices"
	"time"

	"aoe2-tracker/internal/domain"
	"aoe2-tracker/internal/normalize"

	"github.com/goccy/go-json"
)

// LoadMatches reads a player's cached match list. A missing file yields an
// empty list; a corrupt file logs a warning and yields an empty list rather
// than failing the caller. Entries without a game ID are dropped.
func (s *Store) LoadMatches(playerID string) []domain.Match {
	data, err := os.ReadFile(s.MatchesPath(playerID))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("player_id", playerID).Msg("failed to read match cache")
		}
		return []domain.Match{}
	}

	var raw []domain.Match
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Warn().Err(err).Str("player_id", playerID).Msg("match cache is corrupt, starting fresh")
		return []domain.Match{}
	}

	matches := make([]domain.Match, 0, len(raw))
	for _, m := range raw {
		if m.GameID != "" {
			matches = append(matches, m)
		}
	}
	return matches
}

// SaveMatches deduplicates by game ID (the later entry in the slice wins,
// so freshly fetched copies override cached ones), sorts ascending by start
// time and persists the list atomically.
func (s *Store) SaveMatches(playerID string, matches []domain.Match) error {
	unique := make(map[string]domain.Match, len(matches))
	order := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.GameID == "" {
			continue
		}
		if _, seen := unique[m.GameID]; !seen {
			order = append(order, m.GameID)
		}
		unique[m.GameID] = m
	}

	deduped := make([]domain.Match, 0, len(order))
	for _, gid := range order {
		deduped = append(deduped, unique[gid])
	}
	slices.SortStableFunc(deduped, func(a, b domain.Match) int {
		return sortKey(a).Compare(sortKey(b))
	})

	data, err := json.MarshalIndent(deduped, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode matches for %s: %w", playerID, err)
	}
	if err := s.writeAtomic(s.MatchesPath(playerID), data); err != nil {
		return fmt.Errorf("failed to save matches for %s: %w", playerID, err)
	}

	s.logger.Debug().Str("player_id", playerID).Int("count", len(deduped)).Msg("match cache saved")
	return nil
}

// KnownIDs returns the set of game IDs already cached for a player.
func (s *Store) KnownIDs(playerID string) map[string]bool {
	matches := s.LoadMatches(playerID)
	known := make(map[string]bool, len(matches))
	for _, m := range matches {
		known[m.GameID] = true
	}
	return known
}

// sortKey orders matches chronologically: start time, falling back to end
// time, then to the zero-time sentinel when both are absent.
func sortKey(m domain.Match) time.Time {
	if ts, ok := normalize.ParseDateTime(m.StartTime); ok {
		return ts
	}
	if ts, ok := normalize.ParseDateTime(m.EndTime); ok {
		return ts
	}
	return time.Time{}
}

// MergeMatches overlays freshly fetched matches on a cached list. The new
// copy of a game ID wins.
func MergeMatches(cached, fetched []domain.Match) []domain.Match {
	merged := make([]domain.Match, 0, len(cached)+len(fetched))
	merged = append(merged, cached...)
	merged = append(merged, fetched...)
	return merged
}
