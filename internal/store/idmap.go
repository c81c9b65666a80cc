package store

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// LoadIDMappings reads the shared site-ID → native-ID mapping file. The
// whole file is loaded on each lookup; it stays small.
func (s *Store) LoadIDMappings() map[string]string {
	data, err := os.ReadFile(s.idMappingsPath())
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Msg("failed to read id mappings")
		}
		return map[string]string{}
	}

	var mappings map[string]string
	if err := json.Unmarshal(data, &mappings); err != nil {
		s.logger.Warn().Err(err).Msg("id mapping file is corrupt, starting fresh")
		return map[string]string{}
	}
	if mappings == nil {
		mappings = map[string]string{}
	}
	return mappings
}

// SaveIDMapping records one resolved pair, rewriting the whole file.
func (s *Store) SaveIDMapping(siteID, nativeID string) error {
	mappings := s.LoadIDMappings()
	mappings[siteID] = nativeID

	data, err := json.MarshalIndent(mappings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode id mappings: %w", err)
	}
	if err := s.writeAtomic(s.idMappingsPath(), data); err != nil {
		return fmt.Errorf("failed to save id mappings: %w", err)
	}
	return nil
}
