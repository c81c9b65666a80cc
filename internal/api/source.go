package api

import (
	"context"
	"fmt"

	"aoe2-tracker/internal/constants"
	"aoe2-tracker/internal/domain"
	"aoe2-tracker/internal/gamedata"
)

// IDResolver maps a site-space player ID into the native profile ID space
// this API speaks.
type IDResolver interface {
	NativeID(ctx context.Context, siteID string) string
}

// HistorySource adapts the Relic client to the sync coordinator's paged
// source contract. One page is one API batch. An empty batch signals
// end-of-data.
type HistorySource struct {
	client   *RelicClient
	tables   *gamedata.Tables
	resolver IDResolver
}

func NewHistorySource(client *RelicClient, tables *gamedata.Tables, resolver IDResolver) *HistorySource {
	return &HistorySource{client: client, tables: tables, resolver: resolver}
}

func (s *HistorySource) FetchPage(ctx context.Context, playerID string, page int) ([]domain.Match, bool, error) {
	nativeID := s.resolver.NativeID(ctx, playerID)
	start := page * constants.NativePageSize
	resp, err := s.client.GetRecentMatchHistory(ctx, nativeID, start, constants.NativePageSize)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch match history page %d for %s: %w", page, nativeID, err)
	}
	if len(resp.MatchHistoryStats) == 0 {
		return nil, true, nil
	}

	names := resp.ProfileNames()
	matches := make([]domain.Match, 0, len(resp.MatchHistoryStats))
	for _, raw := range resp.MatchHistoryStats {
		matches = append(matches, ParseMatch(raw, names, s.tables))
	}
	return matches, false, nil
}
