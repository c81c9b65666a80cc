package insights

import (
	"context"

	"aoe2-tracker/internal/domain"
	"aoe2-tracker/internal/normalize"
)

// FeedSource adapts the HTML match listing to the sync coordinator's paged
// source contract. Tiles that fail normalization are dropped; processing
// continues with the rest of the page.
type FeedSource struct {
	client     *Client
	normalizer *normalize.Normalizer
}

func NewFeedSource(client *Client, normalizer *normalize.Normalizer) *FeedSource {
	return &FeedSource{client: client, normalizer: normalizer}
}

func (s *FeedSource) FetchPage(ctx context.Context, playerID string, page int) ([]domain.Match, bool, error) {
	raws, endOfData, err := s.client.FetchMatchPage(ctx, playerID, page)
	if err != nil {
		return nil, false, err
	}
	if endOfData {
		return nil, true, nil
	}

	matches := make([]domain.Match, 0, len(raws))
	for _, raw := range raws {
		if m := s.normalizer.Match(raw); m != nil {
			matches = append(matches, *m)
		}
	}
	return matches, false, nil
}
