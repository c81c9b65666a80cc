// Package identity reconciles the two player ID spaces: the match-listing
// site's user ID and the native API's profile ID.
package identity

import (
	"context"

	"aoe2-tracker/internal/api"
	"aoe2-tracker/internal/constants"
	"aoe2-tracker/internal/insights"
	"aoe2-tracker/internal/store"

	"github.com/rs/zerolog"
)

type Resolver struct {
	store    *store.Store
	relic    *api.RelicClient
	insights *insights.Client
	logger   zerolog.Logger
}

func NewResolver(st *store.Store, relic *api.RelicClient, ins *insights.Client, logger zerolog.Logger) *Resolver {
	return &Resolver{store: st, relic: relic, insights: ins, logger: logger}
}

// NativeID resolves a site-space ID to the native profile ID. Resolution is
// opportunistic: the persistent mapping cache first, then a cheap existence
// probe against the native API (some site IDs already are native IDs), then
// the embedded identifier on the scraped profile page. The result is cached
// indefinitely; when everything fails the input ID is returned unchanged.
func (r *Resolver) NativeID(ctx context.Context, siteID string) string {
	mappings := r.store.LoadIDMappings()
	if nativeID, ok := mappings[siteID]; ok {
		return nativeID
	}

	probeCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()
	exists, err := r.relic.ProfileExists(probeCtx, siteID)
	if err != nil {
		r.logger.Debug().Err(err).Str("site_id", siteID).Msg("native id probe failed")
	} else if exists {
		r.logger.Info().Str("site_id", siteID).Msg("id verified as native profile id")
		r.cache(siteID, siteID)
		return siteID
	}

	scrapeCtx, cancel := context.WithTimeout(ctx, constants.ProfileProbeTimeout)
	defer cancel()
	nativeID, err := r.insights.FindGameID(scrapeCtx, siteID)
	if err != nil {
		r.logger.Warn().Err(err).Str("site_id", siteID).Msg("could not resolve native id, using site id as-is")
		return siteID
	}

	r.logger.Info().Str("site_id", siteID).Str("native_id", nativeID).Msg("resolved native profile id")
	r.cache(siteID, nativeID)
	return nativeID
}

func (r *Resolver) cache(siteID, nativeID string) {
	if err := r.store.SaveIDMapping(siteID, nativeID); err != nil {
		r.logger.Warn().Err(err).Str("site_id", siteID).Msg("failed to persist id mapping")
	}
}
