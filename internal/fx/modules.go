package fx

import (
	"aoe2-tracker/internal/analytics"
	"aoe2-tracker/internal/api"
	"aoe2-tracker/internal/config"
	"aoe2-tracker/internal/constants"
	"aoe2-tracker/internal/gamedata"
	"aoe2-tracker/internal/identity"
	"aoe2-tracker/internal/insights"
	"aoe2-tracker/internal/logger"
	"aoe2-tracker/internal/normalize"
	"aoe2-tracker/internal/server"
	"aoe2-tracker/internal/store"
	syncer "aoe2-tracker/internal/sync"

	"go.uber.org/fx"
)

func ProvideNormalizer(cfg *config.Config) *normalize.Normalizer {
	return normalize.New(cfg.GameSpeedFactor)
}

func ProvideIDResolver(resolver *identity.Resolver) api.IDResolver {
	return resolver
}

// ProvideSource picks the sync source: the structured API by default, the
// HTML match feed when configured.
func ProvideSource(cfg *config.Config, history *api.HistorySource, feed *insights.FeedSource) syncer.Source {
	if cfg.MatchSource == "feed" {
		return feed
	}
	return history
}

func ProvideSyncOptions(cfg *config.Config) syncer.Options {
	return syncer.Options{
		RefreshPageBudget:  min(cfg.MaxFetchPages, constants.RefreshPageBudget),
		BackfillPageBudget: min(cfg.MaxFetchPages, constants.BackfillPageBudget),
		Timeout:            cfg.SyncTimeout,
	}
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(gamedata.NewTables),
	fx.Provide(ProvideNormalizer),
	// storage
	fx.Provide(store.New),
	// connectors
	fx.Provide(api.NewRelicClient),
	fx.Provide(insights.NewClient),
	fx.Provide(identity.NewResolver),
	fx.Provide(ProvideIDResolver),
	fx.Provide(api.NewHistorySource),
	fx.Provide(insights.NewFeedSource),
	// sync
	fx.Provide(ProvideSource),
	fx.Provide(ProvideSyncOptions),
	fx.Provide(syncer.NewCoordinator),
	// analytics
	fx.Provide(analytics.NewEngine),
	// server
	fx.Provide(server.NewTrackerServer),
)
