// Command tracker refreshes the configured players' match history and
// prints ranked and session analytics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	stdsync "sync"

	"aoe2-tracker/internal/analytics"
	"aoe2-tracker/internal/api"
	"aoe2-tracker/internal/config"
	"aoe2-tracker/internal/constants"
	"aoe2-tracker/internal/domain"
	fxmodules "aoe2-tracker/internal/fx"
	"aoe2-tracker/internal/gamedata"
	"aoe2-tracker/internal/identity"
	"aoe2-tracker/internal/insights"
	"aoe2-tracker/internal/logger"
	"aoe2-tracker/internal/session"
	"aoe2-tracker/internal/store"
	syncer "aoe2-tracker/internal/sync"

	"golang.org/x/sync/errgroup"
)

func main() {
	backfill := flag.Bool("backfill", false, "walk older history instead of refreshing recent matches")
	users := flag.String("users", "", "comma-separated player ids (overrides USER_IDS)")
	mode := flag.String("mode", "", "restrict session analytics to one mode, e.g. \"RM 1v1\"")
	pages := flag.Int("pages", 0, "override the page budget for this run")
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load(log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	playerIDs := cfg.UserIDs
	if *users != "" {
		playerIDs = strings.Split(*users, ",")
		for i := range playerIDs {
			playerIDs[i] = strings.TrimSpace(playerIDs[i])
		}
	}
	if len(playerIDs) == 0 {
		log.Fatal().Msg("no players configured; set USER_IDS or pass -users")
	}

	st := store.New(cfg, log)
	relic := api.NewRelicClient()
	ins := insights.NewClient(log)
	resolver := identity.NewResolver(st, relic, ins, log)
	source := fxmodules.ProvideSource(cfg, api.NewHistorySource(relic, gamedata.NewTables(), resolver), insights.NewFeedSource(ins, fxmodules.ProvideNormalizer(cfg)))
	opts := fxmodules.ProvideSyncOptions(cfg)
	if *pages > 0 {
		opts.RefreshPageBudget = *pages
		opts.BackfillPageBudget = *pages
	}
	coordinator := syncer.NewCoordinator(st, source, opts, log)
	engine := analytics.NewEngine(log)

	ctx, cancel := context.WithTimeout(context.Background(), constants.RequestTimeout+cfg.SyncTimeout)
	defer cancel()

	var mu stdsync.Mutex
	matchesByPlayer := make(map[string][]domain.Match, len(playerIDs))
	g, gCtx := errgroup.WithContext(ctx)
	for _, playerID := range playerIDs {
		g.Go(func() error {
			var matches []domain.Match
			var outcome *syncer.Outcome
			var err error
			if *backfill {
				matches, outcome, err = coordinator.Backfill(gCtx, playerID)
			} else {
				matches, outcome, err = coordinator.Refresh(gCtx, playerID)
			}
			if errors.Is(err, syncer.ErrSyncBusy) {
				log.Warn().Str("player_id", playerID).Msg("another sync is in progress, using cached matches")
				mu.Lock()
				matchesByPlayer[playerID] = st.LoadMatches(playerID)
				mu.Unlock()
				return nil
			}
			if err != nil {
				return err
			}
			log.Info().
				Str("player_id", playerID).
				Int("new_matches", outcome.NewMatches).
				Bool("complete", outcome.Complete).
				Msg("sync done")
			mu.Lock()
			matchesByPlayer[playerID] = matches
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("sync failed")
	}

	var modeFilter []string
	if *mode != "" {
		modeFilter = []string{*mode}
	}

	for _, playerID := range playerIDs {
		matches := matchesByPlayer[playerID]
		nativeID := resolver.NativeID(ctx, playerID)

		printRanked(playerID, engine.Ranked(matches, playerID, nativeID), engine)
		printSessions(playerID, matches, playerID, nativeID, modeFilter, cfg, engine)
	}
}

func printRanked(playerID string, stats *analytics.RankedStats, engine *analytics.Engine) {
	fmt.Printf("\n=== Ranked RM 1v1 analytics [%s] ===\n", playerID)
	fmt.Printf("matches: %d, wins: %d, win rate: %.1f%%\n", stats.Total, stats.Wins, stats.WinRate)

	fmt.Println("Frequent opponents (top 5):")
	for _, row := range head(stats.Opponents, 5) {
		fmt.Printf("  %s: %d matches, %d wins (%.1f%% win)\n", row.Name, row.Matches, row.Wins, row.WinRate)
	}

	fmt.Println("Win rates by match duration:")
	byLabel := make(map[string]analytics.Row, len(stats.Duration))
	for _, row := range stats.Duration {
		byLabel[row.Key] = row
	}
	for _, label := range engine.DurationOrder() {
		row := byLabel[label]
		fmt.Printf("  %s: %.1f%% (%d / %d)\n", label, row.WinRate, row.Wins, row.Matches)
	}

	fmt.Println("Win rates by your civilization (top 10):")
	for _, row := range head(stats.Civs, 10) {
		fmt.Printf("  %s: %.1f%% (%d / %d)\n", row.Key, row.WinRate, row.Wins, row.Matches)
	}

	fmt.Println("Win rates by opponent civilization (top 10):")
	for _, row := range head(stats.OppCivs, 10) {
		fmt.Printf("  %s: %.1f%% (%d / %d)\n", row.Key, row.WinRate, row.Wins, row.Matches)
	}
}

func printSessions(playerID string, matches []domain.Match, siteID, nativeID string, modeFilter []string, cfg *config.Config, engine *analytics.Engine) {
	entries, diag := session.Prepare(matches, siteID, nativeID, modeFilter)
	sessions := session.Group(entries, cfg.SessionIdleMinutes)
	stats := engine.Sessions(sessions)

	scope := "all modes"
	if len(modeFilter) > 0 {
		scope = strings.Join(modeFilter, ", ")
	}
	fmt.Printf("\n=== Session analytics (%s) [%s] ===\n", scope, playerID)
	fmt.Printf("cached: %d, eligible: %d (filtered out: %d, parse-fail: %d), sessions: %d\n",
		len(matches), len(entries), diag.FilteredOut, diag.ParseFailed, len(sessions))

	fmt.Println("Winrate by session match count:")
	for _, row := range stats.BySessionLength {
		fmt.Printf("  %s games: %.1f%% (%d / %d)\n", row.Key, row.WinRate, row.Wins, row.Matches)
	}

	fmt.Println("Winrate after previous result:")
	fmt.Printf("  after win: %.1f%% (%d / %d)\n", stats.AfterWin.WinRate, stats.AfterWin.Wins, stats.AfterWin.Matches)
	fmt.Printf("  after loss: %.1f%% (%d / %d)\n", stats.AfterLoss.WinRate, stats.AfterLoss.Wins, stats.AfterLoss.Matches)

	fmt.Println("Winrate after streak of 2:")
	fmt.Printf("  after 2 wins: %.1f%% (%d / %d)\n", stats.AfterTwoWins.WinRate, stats.AfterTwoWins.Wins, stats.AfterTwoWins.Matches)
	fmt.Printf("  after 2 losses: %.1f%% (%d / %d)\n", stats.AfterTwoLosses.WinRate, stats.AfterTwoLosses.Wins, stats.AfterTwoLosses.Matches)

	fmt.Println("Winrate by nth game in session:")
	for _, row := range stats.ByPosition {
		fmt.Printf("  Game %s: %.1f%% (%d / %d)\n", row.Key, row.WinRate, row.Wins, row.Matches)
	}
}

func head(rows []analytics.Row, n int) []analytics.Row {
	if len(rows) < n {
		return rows
	}
	return rows[:n]
}
