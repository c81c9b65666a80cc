// Package sync orchestrates incremental fetching of a player's match
// history into the local store: paginated walks with a known-ID cutoff,
// resumable backfill, and single-writer coordination across processes.
package sync

import (
	"context"
	"errors"
	"time"

	"aoe2-tracker/internal/domain"
	"aoe2-tracker/internal/store"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

var (
	// ErrSyncBusy reports that another writer holds the sync lock for the
	// player. Callers retry later instead of queueing.
	ErrSyncBusy = errors.New("sync already in progress for this player")

	// ErrInvalidPlayerID reports a malformed player identifier, rejected
	// before any I/O.
	ErrInvalidPlayerID = errors.New("player id must be numeric")
)

// Source yields canonical matches one page at a time. The bool return
// signals end-of-data: the walk ran past the player's recorded history.
// Sources that speak a different ID space resolve the player ID themselves.
type Source interface {
	FetchPage(ctx context.Context, playerID string, page int) ([]domain.Match, bool, error)
}

// Options bound a single sync call. The page budget and the wall-clock
// timeout are enforced independently; exhausting either makes the outcome
// partial.
type Options struct {
	RefreshPageBudget  int
	BackfillPageBudget int
	Timeout            time.Duration
}

// Outcome describes what one sync call achieved.
type Outcome struct {
	NewMatches  int  `json:"new_matches"`
	Complete    bool `json:"complete"`
	KnownCutoff bool `json:"known_cutoff"`
	ReachedEnd  bool `json:"reached_end"`
	LastPage    int  `json:"last_page"`
	TimedOut    bool `json:"timed_out"`
}

type Coordinator struct {
	store  *store.Store
	source Source
	opts   Options
	logger zerolog.Logger
}

func NewCoordinator(st *store.Store, source Source, opts Options, logger zerolog.Logger) *Coordinator {
	return &Coordinator{store: st, source: source, opts: opts, logger: logger}
}

// Refresh fetches from the newest page backward until it meets a match the
// store already knows, the source runs out of data, or a bound fires. The
// merged list is saved once at the end; the new copy of a game ID wins.
func (c *Coordinator) Refresh(ctx context.Context, playerID string) ([]domain.Match, *Outcome, error) {
	if !validPlayerID(playerID) {
		return nil, nil, ErrInvalidPlayerID
	}

	lock, acquired, err := c.store.AcquireSyncLock(playerID)
	if err != nil {
		return nil, nil, err
	}
	if !acquired {
		return nil, nil, ErrSyncBusy
	}
	defer lock.Unlock()

	logger := c.runLogger(playerID, "refresh")
	prior, _ := c.store.LoadStatus(playerID)
	cached := c.store.LoadMatches(playerID)
	known := make(map[string]bool, len(cached))
	for _, m := range cached {
		known[m.GameID] = true
	}
	logger.Info().Int("cached", len(cached)).Msg("starting refresh")

	fetched, outcome := c.walk(ctx, logger, playerID, walkParams{
		startPage:   0,
		pageBudget:  c.opts.RefreshPageBudget,
		stopAtKnown: true,
		known:       known,
	})

	merged := store.MergeMatches(cached, fetched)
	if err := c.store.SaveMatches(playerID, merged); err != nil {
		return nil, nil, err
	}

	outcome.Complete = combineComplete(outcome, prior)
	status := domain.SyncStatus{
		IsComplete:      outcome.Complete,
		LastPageFetched: max(prior.LastPageFetched, outcome.LastPage),
		LastRefresh:     time.Now(),
	}
	if err := c.store.SaveStatus(playerID, status); err != nil {
		return nil, nil, err
	}

	final := c.store.LoadMatches(playerID)
	logger.Info().
		Int("new_matches", outcome.NewMatches).
		Bool("complete", outcome.Complete).
		Bool("known_cutoff", outcome.KnownCutoff).
		Bool("reached_end", outcome.ReachedEnd).
		Bool("timed_out", outcome.TimedOut).
		Int("total", len(final)).
		Msg("refresh finished")
	return final, outcome, nil
}

// Backfill resumes from the page after the last one recorded in the status
// file and walks toward older history in fixed-size batches. It does not
// stop at known IDs, reloads the store before each batch to merge safely
// against concurrent writers, and persists status after every batch so a
// crash loses at most one batch of progress.
func (c *Coordinator) Backfill(ctx context.Context, playerID string) ([]domain.Match, *Outcome, error) {
	if !validPlayerID(playerID) {
		return nil, nil, ErrInvalidPlayerID
	}

	lock, acquired, err := c.store.AcquireSyncLock(playerID)
	if err != nil {
		return nil, nil, err
	}
	if !acquired {
		return nil, nil, ErrSyncBusy
	}
	defer lock.Unlock()

	logger := c.runLogger(playerID, "backfill")
	// A player with no status record has never been fetched at all, so
	// the walk starts from the newest page instead of skipping it.
	prior, hasPrior := c.store.LoadStatus(playerID)
	startPage := 0
	if hasPrior {
		startPage = prior.LastPageFetched + 1
	}
	logger.Info().Int("start_page", startPage).Msg("starting backfill")

	outcome := &Outcome{LastPage: startPage - 1}
	deadline := time.Now().Add(c.opts.Timeout)

	for i := 0; i < c.opts.BackfillPageBudget; i++ {
		page := startPage + i
		if time.Now().After(deadline) {
			outcome.TimedOut = true
			break
		}

		pageCtx, cancel := context.WithDeadline(ctx, deadline)
		matches, endOfData, err := c.source.FetchPage(pageCtx, playerID, page)
		cancel()
		if err != nil {
			logger.Warn().Err(err).Int("page", page).Msg("backfill batch aborted")
			break
		}
		if endOfData {
			outcome.ReachedEnd = true
			break
		}

		// Reload before merging: a concurrent refresh may have replaced
		// the file since the previous batch.
		cached := c.store.LoadMatches(playerID)
		if err := c.store.SaveMatches(playerID, store.MergeMatches(cached, matches)); err != nil {
			return nil, nil, err
		}
		outcome.NewMatches += len(matches)
		outcome.LastPage = page

		status := domain.SyncStatus{
			IsComplete:      false,
			LastPageFetched: page,
			LastRefresh:     time.Now(),
		}
		if err := c.store.SaveStatus(playerID, status); err != nil {
			return nil, nil, err
		}
		logger.Debug().Int("page", page).Int("batch", len(matches)).Msg("backfill batch merged")
	}

	outcome.Complete = combineComplete(outcome, prior)
	status := domain.SyncStatus{
		IsComplete:      outcome.Complete,
		LastPageFetched: outcome.LastPage,
		LastRefresh:     time.Now(),
	}
	if err := c.store.SaveStatus(playerID, status); err != nil {
		return nil, nil, err
	}

	final := c.store.LoadMatches(playerID)
	logger.Info().
		Int("new_matches", outcome.NewMatches).
		Bool("complete", outcome.Complete).
		Bool("reached_end", outcome.ReachedEnd).
		Bool("timed_out", outcome.TimedOut).
		Int("last_page", outcome.LastPage).
		Int("total", len(final)).
		Msg("backfill finished")
	return final, outcome, nil
}

type walkParams struct {
	startPage   int
	pageBudget  int
	stopAtKnown bool
	known       map[string]bool
}

// walk runs the bounded page loop shared by refresh. Pages advance in
// strictly increasing order; a transient fetch error aborts the walk and
// leaves the outcome partial.
func (c *Coordinator) walk(ctx context.Context, logger zerolog.Logger, playerID string, p walkParams) ([]domain.Match, *Outcome) {
	outcome := &Outcome{LastPage: p.startPage - 1}
	deadline := time.Now().Add(c.opts.Timeout)
	seen := make(map[string]bool)
	var fetched []domain.Match

	for i := 0; i < p.pageBudget; i++ {
		page := p.startPage + i
		if time.Now().After(deadline) {
			outcome.TimedOut = true
			break
		}

		pageCtx, cancel := context.WithDeadline(ctx, deadline)
		matches, endOfData, err := c.source.FetchPage(pageCtx, playerID, page)
		cancel()
		if err != nil {
			logger.Warn().Err(err).Int("page", page).Msg("fetch aborted")
			break
		}
		if endOfData {
			outcome.ReachedEnd = true
			break
		}

		for _, m := range matches {
			if p.stopAtKnown && p.known[m.GameID] {
				logger.Debug().Str("game_id", m.GameID).Msg("met cached match, stopping")
				outcome.KnownCutoff = true
				break
			}
			if seen[m.GameID] {
				continue
			}
			fetched = append(fetched, m)
			seen[m.GameID] = true
		}
		outcome.LastPage = page
		outcome.NewMatches = len(fetched)
		if outcome.KnownCutoff {
			break
		}
	}
	return fetched, outcome
}

// combineComplete folds one call's outputs into the persisted completeness
// flag: reaching the natural end always completes; a known-ID cutoff only
// preserves completeness the prior state already had.
func combineComplete(outcome *Outcome, prior domain.SyncStatus) bool {
	if outcome.ReachedEnd {
		return true
	}
	if outcome.KnownCutoff && prior.IsComplete {
		return true
	}
	return false
}

func (c *Coordinator) runLogger(playerID, op string) zerolog.Logger {
	runID, err := gonanoid.New(8)
	if err != nil {
		runID = "unknown"
	}
	return c.logger.With().Str("player_id", playerID).Str("op", op).Str("run_id", runID).Logger()
}

func validPlayerID(playerID string) bool {
	if playerID == "" {
		return false
	}
	for _, r := range playerID {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
