// Package server is the HTTP reporting surface over the store, the sync
// coordinator and the analytics engine.
package server

import (
	"errors"
	"net/http"

	"aoe2-tracker/internal/analytics"
	"aoe2-tracker/internal/config"
	"aoe2-tracker/internal/constants"
	"aoe2-tracker/internal/domain"
	"aoe2-tracker/internal/identity"
	"aoe2-tracker/internal/insights"
	"aoe2-tracker/internal/session"
	"aoe2-tracker/internal/store"
	syncer "aoe2-tracker/internal/sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

type TrackerServer struct {
	store       *store.Store
	coordinator *syncer.Coordinator
	resolver    *identity.Resolver
	engine      *analytics.Engine
	insights    *insights.Client
	cfg         *config.Config
	logger      zerolog.Logger
}

func NewTrackerServer(
	st *store.Store,
	coordinator *syncer.Coordinator,
	resolver *identity.Resolver,
	engine *analytics.Engine,
	ins *insights.Client,
	cfg *config.Config,
	logger zerolog.Logger,
) *TrackerServer {
	return &TrackerServer{
		store:       st,
		coordinator: coordinator,
		resolver:    resolver,
		engine:      engine,
		insights:    ins,
		cfg:         cfg,
		logger:      logger,
	}
}

func (s *TrackerServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/player/{id}/matches", s.handleMatches)
	mux.HandleFunc("GET /api/player/{id}/stats", s.handleStats)
	mux.HandleFunc("GET /api/player/{id}/sessions", s.handleSessions)
	mux.HandleFunc("GET /api/player/{id}/status", s.handleStatus)
	mux.HandleFunc("POST /api/player/{id}/backfill", s.handleBackfill)
	mux.HandleFunc("GET /api/search", s.handleSearch)
}

type matchView struct {
	domain.Match
	// Result is the target player's outcome, null when the player is not
	// identifiable in the match.
	Result *bool `json:"result"`
}

func (s *TrackerServer) handleMatches(w http.ResponseWriter, r *http.Request) {
	playerID := r.PathValue("id")

	var matches []domain.Match
	if r.URL.Query().Get("refresh") == "1" {
		refreshed, outcome, err := s.coordinator.Refresh(r.Context(), playerID)
		if err != nil {
			s.writeSyncError(w, r, err)
			return
		}
		s.logger.Info().Str("player_id", playerID).Int("new_matches", outcome.NewMatches).Msg("refresh via api")
		matches = refreshed
	} else {
		matches = s.store.LoadMatches(playerID)
	}

	nativeID := s.resolver.NativeID(r.Context(), playerID)
	views := make([]matchView, 0, len(matches))
	// Newest first for display.
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		view := matchView{Match: m}
		if win, ok := session.Outcome(m, playerID, nativeID); ok {
			view.Result = &win
		}
		views = append(views, view)
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"player_id": playerID,
		"total":     len(views),
		"matches":   views,
	})
}

func (s *TrackerServer) handleStats(w http.ResponseWriter, r *http.Request) {
	playerID := r.PathValue("id")
	matches := s.store.LoadMatches(playerID)
	nativeID := s.resolver.NativeID(r.Context(), playerID)

	s.writeJSON(w, http.StatusOK, map[string]any{
		"player_id": playerID,
		"cached":    len(matches),
		"ranked":    s.engine.Ranked(matches, playerID, nativeID),
	})
}

func (s *TrackerServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	playerID := r.PathValue("id")
	matches := s.store.LoadMatches(playerID)
	nativeID := s.resolver.NativeID(r.Context(), playerID)

	var modeFilter []string
	if mode := r.URL.Query().Get("mode"); mode != "" {
		modeFilter = []string{mode}
	}

	entries, diag := session.Prepare(matches, playerID, nativeID, modeFilter)
	sessions := session.Group(entries, s.cfg.SessionIdleMinutes)

	s.writeJSON(w, http.StatusOK, map[string]any{
		"player_id": playerID,
		"cached":    len(matches),
		"eligible":  len(entries),
		"excluded":  diag,
		"sessions":  len(sessions),
		"stats":     s.engine.Sessions(sessions),
	})
}

func (s *TrackerServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	playerID := r.PathValue("id")
	status, exists := s.store.LoadStatus(playerID)

	s.writeJSON(w, http.StatusOK, map[string]any{
		"player_id": playerID,
		"exists":    exists,
		"status":    status,
	})
}

func (s *TrackerServer) handleBackfill(w http.ResponseWriter, r *http.Request) {
	playerID := r.PathValue("id")

	matches, outcome, err := s.coordinator.Backfill(r.Context(), playerID)
	if err != nil {
		s.writeSyncError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"player_id": playerID,
		"total":     len(matches),
		"outcome":   outcome,
	})
}

func (s *TrackerServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.writeJSON(w, http.StatusOK, []domain.PlayerSuggestion{})
		return
	}

	suggestions, err := s.insights.SearchPlayers(r.Context(), query, constants.SearchSuggestionLimit)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("player search failed")
		s.writeError(w, http.StatusBadGateway, "search unavailable")
		return
	}
	if suggestions == nil {
		suggestions = []domain.PlayerSuggestion{}
	}
	s.writeJSON(w, http.StatusOK, suggestions)
}

// writeSyncError maps the coordinator's sentinel errors onto distinct
// status codes: busy is not a failure, and bad input never reaches I/O.
func (s *TrackerServer) writeSyncError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, syncer.ErrSyncBusy):
		s.writeError(w, http.StatusConflict, "sync already in progress")
	case errors.Is(err, syncer.ErrInvalidPlayerID):
		s.writeError(w, http.StatusBadRequest, "player id must be numeric")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("sync failed")
		s.writeError(w, http.StatusInternalServerError, "sync failed")
	}
}

func (s *TrackerServer) writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *TrackerServer) writeError(w http.ResponseWriter, code int, message string) {
	s.writeJSON(w, code, map[string]string{"error": message})
}
