package domain

import (
	"time"
)

// Match is the canonical representation every source is converted into
// before storage. Matches without a GameID are never stored.
type Match struct {
	GameID    string `json:"game_id"`
	Mode      string `json:"mode,omitempty"`
	Map       string `json:"map,omitempty"`
	Duration  string `json:"duration,omitempty"`
	StartTime string `json:"start_datetime,omitempty"`
	EndTime   string `json:"end_datetime,omitempty"`
	Teams     []Team `json:"teams"`
}

type Team struct {
	Won     bool     `json:"won"`
	Players []Player `json:"players"`
}

type Player struct {
	PlayerID   string `json:"player_id,omitempty"`
	PlayerName string `json:"player_name,omitempty"`
	CivID      *int   `json:"civ_id,omitempty"`
	Civ        string `json:"civ,omitempty"`
	Elo        *int   `json:"elo,omitempty"`
	EloChange  *int   `json:"elo_change,omitempty"`
	Strategy   string `json:"strategy,omitempty"`
	Won        bool   `json:"won"`

	// Outcome is the source's explicit per-player result flag (1 = win,
	// 0 = loss). Consulted only when EloChange is absent or zero; not
	// persisted.
	Outcome *int `json:"-"`
}

// SyncStatus records per-player fetch progress. Created on the first fetch
// attempt, mutated after every batch, never deleted.
type SyncStatus struct {
	IsComplete      bool      `json:"is_complete"`
	LastPageFetched int       `json:"last_page_fetched"`
	LastRefresh     time.Time `json:"last_refresh"`
}

// SessionEntry is a match annotated with resolved timestamps and the local
// player's result. Derived, never persisted.
type SessionEntry struct {
	Start time.Time
	End   time.Time
	Win   bool
	Match Match
}

// Session is a run of entries separated from its neighbours by an idle gap.
type Session []SessionEntry

// PlayerSuggestion is a search hit from the match-listing site.
type PlayerSuggestion struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
