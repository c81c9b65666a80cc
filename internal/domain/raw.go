package domain

// RawMatch is a source record before normalization. Alternate field names
// mirror the shapes the connectors and older cache files emit; normalization
// picks the first one present.
type RawMatch struct {
	GameID        string    `json:"game_id,omitempty"`
	MatchID       string    `json:"match_id,omitempty"`
	Mode          string    `json:"mode,omitempty"`
	Map           string    `json:"map,omitempty"`
	MapName       string    `json:"map_name,omitempty"`
	Duration      string    `json:"duration,omitempty"`
	StartDateTime string    `json:"start_datetime,omitempty"`
	DateTime      string    `json:"datetime,omitempty"`
	Date          string    `json:"date,omitempty"`
	EndDateTime   string    `json:"end_datetime,omitempty"`
	Teams         []RawTeam `json:"teams,omitempty"`
}

type RawTeam struct {
	Won     bool        `json:"won"`
	Players []RawPlayer `json:"players,omitempty"`
}

type RawPlayer struct {
	PlayerID   string `json:"player_id,omitempty"`
	ID         string `json:"id,omitempty"`
	PlayerName string `json:"player_name,omitempty"`
	Name       string `json:"name,omitempty"`
	CivID      *int   `json:"civ_id,omitempty"`
	Civ        string `json:"civ,omitempty"`
	Elo        *int   `json:"elo,omitempty"`
	EloChange  *int   `json:"elo_change,omitempty"`
	Strategy   string `json:"strategy,omitempty"`
	Won        bool   `json:"won"`
}
