// Package normalize converts raw source records into the canonical match
// model. Records without a game ID are dropped, never stored.
package normalize

import (
	"regexp"
	"strings"
	"time"

	"aoe2-tracker/internal/domain"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	mapExtension = regexp.MustCompile(`(?i)\.rms\d*$`)
	titleCaser   = cases.Title(language.English)
)

// mapPlaceholders are free-text map names kept verbatim instead of being
// title-cased.
var mapPlaceholders = map[string]bool{
	"my map": true,
}

// CleanMapName strips a trailing .rms/.rms2-style extension and title-cases
// the result unless it is a known free-text placeholder.
func CleanMapName(name string) string {
	if name == "" {
		return "Unknown"
	}
	name = mapExtension.ReplaceAllString(name, "")
	if !mapPlaceholders[strings.ToLower(name)] {
		name = titleCaser.String(name)
	}
	return strings.TrimSpace(name)
}

// DetermineWin resolves a single player's result. Priority: a nonzero elo
// change decides by sign; else an explicit outcome flag (1 = win); else the
// team's won flag.
func DetermineWin(team domain.Team, player domain.Player) bool {
	if player.EloChange != nil && *player.EloChange != 0 {
		return *player.EloChange > 0
	}
	if player.Outcome != nil {
		return *player.Outcome == 1
	}
	return team.Won
}

// Normalizer converts raw records to canonical matches. speedFactor is the
// game-clock speedup used when inferring a missing start time from a known
// end time.
type Normalizer struct {
	speedFactor float64
}

func New(speedFactor float64) *Normalizer {
	return &Normalizer{speedFactor: speedFactor}
}

// Match normalizes a raw record, or returns nil when the record carries no
// game ID.
func (n *Normalizer) Match(raw domain.RawMatch) *domain.Match {
	gameID := raw.GameID
	if gameID == "" {
		gameID = raw.MatchID
	}
	if gameID == "" {
		return nil
	}

	rawMap := raw.Map
	if rawMap == "" {
		rawMap = raw.MapName
	}
	if rawMap == "" {
		rawMap = "Unknown Map"
	}

	teams := make([]domain.Team, 0, len(raw.Teams))
	for _, rt := range raw.Teams {
		players := make([]domain.Player, 0, len(rt.Players))
		for _, p := range rt.Players {
			playerID := p.PlayerID
			if playerID == "" {
				playerID = p.ID
			}
			playerName := p.PlayerName
			if playerName == "" {
				playerName = p.Name
			}
			players = append(players, domain.Player{
				PlayerID:   playerID,
				PlayerName: playerName,
				CivID:      p.CivID,
				Civ:        p.Civ,
				Elo:        p.Elo,
				EloChange:  p.EloChange,
				Strategy:   p.Strategy,
			})
		}

		// The raw team flag is only the fallback signal; each player's
		// result resolves by priority, and the team is recorded as won
		// when any member individually resolved to a win.
		sourceFlag := domain.Team{Won: rt.Won}
		won := rt.Won
		if len(players) > 0 {
			won = false
			for i := range players {
				players[i].Won = DetermineWin(sourceFlag, players[i])
				if players[i].Won {
					won = true
				}
			}
		}
		teams = append(teams, domain.Team{Won: won, Players: players})
	}

	var start, end time.Time
	if rawStart := firstNonEmpty(raw.StartDateTime, raw.DateTime, raw.Date); rawStart != "" {
		start, _ = ParseDateTime(rawStart)
	}
	if raw.EndDateTime != "" {
		end, _ = ParseDateTime(raw.EndDateTime)
	}
	if start.IsZero() && !end.IsZero() {
		if realSeconds, ok := RealDurationSeconds(raw.Duration, n.speedFactor); ok {
			start = end.Add(-time.Duration(realSeconds * float64(time.Second)))
		}
	}

	return &domain.Match{
		GameID:    gameID,
		Mode:      raw.Mode,
		Map:       CleanMapName(rawMap),
		Duration:  raw.Duration,
		StartTime: FormatDateTime(start),
		EndTime:   FormatDateTime(end),
		Teams:     teams,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
