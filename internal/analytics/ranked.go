package analytics

import (
	"fmt"

	"aoe2-tracker/internal/domain"
	"aoe2-tracker/internal/normalize"
)

// rankedModes are the mode labels counted as ranked 1v1.
var rankedModes = map[string]bool{
	"RM 1v1": true,
	"1v1":    true,
}

// RankedStats is the ranked-1v1 breakdown: overall record plus tallies by
// opponent, own civilization, opponent civilization, map and duration
// bucket.
type RankedStats struct {
	Total     int     `json:"total"`
	Wins      int     `json:"wins"`
	WinRate   float64 `json:"win_rate"`
	Opponents []Row   `json:"opponents"`
	Civs      []Row   `json:"civs"`
	OppCivs   []Row   `json:"opp_civs"`
	Maps      []Row   `json:"maps"`
	Duration  []Row   `json:"duration"`
}

// Ranked computes the ranked-1v1 breakdown for the target player, who may
// appear under either ID space.
func (e *Engine) Ranked(matches []domain.Match, siteID, nativeID string) *RankedStats {
	stats := &RankedStats{}
	opponents := make(map[string]*Bucket)
	opponentNames := make(map[string]string)
	civs := make(map[string]*Bucket)
	oppCivs := make(map[string]*Bucket)
	maps := make(map[string]*Bucket)
	duration := make(map[string]*Bucket)

	for _, m := range matches {
		if !rankedModes[m.Mode] {
			continue
		}

		userTeam := -1
		var userPlayer *domain.Player
		for idx, team := range m.Teams {
			for i, p := range team.Players {
				if p.PlayerID != "" && (p.PlayerID == siteID || p.PlayerID == nativeID) {
					userTeam = idx
					userPlayer = &m.Teams[idx].Players[i]
					break
				}
			}
			if userPlayer != nil {
				break
			}
		}
		if userPlayer == nil {
			continue
		}

		var oppPlayers []domain.Player
		for idx, team := range m.Teams {
			if idx != userTeam {
				oppPlayers = append(oppPlayers, team.Players...)
			}
		}
		if len(oppPlayers) == 0 {
			continue
		}

		userWin := m.Teams[userTeam].Won
		stats.Total++
		if userWin {
			stats.Wins++
		}

		if seconds, ok := normalize.DurationSeconds(m.Duration); ok {
			if label, found := e.bucketLabel(seconds); found {
				tally(duration, label).add(userWin)
			}
		}
		if userPlayer.Civ != "" {
			tally(civs, userPlayer.Civ).add(userWin)
		}
		if m.Map != "" {
			tally(maps, m.Map).add(userWin)
		}

		for _, op := range oppPlayers {
			key := op.PlayerID
			if key == "" {
				key = fmt.Sprintf("name:%s", op.PlayerName)
			}
			name := op.PlayerName
			if name == "" {
				name = key
			}
			opponentNames[key] = name
			tally(opponents, key).add(userWin)

			if op.Civ != "" {
				tally(oppCivs, op.Civ).add(userWin)
			}
		}
	}

	stats.WinRate = winRate(stats.Wins, stats.Total)
	stats.Opponents = namedRows(opponents, opponentNames)
	stats.Civs = finalizedRows(civs)
	stats.OppCivs = finalizedRows(oppCivs)
	stats.Maps = finalizedRows(maps)
	stats.Duration = finalizedRows(duration)
	return stats
}

func tally(buckets map[string]*Bucket, key string) *Bucket {
	b, ok := buckets[key]
	if !ok {
		b = &Bucket{}
		buckets[key] = b
	}
	return b
}

func finalizedRows(buckets map[string]*Bucket) []Row {
	for _, b := range buckets {
		b.finalize()
	}
	return rankedRows(buckets)
}

func namedRows(buckets map[string]*Bucket, names map[string]string) []Row {
	rows := finalizedRows(buckets)
	for i := range rows {
		rows[i].Name = names[rows[i].Key]
	}
	return rows
}
