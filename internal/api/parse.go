package api

import (
	"fmt"
	"sort"
	"time"

	"aoe2-tracker/internal/domain"
	"aoe2-tracker/internal/gamedata"
	"aoe2-tracker/internal/normalize"
)

// ParseMatch converts one raw API record into the canonical model. The
// profile names come from the response's side-table.
func ParseMatch(raw MatchHistoryStat, names map[string]string, tables *gamedata.Tables) domain.Match {
	var start, end time.Time
	if raw.StartGameTime > 0 {
		start = time.Unix(raw.StartGameTime, 0)
	}
	if raw.CompletionTime > 0 {
		end = time.Unix(raw.CompletionTime, 0)
	}

	var duration string
	if raw.StartGameTime > 0 && raw.CompletionTime > 0 {
		duration = formatDuration(raw.CompletionTime - raw.StartGameTime)
	}

	byTeam := make(map[int][]domain.Player)
	teamIDs := make([]int, 0, 2)
	for _, member := range raw.Members {
		profileID := fmt.Sprintf("%d", member.ProfileID)
		name, ok := names[profileID]
		if !ok {
			name = "Unknown"
		}

		var civName string
		if member.CivilizationID != nil {
			civName = tables.CivName(*member.CivilizationID)
		}

		var eloChange *int
		if member.OldRating != nil && member.NewRating != nil {
			diff := *member.NewRating - *member.OldRating
			eloChange = &diff
		}

		if _, seen := byTeam[member.TeamID]; !seen {
			teamIDs = append(teamIDs, member.TeamID)
		}
		byTeam[member.TeamID] = append(byTeam[member.TeamID], domain.Player{
			PlayerID:   profileID,
			PlayerName: name,
			CivID:      member.CivilizationID,
			Civ:        civName,
			Elo:        member.OldRating,
			EloChange:  eloChange,
			Outcome:    member.Outcome,
		})
	}
	sort.Ints(teamIDs)

	teams := make([]domain.Team, 0, len(teamIDs))
	for _, teamID := range teamIDs {
		players := byTeam[teamID]
		team := domain.Team{}
		for i := range players {
			players[i].Won = normalize.DetermineWin(team, players[i])
		}
		// The team is recorded as won if any player individually resolved
		// to a win; inconsistent source data keeps the inclusive reading.
		for _, p := range players {
			if p.Won {
				team.Won = true
				break
			}
		}
		team.Players = players
		teams = append(teams, team)
	}

	return domain.Match{
		GameID:    fmt.Sprintf("%d", raw.ID),
		Mode:      tables.ModeLabel(raw.MatchTypeID),
		Map:       normalize.CleanMapName(raw.MapName),
		Duration:  duration,
		StartTime: normalize.FormatDateTime(start),
		EndTime:   normalize.FormatDateTime(end),
		Teams:     teams,
	}
}

func formatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	return fmt.Sprintf("%dm %ds", m, s)
}
