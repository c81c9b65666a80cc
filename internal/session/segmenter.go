// Package session groups a player's chronological matches into play
// sessions separated by idle gaps.
package session

import (
	"slices"
	"time"

	"aoe2-tracker/internal/domain"
	"aoe2-tracker/internal/normalize"
)

// Diagnostics counts entries excluded before segmentation.
type Diagnostics struct {
	ParseFailed int `json:"parse_failed"`
	FilteredOut int `json:"filtered_out"`
}

// Outcome finds the target player inside a match and returns their result.
// The player may appear under either ID space. The second return is false
// when the player is not on any team.
func Outcome(m domain.Match, siteID, nativeID string) (bool, bool) {
	for _, team := range m.Teams {
		for _, p := range team.Players {
			if p.PlayerID != "" && (p.PlayerID == siteID || p.PlayerID == nativeID) {
				return team.Won, true
			}
		}
	}
	return false, false
}

// Prepare filters matches down to session-eligible entries: the mode filter
// first, then start-timestamp resolution, then outcome resolution for the
// target player. Excluded entries are tallied, not reported individually.
// The end timestamp falls back to start plus the in-game duration, then to
// the start itself.
func Prepare(matches []domain.Match, siteID, nativeID string, modeFilter []string) ([]domain.SessionEntry, Diagnostics) {
	var diag Diagnostics
	allowed := make(map[string]bool, len(modeFilter))
	for _, mode := range modeFilter {
		allowed[mode] = true
	}

	entries := make([]domain.SessionEntry, 0, len(matches))
	for _, m := range matches {
		if len(modeFilter) > 0 && !allowed[m.Mode] {
			diag.FilteredOut++
			continue
		}
		start, ok := normalize.ParseDateTime(m.StartTime)
		if !ok {
			diag.ParseFailed++
			continue
		}
		win, found := Outcome(m, siteID, nativeID)
		if !found {
			diag.FilteredOut++
			continue
		}

		end, ok := normalize.ParseDateTime(m.EndTime)
		if !ok {
			if seconds, parsed := normalize.DurationSeconds(m.Duration); parsed {
				end = start.Add(time.Duration(seconds) * time.Second)
			} else {
				end = start
			}
		}
		entries = append(entries, domain.SessionEntry{Start: start, End: end, Win: win, Match: m})
	}
	return entries, diag
}

// Group segments entries into sessions. Entries are sorted ascending by
// start time; a gap between an entry's start and the previous entry's end
// strictly greater than idleMinutes starts a new session. Pure: same input,
// same output.
func Group(entries []domain.SessionEntry, idleMinutes float64) []domain.Session {
	sorted := make([]domain.SessionEntry, len(entries))
	copy(sorted, entries)
	slices.SortStableFunc(sorted, func(a, b domain.SessionEntry) int {
		return a.Start.Compare(b.Start)
	})

	var sessions []domain.Session
	var current domain.Session
	var lastEnd time.Time
	haveLast := false

	for _, entry := range sorted {
		if !haveLast {
			current = append(current, entry)
		} else {
			gap := entry.Start.Sub(lastEnd).Minutes()
			if gap > idleMinutes {
				if len(current) > 0 {
					sessions = append(sessions, current)
				}
				current = domain.Session{entry}
			} else {
				current = append(current, entry)
			}
		}
		lastEnd = entry.End
		haveLast = true
	}
	if len(current) > 0 {
		sessions = append(sessions, current)
	}
	return sessions
}
