package analytics

import (
	"sort"
	"strconv"

	"aoe2-tracker/internal/domain"
)

// SessionStats is the session-shape breakdown: win rate by session length,
// by previous result, by two-game streak, and by position within a session.
type SessionStats struct {
	Sessions int `json:"sessions"`

	// BySessionLength tallies every game of a session under the session's
	// total game count.
	BySessionLength []Row `json:"by_session_length"`

	// AfterWin/AfterLoss cover games with at least one predecessor in the
	// same session; a session's first game has no previous result.
	AfterWin  Bucket `json:"after_win"`
	AfterLoss Bucket `json:"after_loss"`

	// AfterTwoWins/AfterTwoLosses cover games with two predecessors that
	// formed a streak.
	AfterTwoWins   Bucket `json:"after_two_wins"`
	AfterTwoLosses Bucket `json:"after_two_losses"`

	// ByPosition is keyed by the 1-based index of the game within its
	// session.
	ByPosition []Row `json:"by_position"`
}

// Sessions computes the session-shape breakdown over segmented sessions.
func (e *Engine) Sessions(sessions []domain.Session) *SessionStats {
	stats := &SessionStats{Sessions: len(sessions)}
	byLength := make(map[int]*Bucket)
	byPosition := make(map[int]*Bucket)

	for _, sess := range sessions {
		if len(sess) == 0 {
			continue
		}
		results := make([]bool, len(sess))
		for i, entry := range sess {
			results[i] = entry.Win
		}

		length := tallyInt(byLength, len(results))
		for idx, win := range results {
			length.add(win)
			tallyInt(byPosition, idx+1).add(win)

			if idx >= 1 {
				if results[idx-1] {
					stats.AfterWin.add(win)
				} else {
					stats.AfterLoss.add(win)
				}
			}
			if idx >= 2 {
				if results[idx-1] && results[idx-2] {
					stats.AfterTwoWins.add(win)
				}
				if !results[idx-1] && !results[idx-2] {
					stats.AfterTwoLosses.add(win)
				}
			}
		}
	}

	stats.AfterWin.finalize()
	stats.AfterLoss.finalize()
	stats.AfterTwoWins.finalize()
	stats.AfterTwoLosses.finalize()
	stats.BySessionLength = intRows(byLength)
	stats.ByPosition = intRows(byPosition)
	return stats
}

func tallyInt(buckets map[int]*Bucket, key int) *Bucket {
	b, ok := buckets[key]
	if !ok {
		b = &Bucket{}
		buckets[key] = b
	}
	return b
}

// intRows flattens an integer-keyed breakdown in ascending key order.
func intRows(buckets map[int]*Bucket) []Row {
	keys := make([]int, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	rows := make([]Row, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		b.finalize()
		rows = append(rows, Row{Key: strconv.Itoa(k), Matches: b.Matches, Wins: b.Wins, WinRate: b.WinRate})
	}
	return rows
}
