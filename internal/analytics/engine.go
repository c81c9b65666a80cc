// Package analytics derives win-rate breakdowns from a player's stored
// matches. All computations are query-only over an in-memory snapshot.
package analytics

import (
	"sort"

	"github.com/rs/zerolog"
)

// Bucket is one tally cell. WinRate is wins/matches*100, 0 for an empty
// bucket.
type Bucket struct {
	Matches int     `json:"matches"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"win_rate"`
}

func (b *Bucket) add(win bool) {
	b.Matches++
	if win {
		b.Wins++
	}
}

func (b *Bucket) finalize() {
	b.WinRate = winRate(b.Wins, b.Matches)
}

func winRate(wins, matches int) float64 {
	if matches == 0 {
		return 0
	}
	return float64(wins) / float64(matches) * 100
}

// DurationBucket is one range of the fixed duration histogram. Lower bound
// inclusive, upper bound exclusive; Upper < 0 leaves the last bucket
// open-ended.
type DurationBucket struct {
	Label string
	Lower int
	Upper int
}

// DefaultDurationBuckets returns the standard in-game-duration histogram.
func DefaultDurationBuckets() []DurationBucket {
	return []DurationBucket{
		{Label: "< 5m", Lower: 0, Upper: 5 * 60},
		{Label: "5-15m", Lower: 5 * 60, Upper: 15 * 60},
		{Label: "15-25m", Lower: 15 * 60, Upper: 25 * 60},
		{Label: "25-40m", Lower: 25 * 60, Upper: 40 * 60},
		{Label: ">= 40m", Lower: 40 * 60, Upper: -1},
	}
}

type Engine struct {
	buckets []DurationBucket
	logger  zerolog.Logger
}

func NewEngine(logger zerolog.Logger) *Engine {
	return &Engine{buckets: DefaultDurationBuckets(), logger: logger}
}

// bucketLabel places a duration into the histogram; unknown durations get
// no bucket.
func (e *Engine) bucketLabel(seconds int) (string, bool) {
	for _, b := range e.buckets {
		if b.Upper < 0 && seconds >= b.Lower {
			return b.Label, true
		}
		if b.Upper >= 0 && seconds >= b.Lower && seconds < b.Upper {
			return b.Label, true
		}
	}
	return "", false
}

// DurationOrder exposes the histogram's label order for rendering.
func (e *Engine) DurationOrder() []string {
	order := make([]string, len(e.buckets))
	for i, b := range e.buckets {
		order[i] = b.Label
	}
	return order
}

// Row is a keyed bucket used when a breakdown is rendered as a ranked list.
type Row struct {
	Key     string  `json:"key"`
	Name    string  `json:"name,omitempty"`
	Matches int     `json:"matches"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"win_rate"`
}

// rankedRows flattens a bucket map into rows ordered by match count, then
// wins, then key.
func rankedRows(buckets map[string]*Bucket) []Row {
	rows := make([]Row, 0, len(buckets))
	for key, b := range buckets {
		rows = append(rows, Row{Key: key, Matches: b.Matches, Wins: b.Wins, WinRate: b.WinRate})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Matches != rows[j].Matches {
			return rows[i].Matches > rows[j].Matches
		}
		if rows[i].Wins != rows[j].Wins {
			return rows[i].Wins > rows[j].Wins
		}
		return rows[i].Key < rows[j].Key
	})
	return rows
}
