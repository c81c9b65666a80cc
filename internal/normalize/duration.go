package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var durationPattern = regexp.MustCompile(`^(?:(\d+)h\s*)?(\d+)m\s*(\d+)s`)

// DurationSeconds converts the human "[Hh ]Mm Ss" form to in-game seconds.
func DurationSeconds(duration string) (int, bool) {
	if duration == "" {
		return 0, false
	}
	m := durationPattern.FindStringSubmatch(strings.TrimSpace(duration))
	if m == nil {
		return 0, false
	}
	hours := atoiOrZero(m[1])
	minutes := atoiOrZero(m[2])
	seconds := atoiOrZero(m[3])
	return hours*3600 + minutes*60 + seconds, true
}

// RealDurationSeconds converts a duration string to elapsed real-world
// seconds. The game clock runs faster than real time by speedFactor.
func RealDurationSeconds(duration string, speedFactor float64) (float64, bool) {
	gameSeconds, ok := DurationSeconds(duration)
	if !ok {
		return 0, false
	}
	return float64(gameSeconds) / speedFactor, true
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}
