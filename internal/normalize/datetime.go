package normalize

import (
	"regexp"
	"strings"
	"time"
)

// TimeLayout is the minute-precision form all stored timestamps use.
const TimeLayout = "2006-01-02 15:04"

// Layouts tried in order; the first successful parse wins. ISO forms come
// first, then the locale-formatted family the match-listing site emits
// (dotted or full month abbreviations, 12-hour clock with or without
// minutes).
var dateTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
	"Jan. 2, 2006, 3:04 PM",
	"Jan 2, 2006, 3:04 PM",
	"Jan. 2, 2006, 3 PM",
	"Jan 2, 2006, 3 PM",
	"January 2, 2006, 3:04 PM",
	"January 2, 2006, 3 PM",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// ParseDateTime parses a timestamp in any accepted form, truncated to
// minute precision. Returns false when every layout fails.
func ParseDateTime(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	cleaned := strings.ReplaceAll(value, "a.m.", "AM")
	cleaned = strings.ReplaceAll(cleaned, "p.m.", "PM")
	cleaned = strings.ReplaceAll(cleaned, " ", " ")
	cleaned = strings.TrimSpace(whitespaceRun.ReplaceAllString(cleaned, " "))

	for _, layout := range dateTimeLayouts {
		if ts, err := time.Parse(layout, cleaned); err == nil {
			return ts.Truncate(time.Minute), true
		}
	}
	return time.Time{}, false
}

// FormatDateTime renders a timestamp in the stored minute-precision form.
func FormatDateTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Truncate(time.Minute).Format(TimeLayout)
}
