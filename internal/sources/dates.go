package sources

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Formats the sources are known to emit, tried in order.
var timestampFormats = []string{
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05.999999Z",
	"02/01/2006 15:04:05",
	"2006-01-02 15:04:05",
	"02-01-2006",
	"2006/01/02",
}

// ParseTimestamp tries the known date formats in order and returns nil
// when none of them matches.
func ParseTimestamp(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, value); err == nil {
			return &t
		}
	}
	return nil
}

var relativeTime = regexp.MustCompile(`il y a (\d+)\s*(jours?|heures?)`)

// ParseRelativeTime handles postings dated like "il y a 3 jours" or
// "il y a 5 heures" by subtracting the delta from now. Unrecognized
// units or structure yield nil.
func ParseRelativeTime(value string, now time.Time) *time.Time {
	if value == "" {
		return nil
	}

	m := relativeTime.FindStringSubmatch(strings.TrimSpace(strings.ToLower(value)))
	if m == nil {
		return nil
	}

	amount, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}

	var delta time.Duration
	switch {
	case strings.HasPrefix(m[2], "jour"):
		delta = time.Duration(amount) * 24 * time.Hour
	case strings.HasPrefix(m[2], "heure"):
		delta = time.Duration(amount) * time.Hour
	default:
		return nil
	}

	t := now.Add(-delta)
	return &t
}
