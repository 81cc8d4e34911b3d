package scoring

import (
	"fmt"
	"math"
	"time"
)

// dateLayouts covers the formats legacy records use for nominal dates.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
}

// parseDate parses a nominal date string in local time. Callers treat a
// failure as "this record has no usable date" and skip it.
func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// daysBetween returns the signed number of calendar days from a to b,
// ignoring time of day. Negative means b is before a.
func daysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, a.Location())
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, b.Location())
	return int(math.Round(b.Sub(a).Hours() / 24))
}

// pastDeadline reports whether now is strictly after 23:59:59.999 local
// time on the deadline date. The deadline day itself is never overdue.
func pastDeadline(deadline, now time.Time) bool {
	end := time.Date(deadline.Year(), deadline.Month(), deadline.Day(),
		23, 59, 59, 999_000_000, deadline.Location())
	return now.After(end)
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
