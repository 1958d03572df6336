// Package daterange turns period keywords and free-form date text into
// concrete time intervals for reports.
package daterange

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidPeriod is returned when text matches no known period keyword or
// date format. Callers re-prompt the user; there is no silent default.
var ErrInvalidPeriod = errors.New("invalid period")

// Range is a closed interval: Start is 00:00:00 of the first day and End is
// 23:59:59 of the last day. The inclusive-end convention applies to every
// resolution path, single days and composed ranges alike.
type Range struct {
	Start time.Time
	End   time.Time
	Label string
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Resolve maps a single period token to a Range relative to now.
//
// Recognized keywords (case-insensitive): today, yesterday, week/this week,
// last week, month/this month, last month. Weeks start on Monday. When no
// keyword matches, the token is tried as an exact date (YYYY-MM-DD or
// DD/MM/YYYY) and then as a year-month (YYYY-MM).
func Resolve(token string, now time.Time) (Range, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "today":
		return dayRange(now, "Today"), nil
	case "yesterday":
		return dayRange(now.AddDate(0, 0, -1), "Yesterday"), nil
	case "week", "this week":
		monday := weekStart(now)
		return spanRange(monday, monday.AddDate(0, 0, 6), "This Week"), nil
	case "last week":
		monday := weekStart(now).AddDate(0, 0, -7)
		return spanRange(monday, monday.AddDate(0, 0, 6), "Last Week"), nil
	case "month", "this month":
		first := monthStart(now)
		return spanRange(first, first.AddDate(0, 1, -1), "This Month"), nil
	case "last month":
		first := monthStart(now).AddDate(0, -1, 0)
		return spanRange(first, first.AddDate(0, 1, -1), "Last Month"), nil
	}
	return resolveDate(strings.TrimSpace(token), now.Location())
}

// ResolveExpression resolves either a single token or an "A to B" range
// expression. A and B are resolved independently; the combined range takes
// Start from A and End from B, so mixed granularity is allowed (a specific
// day "to" an entire month).
func ResolveExpression(text string, now time.Time) (Range, error) {
	if before, after, found := strings.Cut(text, " to "); found {
		from, err := Resolve(before, now)
		if err != nil {
			return Range{}, err
		}
		to, err := Resolve(after, now)
		if err != nil {
			return Range{}, err
		}
		return Compose(from, to), nil
	}
	return Resolve(text, now)
}

// Compose joins two resolved ranges into one, start-of-first to end-of-second.
func Compose(from, to Range) Range {
	return Range{
		Start: from.Start,
		End:   to.End,
		Label: from.Label + " to " + to.Label,
	}
}

func resolveDate(s string, loc *time.Location) (Range, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return dayRange(t, t.Format("2006-01-02")), nil
	}
	if t, err := time.ParseInLocation("2006-01", s, loc); err == nil {
		return spanRange(t, t.AddDate(0, 1, -1), t.Format("January 2006")), nil
	}
	if t, err := time.ParseInLocation("02/01/2006", s, loc); err == nil {
		return dayRange(t, t.Format("2006-01-02")), nil
	}
	return Range{}, ErrInvalidPeriod
}

func dayRange(t time.Time, label string) Range {
	return spanRange(t, t, label)
}

func spanRange(first, last time.Time, label string) Range {
	return Range{
		Start: startOfDay(first),
		End:   endOfDay(last),
		Label: label,
	}
}

// weekStart returns 00:00:00 of the Monday of now's week.
func weekStart(now time.Time) time.Time {
	offset := (int(now.Weekday()) + 6) % 7
	return startOfDay(now.AddDate(0, 0, -offset))
}

func monthStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
