// Package bucket maps timestamps to Day (YYYY-MM-DD) and ISO Week (YYYY-Www)
// period labels and derives the previous period for momentum comparison.
package bucket

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	dayPattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	weekPattern = regexp.MustCompile(`^\d{4}-W\d{2}$`)
)

// ToDay returns the UTC day label for t.
func ToDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// ToWeek returns the ISO-8601 week label for t: the Thursday of a
// Monday-start week determines the week-owning year.
func ToWeek(t time.Time) string {
	y, w := t.UTC().ISOWeek()
	return formatWeek(y, w)
}

func formatWeek(year, week int) string {
	return fmt.Sprintf("%d-W%02d", year, week)
}

// WeekDates expands a week label to its seven day labels (Monday..Sunday),
// anchored by January 4th's ISO week-start Monday and offset by (week-1)*7
// days. A malformed label returns nil.
func WeekDates(week string) []string {
	if !weekPattern.MatchString(week) {
		return nil
	}
	y, _ := strconv.Atoi(week[:4])
	w, _ := strconv.Atoi(week[6:])

	// January 4th is always inside ISO week 1.
	jan4 := time.Date(y, 1, 4, 0, 0, 0, 0, time.UTC)
	dayOfWeek := (int(jan4.Weekday()) + 6) % 7 // Mon=0
	monday := jan4.AddDate(0, 0, -dayOfWeek+(w-1)*7)

	out := make([]string, 7)
	for i := range out {
		out[i] = ToDay(monday.AddDate(0, 0, i))
	}
	return out
}

// PreviousPeriod decrements a period label by one week or one day. Crossing
// week 1 rolls to the prior year's last ISO week (52 or 53). Non-conforming
// period strings pass through unchanged.
func PreviousPeriod(p string) string {
	if weekPattern.MatchString(p) {
		y, _ := strconv.Atoi(p[:4])
		w, _ := strconv.Atoi(p[6:])
		if w > 1 {
			return formatWeek(y, w-1)
		}
		return formatWeek(y-1, lastISOWeekOfYear(y-1))
	}
	if dayPattern.MatchString(p) {
		t, err := time.Parse("2006-01-02", p)
		if err != nil {
			return p
		}
		return ToDay(t.AddDate(0, 0, -1))
	}
	return p
}

// lastISOWeekOfYear returns 52 or 53. December 28th is always inside the last
// ISO week of its year.
func lastISOWeekOfYear(y int) int {
	_, w := time.Date(y, 12, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}

// IsWeek reports whether p is an ISO week label.
func IsWeek(p string) bool { return weekPattern.MatchString(p) }

// IsDay reports whether p is a day label.
func IsDay(p string) bool { return dayPattern.MatchString(p) }
