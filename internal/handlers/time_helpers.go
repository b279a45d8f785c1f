package handlers

import (
	"time"

	"github.com/BruksfildServices01/meeting-rooms/internal/timezone"
)

// Calendar days are days in the configured location.

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func parseDay(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(timezone.DayLayout, s, loc)
}

// daysOfYear lists every day of year, 365 or 366 entries.
func daysOfYear(year int, loc *time.Location) []time.Time {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(1, 0, 0)

	days := make([]time.Time, 0, 366)
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
