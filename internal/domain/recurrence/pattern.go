package recurrence

import (
	"strings"
	"time"

	"github.com/BruksfildServices01/meeting-rooms/internal/httperr"
)

type Pattern string

const (
	Daily   Pattern = "Daily"
	Weekly  Pattern = "Weekly"
	Monthly Pattern = "Monthly"
)

const day = 24 * time.Hour

var (
	ErrInvalidPattern     = httperr.InvalidErr("invalid_recurrence_pattern", "RecurrencePattern must be Daily, Weekly or Monthly.")
	ErrInvalidTimeRange   = httperr.InvalidErr("invalid_time_range", "StartTime must be before EndTime.")
	ErrInvalidEndDate     = httperr.InvalidErr("invalid_recurrence_end_date", "RecurrenceEndDate must be on or after StartTime.")
	ErrTooManyOccurrences = httperr.InvalidErr("too_many_occurrences", "The recurrence produces too many meetings.")
)

// ParsePattern accepts any casing and returns the canonical pattern.
func ParsePattern(s string) (Pattern, error) {
	for _, p := range []Pattern{Daily, Weekly, Monthly} {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, nil
		}
	}
	return "", ErrInvalidPattern
}

// Interval is the fixed step between occurrences. Monthly is 30 days, not a
// calendar month.
func (p Pattern) Interval() time.Duration {
	switch p {
	case Daily:
		return day
	case Weekly:
		return 7 * day
	case Monthly:
		return 30 * day
	}
	return 0
}
