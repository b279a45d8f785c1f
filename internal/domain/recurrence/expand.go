package recurrence

import "time"

// MaxOccurrences bounds a single recurring request.
const MaxOccurrences = 1000

type Occurrence struct {
	Start time.Time
	End   time.Time
}

func (o Occurrence) overlaps(other Occurrence) bool {
	return o.Start.Before(other.End) && o.End.After(other.Start)
}

// IsBookedFunc reports whether an occurrence collides with an existing booking.
type IsBookedFunc func(o Occurrence) (bool, error)

type Plan struct {
	Occurrences []Occurrence
	Skipped     []Occurrence
}

// Expand walks from first by the pattern interval while the occurrence starts
// at or before until. Occurrences reported booked, or overlapping an earlier
// occurrence of the same plan, are skipped.
func Expand(first Occurrence, p Pattern, until time.Time, isBooked IsBookedFunc) (Plan, error) {
	var plan Plan

	step := p.Interval()
	if step == 0 {
		return plan, ErrInvalidPattern
	}
	if !first.Start.Before(first.End) {
		return plan, ErrInvalidTimeRange
	}

	if until.Before(first.Start) {
		return plan, ErrInvalidEndDate
	}

	for cur := first; !cur.Start.After(until); cur = shift(cur, step) {
		if len(plan.Occurrences)+len(plan.Skipped) >= MaxOccurrences {
			return Plan{}, ErrTooManyOccurrences
		}

		if collides(plan.Occurrences, cur) {
			plan.Skipped = append(plan.Skipped, cur)
			continue
		}

		if isBooked != nil {
			booked, err := isBooked(cur)
			if err != nil {
				return Plan{}, err
			}
			if booked {
				plan.Skipped = append(plan.Skipped, cur)
				continue
			}
		}

		plan.Occurrences = append(plan.Occurrences, cur)
	}

	return plan, nil
}

func shift(o Occurrence, d time.Duration) Occurrence {
	return Occurrence{Start: o.Start.Add(d), End: o.End.Add(d)}
}

func collides(accepted []Occurrence, o Occurrence) bool {
	for _, a := range accepted {
		if a.overlaps(o) {
			return true
		}
	}
	return false
}

// EndOfDay is the last instant of the calendar day of t in t's location. A
// date-only end date includes every occurrence starting that day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
