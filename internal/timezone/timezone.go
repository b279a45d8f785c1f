package timezone

import "time"

// Default is the zone calendar days fall back to.
const Default = "UTC"

// DayLayout is the wire format of a calendar day.
const DayLayout = "2006-01-02"

// Location loads the IANA zone name. Empty or unknown names resolve to UTC
// with ok == false.
func Location(name string) (loc *time.Location, ok bool) {
	if name == "" {
		return time.UTC, false
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, false
	}
	return loc, true
}

// DayKey is the calendar day of t in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}
