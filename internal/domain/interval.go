package domain

import "time"

// Interval is a half-open time range [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// Valid returns true if the interval has positive length
func (i Interval) Valid() bool {
	return i.Start.Before(i.End)
}

// Overlaps reports whether two half-open intervals intersect.
// Touching intervals (one ends exactly where the other starts) do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Contains reports whether other lies entirely inside i
func (i Interval) Contains(other Interval) bool {
	return !other.Start.Before(i.Start) && !other.End.After(i.End)
}

// Duration returns the interval length
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// DayBounds returns [00:00, next day 00:00) of the calendar date in loc
func DayBounds(date time.Time, loc *time.Location) Interval {
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return Interval{Start: start, End: start.AddDate(0, 0, 1)}
}
