package daterange

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("daterange: end must not be before start")

// DateRange represents an inclusive interval of calendar days [Start, End].
// A one-day booking has Start == End and counts as a single day.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// New normalizes both bounds to UTC midnight and validates ordering.
func New(start, end time.Time) (DateRange, error) {
	dr := DateRange{Start: Day(start), End: Day(end)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Single returns the one-day range covering the provided date.
func Single(day time.Time) DateRange {
	d := Day(day)
	return DateRange{Start: d, End: d}
}

func (dr DateRange) Validate() error {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ErrInvalidRange
	}
	if dr.End.Before(dr.Start) {
		return ErrInvalidRange
	}
	return nil
}

// Days returns the inclusive day count, so a same-day range is 1.
func (dr DateRange) Days() int {
	return DaysBetween(dr.Start, dr.End) + 1
}

// ContainsDay reports whether the given date (normalized to a day) falls
// inside the inclusive range.
func (dr DateRange) ContainsDay(t time.Time) bool {
	d := Day(t)
	return !d.Before(dr.Start) && !d.After(dr.End)
}

// Overlaps reports whether two inclusive ranges share at least one day.
func (dr DateRange) Overlaps(other DateRange) bool {
	return !dr.Start.After(other.End) && !other.Start.After(dr.End)
}

// EachDay calls fn for every day in the range, in order.
func (dr DateRange) EachDay(fn func(day time.Time)) {
	for d := dr.Start; !d.After(dr.End); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

// Day truncates a timestamp to UTC midnight.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from a to b (negative when b
// precedes a). Both inputs are normalized to days first.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)) / (24 * time.Hour))
}
