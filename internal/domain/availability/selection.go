package availability

import (
	"time"

	"vendibook/internal/domain/listings"
	"vendibook/internal/domain/shared/daterange"
)

// SelectionState tracks interactive date picking.
type SelectionState string

const (
	SelectionEmpty SelectionState = "EMPTY"
	SelectionStart SelectionState = "START_SELECTED"
	SelectionRange SelectionState = "RANGE_SELECTED"
)

// Selection is the small state machine behind the date picker. Clicking a
// date either starts a range, completes one, or restarts from the clicked
// date; an invalid completion is a restart, never an error. In single-date
// mode (hourly bookings) every click selects exactly that day.
type Selection struct {
	SingleDate bool
	State      SelectionState
	Start      time.Time
	End        time.Time
}

func NewSelection(singleDate bool) *Selection {
	return &Selection{SingleDate: singleDate, State: SelectionEmpty}
}

// Click applies one date click against the listing's rules. Clicks on
// blocked dates are ignored.
func (s *Selection) Click(date time.Time, rules listings.BookingWindowRules, today time.Time) {
	day := daterange.Day(date)
	if IsDateBlocked(day, rules, today) {
		return
	}

	if s.SingleDate {
		s.Start, s.End = day, day
		s.State = SelectionRange
		return
	}

	switch s.State {
	case SelectionEmpty:
		s.startFrom(day)
	case SelectionStart:
		if !day.After(s.Start) {
			s.startFrom(day)
			return
		}
		candidate := daterange.DateRange{Start: s.Start, End: day}
		if !RangeBookable(candidate, rules, today) {
			s.startFrom(day)
			return
		}
		s.End = day
		s.State = SelectionRange
	case SelectionRange:
		// A completed range is discarded by the next click.
		s.startFrom(day)
	}
}

// Reset returns the picker to its initial state.
func (s *Selection) Reset() {
	s.Start, s.End = time.Time{}, time.Time{}
	s.State = SelectionEmpty
}

// Range returns the completed selection, when there is one.
func (s *Selection) Range() (daterange.DateRange, bool) {
	if s.State != SelectionRange {
		return daterange.DateRange{}, false
	}
	return daterange.DateRange{Start: s.Start, End: s.End}, true
}

func (s *Selection) startFrom(day time.Time) {
	s.Start = day
	s.End = time.Time{}
	s.State = SelectionStart
}
