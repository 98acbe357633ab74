package availability

import (
	"errors"
	"fmt"
	"time"

	"vendibook/internal/domain/listings"
	"vendibook/internal/domain/shared/daterange"
)

// ErrDateRangeInvalid covers every way a candidate range can fail the
// booking-window rules; callers that need the reason unwrap the message.
var ErrDateRangeInvalid = errors.New("availability: requested dates are not bookable")

// IsDateBlocked reports whether a single date is unselectable: a blackout
// date, inside a blackout range (inclusive on both ends), too soon for the
// lead-time rule, or past the booking horizon.
func IsDateBlocked(date time.Time, rules listings.BookingWindowRules, today time.Time) bool {
	day := daterange.Day(date)
	today = daterange.Day(today)

	earliest := today.AddDate(0, 0, rules.MinDaysNotice)
	if day.Before(earliest) {
		return true
	}
	if rules.MaxFutureDays > 0 {
		horizon := today.AddDate(0, 0, rules.MaxFutureDays)
		if day.After(horizon) {
			return true
		}
	}
	for _, blackout := range rules.BlackoutDates {
		if daterange.Day(blackout).Equal(day) {
			return true
		}
	}
	for _, r := range rules.BlackoutRanges {
		if r.ContainsDay(day) {
			return true
		}
	}
	return false
}

// CheckRange validates a candidate inclusive range against the rules, with a
// descriptive error for the first violated constraint. Deterministic: same
// inputs, same answer.
func CheckRange(r daterange.DateRange, rules listings.BookingWindowRules, today time.Time) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrDateRangeInvalid, err)
	}
	length := r.Days()
	if rules.MinRentalDays > 0 && length < rules.MinRentalDays {
		return fmt.Errorf("%w: minimum rental is %d days", ErrDateRangeInvalid, rules.MinRentalDays)
	}
	if rules.MaxRentalDays > 0 && length > rules.MaxRentalDays {
		return fmt.Errorf("%w: maximum rental is %d days", ErrDateRangeInvalid, rules.MaxRentalDays)
	}

	var blocked *time.Time
	r.EachDay(func(day time.Time) {
		if blocked == nil && IsDateBlocked(day, rules, today) {
			d := day
			blocked = &d
		}
	})
	if blocked != nil {
		return fmt.Errorf("%w: %s is unavailable", ErrDateRangeInvalid, blocked.Format("2006-01-02"))
	}
	return nil
}

// RangeBookable is the boolean form of CheckRange.
func RangeBookable(r daterange.DateRange, rules listings.BookingWindowRules, today time.Time) bool {
	return CheckRange(r, rules, today) == nil
}

// BlockedDays lists every unselectable day inside the window, for calendar
// rendering.
func BlockedDays(window daterange.DateRange, rules listings.BookingWindowRules, today time.Time) []time.Time {
	var out []time.Time
	window.EachDay(func(day time.Time) {
		if IsDateBlocked(day, rules, today) {
			out = append(out, day)
		}
	})
	return out
}
