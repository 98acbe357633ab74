package dto

import "time"

// Calendar lists the unselectable days of a listing inside a query window,
// together with the window rules the picker needs.
type Calendar struct {
	ListingID     string   `json:"listing_id"`
	From          string   `json:"from"`
	To            string   `json:"to"`
	BlockedDates  []string `json:"blocked_dates"`
	MinDaysNotice int      `json:"min_days_notice"`
	MaxFutureDays int      `json:"max_future_days"`
	MinRentalDays int      `json:"min_rental_days"`
	MaxRentalDays int      `json:"max_rental_days"`
}

// RangeCheck is the answer to "are these dates bookable?".
type RangeCheck struct {
	ListingID string `json:"listing_id"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Bookable  bool   `json:"bookable"`
	Reason    string `json:"reason,omitempty"`
}

// FormatDay renders a calendar day the way the API exchanges dates.
func FormatDay(t time.Time) string {
	return t.Format("2006-01-02")
}
