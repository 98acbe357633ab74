package availability

import (
	"context"
	"errors"
	"time"

	"vendibook/internal/app/dto"
	"vendibook/internal/app/queries"
	domainavailability "vendibook/internal/domain/availability"
	domainlistings "vendibook/internal/domain/listings"
	"vendibook/internal/domain/shared/daterange"
)

const getCalendarKey = "availability.calendar"

var ErrListingRepoRequired = errors.New("availability: listing repository required")

// GetCalendarQuery lists the unselectable days of a listing between From
// and To (defaults: today through the listing's booking horizon).
type GetCalendarQuery struct {
	ListingID string
	From      time.Time
	To        time.Time
}

func (q GetCalendarQuery) Key() string { return getCalendarKey }

type GetCalendarHandler struct {
	Listings domainlistings.Repository
	Now      func() time.Time
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (dto.Calendar, error) {
	if h.Listings == nil {
		return dto.Calendar{}, ErrListingRepoRequired
	}
	listing, err := h.Listings.ByID(ctx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.Calendar{}, err
	}

	today := daterange.Day(h.now())
	rules := listing.BookingWindow()

	from := q.From
	if from.IsZero() {
		from = today
	}
	to := q.To
	if to.IsZero() {
		horizon := rules.MaxFutureDays
		if horizon <= 0 {
			horizon = 365
		}
		to = today.AddDate(0, 0, horizon)
	}
	window, err := daterange.New(from, to)
	if err != nil {
		return dto.Calendar{}, err
	}

	cal := dto.Calendar{
		ListingID:     q.ListingID,
		From:          dto.FormatDay(window.Start),
		To:            dto.FormatDay(window.End),
		MinDaysNotice: rules.MinDaysNotice,
		MaxFutureDays: rules.MaxFutureDays,
		MinRentalDays: rules.MinRentalDays,
		MaxRentalDays: rules.MaxRentalDays,
	}
	for _, day := range domainavailability.BlockedDays(window, rules, today) {
		cal.BlockedDates = append(cal.BlockedDates, dto.FormatDay(day))
	}
	return cal, nil
}

func (h *GetCalendarHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

var _ queries.Handler[GetCalendarQuery, dto.Calendar] = (*GetCalendarHandler)(nil)
