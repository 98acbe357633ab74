package availability

import (
	"context"
	"time"

	"vendibook/internal/app/dto"
	"vendibook/internal/app/queries"
	domainavailability "vendibook/internal/domain/availability"
	domainlistings "vendibook/internal/domain/listings"
	"vendibook/internal/domain/shared/daterange"
)

const checkRangeKey = "availability.check_range"

// CheckRangeQuery asks whether a candidate date range is bookable for a
// listing. An unbookable range is a valid answer, not an error.
type CheckRangeQuery struct {
	ListingID string
	Start     time.Time
	End       time.Time
}

func (q CheckRangeQuery) Key() string { return checkRangeKey }

type CheckRangeHandler struct {
	Listings domainlistings.Repository
	Now      func() time.Time
}

func (h *CheckRangeHandler) Handle(ctx context.Context, q CheckRangeQuery) (dto.RangeCheck, error) {
	if h.Listings == nil {
		return dto.RangeCheck{}, ErrListingRepoRequired
	}
	listing, err := h.Listings.ByID(ctx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.RangeCheck{}, err
	}

	out := dto.RangeCheck{
		ListingID: q.ListingID,
		Start:     dto.FormatDay(daterange.Day(q.Start)),
		End:       dto.FormatDay(daterange.Day(q.End)),
	}

	r, rangeErr := daterange.New(q.Start, q.End)
	if rangeErr != nil {
		out.Reason = rangeErr.Error()
		return out, nil
	}

	if err := domainavailability.CheckRange(r, listing.BookingWindow(), h.now()); err != nil {
		out.Reason = err.Error()
		return out, nil
	}
	out.Bookable = true
	return out, nil
}

func (h *CheckRangeHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

var _ queries.Handler[CheckRangeQuery, dto.RangeCheck] = (*CheckRangeHandler)(nil)
