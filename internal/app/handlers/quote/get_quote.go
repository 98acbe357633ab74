package quote

import (
	"context"
	"errors"
	"time"

	"vendibook/internal/app/dto"
	"vendibook/internal/app/policies"
	"vendibook/internal/app/queries"
	"vendibook/internal/domain/availability"
	"vendibook/internal/domain/delivery"
	domainlistings "vendibook/internal/domain/listings"
	domainpricing "vendibook/internal/domain/pricing"
	"vendibook/internal/domain/shared/daterange"
	"vendibook/internal/domain/shared/geo"
)

const getQuoteKey = "quote.get"

var ErrListingRepoRequired = errors.New("quote: listing repository required")

// GetQuoteQuery prices a hypothetical booking without opening a checkout
// session. Hours is only consulted for service (hourly) listings.
type GetQuoteQuery struct {
	ListingID       string
	Start           time.Time
	End             time.Time
	Hours           int
	DeliveryAddress string
	Pickup          bool
	UpsellIDs       []string
}

func (q GetQuoteQuery) Key() string { return getQuoteKey }

type GetQuoteHandler struct {
	Listings domainlistings.Repository
	Geocoder policies.GeocoderPort
	Now      func() time.Time
}

func (h *GetQuoteHandler) Handle(ctx context.Context, q GetQuoteQuery) (dto.QuoteResponse, error) {
	if h.Listings == nil {
		return dto.QuoteResponse{}, ErrListingRepoRequired
	}
	listing, err := h.Listings.ByID(ctx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.QuoteResponse{}, err
	}

	base, err := h.baseCharge(listing, q)
	if err != nil {
		return dto.QuoteResponse{}, err
	}

	deliveryFee := listing.Rates.Daily.Zero()
	var zone *dto.DeliveryZone
	if !q.Pickup && q.DeliveryAddress != "" {
		if h.Geocoder == nil {
			return dto.QuoteResponse{}, errors.New("quote: geocoder not configured")
		}
		dropoff, err := h.Geocoder.Geocode(ctx, q.DeliveryAddress)
		if err != nil {
			return dto.QuoteResponse{}, err
		}
		distance := geo.Miles(listing.Location, dropoff)
		classification := delivery.Classify(distance, listing.Delivery)
		if classification.Mode == delivery.PaidDelivery {
			deliveryFee = classification.Fee
		}
		mapped := dto.MapDeliveryZone(classification, distance)
		zone = &mapped
	}

	upsellTotal := listing.Rates.Daily.Zero()
	for _, id := range q.UpsellIDs {
		u, ok := listing.UpsellByID(id)
		if !ok {
			continue
		}
		upsellTotal, err = upsellTotal.Add(u.Price)
		if err != nil {
			return dto.QuoteResponse{}, err
		}
	}

	split, err := domainpricing.SplitRental(base.Amount, deliveryFee, upsellTotal)
	if err != nil {
		return dto.QuoteResponse{}, err
	}

	return dto.QuoteResponse{
		ListingID: q.ListingID,
		Quote:     dto.MapQuote(split, base.Type),
		Delivery:  zone,
	}, nil
}

func (h *GetQuoteHandler) baseCharge(listing *domainlistings.Listing, q GetQuoteQuery) (domainpricing.BaseCharge, error) {
	if listing.Kind == domainlistings.KindService {
		return domainpricing.ServiceBase(listing.Rates, q.Hours)
	}
	r, err := daterange.New(q.Start, q.End)
	if err != nil {
		return domainpricing.BaseCharge{}, availability.ErrDateRangeInvalid
	}
	if err := availability.CheckRange(r, listing.BookingWindow(), h.now()); err != nil {
		return domainpricing.BaseCharge{}, err
	}
	return domainpricing.RentalBase(listing.Rates, r.Days())
}

func (h *GetQuoteHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

var _ queries.Handler[GetQuoteQuery, dto.QuoteResponse] = (*GetQuoteHandler)(nil)
