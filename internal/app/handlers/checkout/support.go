package checkout

import (
	"context"
	"errors"

	"vendibook/internal/app/dto"
	"vendibook/internal/app/policies"
	domaincheckout "vendibook/internal/domain/checkout"
	domainlistings "vendibook/internal/domain/listings"
)

var (
	ErrListingRepoRequired  = errors.New("checkout: listing repository required")
	ErrSessionStoreRequired = errors.New("checkout: session store required")
)

// deps bundles the collaborators every checkout handler needs.
type deps struct {
	Listings domainlistings.Repository
	Sessions policies.SessionStore
	Geocoder policies.GeocoderPort
	Payments policies.PaymentSessionPort
}

func (d deps) validate() error {
	if d.Listings == nil {
		return ErrListingRepoRequired
	}
	if d.Sessions == nil {
		return ErrSessionStoreRequired
	}
	return nil
}

// restore loads a stored snapshot and rebuilds a live session around the
// current listing record.
func (d deps) restore(ctx context.Context, sessionID string, opts ...domaincheckout.Option) (*domaincheckout.Session, error) {
	snap, err := d.Sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	listing, err := d.Listings.ByID(ctx, domainlistings.ListingID(snap.ListingID))
	if err != nil {
		return nil, err
	}
	return domaincheckout.Restore(snap, listing, d.Geocoder, d.Payments, opts...)
}

// mapState projects a live session into its API shape.
func mapState(s *domaincheckout.Session) dto.CheckoutState {
	sel := s.Selection()
	state := dto.CheckoutState{
		SessionID:   s.ID(),
		ListingID:   string(s.ListingID()),
		Mode:        string(sel.Mode),
		StartTime:   sel.StartTime,
		EndTime:     sel.EndTime,
		Pickup:      sel.Pickup,
		Address:     sel.DeliveryAddress,
		CanCheckout: s.CanCheckout(),
	}
	if sel.HasDates {
		state.StartDate = dto.FormatDay(sel.Dates.Start)
		state.EndDate = dto.FormatDay(sel.Dates.End)
	}
	for _, u := range sel.Upsells {
		state.UpsellIDs = append(state.UpsellIDs, u.ID)
	}
	if c := s.Classification(); c.Mode != "" {
		zone := dto.DeliveryZone{
			Mode:     string(c.Mode),
			FeeCents: c.Fee.Amount,
			Message:  c.Message,
			Bookable: c.Bookable(),
		}
		state.Delivery = &zone
	}
	if q, ok := s.Quote(); ok {
		mapped := dto.MapQuote(q, s.PricingType())
		state.Quote = &mapped
	}
	if sq, ok := s.SaleQuote(); ok {
		mapped := dto.MapSaleQuote(sq)
		state.SaleQuote = &mapped
	}
	if err := s.Err(); err != nil {
		state.Error = err.Error()
	}
	return state
}
