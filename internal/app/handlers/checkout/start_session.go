package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"

	"vendibook/internal/app/commands"
	"vendibook/internal/app/dto"
	"vendibook/internal/app/policies"
	domaincheckout "vendibook/internal/domain/checkout"
	domainlistings "vendibook/internal/domain/listings"
)

const startSessionKey = "checkout.start"

// StartCheckoutCommand opens a fresh checkout session against a listing.
type StartCheckoutCommand struct {
	ListingID string
}

func (c StartCheckoutCommand) Key() string { return startSessionKey }

func (c StartCheckoutCommand) Validate() error {
	if c.ListingID == "" {
		return domaincheckout.ErrNoListing
	}
	return nil
}

type StartCheckoutHandler struct {
	Listings domainlistings.Repository
	Sessions policies.SessionStore
	Geocoder policies.GeocoderPort
	Payments policies.PaymentSessionPort
	Now      func() time.Time
}

func (h *StartCheckoutHandler) Handle(ctx context.Context, cmd StartCheckoutCommand) (dto.CheckoutState, error) {
	d := deps{Listings: h.Listings, Sessions: h.Sessions, Geocoder: h.Geocoder, Payments: h.Payments}
	if err := d.validate(); err != nil {
		return dto.CheckoutState{}, err
	}
	listing, err := h.Listings.ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return dto.CheckoutState{}, err
	}
	session, err := domaincheckout.NewSession(uuid.NewString(), listing, h.Geocoder, h.Payments, h.options()...)
	if err != nil {
		return dto.CheckoutState{}, err
	}
	if err := h.Sessions.Save(ctx, session.Snapshot()); err != nil {
		return dto.CheckoutState{}, err
	}
	return mapState(session), nil
}

func (h *StartCheckoutHandler) options() []domaincheckout.Option {
	if h.Now == nil {
		return nil
	}
	return []domaincheckout.Option{domaincheckout.WithClock(h.Now)}
}

var _ commands.Handler[StartCheckoutCommand, dto.CheckoutState] = (*StartCheckoutHandler)(nil)
