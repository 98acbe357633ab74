package checkout

import (
	"context"
	"time"

	"vendibook/internal/app/dto"
	"vendibook/internal/app/policies"
	"vendibook/internal/app/queries"
	domaincheckout "vendibook/internal/domain/checkout"
	domainlistings "vendibook/internal/domain/listings"
)

const getStateKey = "checkout.state"

// GetCheckoutStateQuery reads the current view of an open session.
type GetCheckoutStateQuery struct {
	SessionID string
}

func (q GetCheckoutStateQuery) Key() string { return getStateKey }

type GetCheckoutStateHandler struct {
	Listings domainlistings.Repository
	Sessions policies.SessionStore
	Geocoder policies.GeocoderPort
	Payments policies.PaymentSessionPort
	Now      func() time.Time
}

func (h *GetCheckoutStateHandler) Handle(ctx context.Context, q GetCheckoutStateQuery) (dto.CheckoutState, error) {
	d := deps{Listings: h.Listings, Sessions: h.Sessions, Geocoder: h.Geocoder, Payments: h.Payments}
	if err := d.validate(); err != nil {
		return dto.CheckoutState{}, err
	}
	session, err := d.restore(ctx, q.SessionID, h.options()...)
	if err != nil {
		return dto.CheckoutState{}, err
	}
	return mapState(session), nil
}

func (h *GetCheckoutStateHandler) options() []domaincheckout.Option {
	if h.Now == nil {
		return nil
	}
	return []domaincheckout.Option{domaincheckout.WithClock(h.Now)}
}

var _ queries.Handler[GetCheckoutStateQuery, dto.CheckoutState] = (*GetCheckoutStateHandler)(nil)
