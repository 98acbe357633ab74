package checkout

import (
	"context"
	"time"

	"vendibook/internal/app/commands"
	"vendibook/internal/app/dto"
	"vendibook/internal/app/policies"
	domaincheckout "vendibook/internal/domain/checkout"
	domainlistings "vendibook/internal/domain/listings"
)

const updateSelectionKey = "checkout.update_selection"

// UpdateSelectionCommand applies a partial edit to an open session. Only the
// fields whose pointers are set are touched, so the client can send a date
// change without re-sending the address.
type UpdateSelectionCommand struct {
	SessionID string

	Mode            *string
	StartDate       *time.Time
	EndDate         *time.Time
	StartTime       *string
	EndTime         *string
	Pickup          *bool
	DeliveryAddress *string
	ToggleUpsellID  *string
}

func (c UpdateSelectionCommand) Key() string { return updateSelectionKey }

func (c UpdateSelectionCommand) Validate() error {
	if c.SessionID == "" {
		return policies.ErrSessionNotFound
	}
	return nil
}

type UpdateSelectionHandler struct {
	Listings domainlistings.Repository
	Sessions policies.SessionStore
	Geocoder policies.GeocoderPort
	Payments policies.PaymentSessionPort
	Now      func() time.Time
}

func (h *UpdateSelectionHandler) Handle(ctx context.Context, cmd UpdateSelectionCommand) (dto.CheckoutState, error) {
	d := deps{Listings: h.Listings, Sessions: h.Sessions, Geocoder: h.Geocoder, Payments: h.Payments}
	if err := d.validate(); err != nil {
		return dto.CheckoutState{}, err
	}
	session, err := d.restore(ctx, cmd.SessionID, h.options()...)
	if err != nil {
		return dto.CheckoutState{}, err
	}

	if cmd.Mode != nil {
		session.SetMode(domaincheckout.BookingMode(*cmd.Mode))
	}
	if cmd.StartDate != nil && cmd.EndDate != nil {
		if err := session.SetDates(*cmd.StartDate, *cmd.EndDate); err != nil {
			return dto.CheckoutState{}, err
		}
	}
	if cmd.StartTime != nil || cmd.EndTime != nil {
		sel := session.Selection()
		start, end := sel.StartTime, sel.EndTime
		if cmd.StartTime != nil {
			start = *cmd.StartTime
		}
		if cmd.EndTime != nil {
			end = *cmd.EndTime
		}
		if err := session.SetTimes(start, end); err != nil {
			return dto.CheckoutState{}, err
		}
	}
	if cmd.Pickup != nil && *cmd.Pickup {
		session.ChoosePickup()
	}
	if cmd.DeliveryAddress != nil {
		if err := session.SetDeliveryAddress(ctx, *cmd.DeliveryAddress); err != nil {
			return dto.CheckoutState{}, err
		}
	}
	if cmd.ToggleUpsellID != nil {
		u, ok := session.UpsellByID(*cmd.ToggleUpsellID)
		if !ok {
			return dto.CheckoutState{}, domaincheckout.ErrInvalidUpsell
		}
		if err := session.ToggleUpsell(u); err != nil {
			return dto.CheckoutState{}, err
		}
	}

	if err := h.Sessions.Save(ctx, session.Snapshot()); err != nil {
		return dto.CheckoutState{}, err
	}
	return mapState(session), nil
}

func (h *UpdateSelectionHandler) options() []domaincheckout.Option {
	if h.Now == nil {
		return nil
	}
	return []domaincheckout.Option{domaincheckout.WithClock(h.Now)}
}

var _ commands.Handler[UpdateSelectionCommand, dto.CheckoutState] = (*UpdateSelectionHandler)(nil)
