package checkout

import (
	"context"
	"errors"
	"time"

	"vendibook/internal/app/commands"
	"vendibook/internal/app/dto"
	"vendibook/internal/app/outbox"
	"vendibook/internal/app/policies"
	domaincheckout "vendibook/internal/domain/checkout"
	domainlistings "vendibook/internal/domain/listings"
)

const createSessionKey = "checkout.create_payment_session"

var ErrEmailRequired = errors.New("checkout: customer email required")

// CreateCheckoutCommand submits the finished selection to the payment
// collaborator. Retries with the same idempotency key replay the stored
// result instead of opening a second payment session.
type CreateCheckoutCommand struct {
	SessionID       string
	CustomerEmail   string
	IdempotencyKeyV string
}

func (c CreateCheckoutCommand) Key() string { return createSessionKey }

func (c CreateCheckoutCommand) Validate() error {
	if c.SessionID == "" {
		return policies.ErrSessionNotFound
	}
	if c.CustomerEmail == "" {
		return ErrEmailRequired
	}
	return nil
}

func (c CreateCheckoutCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateCheckoutCommand) ResultPrototype() any { return &dto.CheckoutSessionResult{} }

type CreateCheckoutHandler struct {
	Listings domainlistings.Repository
	Sessions policies.SessionStore
	Geocoder policies.GeocoderPort
	Payments policies.PaymentSessionPort
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Now      func() time.Time
}

func (h *CreateCheckoutHandler) Handle(ctx context.Context, cmd CreateCheckoutCommand) (*dto.CheckoutSessionResult, error) {
	d := deps{Listings: h.Listings, Sessions: h.Sessions, Geocoder: h.Geocoder, Payments: h.Payments}
	if err := d.validate(); err != nil {
		return nil, err
	}
	session, err := d.restore(ctx, cmd.SessionID, h.options()...)
	if err != nil {
		return nil, err
	}

	payment, err := session.CreateCheckoutSession(ctx, cmd.CustomerEmail)
	if err != nil {
		return nil, err
	}

	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, session.PendingEvents()); err != nil {
		return nil, err
	}
	session.ClearEvents()

	// The selection has served its purpose; a finished session is dropped
	// rather than left to expire.
	if err := h.Sessions.Delete(ctx, cmd.SessionID); err != nil && !errors.Is(err, policies.ErrSessionNotFound) {
		return nil, err
	}

	return &dto.CheckoutSessionResult{
		SessionID:   payment.SessionID,
		RedirectURL: payment.RedirectURL,
	}, nil
}

func (h *CreateCheckoutHandler) options() []domaincheckout.Option {
	if h.Now == nil {
		return nil
	}
	return []domaincheckout.Option{domaincheckout.WithClock(h.Now)}
}

var _ commands.Handler[CreateCheckoutCommand, *dto.CheckoutSessionResult] = (*CreateCheckoutHandler)(nil)
