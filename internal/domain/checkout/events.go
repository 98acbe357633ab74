package checkout

import (
	"time"

	"vendibook/internal/domain/listings"
)

type CheckoutSessionCreatedEvent struct {
	SessionID  string
	ListingID  listings.ListingID
	PaymentRef string
	TotalCents int64
	At         time.Time
}

func (e CheckoutSessionCreatedEvent) EventName() string     { return "checkout.session_created" }
func (e CheckoutSessionCreatedEvent) AggregateID() string   { return e.SessionID }
func (e CheckoutSessionCreatedEvent) OccurredAt() time.Time { return e.At }
