package delivery

import (
	"errors"
	"fmt"

	"vendibook/internal/domain/listings"
	"vendibook/internal/domain/shared/money"
)

// ErrOutOfRange is returned when a caller tries to proceed with delivery to
// an address the classifier placed outside the service area.
var ErrOutOfRange = errors.New("delivery: address is outside the listing's service area")

// Mode is one of the four delivery zones a drop-off address can fall into.
type Mode string

const (
	FreeDelivery   Mode = "FREE_DELIVERY"
	PaidDelivery   Mode = "PAID_DELIVERY"
	PickupRequired Mode = "PICKUP_REQUIRED"
	OutOfRange     Mode = "OUT_OF_RANGE"
)

// Classification is the zone decision for one (distance, policy) pair.
type Classification struct {
	Mode    Mode
	Fee     money.Money
	Message string
}

// Bookable reports whether a booking may proceed at all with this zone.
func (c Classification) Bookable() bool {
	return c.Mode != OutOfRange
}

// Classify decides which delivery zone applies. The checks run in a fixed
// order and the first match wins; pickup-required listings short-circuit
// everything, including distance.
func Classify(distanceMiles float64, policy listings.DeliveryPolicy) Classification {
	zero := policy.PerMile.Zero()

	switch {
	case policy.PickupRequired:
		return Classification{
			Mode:    PickupRequired,
			Fee:     zero,
			Message: "this listing is pickup only",
		}
	case policy.FreeRadiusMiles > 0 && distanceMiles <= policy.FreeRadiusMiles:
		return Classification{
			Mode:    FreeDelivery,
			Fee:     zero,
			Message: fmt.Sprintf("free delivery within %.0f miles", policy.FreeRadiusMiles),
		}
	case policy.PaidRadiusMiles > 0 && distanceMiles <= policy.PaidRadiusMiles:
		return Classification{
			Mode:    PaidDelivery,
			Fee:     policy.PerMile.Scale(distanceMiles),
			Message: fmt.Sprintf("delivery available at %s per mile", policy.PerMile),
		}
	case policy.MaxDistanceMiles > 0 && distanceMiles <= policy.MaxDistanceMiles:
		// Delivery is offered, just not this far out; the renter self-transports.
		return Classification{
			Mode:    PickupRequired,
			Fee:     zero,
			Message: "outside the delivery radius; pickup required",
		}
	default:
		return Classification{
			Mode:    OutOfRange,
			Fee:     zero,
			Message: "this address is outside the listing's service area",
		}
	}
}
