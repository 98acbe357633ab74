package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"vendibook/internal/domain/shared/daterange"
	"vendibook/internal/domain/shared/events"
	"vendibook/internal/domain/shared/geo"
	"vendibook/internal/domain/shared/money"
)

var (
	ErrTitleRequired      = errors.New("listings: title is required")
	ErrAddressRequired    = errors.New("listings: address must be provided when activating")
	ErrInvalidState       = errors.New("listings: invalid state transition")
	ErrNegativeRate       = errors.New("listings: rates must be non-negative")
	ErrDailyRateRequired  = errors.New("listings: daily rate is required for rental listings")
	ErrSalePriceRequired  = errors.New("listings: sale price is required for sale listings")
	ErrDeliveryRadii      = errors.New("listings: paid radius must cover the free radius")
	ErrDeliveryMaxRange   = errors.New("listings: max distance must cover the paid radius")
	ErrDeliveryPerMile    = errors.New("listings: per-mile price required when paid radius is set")
	ErrNegativeRadius     = errors.New("listings: delivery radii must be non-negative")
	ErrRentalLengthRange  = errors.New("listings: min rental days must be <= max rental days")
	ErrNegativeNotice     = errors.New("listings: days notice must be non-negative")
	ErrUpsellPrice        = errors.New("listings: upsell price must be non-negative")
	ErrNotOwner           = errors.New("listings: listing belongs to a different host")
)

type ListingID string
type HostID string

// Kind distinguishes the three transaction shapes the marketplace supports.
type Kind string

const (
	KindRental  Kind = "RENTAL"  // trucks, trailers, kitchens rented by the day
	KindService Kind = "SERVICE" // event-pro services booked by the hour
	KindSale    Kind = "SALE"
)

type ListingState string

const (
	ListingDraft     ListingState = "DRAFT"
	ListingActive    ListingState = "ACTIVE"
	ListingSuspended ListingState = "SUSPENDED"
)

// RateCard holds the tiers a host has priced. Weekly, monthly and hourly are
// optional; a zero amount means the tier is not offered.
type RateCard struct {
	Daily   money.Money
	Weekly  money.Money
	Monthly money.Money
	Hourly  money.Money
}

func (rc RateCard) Validate() error {
	for _, m := range []money.Money{rc.Daily, rc.Weekly, rc.Monthly, rc.Hourly} {
		if m.IsNegative() {
			return ErrNegativeRate
		}
	}
	return nil
}

// HasWeekly reports whether a weekly tier is offered.
func (rc RateCard) HasWeekly() bool { return rc.Weekly.Amount > 0 }

// HasMonthly reports whether a monthly tier is offered.
func (rc RateCard) HasMonthly() bool { return rc.Monthly.Amount > 0 }

// EffectiveHourly returns the hourly rate, defaulting to daily/8 when the
// host never set one.
func (rc RateCard) EffectiveHourly() money.Money {
	if rc.Hourly.Amount > 0 {
		return rc.Hourly
	}
	return rc.Daily.Div(8)
}

// Discounted reports whether weekly/monthly tiers actually undercut the
// all-daily price. A false result is a host misconfiguration, not an error;
// quoting proceeds regardless.
func (rc RateCard) Discounted() bool {
	if rc.HasWeekly() && rc.Weekly.Amount > rc.Daily.Amount*7 {
		return false
	}
	if rc.HasMonthly() && rc.Monthly.Amount > rc.Daily.Amount*28 {
		return false
	}
	return true
}

// DeliveryPolicy describes how far a host will haul the asset and at what
// cost. Zero radii disable the respective zone.
type DeliveryPolicy struct {
	FreeRadiusMiles  float64
	PaidRadiusMiles  float64
	PerMile          money.Money
	MaxDistanceMiles float64
	PickupRequired   bool
}

// Validate enforces the policy invariants at the listing boundary so the
// zone classifier never has to re-check them.
func (p DeliveryPolicy) Validate() error {
	if p.FreeRadiusMiles < 0 || p.PaidRadiusMiles < 0 || p.MaxDistanceMiles < 0 {
		return ErrNegativeRadius
	}
	if p.PaidRadiusMiles > 0 && p.PaidRadiusMiles < p.FreeRadiusMiles {
		return ErrDeliveryRadii
	}
	if p.MaxDistanceMiles > 0 && p.MaxDistanceMiles < p.PaidRadiusMiles {
		return ErrDeliveryMaxRange
	}
	if p.PaidRadiusMiles > 0 && p.PerMile.Amount <= 0 {
		return ErrDeliveryPerMile
	}
	return nil
}

// BookingWindowRules constrain which dates a renter may pick.
type BookingWindowRules struct {
	MinDaysNotice  int
	MaxFutureDays  int
	MinRentalDays  int
	MaxRentalDays  int
	BlackoutDates  []time.Time
	BlackoutRanges []daterange.DateRange
}

// DefaultBookingWindow applies when a host never configured rules:
// same-day booking allowed, one year horizon, rentals of 1 to 30 days.
func DefaultBookingWindow() BookingWindowRules {
	return BookingWindowRules{
		MinDaysNotice: 0,
		MaxFutureDays: 365,
		MinRentalDays: 1,
		MaxRentalDays: 30,
	}
}

func (r BookingWindowRules) Validate() error {
	if r.MinDaysNotice < 0 || r.MaxFutureDays < 0 {
		return ErrNegativeNotice
	}
	if r.MinRentalDays > r.MaxRentalDays {
		return ErrRentalLengthRange
	}
	return nil
}

// Upsell is an optional paid add-on selectable during checkout.
type Upsell struct {
	ID    string
	Name  string
	Price money.Money
}

type Listing struct {
	ID          ListingID
	Host        HostID
	Title       string
	Description string
	Kind        Kind
	State       ListingState
	Address     string
	Location    geo.Coordinate
	Rates       RateCard
	SalePrice   money.Money
	Delivery    DeliveryPolicy
	Window      *BookingWindowRules
	Upsells     []Upsell
	Photos      []string
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	ListByHost(ctx context.Context, host HostID) ([]*Listing, error)
}

type CreateParams struct {
	ID          ListingID
	Host        HostID
	Title       string
	Description string
	Kind        Kind
	Address     string
	Location    geo.Coordinate
	Rates       RateCard
	SalePrice   money.Money
	Delivery    DeliveryPolicy
	Window      *BookingWindowRules
	Upsells     []Upsell
	Photos      []string
	Now         time.Time
}

func NewListing(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("listings: id is required")
	}
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, errors.New("listings: host is required")
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if err := params.Rates.Validate(); err != nil {
		return nil, err
	}
	switch params.Kind {
	case KindRental, KindService:
		if params.Rates.Daily.Amount <= 0 {
			return nil, ErrDailyRateRequired
		}
	case KindSale:
		if params.SalePrice.Amount <= 0 {
			return nil, ErrSalePriceRequired
		}
	default:
		return nil, errors.New("listings: unknown listing kind")
	}
	if err := params.Delivery.Validate(); err != nil {
		return nil, err
	}
	if params.Window != nil {
		if err := params.Window.Validate(); err != nil {
			return nil, err
		}
	}
	for _, u := range params.Upsells {
		if u.Price.IsNegative() {
			return nil, ErrUpsellPrice
		}
	}

	now := params.Now.UTC()
	listing := &Listing{
		ID:          params.ID,
		Host:        params.Host,
		Title:       strings.TrimSpace(params.Title),
		Description: strings.TrimSpace(params.Description),
		Kind:        params.Kind,
		State:       ListingDraft,
		Address:     strings.TrimSpace(params.Address),
		Location:    params.Location,
		Rates:       params.Rates,
		SalePrice:   params.SalePrice,
		Delivery:    params.Delivery,
		Window:      params.Window,
		Upsells:     append([]Upsell(nil), params.Upsells...),
		Photos:      append([]string(nil), params.Photos...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	listing.Record(ListingCreatedEvent{ListingID: listing.ID, HostID: listing.Host, Kind: listing.Kind, At: now})
	if !listing.Rates.Discounted() {
		listing.Record(RateMisconfiguredEvent{ListingID: listing.ID, At: now})
	}
	return listing, nil
}

// BookingWindow returns the configured rules or the marketplace defaults.
func (l *Listing) BookingWindow() BookingWindowRules {
	if l.Window == nil {
		return DefaultBookingWindow()
	}
	return *l.Window
}

// UpsellByID looks up an add-on offered by this listing.
func (l *Listing) UpsellByID(id string) (Upsell, bool) {
	for _, u := range l.Upsells {
		if u.ID == id {
			return u, true
		}
	}
	return Upsell{}, false
}

func (l *Listing) Activate(now time.Time) error {
	if l.State == ListingActive {
		return nil
	}
	if strings.TrimSpace(l.Address) == "" || l.Location.IsZero() {
		return ErrAddressRequired
	}
	l.State = ListingActive
	l.UpdatedAt = now.UTC()
	l.Record(ListingActivatedEvent{ListingID: l.ID, HostID: l.Host, At: l.UpdatedAt})
	return nil
}

func (l *Listing) Suspend(reason string, now time.Time) error {
	if l.State != ListingActive {
		return ErrInvalidState
	}
	l.State = ListingSuspended
	l.UpdatedAt = now.UTC()
	l.Record(ListingSuspendedEvent{ListingID: l.ID, Reason: reason, At: l.UpdatedAt})
	return nil
}

// AttachPhoto appends an uploaded photo URL.
func (l *Listing) AttachPhoto(url string, now time.Time) {
	l.Photos = append(l.Photos, url)
	l.UpdatedAt = now.UTC()
}

// UpdatePricing replaces the rate card and delivery policy after validation.
func (l *Listing) UpdatePricing(rates RateCard, delivery DeliveryPolicy, now time.Time) error {
	if err := rates.Validate(); err != nil {
		return err
	}
	if (l.Kind == KindRental || l.Kind == KindService) && rates.Daily.Amount <= 0 {
		return ErrDailyRateRequired
	}
	if err := delivery.Validate(); err != nil {
		return err
	}
	l.Rates = rates
	l.Delivery = delivery
	l.UpdatedAt = now.UTC()
	l.Record(ListingUpdatedEvent{ListingID: l.ID, At: l.UpdatedAt})
	if !rates.Discounted() {
		l.Record(RateMisconfiguredEvent{ListingID: l.ID, At: l.UpdatedAt})
	}
	return nil
}

// UpdateBookingWindow replaces the booking-window rules (nil restores defaults).
func (l *Listing) UpdateBookingWindow(rules *BookingWindowRules, now time.Time) error {
	if rules != nil {
		if err := rules.Validate(); err != nil {
			return err
		}
	}
	l.Window = rules
	l.UpdatedAt = now.UTC()
	l.Record(ListingUpdatedEvent{ListingID: l.ID, At: l.UpdatedAt})
	return nil
}
