package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"vendibook/internal/domain/availability"
	"vendibook/internal/domain/delivery"
	"vendibook/internal/domain/listings"
	"vendibook/internal/domain/pricing"
	"vendibook/internal/domain/shared/daterange"
	"vendibook/internal/domain/shared/events"
	"vendibook/internal/domain/shared/geo"
	"vendibook/internal/domain/shared/money"
)

var (
	ErrNoListing           = errors.New("checkout: no listing attached")
	ErrIncompleteSelection = errors.New("checkout: selection is missing required fields")
	ErrInvalidUpsell       = errors.New("checkout: upsell price must be non-negative")
	ErrUpstream            = errors.New("checkout: upstream collaborator failed")
)

// BookingMode selects which date/time fields a booking requires.
type BookingMode string

const (
	ModeDaily         BookingMode = "DAILY"
	ModeDailyWithTime BookingMode = "DAILY_WITH_TIME"
	ModeHourly        BookingMode = "HOURLY"
)

// Geocoder resolves a free-text address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (geo.Coordinate, error)
}

// PaymentSession is what the payment collaborator hands back.
type PaymentSession struct {
	SessionID   string
	RedirectURL string
}

// SessionRequest is the record handed to the payment collaborator. The
// engine only supplies the amount due and descriptive metadata; it never
// talks to the payment network directly.
type SessionRequest struct {
	ListingID     string
	CustomerEmail string
	AmountDue     money.Money
	Metadata      map[string]string
}

// PaymentSessions creates hosted checkout sessions.
type PaymentSessions interface {
	CreateSession(ctx context.Context, req SessionRequest) (PaymentSession, error)
}

// Selection is the renter's in-progress choices. It lives only for the
// duration of one checkout flow and is discarded afterwards.
type Selection struct {
	Mode            BookingMode          `json:"mode"`
	Dates           daterange.DateRange  `json:"dates"`
	HasDates        bool                 `json:"has_dates"`
	StartTime       string               `json:"start_time,omitempty"`
	EndTime         string               `json:"end_time,omitempty"`
	Pickup          bool                 `json:"pickup"`
	DeliveryAddress string               `json:"delivery_address,omitempty"`
	Upsells         []listings.Upsell    `json:"upsells,omitempty"`
}

// Session coordinates one in-progress booking flow. Every mutation re-runs
// the pure pricing pipeline and swaps the derived quote and delivery
// classification in one step, so callers never observe a half-updated view.
type Session struct {
	mu sync.Mutex

	id      string
	listing *listings.Listing
	sel     Selection

	dropoff    geo.Coordinate
	hasDropoff bool

	classification delivery.Classification
	quote          *pricing.Quote
	saleQuote      *pricing.SaleQuote
	pricingType    pricing.PricingType
	recomputeErr   error

	geocodeSeq uint64

	geocoder Geocoder
	payments PaymentSessions
	now      func() time.Time

	events.EventRecorder
}

// Option tweaks session construction; used by tests to pin the clock.
type Option func(*Session)

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession opens a checkout flow for a listing.
func NewSession(id string, listing *listings.Listing, geocoder Geocoder, payments PaymentSessions, opts ...Option) (*Session, error) {
	if listing == nil {
		return nil, ErrNoListing
	}
	s := &Session{
		id:       id,
		listing:  listing,
		geocoder: geocoder,
		payments: payments,
		now:      func() time.Time { return time.Now().UTC() },
	}
	switch listing.Kind {
	case listings.KindService:
		s.sel.Mode = ModeHourly
	default:
		s.sel.Mode = ModeDaily
	}
	for _, opt := range opts {
		opt(s)
	}
	s.recompute()
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// UpsellByID resolves an add-on offered by the attached listing.
func (s *Session) UpsellByID(id string) (listings.Upsell, bool) {
	return s.listing.UpsellByID(id)
}

// ListingID returns the attached listing's id.
func (s *Session) ListingID() listings.ListingID { return s.listing.ID }

// SetMode switches the booking mode and re-derives the quote.
func (s *Session) SetMode(mode BookingMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.Mode = mode
	s.recompute()
}

// SetDates fixes the rental date range after validating it against the
// listing's booking window. A validation failure leaves the previous
// selection untouched so the renter can retry immediately.
func (s *Session) SetDates(start, end time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var r daterange.DateRange
	var err error
	if s.sel.Mode == ModeHourly {
		r = daterange.Single(start)
	} else {
		r, err = daterange.New(start, end)
		if err != nil {
			return fmt.Errorf("%w: %v", availability.ErrDateRangeInvalid, err)
		}
	}
	if err := availability.CheckRange(r, s.listing.BookingWindow(), s.now()); err != nil {
		return err
	}
	s.sel.Dates = r
	s.sel.HasDates = true
	s.recompute()
	return nil
}

// SetTimes fixes the start/end wall times ("15:04"). For hourly bookings
// the end must be strictly after the start.
func (s *Session) SetTimes(start, end string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := parseWallClock(start); err != nil {
		return err
	}
	if end != "" {
		endMin, err := parseWallClock(end)
		if err != nil {
			return err
		}
		startMin, _ := parseWallClock(start)
		if s.sel.Mode == ModeHourly && endMin <= startMin {
			return pricing.ErrInvalidDuration
		}
	} else if s.sel.Mode == ModeHourly {
		return pricing.ErrInvalidDuration
	}
	s.sel.StartTime = start
	s.sel.EndTime = end
	s.recompute()
	return nil
}

// ChoosePickup switches to self-transport; any delivery address is dropped.
func (s *Session) ChoosePickup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.Pickup = true
	s.sel.DeliveryAddress = ""
	s.hasDropoff = false
	s.dropoff = geo.Coordinate{}
	s.recompute()
}

// SetDeliveryAddress geocodes the drop-off address and reclassifies the
// delivery zone. The call may suspend on the network; if the renter changes
// the address meanwhile, the stale response is dropped by sequence
// comparison. A geocoding failure preserves the current selection.
func (s *Session) SetDeliveryAddress(ctx context.Context, address string) error {
	if s.geocoder == nil {
		return ErrNoGeocoder
	}

	s.mu.Lock()
	s.geocodeSeq++
	token := s.geocodeSeq
	s.mu.Unlock()

	coord, err := s.geocoder.Geocode(ctx, address)

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.geocodeSeq {
		// A newer request superseded this one.
		return nil
	}
	if err != nil {
		return errors.Join(ErrUpstream, err)
	}
	s.sel.Pickup = false
	s.sel.DeliveryAddress = address
	s.dropoff = coord
	s.hasDropoff = true
	s.recompute()
	return nil
}

// ErrNoGeocoder is returned when a delivery address is set on a session
// built without a geocoding collaborator.
var ErrNoGeocoder = errors.New("checkout: geocoder not configured")

// ToggleUpsell flips set-membership for an add-on: toggling a selected
// upsell removes it. Negative prices are rejected before any state changes.
func (s *Session) ToggleUpsell(u listings.Upsell) error {
	if u.Price.IsNegative() {
		return ErrInvalidUpsell
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.sel.Upsells {
		if existing.ID == u.ID {
			s.sel.Upsells = append(s.sel.Upsells[:i], s.sel.Upsells[i+1:]...)
			s.recompute()
			return nil
		}
	}
	s.sel.Upsells = append(s.sel.Upsells, u)
	s.recompute()
	return nil
}

// Quote returns the current rental fee breakdown, if one could be derived.
func (s *Session) Quote() (pricing.Quote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quote == nil {
		return pricing.Quote{}, false
	}
	return *s.quote, true
}

// PricingType reports which rate tier the current quote was priced at.
func (s *Session) PricingType() pricing.PricingType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pricingType
}

// SaleQuote returns the sale fee breakdown for sale listings.
func (s *Session) SaleQuote() (pricing.SaleQuote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saleQuote == nil {
		return pricing.SaleQuote{}, false
	}
	return *s.saleQuote, true
}

// Classification returns the current delivery-zone decision.
func (s *Session) Classification() delivery.Classification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.classification
}

// Selection returns a copy of the current selection.
func (s *Session) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel := s.sel
	sel.Upsells = append([]listings.Upsell(nil), s.sel.Upsells...)
	return sel
}

// Err reports why the last recompute produced no quote, if it failed.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recomputeErr
}

// CanCheckout gates submission: a listing is attached, the date/time fields
// the active mode requires are populated, the fee split produced a positive
// total, and a delivery (non-pickup) selection resolved to a zone inside
// the service area.
func (s *Session) CanCheckout() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canCheckoutLocked()
}

func (s *Session) canCheckoutLocked() bool {
	if s.listing == nil {
		return false
	}
	if s.listing.Kind == listings.KindSale {
		return s.saleQuote != nil && s.saleQuote.TotalBuyerPays.Amount > 0
	}
	if !s.sel.HasDates {
		return false
	}
	switch s.sel.Mode {
	case ModeDailyWithTime, ModeHourly:
		if s.sel.StartTime == "" {
			return false
		}
		if s.sel.Mode == ModeHourly && s.sel.EndTime == "" {
			return false
		}
	}
	if !s.sel.Pickup {
		if !s.hasDropoff || !s.classification.Bookable() {
			return false
		}
	}
	return s.quote != nil && s.quote.TotalRenterPays.Amount > 0
}

// CreateCheckoutSession builds the payment-session request and hands it to
// the payment collaborator. The collaborator's failure message is surfaced
// verbatim; the in-progress selection survives for a retry.
func (s *Session) CreateCheckoutSession(ctx context.Context, customerEmail string) (PaymentSession, error) {
	if s.payments == nil {
		return PaymentSession{}, fmt.Errorf("%w: payment collaborator not configured", ErrUpstream)
	}

	s.mu.Lock()
	if !s.canCheckoutLocked() {
		if !s.sel.Pickup && s.hasDropoff && !s.classification.Bookable() {
			s.mu.Unlock()
			return PaymentSession{}, delivery.ErrOutOfRange
		}
		s.mu.Unlock()
		return PaymentSession{}, ErrIncompleteSelection
	}
	req := SessionRequest{
		ListingID:     string(s.listing.ID),
		CustomerEmail: customerEmail,
		AmountDue:     s.amountDueLocked(),
		Metadata:      s.metadataLocked(),
	}
	s.mu.Unlock()

	result, err := s.payments.CreateSession(ctx, req)
	if err != nil {
		return PaymentSession{}, errors.Join(ErrUpstream, err)
	}

	s.mu.Lock()
	s.Record(CheckoutSessionCreatedEvent{
		SessionID:  s.id,
		ListingID:  s.listing.ID,
		PaymentRef: result.SessionID,
		TotalCents: req.AmountDue.Amount,
		At:         s.now(),
	})
	s.mu.Unlock()
	return result, nil
}

func (s *Session) amountDueLocked() money.Money {
	if s.listing.Kind == listings.KindSale && s.saleQuote != nil {
		return s.saleQuote.TotalBuyerPays
	}
	return s.quote.TotalRenterPays
}

func (s *Session) metadataLocked() map[string]string {
	meta := map[string]string{
		"listing_id": string(s.listing.ID),
		"mode":       string(s.sel.Mode),
	}
	if s.sel.HasDates {
		meta["start_date"] = s.sel.Dates.Start.Format("2006-01-02")
		meta["end_date"] = s.sel.Dates.End.Format("2006-01-02")
	}
	if s.sel.StartTime != "" {
		meta["start_time"] = s.sel.StartTime
	}
	if s.sel.EndTime != "" {
		meta["end_time"] = s.sel.EndTime
	}
	if s.quote != nil {
		meta["base_price_cents"] = strconv.FormatInt(s.quote.BasePrice.Amount, 10)
		meta["delivery_fee_cents"] = strconv.FormatInt(s.quote.DeliveryFee.Amount, 10)
		meta["upsell_total_cents"] = strconv.FormatInt(s.quote.UpsellTotal.Amount, 10)
		meta["total_cents"] = strconv.FormatInt(s.quote.TotalRenterPays.Amount, 10)
	}
	if s.sel.Pickup {
		meta["delivery"] = "pickup"
	} else if s.hasDropoff {
		meta["delivery"] = string(s.classification.Mode)
		meta["delivery_address"] = s.sel.DeliveryAddress
	}
	if len(s.sel.Upsells) > 0 {
		ids := make([]string, 0, len(s.sel.Upsells))
		for _, u := range s.sel.Upsells {
			ids = append(ids, u.ID)
		}
		meta["upsells"] = strings.Join(ids, ",")
	}
	return meta
}

// recompute re-runs the pure pipeline and replaces every derived value in
// one step. Callers hold s.mu.
func (s *Session) recompute() {
	s.quote = nil
	s.saleQuote = nil
	s.pricingType = ""
	s.recomputeErr = nil
	s.classification = delivery.Classification{}

	if s.listing == nil {
		s.recomputeErr = ErrNoListing
		return
	}

	if s.listing.Kind == listings.KindSale {
		sale, err := pricing.SplitSale(s.listing.SalePrice)
		if err != nil {
			s.recomputeErr = err
			return
		}
		s.saleQuote = &sale
		return
	}

	deliveryFee := s.listing.Rates.Daily.Zero()
	if !s.sel.Pickup && s.hasDropoff {
		distance := geo.Miles(s.listing.Location, s.dropoff)
		s.classification = delivery.Classify(distance, s.listing.Delivery)
		if s.classification.Mode == delivery.PaidDelivery {
			deliveryFee = s.classification.Fee
		}
	}

	base, err := s.baseCharge()
	if err != nil {
		s.recomputeErr = err
		return
	}

	upsellTotal := s.listing.Rates.Daily.Zero()
	for _, u := range s.sel.Upsells {
		if u.Price.IsNegative() {
			s.recomputeErr = ErrInvalidUpsell
			return
		}
		upsellTotal, err = upsellTotal.Add(u.Price)
		if err != nil {
			s.recomputeErr = err
			return
		}
	}

	quote, err := pricing.SplitRental(base.Amount, deliveryFee, upsellTotal)
	if err != nil {
		s.recomputeErr = err
		return
	}
	s.quote = &quote
	s.pricingType = base.Type
}

func (s *Session) baseCharge() (pricing.BaseCharge, error) {
	if !s.sel.HasDates {
		return pricing.BaseCharge{}, ErrIncompleteSelection
	}
	if s.sel.Mode == ModeHourly {
		hours, err := s.bookedHours()
		if err != nil {
			return pricing.BaseCharge{}, err
		}
		return pricing.ServiceBase(s.listing.Rates, hours)
	}
	return pricing.RentalBase(s.listing.Rates, s.sel.Dates.Days())
}

func (s *Session) bookedHours() (int, error) {
	if s.sel.StartTime == "" || s.sel.EndTime == "" {
		return 0, ErrIncompleteSelection
	}
	start, err := parseWallClock(s.sel.StartTime)
	if err != nil {
		return 0, err
	}
	end, err := parseWallClock(s.sel.EndTime)
	if err != nil {
		return 0, err
	}
	if end <= start {
		return 0, pricing.ErrInvalidDuration
	}
	minutes := end - start
	hours := minutes / 60
	if minutes%60 != 0 {
		hours++
	}
	return hours, nil
}

// parseWallClock parses "15:04" into minutes after midnight.
func parseWallClock(v string) (int, error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, fmt.Errorf("%w: bad time %q", pricing.ErrInvalidDuration, v)
	}
	return t.Hour()*60 + t.Minute(), nil
}
