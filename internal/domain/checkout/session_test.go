package checkout

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"vendibook/internal/domain/delivery"
	"vendibook/internal/domain/listings"
	"vendibook/internal/domain/pricing"
	"vendibook/internal/domain/shared/geo"
	"vendibook/internal/domain/shared/money"
)

var (
	testNow  = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	hostBase = geo.Coordinate{Lat: 36.1627, Lon: -86.7816}
)

func fixedClock() time.Time { return testNow }

// coordAt places a point the given number of miles due north of the host.
func coordAt(miles float64) geo.Coordinate {
	return geo.Coordinate{Lat: hostBase.Lat + miles/69.0882, Lon: hostBase.Lon}
}

type fakeGeocoder struct {
	mu      sync.Mutex
	coords  map[string]geo.Coordinate
	err     error
	started chan struct{} // closed when a gated call begins, if set
	release chan struct{} // gated calls block here until closed, if set
	gated   string
}

func (g *fakeGeocoder) Geocode(_ context.Context, address string) (geo.Coordinate, error) {
	if g.release != nil && address == g.gated {
		close(g.started)
		<-g.release
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return geo.Coordinate{}, g.err
	}
	c, ok := g.coords[address]
	if !ok {
		return geo.Coordinate{}, errors.New("no results")
	}
	return c, nil
}

type fakePayments struct {
	lastReq SessionRequest
	result  PaymentSession
	err     error
	calls   int
}

func (p *fakePayments) CreateSession(_ context.Context, req SessionRequest) (PaymentSession, error) {
	p.calls++
	p.lastReq = req
	if p.err != nil {
		return PaymentSession{}, p.err
	}
	return p.result, nil
}

func rentalListing(t *testing.T) *listings.Listing {
	t.Helper()
	l, err := listings.NewListing(listings.CreateParams{
		ID:       "lst-truck",
		Host:     "host-1",
		Title:    "16ft Box Truck",
		Kind:     listings.KindRental,
		Address:  "88 Pine St, Nashville, TN",
		Location: hostBase,
		Rates:    listings.RateCard{Daily: money.Cents(10000)},
		Delivery: listings.DeliveryPolicy{
			FreeRadiusMiles:  10,
			PaidRadiusMiles:  30,
			PerMile:          money.Cents(350),
			MaxDistanceMiles: 50,
		},
		Upsells: []listings.Upsell{
			{ID: "u-dolly", Name: "Appliance dolly", Price: money.Cents(1500)},
		},
		Now: testNow,
	})
	if err != nil {
		t.Fatal(err)
	}
	l.ClearEvents()
	return l
}

func newTestSession(t *testing.T, listing *listings.Listing, geocoder Geocoder, payments PaymentSessions) *Session {
	t.Helper()
	s, err := NewSession("sess-1", listing, geocoder, payments, WithClock(fixedClock))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestNewSessionModeDefaults(t *testing.T) {
	rental := newTestSession(t, rentalListing(t), nil, nil)
	if got := rental.Selection().Mode; got != ModeDaily {
		t.Fatalf("rental mode = %s, want %s", got, ModeDaily)
	}

	svc, err := listings.NewListing(listings.CreateParams{
		ID:       "lst-dj",
		Host:     "host-2",
		Title:    "Wedding DJ",
		Kind:     listings.KindService,
		Address:  "12 Broadway, Nashville, TN",
		Location: hostBase,
		Rates:    listings.RateCard{Daily: money.Cents(80000)},
		Now:      testNow,
	})
	if err != nil {
		t.Fatal(err)
	}
	session := newTestSession(t, svc, nil, nil)
	if got := session.Selection().Mode; got != ModeHourly {
		t.Fatalf("service mode = %s, want %s", got, ModeHourly)
	}
}

func TestNewSessionRequiresListing(t *testing.T) {
	if _, err := NewSession("sess-x", nil, nil, nil); !errors.Is(err, ErrNoListing) {
		t.Fatalf("error = %v, want %v", err, ErrNoListing)
	}
}

func TestSetDatesEnforcesBookingWindow(t *testing.T) {
	listing := rentalListing(t)
	listing.Window = &listings.BookingWindowRules{MinRentalDays: 2, MaxRentalDays: 14, MaxFutureDays: 365}
	s := newTestSession(t, listing, nil, nil)

	err := s.SetDates(time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC))
	if err == nil {
		t.Fatal("one-day rental under a two-day minimum should be rejected")
	}
	if !strings.Contains(err.Error(), "minimum rental is 2 days") {
		t.Fatalf("error = %v, want minimum-rental reason", err)
	}
	if s.Selection().HasDates {
		t.Fatal("failed SetDates must not touch the selection")
	}
}

func TestPickupRentalFlow(t *testing.T) {
	s := newTestSession(t, rentalListing(t), nil, nil)
	if s.CanCheckout() {
		t.Fatal("fresh session should not be checkout-ready")
	}

	if err := s.SetDates(time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	s.ChoosePickup()

	if !s.CanCheckout() {
		t.Fatalf("pickup rental with dates should be checkout-ready (err: %v)", s.Err())
	}
	q, ok := s.Quote()
	if !ok {
		t.Fatal("expected a quote")
	}
	if q.BasePrice.Amount != 30000 {
		t.Fatalf("BasePrice = %d, want 30000 for three days at 10000", q.BasePrice.Amount)
	}
	if q.TotalRenterPays.Amount != 33900 {
		t.Fatalf("TotalRenterPays = %d, want 33900", q.TotalRenterPays.Amount)
	}
	if got := s.PricingType(); got != pricing.PricingDaily {
		t.Fatalf("PricingType = %s, want %s", got, pricing.PricingDaily)
	}
}

func TestDailyWithTimeRequiresStartTime(t *testing.T) {
	s := newTestSession(t, rentalListing(t), nil, nil)
	s.SetMode(ModeDailyWithTime)
	if err := s.SetDates(time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	s.ChoosePickup()

	if s.CanCheckout() {
		t.Fatal("timed rental without a start time should not be checkout-ready")
	}
	if err := s.SetTimes("09:00", ""); err != nil {
		t.Fatal(err)
	}
	if !s.CanCheckout() {
		t.Fatalf("timed rental with start time should be checkout-ready (err: %v)", s.Err())
	}
}

func TestHourlyTimesValidation(t *testing.T) {
	s := newTestSession(t, rentalListing(t), nil, nil)
	s.SetMode(ModeHourly)

	if err := s.SetTimes("14:00", "12:00"); !errors.Is(err, pricing.ErrInvalidDuration) {
		t.Fatalf("end before start: error = %v, want %v", err, pricing.ErrInvalidDuration)
	}
	if err := s.SetTimes("14:00", ""); !errors.Is(err, pricing.ErrInvalidDuration) {
		t.Fatalf("missing end: error = %v, want %v", err, pricing.ErrInvalidDuration)
	}
	if err := s.SetTimes("not-a-time", "12:00"); !errors.Is(err, pricing.ErrInvalidDuration) {
		t.Fatalf("garbage start: error = %v, want %v", err, pricing.ErrInvalidDuration)
	}
}

func TestDeliveryClassification(t *testing.T) {
	geocoder := &fakeGeocoder{coords: map[string]geo.Coordinate{
		"close":    coordAt(5),
		"midrange": coordAt(20),
		"far":      coordAt(60),
	}}
	s := newTestSession(t, rentalListing(t), geocoder, nil)
	if err := s.SetDates(time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}

	if err := s.SetDeliveryAddress(context.Background(), "close"); err != nil {
		t.Fatal(err)
	}
	if got := s.Classification().Mode; got != delivery.FreeDelivery {
		t.Fatalf("5mi zone = %s, want %s", got, delivery.FreeDelivery)
	}
	if !s.CanCheckout() {
		t.Fatalf("free-delivery selection should be checkout-ready (err: %v)", s.Err())
	}

	if err := s.SetDeliveryAddress(context.Background(), "midrange"); err != nil {
		t.Fatal(err)
	}
	cls := s.Classification()
	if cls.Mode != delivery.PaidDelivery {
		t.Fatalf("20mi zone = %s, want %s", cls.Mode, delivery.PaidDelivery)
	}
	if cls.Fee.Amount != 7000 {
		t.Fatalf("delivery fee = %d, want 7000 (20mi at 350/mi)", cls.Fee.Amount)
	}
	q, ok := s.Quote()
	if !ok {
		t.Fatal("expected a quote")
	}
	if q.DeliveryFee.Amount != 7000 {
		t.Fatalf("quoted delivery fee = %d, want 7000", q.DeliveryFee.Amount)
	}

	if err := s.SetDeliveryAddress(context.Background(), "far"); err != nil {
		t.Fatal(err)
	}
	if got := s.Classification().Mode; got != delivery.OutOfRange {
		t.Fatalf("60mi zone = %s, want %s", got, delivery.OutOfRange)
	}
	if s.CanCheckout() {
		t.Fatal("out-of-range dropoff must block checkout")
	}
}

func TestSetDeliveryAddressWithoutGeocoder(t *testing.T) {
	s := newTestSession(t, rentalListing(t), nil, nil)
	if err := s.SetDeliveryAddress(context.Background(), "anywhere"); !errors.Is(err, ErrNoGeocoder) {
		t.Fatalf("error = %v, want %v", err, ErrNoGeocoder)
	}
}

func TestStaleGeocodeResponseDropped(t *testing.T) {
	geocoder := &fakeGeocoder{
		coords: map[string]geo.Coordinate{
			"slow": coordAt(60),
			"fast": coordAt(5),
		},
		gated:   "slow",
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := newTestSession(t, rentalListing(t), geocoder, nil)

	done := make(chan error, 1)
	go func() { done <- s.SetDeliveryAddress(context.Background(), "slow") }()
	<-geocoder.started

	if err := s.SetDeliveryAddress(context.Background(), "fast"); err != nil {
		t.Fatal(err)
	}
	close(geocoder.release)
	if err := <-done; err != nil {
		t.Fatalf("superseded call should return nil, got %v", err)
	}

	if got := s.Selection().DeliveryAddress; got != "fast" {
		t.Fatalf("delivery address = %q, want the newer request to win", got)
	}
	if got := s.Classification().Mode; got != delivery.FreeDelivery {
		t.Fatalf("classification = %s, want %s from the newer address", got, delivery.FreeDelivery)
	}
}

func TestGeocodeFailureKeepsSelection(t *testing.T) {
	geocoder := &fakeGeocoder{coords: map[string]geo.Coordinate{"close": coordAt(5)}}
	s := newTestSession(t, rentalListing(t), geocoder, nil)
	if err := s.SetDeliveryAddress(context.Background(), "close"); err != nil {
		t.Fatal(err)
	}

	geocoder.mu.Lock()
	geocoder.err = errors.New("quota exceeded")
	geocoder.mu.Unlock()

	err := s.SetDeliveryAddress(context.Background(), "elsewhere")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("error = %v, want %v", err, ErrUpstream)
	}
	if got := s.Selection().DeliveryAddress; got != "close" {
		t.Fatalf("delivery address = %q, failed geocode must not clobber it", got)
	}
}

func TestToggleUpsell(t *testing.T) {
	s := newTestSession(t, rentalListing(t), nil, nil)
	if err := s.SetDates(time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	s.ChoosePickup()

	dolly, ok := s.UpsellByID("u-dolly")
	if !ok {
		t.Fatal("listing offers u-dolly")
	}
	if err := s.ToggleUpsell(dolly); err != nil {
		t.Fatal(err)
	}
	q, _ := s.Quote()
	if q.UpsellTotal.Amount != 1500 {
		t.Fatalf("UpsellTotal = %d, want 1500", q.UpsellTotal.Amount)
	}

	// Second toggle removes it.
	if err := s.ToggleUpsell(dolly); err != nil {
		t.Fatal(err)
	}
	q, _ = s.Quote()
	if q.UpsellTotal.Amount != 0 {
		t.Fatalf("UpsellTotal after removal = %d, want 0", q.UpsellTotal.Amount)
	}

	bad := listings.Upsell{ID: "u-bad", Price: money.Cents(-1)}
	if err := s.ToggleUpsell(bad); !errors.Is(err, ErrInvalidUpsell) {
		t.Fatalf("negative upsell: error = %v, want %v", err, ErrInvalidUpsell)
	}
}

func TestCreateCheckoutSession(t *testing.T) {
	payments := &fakePayments{result: PaymentSession{SessionID: "pay_123", RedirectURL: "https://pay.example/123"}}
	s := newTestSession(t, rentalListing(t), nil, payments)

	if _, err := s.CreateCheckoutSession(context.Background(), "renter@example.com"); !errors.Is(err, ErrIncompleteSelection) {
		t.Fatalf("incomplete selection: error = %v, want %v", err, ErrIncompleteSelection)
	}

	if err := s.SetDates(time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	s.ChoosePickup()

	result, err := s.CreateCheckoutSession(context.Background(), "renter@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if result.SessionID != "pay_123" {
		t.Fatalf("SessionID = %s, want pay_123", result.SessionID)
	}

	req := payments.lastReq
	if req.ListingID != "lst-truck" || req.CustomerEmail != "renter@example.com" {
		t.Fatalf("request = %+v", req)
	}
	if req.AmountDue.Amount != 33900 {
		t.Fatalf("AmountDue = %d, want 33900", req.AmountDue.Amount)
	}
	for key, want := range map[string]string{
		"listing_id":  "lst-truck",
		"mode":        "DAILY",
		"start_date":  "2026-09-10",
		"end_date":    "2026-09-12",
		"total_cents": "33900",
		"delivery":    "pickup",
	} {
		if got := req.Metadata[key]; got != want {
			t.Fatalf("metadata[%s] = %q, want %q", key, got, want)
		}
	}

	events := s.PendingEvents()
	if len(events) != 1 {
		t.Fatalf("pending events = %d, want 1", len(events))
	}
	ev, ok := events[0].(CheckoutSessionCreatedEvent)
	if !ok {
		t.Fatalf("event = %T, want CheckoutSessionCreatedEvent", events[0])
	}
	if ev.PaymentRef != "pay_123" || ev.TotalCents != 33900 {
		t.Fatalf("event = %+v", ev)
	}
}

func TestCreateCheckoutSessionOutOfRange(t *testing.T) {
	geocoder := &fakeGeocoder{coords: map[string]geo.Coordinate{"far": coordAt(60)}}
	payments := &fakePayments{result: PaymentSession{SessionID: "pay_123"}}
	s := newTestSession(t, rentalListing(t), geocoder, payments)
	if err := s.SetDates(time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	if err := s.SetDeliveryAddress(context.Background(), "far"); err != nil {
		t.Fatal(err)
	}

	if _, err := s.CreateCheckoutSession(context.Background(), "renter@example.com"); !errors.Is(err, delivery.ErrOutOfRange) {
		t.Fatalf("error = %v, want %v", err, delivery.ErrOutOfRange)
	}
	if payments.calls != 0 {
		t.Fatal("out-of-range submission must not reach the payment collaborator")
	}
}

func TestCreateCheckoutSessionUpstreamFailure(t *testing.T) {
	payments := &fakePayments{err: errors.New("card network unavailable")}
	s := newTestSession(t, rentalListing(t), nil, payments)
	if err := s.SetDates(time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	s.ChoosePickup()

	_, err := s.CreateCheckoutSession(context.Background(), "renter@example.com")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("error = %v, want %v", err, ErrUpstream)
	}
	if !strings.Contains(err.Error(), "card network unavailable") {
		t.Fatalf("collaborator message lost: %v", err)
	}
	if len(s.PendingEvents()) != 0 {
		t.Fatal("failed submission must not record an event")
	}
	if !s.CanCheckout() {
		t.Fatal("selection must survive a failed submission for retry")
	}
}

func TestSaleListingCheckout(t *testing.T) {
	listing, err := listings.NewListing(listings.CreateParams{
		ID:        "lst-smoker",
		Host:      "host-3",
		Title:     "Commercial Smoker",
		Kind:      listings.KindSale,
		Address:   "5 Elm St, Nashville, TN",
		Location:  hostBase,
		SalePrice: money.Cents(4500000),
		Now:       testNow,
	})
	if err != nil {
		t.Fatal(err)
	}
	payments := &fakePayments{result: PaymentSession{SessionID: "pay_sale"}}
	s := newTestSession(t, listing, nil, payments)

	sale, ok := s.SaleQuote()
	if !ok {
		t.Fatal("sale listing should derive a sale quote immediately")
	}
	if sale.BuyerFee.Amount != 0 {
		t.Fatalf("BuyerFee = %d, want 0", sale.BuyerFee.Amount)
	}
	if sale.SellerCommission.Amount != 585000 {
		t.Fatalf("SellerCommission = %d, want 585000", sale.SellerCommission.Amount)
	}
	if !s.CanCheckout() {
		t.Fatal("sale listing is checkout-ready without a selection")
	}

	if _, err := s.CreateCheckoutSession(context.Background(), "buyer@example.com"); err != nil {
		t.Fatal(err)
	}
	if payments.lastReq.AmountDue.Amount != sale.TotalBuyerPays.Amount {
		t.Fatalf("AmountDue = %d, want %d", payments.lastReq.AmountDue.Amount, sale.TotalBuyerPays.Amount)
	}
}

func TestSnapshotRestore(t *testing.T) {
	geocoder := &fakeGeocoder{coords: map[string]geo.Coordinate{"midrange": coordAt(20)}}
	s := newTestSession(t, rentalListing(t), geocoder, nil)
	if err := s.SetDates(time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	if err := s.SetDeliveryAddress(context.Background(), "midrange"); err != nil {
		t.Fatal(err)
	}
	dolly, _ := s.UpsellByID("u-dolly")
	if err := s.ToggleUpsell(dolly); err != nil {
		t.Fatal(err)
	}
	wantQuote, ok := s.Quote()
	if !ok {
		t.Fatal("expected a quote before snapshot")
	}

	snap := s.Snapshot()
	restored, err := Restore(snap, rentalListing(t), geocoder, nil, WithClock(fixedClock))
	if err != nil {
		t.Fatal(err)
	}

	gotQuote, ok := restored.Quote()
	if !ok {
		t.Fatalf("restored session has no quote (err: %v)", restored.Err())
	}
	if gotQuote != wantQuote {
		t.Fatalf("restored quote = %+v, want %+v", gotQuote, wantQuote)
	}
	if got := restored.Classification().Mode; got != delivery.PaidDelivery {
		t.Fatalf("restored classification = %s, want %s", got, delivery.PaidDelivery)
	}
	if !restored.CanCheckout() {
		t.Fatal("restored session should remain checkout-ready")
	}
}
