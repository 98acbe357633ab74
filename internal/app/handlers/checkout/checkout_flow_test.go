package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"vendibook/internal/app/outbox"
	"vendibook/internal/app/policies"
	domaincheckout "vendibook/internal/domain/checkout"
	domainlistings "vendibook/internal/domain/listings"
	"vendibook/internal/domain/shared/geo"
	"vendibook/internal/domain/shared/money"
)

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type stubRepo struct {
	listings map[domainlistings.ListingID]*domainlistings.Listing
}

func (r *stubRepo) ByID(_ context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	l, ok := r.listings[id]
	if !ok {
		return nil, errors.New("listings: not found")
	}
	return l, nil
}

func (r *stubRepo) Save(_ context.Context, l *domainlistings.Listing) error {
	r.listings[l.ID] = l
	return nil
}

func (r *stubRepo) ListByHost(_ context.Context, host domainlistings.HostID) ([]*domainlistings.Listing, error) {
	var out []*domainlistings.Listing
	for _, l := range r.listings {
		if l.Host == host {
			out = append(out, l)
		}
	}
	return out, nil
}

type stubSessions struct {
	mu    sync.Mutex
	snaps map[string]domaincheckout.Snapshot
}

func newStubSessions() *stubSessions {
	return &stubSessions{snaps: map[string]domaincheckout.Snapshot{}}
}

func (s *stubSessions) Load(_ context.Context, id string) (domaincheckout.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snaps[id]
	if !ok {
		return domaincheckout.Snapshot{}, policies.ErrSessionNotFound
	}
	return snap, nil
}

func (s *stubSessions) Save(_ context.Context, snap domaincheckout.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[snap.ID] = snap
	return nil
}

func (s *stubSessions) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snaps[id]; !ok {
		return policies.ErrSessionNotFound
	}
	delete(s.snaps, id)
	return nil
}

type stubPayments struct {
	lastReq domaincheckout.SessionRequest
	calls   int
}

func (p *stubPayments) CreateSession(_ context.Context, req domaincheckout.SessionRequest) (domaincheckout.PaymentSession, error) {
	p.calls++
	p.lastReq = req
	return domaincheckout.PaymentSession{SessionID: "pay_abc", RedirectURL: "https://pay.example/abc"}, nil
}

type stubOutbox struct {
	records []outbox.EventRecord
}

func (b *stubOutbox) Add(_ context.Context, rec outbox.EventRecord) error {
	b.records = append(b.records, rec)
	return nil
}

func (b *stubOutbox) Flush(_ context.Context) error { return nil }

func truckListing(t *testing.T) *domainlistings.Listing {
	t.Helper()
	l, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:       "lst-truck",
		Host:     "host-1",
		Title:    "16ft Box Truck",
		Kind:     domainlistings.KindRental,
		Address:  "88 Pine St, Nashville, TN",
		Location: geo.Coordinate{Lat: 36.1627, Lon: -86.7816},
		Rates:    domainlistings.RateCard{Daily: money.Cents(10000)},
		Now:      testNow,
	})
	if err != nil {
		t.Fatal(err)
	}
	l.ClearEvents()
	return l
}

func ptr[T any](v T) *T { return &v }

func TestCheckoutFlow(t *testing.T) {
	ctx := context.Background()
	repo := &stubRepo{listings: map[domainlistings.ListingID]*domainlistings.Listing{}}
	listing := truckListing(t)
	repo.listings[listing.ID] = listing
	sessions := newStubSessions()
	payments := &stubPayments{}
	box := &stubOutbox{}

	start := &StartCheckoutHandler{Listings: repo, Sessions: sessions, Payments: payments, Now: fixedClock}
	state, err := start.Handle(ctx, StartCheckoutCommand{ListingID: "lst-truck"})
	if err != nil {
		t.Fatal(err)
	}
	if state.SessionID == "" {
		t.Fatal("session id missing")
	}
	if state.CanCheckout {
		t.Fatal("fresh session must not be checkout-ready")
	}

	update := &UpdateSelectionHandler{Listings: repo, Sessions: sessions, Payments: payments, Now: fixedClock}
	state, err = update.Handle(ctx, UpdateSelectionCommand{
		SessionID: state.SessionID,
		StartDate: ptr(time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)),
		EndDate:   ptr(time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)),
		Pickup:    ptr(true),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !state.CanCheckout {
		t.Fatalf("state = %+v, want checkout-ready after dates and pickup", state)
	}
	if state.Quote == nil || state.Quote.TotalRenterPaysCents != 33900 {
		t.Fatalf("quote = %+v, want total 33900", state.Quote)
	}

	// The selection survives the round trip through the store.
	get := &GetCheckoutStateHandler{Listings: repo, Sessions: sessions, Payments: payments, Now: fixedClock}
	reloaded, err := get.Handle(ctx, GetCheckoutStateQuery{SessionID: state.SessionID})
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.StartDate != "2026-09-10" || reloaded.EndDate != "2026-09-12" {
		t.Fatalf("reloaded dates = %s..%s", reloaded.StartDate, reloaded.EndDate)
	}

	submit := &CreateCheckoutHandler{
		Listings: repo,
		Sessions: sessions,
		Payments: payments,
		Outbox:   box,
		Encoder:  outbox.JSONEventEncoder{},
		Now:      fixedClock,
	}
	result, err := submit.Handle(ctx, CreateCheckoutCommand{
		SessionID:       state.SessionID,
		CustomerEmail:   "renter@example.com",
		IdempotencyKeyV: "idem-1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.SessionID != "pay_abc" || result.RedirectURL == "" {
		t.Fatalf("result = %+v", result)
	}
	if payments.calls != 1 {
		t.Fatalf("payment calls = %d, want 1", payments.calls)
	}
	if payments.lastReq.AmountDue.Amount != 33900 {
		t.Fatalf("AmountDue = %d, want 33900", payments.lastReq.AmountDue.Amount)
	}
	if len(box.records) != 1 {
		t.Fatalf("outbox records = %d, want 1", len(box.records))
	}
	if box.records[0].Name != "checkout.session_created" {
		t.Fatalf("event name = %s", box.records[0].Name)
	}

	// Submission retires the session.
	if _, err := get.Handle(ctx, GetCheckoutStateQuery{SessionID: state.SessionID}); !errors.Is(err, policies.ErrSessionNotFound) {
		t.Fatalf("post-submit lookup error = %v, want %v", err, policies.ErrSessionNotFound)
	}
}

func TestUpdateSelectionRejectsUnknownUpsell(t *testing.T) {
	ctx := context.Background()
	repo := &stubRepo{listings: map[domainlistings.ListingID]*domainlistings.Listing{}}
	listing := truckListing(t)
	repo.listings[listing.ID] = listing
	sessions := newStubSessions()

	start := &StartCheckoutHandler{Listings: repo, Sessions: sessions, Now: fixedClock}
	state, err := start.Handle(ctx, StartCheckoutCommand{ListingID: "lst-truck"})
	if err != nil {
		t.Fatal(err)
	}

	update := &UpdateSelectionHandler{Listings: repo, Sessions: sessions, Now: fixedClock}
	_, err = update.Handle(ctx, UpdateSelectionCommand{
		SessionID:      state.SessionID,
		ToggleUpsellID: ptr("no-such-upsell"),
	})
	if !errors.Is(err, domaincheckout.ErrInvalidUpsell) {
		t.Fatalf("error = %v, want %v", err, domaincheckout.ErrInvalidUpsell)
	}
}

func TestStartCheckoutUnknownListing(t *testing.T) {
	start := &StartCheckoutHandler{
		Listings: &stubRepo{listings: map[domainlistings.ListingID]*domainlistings.Listing{}},
		Sessions: newStubSessions(),
		Now:      fixedClock,
	}
	if _, err := start.Handle(context.Background(), StartCheckoutCommand{ListingID: "missing"}); err == nil {
		t.Fatal("unknown listing should fail")
	}
}
