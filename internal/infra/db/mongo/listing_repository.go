package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "vendibook/internal/domain/listings"
	"vendibook/internal/domain/shared/daterange"
	"vendibook/internal/domain/shared/geo"
	"vendibook/internal/domain/shared/money"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection("agg_listing")}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ListingRepository) Save(ctx context.Context, l *domainlistings.Listing) error {
	doc := newListingDocument(l)
	filter := bson.M{"_id": doc.ID, "version": l.Version}
	doc.Version = l.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	l.Version = doc.Version
	return nil
}

func (r *ListingRepository) ListByHost(ctx context.Context, host domainlistings.HostID) ([]*domainlistings.Listing, error) {
	cursor, err := r.col.Find(ctx, bson.M{"host_id": string(host)})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*domainlistings.Listing
	for cursor.Next(ctx) {
		var doc listingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type listingDocument struct {
	ID          string           `bson:"_id"`
	HostID      string           `bson:"host_id"`
	Title       string           `bson:"title"`
	Description string           `bson:"description"`
	Kind        string           `bson:"kind"`
	State       string           `bson:"state"`
	Address     string           `bson:"address"`
	Lat         float64          `bson:"lat"`
	Lon         float64          `bson:"lon"`
	Currency    string           `bson:"currency"`
	DailyCents  int64            `bson:"daily_cents"`
	WeeklyCents int64            `bson:"weekly_cents"`
	MonthCents  int64            `bson:"monthly_cents"`
	HourCents   int64            `bson:"hourly_cents"`
	SaleCents   int64            `bson:"sale_cents"`
	Delivery    deliveryDocument `bson:"delivery"`
	Window      *windowDocument  `bson:"window,omitempty"`
	Upsells     []upsellDocument `bson:"upsells,omitempty"`
	Photos      []string         `bson:"photos,omitempty"`
	CreatedAt   int64            `bson:"created_at"`
	UpdatedAt   int64            `bson:"updated_at"`
	Version     int64            `bson:"version"`
}

type deliveryDocument struct {
	FreeRadiusMiles  float64 `bson:"free_radius_miles"`
	PaidRadiusMiles  float64 `bson:"paid_radius_miles"`
	PerMileCents     int64   `bson:"per_mile_cents"`
	MaxDistanceMiles float64 `bson:"max_distance_miles"`
	PickupRequired   bool    `bson:"pickup_required"`
}

type windowDocument struct {
	MinDaysNotice  int     `bson:"min_days_notice"`
	MaxFutureDays  int     `bson:"max_future_days"`
	MinRentalDays  int     `bson:"min_rental_days"`
	MaxRentalDays  int     `bson:"max_rental_days"`
	BlackoutDates  []int64 `bson:"blackout_dates,omitempty"`
	BlackoutStarts []int64 `bson:"blackout_starts,omitempty"`
	BlackoutEnds   []int64 `bson:"blackout_ends,omitempty"`
}

type upsellDocument struct {
	ID         string `bson:"id"`
	Name       string `bson:"name"`
	PriceCents int64  `bson:"price_cents"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	doc := listingDocument{
		ID:          string(l.ID),
		HostID:      string(l.Host),
		Title:       l.Title,
		Description: l.Description,
		Kind:        string(l.Kind),
		State:       string(l.State),
		Address:     l.Address,
		Lat:         l.Location.Lat,
		Lon:         l.Location.Lon,
		Currency:    l.Rates.Daily.Currency,
		DailyCents:  l.Rates.Daily.Amount,
		WeeklyCents: l.Rates.Weekly.Amount,
		MonthCents:  l.Rates.Monthly.Amount,
		HourCents:   l.Rates.Hourly.Amount,
		SaleCents:   l.SalePrice.Amount,
		Delivery: deliveryDocument{
			FreeRadiusMiles:  l.Delivery.FreeRadiusMiles,
			PaidRadiusMiles:  l.Delivery.PaidRadiusMiles,
			PerMileCents:     l.Delivery.PerMile.Amount,
			MaxDistanceMiles: l.Delivery.MaxDistanceMiles,
			PickupRequired:   l.Delivery.PickupRequired,
		},
		Photos:    append([]string(nil), l.Photos...),
		CreatedAt: l.CreatedAt.UnixMilli(),
		UpdatedAt: l.UpdatedAt.UnixMilli(),
		Version:   l.Version,
	}
	if l.Window != nil {
		w := windowDocument{
			MinDaysNotice: l.Window.MinDaysNotice,
			MaxFutureDays: l.Window.MaxFutureDays,
			MinRentalDays: l.Window.MinRentalDays,
			MaxRentalDays: l.Window.MaxRentalDays,
		}
		for _, d := range l.Window.BlackoutDates {
			w.BlackoutDates = append(w.BlackoutDates, d.UnixMilli())
		}
		for _, r := range l.Window.BlackoutRanges {
			w.BlackoutStarts = append(w.BlackoutStarts, r.Start.UnixMilli())
			w.BlackoutEnds = append(w.BlackoutEnds, r.End.UnixMilli())
		}
		doc.Window = &w
	}
	for _, u := range l.Upsells {
		doc.Upsells = append(doc.Upsells, upsellDocument{ID: u.ID, Name: u.Name, PriceCents: u.Price.Amount})
	}
	return doc
}

func (d listingDocument) toAggregate() *domainlistings.Listing {
	currency := d.Currency
	if currency == "" {
		currency = money.DefaultCurrency
	}
	cents := func(v int64) money.Money {
		return money.Money{Amount: v, Currency: currency}
	}
	agg := &domainlistings.Listing{
		ID:          domainlistings.ListingID(d.ID),
		Host:        domainlistings.HostID(d.HostID),
		Title:       d.Title,
		Description: d.Description,
		Kind:        domainlistings.Kind(d.Kind),
		State:       domainlistings.ListingState(d.State),
		Address:     d.Address,
		Location:    geo.Coordinate{Lat: d.Lat, Lon: d.Lon},
		Rates: domainlistings.RateCard{
			Daily:   cents(d.DailyCents),
			Weekly:  cents(d.WeeklyCents),
			Monthly: cents(d.MonthCents),
			Hourly:  cents(d.HourCents),
		},
		SalePrice: cents(d.SaleCents),
		Delivery: domainlistings.DeliveryPolicy{
			FreeRadiusMiles:  d.Delivery.FreeRadiusMiles,
			PaidRadiusMiles:  d.Delivery.PaidRadiusMiles,
			PerMile:          cents(d.Delivery.PerMileCents),
			MaxDistanceMiles: d.Delivery.MaxDistanceMiles,
			PickupRequired:   d.Delivery.PickupRequired,
		},
		Photos:    append([]string(nil), d.Photos...),
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
		Version:   d.Version,
	}
	if d.Window != nil {
		w := domainlistings.BookingWindowRules{
			MinDaysNotice: d.Window.MinDaysNotice,
			MaxFutureDays: d.Window.MaxFutureDays,
			MinRentalDays: d.Window.MinRentalDays,
			MaxRentalDays: d.Window.MaxRentalDays,
		}
		for _, ms := range d.Window.BlackoutDates {
			w.BlackoutDates = append(w.BlackoutDates, timestampToTime(ms))
		}
		for i := range d.Window.BlackoutStarts {
			if i >= len(d.Window.BlackoutEnds) {
				break
			}
			w.BlackoutRanges = append(w.BlackoutRanges, daterange.DateRange{
				Start: timestampToTime(d.Window.BlackoutStarts[i]),
				End:   timestampToTime(d.Window.BlackoutEnds[i]),
			})
		}
		agg.Window = &w
	}
	for _, u := range d.Upsells {
		agg.Upsells = append(agg.Upsells, domainlistings.Upsell{ID: u.ID, Name: u.Name, Price: cents(u.PriceCents)})
	}
	return agg
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
