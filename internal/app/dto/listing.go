package dto

import (
	"vendibook/internal/domain/listings"
)

type RateCard struct {
	DailyCents   int64 `json:"daily_cents"`
	WeeklyCents  int64 `json:"weekly_cents,omitempty"`
	MonthlyCents int64 `json:"monthly_cents,omitempty"`
	HourlyCents  int64 `json:"hourly_cents,omitempty"`
}

type DeliveryPolicy struct {
	FreeRadiusMiles  float64 `json:"free_radius_miles"`
	PaidRadiusMiles  float64 `json:"paid_radius_miles"`
	PerMileCents     int64   `json:"per_mile_cents"`
	MaxDistanceMiles float64 `json:"max_distance_miles"`
	PickupRequired   bool    `json:"pickup_required"`
}

type BookingWindow struct {
	MinDaysNotice  int         `json:"min_days_notice"`
	MaxFutureDays  int         `json:"max_future_days"`
	MinRentalDays  int         `json:"min_rental_days"`
	MaxRentalDays  int         `json:"max_rental_days"`
	BlackoutDates  []string    `json:"blackout_dates,omitempty"`
	BlackoutRanges [][2]string `json:"blackout_ranges,omitempty"`
}

type Upsell struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
}

type Listing struct {
	ID             string         `json:"id"`
	Host           string         `json:"host"`
	Title          string         `json:"title"`
	Description    string         `json:"description,omitempty"`
	Kind           string         `json:"kind"`
	State          string         `json:"state"`
	Address        string         `json:"address,omitempty"`
	Lat            float64        `json:"lat"`
	Lon            float64        `json:"lon"`
	Rates          RateCard       `json:"rates"`
	SalePriceCents int64          `json:"sale_price_cents,omitempty"`
	Delivery       DeliveryPolicy `json:"delivery"`
	Window         *BookingWindow `json:"booking_window,omitempty"`
	Upsells        []Upsell       `json:"upsells,omitempty"`
	Photos         []string       `json:"photos,omitempty"`
}

func MapListing(l *listings.Listing) Listing {
	out := Listing{
		ID:             string(l.ID),
		Host:           string(l.Host),
		Title:          l.Title,
		Description:    l.Description,
		Kind:           string(l.Kind),
		State:          string(l.State),
		Address:        l.Address,
		Lat:            l.Location.Lat,
		Lon:            l.Location.Lon,
		SalePriceCents: l.SalePrice.Amount,
		Rates: RateCard{
			DailyCents:   l.Rates.Daily.Amount,
			WeeklyCents:  l.Rates.Weekly.Amount,
			MonthlyCents: l.Rates.Monthly.Amount,
			HourlyCents:  l.Rates.Hourly.Amount,
		},
		Delivery: DeliveryPolicy{
			FreeRadiusMiles:  l.Delivery.FreeRadiusMiles,
			PaidRadiusMiles:  l.Delivery.PaidRadiusMiles,
			PerMileCents:     l.Delivery.PerMile.Amount,
			MaxDistanceMiles: l.Delivery.MaxDistanceMiles,
			PickupRequired:   l.Delivery.PickupRequired,
		},
		Photos: append([]string(nil), l.Photos...),
	}
	if l.Window != nil {
		w := BookingWindow{
			MinDaysNotice: l.Window.MinDaysNotice,
			MaxFutureDays: l.Window.MaxFutureDays,
			MinRentalDays: l.Window.MinRentalDays,
			MaxRentalDays: l.Window.MaxRentalDays,
		}
		for _, d := range l.Window.BlackoutDates {
			w.BlackoutDates = append(w.BlackoutDates, FormatDay(d))
		}
		for _, r := range l.Window.BlackoutRanges {
			w.BlackoutRanges = append(w.BlackoutRanges, [2]string{FormatDay(r.Start), FormatDay(r.End)})
		}
		out.Window = &w
	}
	for _, u := range l.Upsells {
		out.Upsells = append(out.Upsells, Upsell{ID: u.ID, Name: u.Name, PriceCents: u.Price.Amount})
	}
	return out
}
