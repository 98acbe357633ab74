package listings

import (
	"math"
	"time"

	"vendibook/internal/domain/shared/daterange"
	"vendibook/internal/domain/shared/money"
)

// NormalizeRecord converts a loosely-typed listing record (partner feeds and
// legacy documents use several field-name conventions) into the strict
// policy/rate shapes. This happens once at the boundary; nothing past this
// point branches on field-name variants.
func NormalizeRecord(raw map[string]any) (RateCard, DeliveryPolicy, *BookingWindowRules) {
	rates := RateCard{
		Daily:   centsField(raw, "dailyRate", "daily_rate", "dailyRateCents"),
		Weekly:  centsField(raw, "weeklyRate", "weekly_rate", "weeklyRateCents"),
		Monthly: centsField(raw, "monthlyRate", "monthly_rate", "monthlyRateCents"),
		Hourly:  centsField(raw, "hourlyRate", "hourly_rate", "hourlyRateCents"),
	}

	policy := DeliveryPolicy{
		FreeRadiusMiles:  floatField(raw, "freeDeliveryRadiusMiles", "freeDeliveryRadius", "free_delivery_radius", "freeRadius"),
		PaidRadiusMiles:  floatField(raw, "paidDeliveryRadiusMiles", "paidDeliveryRadius", "paid_delivery_radius", "paidRadius"),
		PerMile:          centsField(raw, "pricePerMile", "price_per_mile", "perMileCents"),
		MaxDistanceMiles: floatField(raw, "maxDeliveryDistanceMiles", "maxDeliveryDistance", "max_delivery_distance"),
		PickupRequired:   boolField(raw, "pickupRequired", "pickup_required", "pickupOnly"),
	}

	var window *BookingWindowRules
	if hasAnyField(raw, "minDaysNotice", "min_days_notice", "maxFutureDays", "max_future_days",
		"minRentalDays", "min_rental_days", "maxRentalDays", "max_rental_days",
		"blackoutDates", "blackout_dates", "blackoutRanges", "blackout_ranges") {
		defaults := DefaultBookingWindow()
		w := BookingWindowRules{
			MinDaysNotice: intFieldDefault(raw, defaults.MinDaysNotice, "minDaysNotice", "min_days_notice"),
			MaxFutureDays: intFieldDefault(raw, defaults.MaxFutureDays, "maxFutureDays", "max_future_days"),
			MinRentalDays: intFieldDefault(raw, defaults.MinRentalDays, "minRentalDays", "min_rental_days"),
			MaxRentalDays: intFieldDefault(raw, defaults.MaxRentalDays, "maxRentalDays", "max_rental_days"),
		}
		for _, v := range sliceField(raw, "blackoutDates", "blackout_dates") {
			if day, ok := parseDay(v); ok {
				w.BlackoutDates = append(w.BlackoutDates, day)
			}
		}
		for _, v := range sliceField(raw, "blackoutRanges", "blackout_ranges") {
			pair, ok := v.(map[string]any)
			if !ok {
				continue
			}
			start, okS := parseDay(firstField(pair, "start", "from"))
			end, okE := parseDay(firstField(pair, "end", "to"))
			if !okS || !okE {
				continue
			}
			if dr, err := daterange.New(start, end); err == nil {
				w.BlackoutRanges = append(w.BlackoutRanges, dr)
			}
		}
		window = &w
	}

	return rates, policy, window
}

func firstField(raw map[string]any, names ...string) any {
	for _, name := range names {
		if v, ok := raw[name]; ok && v != nil {
			return v
		}
	}
	return nil
}

func hasAnyField(raw map[string]any, names ...string) bool {
	return firstField(raw, names...) != nil
}

func floatField(raw map[string]any, names ...string) float64 {
	switch v := firstField(raw, names...).(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func intFieldDefault(raw map[string]any, def int, names ...string) int {
	v := firstField(raw, names...)
	if v == nil {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return def
}

func boolField(raw map[string]any, names ...string) bool {
	b, _ := firstField(raw, names...).(bool)
	return b
}

// centsField reads a currency amount. Integer values are taken as cents,
// floats as dollar amounts (legacy records stored dollars).
func centsField(raw map[string]any, names ...string) money.Money {
	switch v := firstField(raw, names...).(type) {
	case int:
		return money.Cents(int64(v))
	case int32:
		return money.Cents(int64(v))
	case int64:
		return money.Cents(v)
	case float64:
		return money.Cents(int64(math.Round(v * 100)))
	}
	return money.Cents(0)
}

func sliceField(raw map[string]any, names ...string) []any {
	s, _ := firstField(raw, names...).([]any)
	return s
}

func parseDay(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return daterange.Day(t), true
	case string:
		if parsed, err := time.Parse("2006-01-02", t); err == nil {
			return daterange.Day(parsed), true
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return daterange.Day(parsed), true
		}
	}
	return time.Time{}, false
}
