package listings

import (
	"testing"
	"time"
)

func TestNormalizeRecordRates(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want int64
	}{
		{"integer taken as cents", map[string]any{"dailyRateCents": 10000}, 10000},
		{"float taken as dollars", map[string]any{"dailyRate": 100.0}, 10000},
		{"float rounds to nearest cent", map[string]any{"dailyRate": 99.995}, 10000},
		{"snake_case alias", map[string]any{"daily_rate": 85.0}, 8500},
		{"camelCase wins over later aliases", map[string]any{"dailyRate": 100.0, "daily_rate": 50.0}, 10000},
		{"missing field is zero", map[string]any{}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rates, _, _ := NormalizeRecord(tc.raw)
			if rates.Daily.Amount != tc.want {
				t.Fatalf("Daily = %d, want %d", rates.Daily.Amount, tc.want)
			}
		})
	}
}

func TestNormalizeRecordDelivery(t *testing.T) {
	raw := map[string]any{
		"freeDeliveryRadius":   10.0,
		"paid_delivery_radius": 30,
		"pricePerMile":         3.50,
		"maxDeliveryDistance":  50.0,
		"pickupRequired":       true,
	}
	_, policy, _ := NormalizeRecord(raw)
	if policy.FreeRadiusMiles != 10 {
		t.Fatalf("FreeRadiusMiles = %v, want 10", policy.FreeRadiusMiles)
	}
	if policy.PaidRadiusMiles != 30 {
		t.Fatalf("PaidRadiusMiles = %v, want 30", policy.PaidRadiusMiles)
	}
	if policy.PerMile.Amount != 350 {
		t.Fatalf("PerMile = %d, want 350", policy.PerMile.Amount)
	}
	if policy.MaxDistanceMiles != 50 {
		t.Fatalf("MaxDistanceMiles = %v, want 50", policy.MaxDistanceMiles)
	}
	if !policy.PickupRequired {
		t.Fatal("PickupRequired should carry through")
	}
}

func TestNormalizeRecordWindow(t *testing.T) {
	raw := map[string]any{
		"minRentalDays": 2,
		"maxRentalDays": float64(14),
		"blackoutDates": []any{"2026-09-10", "not-a-date"},
		"blackoutRanges": []any{
			map[string]any{"start": "2026-12-24", "end": "2026-12-26"},
			map[string]any{"start": "garbage", "end": "2026-12-31"},
		},
	}
	_, _, window := NormalizeRecord(raw)
	if window == nil {
		t.Fatal("window rules present in record, got nil")
	}
	if window.MinRentalDays != 2 || window.MaxRentalDays != 14 {
		t.Fatalf("rental length = %d..%d, want 2..14", window.MinRentalDays, window.MaxRentalDays)
	}
	// Unset fields fall back to marketplace defaults.
	if window.MinDaysNotice != 0 || window.MaxFutureDays != 365 {
		t.Fatalf("defaults = %d notice, %d horizon", window.MinDaysNotice, window.MaxFutureDays)
	}
	if len(window.BlackoutDates) != 1 {
		t.Fatalf("blackout dates = %d, want 1 (unparseable entries skipped)", len(window.BlackoutDates))
	}
	want := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	if !window.BlackoutDates[0].Equal(want) {
		t.Fatalf("blackout date = %v, want %v", window.BlackoutDates[0], want)
	}
	if len(window.BlackoutRanges) != 1 {
		t.Fatalf("blackout ranges = %d, want 1", len(window.BlackoutRanges))
	}
}

func TestNormalizeRecordNoWindowFields(t *testing.T) {
	_, _, window := NormalizeRecord(map[string]any{"dailyRate": 100.0})
	if window != nil {
		t.Fatalf("window = %+v, want nil when no window fields present", window)
	}
}
