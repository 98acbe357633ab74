package pricing

import (
	"errors"
	"testing"

	"vendibook/internal/domain/listings"
	"vendibook/internal/domain/shared/money"
)

func fullRateCard() listings.RateCard {
	return listings.RateCard{
		Daily:   money.Cents(10000),  // $100/day
		Weekly:  money.Cents(60000),  // $600/week
		Monthly: money.Cents(200000), // $2000/month
	}
}

func TestRentalBase(t *testing.T) {
	tests := []struct {
		name     string
		rates    listings.RateCard
		days     int
		want     int64
		wantType PricingType
	}{
		{"one day", fullRateCard(), 1, 10000, PricingDaily},
		{"six days stay daily", fullRateCard(), 6, 60000, PricingDaily},
		{"exactly one week", fullRateCard(), 7, 60000, PricingWeekly},
		{"ten days is week plus remainder", fullRateCard(), 10, 90000, PricingWeekly},
		{"two weeks", fullRateCard(), 14, 120000, PricingWeekly},
		{"exactly one month", fullRateCard(), 28, 200000, PricingMonthly},
		{"month plus five days", fullRateCard(), 33, 250000, PricingMonthly},
		{"two months", fullRateCard(), 56, 400000, PricingMonthly},
		{
			"no weekly tier falls through to daily",
			listings.RateCard{Daily: money.Cents(10000)},
			10, 100000, PricingDaily,
		},
		{
			"no monthly tier uses weekly for a month",
			listings.RateCard{Daily: money.Cents(10000), Weekly: money.Cents(60000)},
			28, 240000, PricingWeekly,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RentalBase(tt.rates, tt.days)
			if err != nil {
				t.Fatalf("RentalBase: %v", err)
			}
			if got.Amount.Amount != tt.want {
				t.Errorf("amount = %d, want %d", got.Amount.Amount, tt.want)
			}
			if got.Type != tt.wantType {
				t.Errorf("type = %s, want %s", got.Type, tt.wantType)
			}
		})
	}
}

func TestRentalBaseInvalidDuration(t *testing.T) {
	for _, days := range []int{0, -1} {
		if _, err := RentalBase(fullRateCard(), days); !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("days=%d: expected ErrInvalidDuration, got %v", days, err)
		}
	}
}

func TestRentalBaseNegativeRate(t *testing.T) {
	rates := listings.RateCard{Daily: money.Cents(-100)}
	if _, err := RentalBase(rates, 3); !errors.Is(err, ErrNegativeAmount) {
		t.Errorf("expected ErrNegativeAmount, got %v", err)
	}
}

func TestRentalBaseNeverChargesMoreThanDaily(t *testing.T) {
	// The tier pick must never exceed the plain daily price for the
	// same duration.
	for days := 1; days <= 90; days++ {
		got, err := RentalBase(fullRateCard(), days)
		if err != nil {
			t.Fatalf("days=%d: %v", days, err)
		}
		allDaily := int64(days) * 10000
		if got.Amount.Amount > allDaily {
			t.Errorf("days=%d: tiered %d > daily %d", days, got.Amount.Amount, allDaily)
		}
	}
}

func TestServiceBase(t *testing.T) {
	explicit := listings.RateCard{Daily: money.Cents(80000), Hourly: money.Cents(12000)}
	got, err := ServiceBase(explicit, 3)
	if err != nil {
		t.Fatalf("ServiceBase: %v", err)
	}
	if got.Amount.Amount != 36000 {
		t.Errorf("explicit hourly: %d, want 36000", got.Amount.Amount)
	}
	if got.Type != PricingHourly {
		t.Errorf("type = %s, want %s", got.Type, PricingHourly)
	}

	// No hourly rate: one eighth of the daily rate.
	derived := listings.RateCard{Daily: money.Cents(80000)}
	got, err = ServiceBase(derived, 4)
	if err != nil {
		t.Fatalf("ServiceBase derived: %v", err)
	}
	if got.Amount.Amount != 40000 {
		t.Errorf("derived hourly: %d, want 40000", got.Amount.Amount)
	}

	if _, err := ServiceBase(explicit, 0); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("zero hours: expected ErrInvalidDuration, got %v", err)
	}
}
