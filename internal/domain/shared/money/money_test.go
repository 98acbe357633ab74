package money

import (
	"errors"
	"testing"
)

func TestNewValidatesCurrency(t *testing.T) {
	m, err := New(1500, "usd")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.Currency != "USD" {
		t.Errorf("currency not upper-cased: %q", m.Currency)
	}
	if _, err := New(100, "dollars"); !errors.Is(err, ErrInvalidCurrency) {
		t.Errorf("expected ErrInvalidCurrency, got %v", err)
	}
}

func TestAddSubCurrencyMismatch(t *testing.T) {
	usd := Cents(100)
	eur := Must(100, "EUR")
	if _, err := usd.Add(eur); !errors.Is(err, ErrCurrencyMismatch) {
		t.Errorf("Add: expected ErrCurrencyMismatch, got %v", err)
	}
	if _, err := usd.Sub(eur); !errors.Is(err, ErrCurrencyMismatch) {
		t.Errorf("Sub: expected ErrCurrencyMismatch, got %v", err)
	}
}

func TestApplyBps(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		bps    int64
		want   int64
	}{
		{"13 percent of 970.00", 97000, 1300, 12610},
		{"2.9 percent of 1096.10 truncates", 109610, 290, 3178},
		{"10 percent of 970.00", 97000, 1000, 9700},
		{"zero rate", 97000, 0, 0},
		{"fraction dropped not rounded", 999, 1300, 129}, // 129.87 -> 129
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cents(tt.amount).ApplyBps(tt.bps)
			if got.Amount != tt.want {
				t.Errorf("ApplyBps(%d, %d) = %d, want %d", tt.amount, tt.bps, got.Amount, tt.want)
			}
		})
	}
}

func TestScaleRoundsNearest(t *testing.T) {
	if got := Cents(350).Scale(20.0); got.Amount != 7000 {
		t.Errorf("Scale(20.0) = %d, want 7000", got.Amount)
	}
	if got := Cents(333).Scale(1.5); got.Amount != 500 { // 499.5 rounds up
		t.Errorf("Scale(1.5) = %d, want 500", got.Amount)
	}
}

func TestZeroPreservesCurrency(t *testing.T) {
	z := Must(500, "EUR").Zero()
	if z.Amount != 0 || z.Currency != "EUR" {
		t.Errorf("Zero() = %+v", z)
	}
	if (Money{}).Zero().Currency != DefaultCurrency {
		t.Error("zero-value receiver should fall back to default currency")
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{109610, "1096.10 USD"},
		{5, "0.05 USD"},
		{-3208, "-32.08 USD"},
	}
	for _, tt := range tests {
		if got := Cents(tt.amount).String(); got != tt.want {
			t.Errorf("String(%d) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}
