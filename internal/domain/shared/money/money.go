package money

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrInvalidCurrency  = errors.New("money: invalid currency code")
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
)

// DefaultCurrency is used when callers construct amounts without an explicit code.
const DefaultCurrency = "USD"

// Money keeps amounts in integer cents to avoid floating point issues.
type Money struct {
	Amount   int64
	Currency string
}

// New constructs a Money value validating minimal invariants.
func New(amount int64, currency string) (Money, error) {
	if len(currency) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	currency = strings.ToUpper(currency)
	return Money{Amount: amount, Currency: currency}, nil
}

// Must creates Money and panics if validation fails; useful in tests and fixtures.
func Must(amount int64, currency string) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Cents wraps an amount of default-currency cents.
func Cents(amount int64) Money {
	return Money{Amount: amount, Currency: DefaultCurrency}
}

// Zero returns the zero amount in the receiver's currency, falling back to
// the default currency for zero-value receivers.
func (m Money) Zero() Money {
	if m.Currency == "" {
		return Cents(0)
	}
	return Money{Amount: 0, Currency: m.Currency}
}

// Add adds two money values ensuring currencies match.
func (m Money) Add(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Sub subtracts other from the receiver.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}

// Neg returns the negated amount preserving currency.
func (m Money) Neg() Money {
	return Money{Amount: -m.Amount, Currency: m.Currency}
}

// Multiply multiplies the amount by the provided factor.
func (m Money) Multiply(times int64) Money {
	return Money{Amount: m.Amount * times, Currency: m.Currency}
}

// Div divides the amount by the provided divisor, dropping the fractional cent.
func (m Money) Div(by int64) Money {
	return Money{Amount: m.Amount / by, Currency: m.Currency}
}

// ApplyBps applies a basis-point rate (13% = 1300 bps) in integer cents,
// dropping the fractional cent. Downstream settlement identities stay exact
// because payouts are computed by subtraction, never re-rounded.
func (m Money) ApplyBps(bps int64) Money {
	return Money{Amount: m.Amount * bps / 10000, Currency: m.Currency}
}

// Scale multiplies the amount by a real factor, rounding to the nearest cent.
func (m Money) Scale(factor float64) Money {
	return Money{Amount: int64(math.Round(float64(m.Amount) * factor)), Currency: m.Currency}
}

// IsZero returns true if the amount equals zero.
func (m Money) IsZero() bool {
	return m.Amount == 0
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.Amount < 0
}

// String renders the amount as a plain 2-decimal value; display formatting
// beyond that (symbols, locale) is the caller's concern.
func (m Money) String() string {
	sign := ""
	amount := m.Amount
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, amount/100, amount%100, m.Currency)
}

func (m Money) ensureSameCurrency(other Money) error {
	if m.Currency == "" || other.Currency == "" {
		return ErrInvalidCurrency
	}
	if m.Currency != other.Currency {
		return ErrCurrencyMismatch
	}
	return nil
}
