package pricing

import (
	"errors"

	"vendibook/internal/domain/listings"
	"vendibook/internal/domain/shared/money"
)

var (
	ErrInvalidDuration = errors.New("pricing: duration must be at least one day or hour")
	ErrNegativeAmount  = errors.New("pricing: amounts must be non-negative")
)

// PricingType names the tier that won the base-price computation.
type PricingType string

const (
	PricingDaily   PricingType = "daily"
	PricingWeekly  PricingType = "weekly"
	PricingMonthly PricingType = "monthly"
	PricingHourly  PricingType = "hourly"
)

const (
	daysPerWeek  = 7
	daysPerMonth = 28
)

// BaseCharge is the pre-fee rental price for a duration.
type BaseCharge struct {
	Amount money.Money
	Type   PricingType
}

// RentalBase picks the most economical applicable tier for the requested
// duration: whole months (28-day blocks) first, then whole weeks, with the
// day-level remainder always charged at the daily rate. Long bookings get
// the tier savings without needing exact multiples.
func RentalBase(rates listings.RateCard, rentalDays int) (BaseCharge, error) {
	if rentalDays < 1 {
		return BaseCharge{}, ErrInvalidDuration
	}
	if rates.Daily.IsNegative() || rates.Weekly.IsNegative() || rates.Monthly.IsNegative() {
		return BaseCharge{}, ErrNegativeAmount
	}

	switch {
	case rates.HasMonthly() && rentalDays >= daysPerMonth:
		months := rentalDays / daysPerMonth
		remainder := rentalDays % daysPerMonth
		amount, err := rates.Monthly.Multiply(int64(months)).Add(rates.Daily.Multiply(int64(remainder)))
		if err != nil {
			return BaseCharge{}, err
		}
		return BaseCharge{Amount: amount, Type: PricingMonthly}, nil

	case rates.HasWeekly() && rentalDays >= daysPerWeek:
		weeks := rentalDays / daysPerWeek
		remainder := rentalDays % daysPerWeek
		amount, err := rates.Weekly.Multiply(int64(weeks)).Add(rates.Daily.Multiply(int64(remainder)))
		if err != nil {
			return BaseCharge{}, err
		}
		return BaseCharge{Amount: amount, Type: PricingWeekly}, nil

	default:
		return BaseCharge{Amount: rates.Daily.Multiply(int64(rentalDays)), Type: PricingDaily}, nil
	}
}

// ServiceBase prices an hourly event-pro booking. When the host never set an
// hourly rate, one eighth of the daily rate applies.
func ServiceBase(rates listings.RateCard, rentalHours int) (BaseCharge, error) {
	if rentalHours < 1 {
		return BaseCharge{}, ErrInvalidDuration
	}
	hourly := rates.EffectiveHourly()
	if hourly.IsNegative() {
		return BaseCharge{}, ErrNegativeAmount
	}
	return BaseCharge{Amount: hourly.Multiply(int64(rentalHours)), Type: PricingHourly}, nil
}
