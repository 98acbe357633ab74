package pricing

import (
	"vendibook/internal/domain/shared/money"
)

// Marketplace fee schedule, in basis points. Fixed policy, not host-tunable.
const (
	RenterServiceFeeBps = 1300 // renter pays 13% on top of the subtotal
	HostCommissionBps   = 1000 // host gives up 10% of the subtotal
	SellerCommissionBps = 1300 // sale listings: seller gives up 13%
	BuyerFeeBps         = 0    // sale listings: buyer pays no margin

	processorVariableBps = 290 // 2.9%
	processorFixedCents  = 30  // $0.30
)

// Quote is the full fee breakdown for a rental booking. All amounts are
// integer cents; the settlement identities hold exactly:
//
//	TotalRenterPays = Subtotal + RenterServiceFee
//	HostPayout + HostCommission + ProcessorFee = Subtotal
type Quote struct {
	BasePrice        money.Money
	DeliveryFee      money.Money
	UpsellTotal      money.Money
	Subtotal         money.Money
	RenterServiceFee money.Money
	TotalRenterPays  money.Money
	HostCommission   money.Money
	ProcessorFee     money.Money
	HostPayout       money.Money
	PlatformRevenue  money.Money
}

// SplitRental turns the base price plus delivery and add-on charges into the
// renter-facing total, platform revenue, and host payout. The payment
// processor's cut (2.9% + $0.30 of the renter-facing total) comes out of the
// host's side.
func SplitRental(basePrice, deliveryFee, upsellTotal money.Money) (Quote, error) {
	if basePrice.IsNegative() || deliveryFee.IsNegative() || upsellTotal.IsNegative() {
		return Quote{}, ErrNegativeAmount
	}

	subtotal, err := sum(basePrice, deliveryFee, upsellTotal)
	if err != nil {
		return Quote{}, err
	}

	serviceFee := subtotal.ApplyBps(RenterServiceFeeBps)
	total, err := subtotal.Add(serviceFee)
	if err != nil {
		return Quote{}, err
	}

	processorFee := processorCost(total)
	commission := subtotal.ApplyBps(HostCommissionBps)

	payout := subtotal
	for _, cut := range []money.Money{commission, processorFee} {
		payout, err = payout.Sub(cut)
		if err != nil {
			return Quote{}, err
		}
	}

	revenue, err := serviceFee.Add(commission)
	if err != nil {
		return Quote{}, err
	}

	return Quote{
		BasePrice:        basePrice,
		DeliveryFee:      deliveryFee,
		UpsellTotal:      upsellTotal,
		Subtotal:         subtotal,
		RenterServiceFee: serviceFee,
		TotalRenterPays:  total,
		HostCommission:   commission,
		ProcessorFee:     processorFee,
		HostPayout:       payout,
		PlatformRevenue:  revenue,
	}, nil
}

// SaleQuote is the breakdown for a sale listing. The fee direction differs
// from rentals: the buyer pays no margin, the seller gives up the
// commission, and the processor fee is charged against the undiscounted
// sale subtotal rather than a buyer-facing total.
type SaleQuote struct {
	Subtotal         money.Money
	BuyerFee         money.Money
	TotalBuyerPays   money.Money
	SellerCommission money.Money
	ProcessorFee     money.Money
	SellerPayout     money.Money
	PlatformRevenue  money.Money
}

// SplitSale computes the sale-side fee table. Keep this separate from
// SplitRental; the two schedules must not be conflated.
func SplitSale(salePrice money.Money) (SaleQuote, error) {
	if salePrice.IsNegative() {
		return SaleQuote{}, ErrNegativeAmount
	}

	buyerFee := salePrice.ApplyBps(BuyerFeeBps)
	total, err := salePrice.Add(buyerFee)
	if err != nil {
		return SaleQuote{}, err
	}

	commission := salePrice.ApplyBps(SellerCommissionBps)
	processorFee := processorCost(salePrice)

	payout := salePrice
	for _, cut := range []money.Money{commission, processorFee} {
		payout, err = payout.Sub(cut)
		if err != nil {
			return SaleQuote{}, err
		}
	}

	revenue, err := buyerFee.Add(commission)
	if err != nil {
		return SaleQuote{}, err
	}

	return SaleQuote{
		Subtotal:         salePrice,
		BuyerFee:         buyerFee,
		TotalBuyerPays:   total,
		SellerCommission: commission,
		ProcessorFee:     processorFee,
		SellerPayout:     payout,
		PlatformRevenue:  revenue,
	}, nil
}

func processorCost(charged money.Money) money.Money {
	fee := charged.ApplyBps(processorVariableBps)
	fee.Amount += processorFixedCents
	return fee
}

func sum(amounts ...money.Money) (money.Money, error) {
	total := amounts[0]
	var err error
	for _, m := range amounts[1:] {
		if m.IsZero() && m.Currency == "" {
			continue
		}
		total, err = total.Add(m)
		if err != nil {
			return money.Money{}, err
		}
	}
	return total, nil
}
