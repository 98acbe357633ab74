package dto

import (
	"vendibook/internal/domain/delivery"
	"vendibook/internal/domain/pricing"
)

// PriceQuote carries the fee breakdown over the wire. Amounts are integer
// cents; currency formatting is the client's concern.
type PriceQuote struct {
	BasePriceCents        int64  `json:"base_price_cents"`
	PricingType           string `json:"pricing_type"`
	DeliveryFeeCents      int64  `json:"delivery_fee_cents"`
	UpsellTotalCents      int64  `json:"upsell_total_cents"`
	SubtotalCents         int64  `json:"subtotal_cents"`
	RenterServiceFeeCents int64  `json:"renter_service_fee_cents"`
	TotalRenterPaysCents  int64  `json:"total_renter_pays_cents"`
	HostCommissionCents   int64  `json:"host_commission_cents"`
	ProcessorFeeCents     int64  `json:"processor_fee_cents"`
	HostPayoutCents       int64  `json:"host_payout_cents"`
	PlatformRevenueCents  int64  `json:"platform_revenue_cents"`
	Currency              string `json:"currency"`
}

type DeliveryZone struct {
	Mode          string  `json:"mode"`
	FeeCents      int64   `json:"fee_cents"`
	Message       string  `json:"message"`
	DistanceMiles float64 `json:"distance_miles"`
	Bookable      bool    `json:"bookable"`
}

// QuoteResponse pairs the fee split with the delivery decision for the
// selected address.
type QuoteResponse struct {
	ListingID string        `json:"listing_id"`
	Quote     PriceQuote    `json:"quote"`
	Delivery  *DeliveryZone `json:"delivery,omitempty"`
}

func MapQuote(q pricing.Quote, pricingType pricing.PricingType) PriceQuote {
	return PriceQuote{
		BasePriceCents:        q.BasePrice.Amount,
		PricingType:           string(pricingType),
		DeliveryFeeCents:      q.DeliveryFee.Amount,
		UpsellTotalCents:      q.UpsellTotal.Amount,
		SubtotalCents:         q.Subtotal.Amount,
		RenterServiceFeeCents: q.RenterServiceFee.Amount,
		TotalRenterPaysCents:  q.TotalRenterPays.Amount,
		HostCommissionCents:   q.HostCommission.Amount,
		ProcessorFeeCents:     q.ProcessorFee.Amount,
		HostPayoutCents:       q.HostPayout.Amount,
		PlatformRevenueCents:  q.PlatformRevenue.Amount,
		Currency:              q.Subtotal.Currency,
	}
}

// SaleQuote is the buy-now fee table. The buyer pays the list price as-is;
// platform and processor cuts come out of the seller's side.
type SaleQuote struct {
	SubtotalCents         int64  `json:"subtotal_cents"`
	BuyerFeeCents         int64  `json:"buyer_fee_cents"`
	TotalBuyerPaysCents   int64  `json:"total_buyer_pays_cents"`
	SellerCommissionCents int64  `json:"seller_commission_cents"`
	ProcessorFeeCents     int64  `json:"processor_fee_cents"`
	SellerPayoutCents     int64  `json:"seller_payout_cents"`
	PlatformRevenueCents  int64  `json:"platform_revenue_cents"`
	Currency              string `json:"currency"`
}

func MapSaleQuote(q pricing.SaleQuote) SaleQuote {
	return SaleQuote{
		SubtotalCents:         q.Subtotal.Amount,
		BuyerFeeCents:         q.BuyerFee.Amount,
		TotalBuyerPaysCents:   q.TotalBuyerPays.Amount,
		SellerCommissionCents: q.SellerCommission.Amount,
		ProcessorFeeCents:     q.ProcessorFee.Amount,
		SellerPayoutCents:     q.SellerPayout.Amount,
		PlatformRevenueCents:  q.PlatformRevenue.Amount,
		Currency:              q.Subtotal.Currency,
	}
}

func MapDeliveryZone(c delivery.Classification, distanceMiles float64) DeliveryZone {
	return DeliveryZone{
		Mode:          string(c.Mode),
		FeeCents:      c.Fee.Amount,
		Message:       c.Message,
		DistanceMiles: distanceMiles,
		Bookable:      c.Bookable(),
	}
}
